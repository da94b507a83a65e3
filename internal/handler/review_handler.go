package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jasalink/service-booking/internal/application"
	"github.com/jasalink/service-booking/pkg/auth"
	"github.com/jasalink/service-booking/pkg/middleware"
	"github.com/jasalink/service-booking/pkg/response"
)

// ReviewHandler handles HTTP requests for review submission and the worker
// rating read side.
type ReviewHandler struct {
	service *application.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers all review routes on the given router group.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.Auth(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("/:id/review", middleware.RequireRole(auth.RoleCustomer), h.SubmitReview)
	}

	// Worker ratings are public marketplace data.
	workers := r.Group("/api/v1/workers")
	{
		workers.GET("/:id/reviews", h.ListWorkerReviews)
		workers.GET("/:id/rating", h.GetWorkerRating)
	}
}

// SubmitReview handles POST /api/v1/bookings/:id/review.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitReview(c.Request.Context(), bookingID, customerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListWorkerReviews handles GET /api/v1/workers/:id/reviews.
func (h *ReviewHandler) ListWorkerReviews(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid worker ID")
		return
	}

	page, limit := parsePagination(c)

	items, total, err := h.service.GetWorkerReviews(c.Request.Context(), workerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetWorkerRating handles GET /api/v1/workers/:id/rating.
func (h *ReviewHandler) GetWorkerRating(c *gin.Context) {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid worker ID")
		return
	}

	summary, err := h.service.GetWorkerRating(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, summary)
}
