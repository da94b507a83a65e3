package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jasalink/service-booking/internal/application"
	"github.com/jasalink/service-booking/pkg/auth"
	"github.com/jasalink/service-booking/pkg/middleware"
	"github.com/jasalink/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking lifecycle operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.Auth(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleCustomer), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/quote", middleware.RequireRole(auth.RoleWorker), h.ProposeQuote)
		bookings.POST("/:id/respond", h.Respond)
		bookings.POST("/:id/start", middleware.RequireRole(auth.RoleWorker), h.StartWork)
		bookings.POST("/:id/complete", middleware.RequireRole(auth.RoleWorker), h.CompleteWork)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/reschedule", h.RescheduleBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RequestBooking(c.Request.Context(), customerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Customers see bookings they
// requested, workers see bookings addressed to them.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	page, limit := parsePagination(c)

	var (
		items []application.BookingDTO
		total int64
		err   error
	)
	switch role {
	case auth.RoleWorker:
		items, total, err = h.service.GetWorkerBookings(c.Request.Context(), userID, page, limit)
	default:
		items, total, err = h.service.GetCustomerBookings(c.Request.Context(), userID, page, limit)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID, role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ProposeQuote handles POST /api/v1/bookings/:id/quote.
func (h *BookingHandler) ProposeQuote(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	workerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.ProposeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ProposeQuote(c.Request.Context(), bookingID, workerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Respond handles POST /api/v1/bookings/:id/respond. A customer responds to
// the current quote, a worker responds to the request itself.
func (h *BookingHandler) Respond(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RespondToBooking(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// StartWork handles POST /api/v1/bookings/:id/start.
func (h *BookingHandler) StartWork(c *gin.Context) {
	h.versionedTransition(c, h.service.StartWork)
}

// CompleteWork handles POST /api/v1/bookings/:id/complete.
func (h *BookingHandler) CompleteWork(c *gin.Context) {
	h.versionedTransition(c, h.service.CompleteWork)
}

// versionedTransition is the shared handler shape for single-step lifecycle
// operations whose body carries only the expected version.
func (h *BookingHandler) versionedTransition(
	c *gin.Context,
	op func(ctx context.Context, bookingID uuid.UUID, actorID uuid.UUID, version int64) (*application.BookingDTO, error),
) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var body struct {
		Version int64 `json:"version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := op(c.Request.Context(), bookingID, userID, body.Version)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var body struct {
		Version int64  `json:"version" binding:"required"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID, body.Version, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RescheduleBooking handles POST /api/v1/bookings/:id/reschedule.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var body struct {
		Version     int64     `json:"version" binding:"required"`
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RescheduleBooking(c.Request.Context(), bookingID, userID, body.Version, body.ScheduledAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseBookingID extracts and validates the :id path parameter, writing a
// 400 on failure.
func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, false
	}
	return bookingID, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
