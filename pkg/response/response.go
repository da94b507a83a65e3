package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jasalink/service-booking/internal/domain"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable kind and a human-readable reason
// for a rejection.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination describes list metadata returned alongside list data.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// paginatedData wraps list items with their pagination metadata.
type paginatedData struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 with list items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data: paginatedData{
			Items:      items,
			Pagination: Pagination{Total: total, Page: page, Limit: limit},
		},
	})
}

// BadRequest writes a 400 with a validation message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: string(domain.KindValidation), Message: message},
	})
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: "UNAUTHORIZED", Message: "unauthorized"},
	})
}

// Error maps a domain rejection to its HTTP status; anything that is not a
// domain error is a 500 with the reason withheld from the client.
func Error(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		c.JSON(statusFor(derr.Kind), Envelope{
			Success: false,
			Error:   &ErrorBody{Code: string(derr.Kind), Message: derr.Message},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: "INTERNAL", Message: "internal server error"},
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidSchedule:
		return http.StatusBadRequest
	case domain.KindForbidden, domain.KindUnauthorizedActor:
		return http.StatusForbidden
	case domain.KindNotFound, domain.KindQuoteNotFound:
		return http.StatusNotFound
	case domain.KindStaleState:
		return http.StatusConflict
	case domain.KindIllegalTransition, domain.KindWrongStatus,
		domain.KindTooCloseToSchedule, domain.KindQuoteExpired,
		domain.KindAlreadyReviewed, domain.KindNotCompleted:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
