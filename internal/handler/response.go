package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/clinicdesk/booking-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes an error response, mapping application error
// codes to HTTP statuses. SlotConflict responses include the id of the
// appointment that blocked the booking.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal server error"})
		return
	}

	body := gin.H{"status": "error", "message": appErr.Message}

	switch appErr.Code {
	case apperrors.ErrDoctorNotFound, apperrors.ErrNotFound:
		c.JSON(http.StatusNotFound, body)
	case apperrors.ErrUnknownApptType, apperrors.ErrInvalidInput, apperrors.ErrOutsideWorkingHours:
		c.JSON(http.StatusBadRequest, body)
	case apperrors.ErrSlotConflict:
		body["overlap_with"] = appErr.ConflictingID
		c.JSON(http.StatusConflict, body)
	case apperrors.ErrStorageUnavailable:
		c.JSON(http.StatusServiceUnavailable, body)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal server error"})
	}
}
