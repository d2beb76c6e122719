package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/complaintbox/internal/service"
)

// ErrorResponse is the standard failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error sends a JSON failure response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{Success: false, Message: message, Code: code})
}

// mapServiceError translates a service error into an HTTP response.
func mapServiceError(c echo.Context, err error) error {
	var se *service.ServiceError
	if !errors.As(err, &se) {
		return Error(c, http.StatusInternalServerError, service.CodeInternal, "internal server error")
	}
	switch {
	case errors.Is(se, service.ErrBadRequest):
		return Error(c, http.StatusBadRequest, se.Code, se.Message)
	default:
		return Error(c, http.StatusInternalServerError, se.Code, se.Message)
	}
}
