package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body: every endpoint answers with a
// status, a status text and a payload, for both success and failure.
type Envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

// SuccessResponse writes a 200 envelope around data.
func SuccessResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusOK, data)
}

// BadRequestResponse writes a 400 envelope, typically around a slice of
// ValidationError.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return respond(c, http.StatusBadRequest, data)
}

// InternalServerErrorResponse writes a generic 500 envelope without leaking
// the cause.
func InternalServerErrorResponse(c echo.Context) error {
	return respond(c, http.StatusInternalServerError, "something went wrong")
}

// AppErrorResponse writes err with its own status when it is an AppError,
// and falls back to a generic 500 otherwise.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return respond(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
