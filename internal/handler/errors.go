package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/paxcalc-backend/internal/response"
	"github.com/stemsi/paxcalc-backend/internal/service"
)

// failureFor maps a service error onto an HTTP status and error code.
func failureFor(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrInvalidTime):
		return http.StatusBadRequest, response.ErrInvalidTime
	case errors.Is(err, service.ErrClassNotFound):
		return http.StatusNotFound, response.ErrClassNotFound
	case errors.Is(err, service.ErrIndexNotFound):
		return http.StatusNotFound, response.ErrIndexNotFound
	case errors.Is(err, service.ErrIndexInvalid):
		return http.StatusInternalServerError, response.ErrIndexInvalid
	case errors.Is(err, service.ErrInvalidConversion):
		return http.StatusUnprocessableEntity, response.ErrInvalidConversion
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// failService writes the error response for err. Client errors carry the
// error text as detail; internal errors do not.
func failService(c *gin.Context, err error) {
	status, code := failureFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		response.Fail(c, status, code)
		return
	}
	response.FailWithFields(c, status, code, map[string]string{"detail": err.Error()})
}
