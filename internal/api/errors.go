package api

import (
	"context"
	"errors"
	"net/http"

	"liftcoach/server/internal/service"

	"github.com/gin-gonic/gin"
)

// respondWithError maps service errors to HTTP status codes. Unknown errors are
// hidden behind a generic message.
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConcurrentUpdate):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, context.Canceled):
		c.Abort()
	default:
		// RequestLogger reports it with the request id.
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
