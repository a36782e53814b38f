package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/upscaler/internal/api"
	"github.com/dmitrijs2005/upscaler/internal/common"
	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrorAlreadyProcessing, http.StatusConflict},
	{common.ErrorInvalidSettings, http.StatusBadRequest},
	{common.ErrorNoResult, http.StatusGone},
	{common.ErrorSessionClosed, http.StatusGone},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrorTooLarge, http.StatusRequestEntityTooLarge},
	{common.ErrorUnsupportedType, http.StatusUnsupportedMediaType},
	{common.ErrorBadExtension, http.StatusBadRequest},
	{common.ErrorEmptyFile, http.StatusBadRequest},
}

// statusFor maps sentinel errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func errorBody(err error) api.ErrorResponse {
	return api.ErrorResponse{Error: err.Error()}
}

// abortWithError writes the JSON error response. Internal errors are
// recorded on the context for the logging middleware and hidden from clients.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, errorBody(common.ErrorInternal))
		return
	}
	c.AbortWithStatusJSON(status, errorBody(err))
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(err))
}
