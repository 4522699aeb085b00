package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-server/internal/credentials"
	"storyboard-server/internal/models"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeWrongCredentials, Message: credentials.MsgInvalidCredentials}
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Code: models.ErrCodeDuplicateUser, Message: msgDuplicateUser}
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Message: "Token has expired"}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed),
		errors.Is(err, models.ErrTokenNotFound), errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Token is invalid or malformed"}
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeNotFound, Message: msgNotFound}
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, models.ErrStorageUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Code: models.ErrCodeUnavailable, Message: msgStorageUnavailable}
	case errors.Is(err, models.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResp = models.ErrorResponse{Code: models.ErrCodeUnavailable, Message: msgGenerationDisabled}
	case errors.Is(err, models.ErrRemote):
		statusCode = http.StatusBadGateway
		errResp = models.ErrorResponse{Code: models.ErrCodeRemote, Message: "Upstream request failed"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}

func abortBadRequest(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: code, Message: message})
}
