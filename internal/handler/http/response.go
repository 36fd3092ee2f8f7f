package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
)

// ErrorBody is the error payload shape for every endpoint.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondWithError writes an error payload and logs it.
func RespondWithError(c *gin.Context, logger *zap.Logger, statusCode int, message string, code string) {
	logger.Warn("API error response",
		zap.Int("status_code", statusCode),
		zap.String("error_message", message),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorBody{Error: message, Code: code})
}

// RespondWithDomainError maps domain errors to HTTP statuses.
// Unauthorized means "log in again"; Forbidden means "resend with the
// right header"; everything unrecognized is an internal failure.
func RespondWithDomainError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		RespondWithError(c, logger, appErr.StatusCode, appErr.Message, appErr.Code)
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		RespondWithError(c, logger, http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, domainErrors.ErrInvalidRefreshToken):
		RespondWithError(c, logger, http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, domainErrors.ErrUserInactive):
		RespondWithError(c, logger, http.StatusUnauthorized, err.Error(), "USER_INACTIVE")
	case errors.Is(err, domainErrors.ErrEmailExists):
		RespondWithError(c, logger, http.StatusConflict, err.Error(), "EMAIL_EXISTS")
	case errors.Is(err, domainErrors.ErrUserNotFound):
		RespondWithError(c, logger, http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	default:
		logger.Error("internal error", zap.Error(err))
		RespondWithError(c, logger, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
