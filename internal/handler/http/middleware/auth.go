package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/service"
)

const (
	// AccessTokenCookie is the HttpOnly cookie carrying the access JWT.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie is the HttpOnly cookie carrying the refresh token.
	RefreshTokenCookie = "refreshToken"
	// CSRFTokenCookie is the script-readable cookie carrying the CSRF token.
	CSRFTokenCookie = "csrfToken"

	// ContextUserIDKey holds the authenticated user's ID in the gin context.
	ContextUserIDKey = "userID"
	// ContextUserEmailKey holds the authenticated user's email in the gin context.
	ContextUserEmailKey = "userEmail"
)

// TokenVerifier verifies an access token's signature and expiry.
type TokenVerifier interface {
	ParseAccessToken(token string) (*service.AccessTokenClaims, error)
}

// RevocationChecker answers whether an access token has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// SubjectResolver re-resolves the authenticated subject on every
// request so deactivation takes effect immediately.
type SubjectResolver interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// ExtractAccessToken pulls the access token from the request, cookie
// first, then the Authorization header.
func ExtractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Auth gates authenticated routes. The request walks a fixed pipeline:
// extract token, revocation check, signature/expiry check, subject
// re-resolution, bind identity. A revocation-store failure fails the
// request; it is never treated as "not revoked".
func Auth(tokens TokenVerifier, revocation RevocationChecker, users SubjectResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractAccessToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domainErrors.ErrMissingToken.Error(),
				"code":  "TOKEN_MISSING",
			})
			return
		}

		revoked, err := revocation.IsRevoked(c.Request.Context(), token)
		if err != nil {
			logger.Error("revocation check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "authorization check failed",
				"code":  "AUTH_CHECK_FAILED",
			})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domainErrors.ErrRevokedToken.Error(),
				"code":  "TOKEN_REVOKED",
			})
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			message := domainErrors.ErrInvalidToken.Error()
			if errors.Is(err, domainErrors.ErrExpiredToken) {
				message = domainErrors.ErrExpiredToken.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": message,
				"code":  "TOKEN_INVALID",
			})
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domainErrors.ErrInvalidToken.Error(),
				"code":  "TOKEN_INVALID",
			})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": domainErrors.ErrUserInactive.Error(),
					"code":  "USER_INACTIVE",
				})
				return
			}
			logger.Error("subject lookup failed", zap.Error(err), zap.Int64("user_id", userID))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "authorization check failed",
				"code":  "AUTH_CHECK_FAILED",
			})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domainErrors.ErrUserInactive.Error(),
				"code":  "USER_INACTIVE",
			})
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserEmailKey, user.Email)
		c.Next()
	}
}
