package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/utils/metrics"
)

// CSRFTokenHeader is the header browser clients must echo the CSRF
// cookie into on unsafe methods.
const CSRFTokenHeader = "X-CSRF-Token"

// CSRFValidator compares the cookie-carried and header-echoed tokens.
type CSRFValidator interface {
	ValidateToken(cookieToken, headerToken string) bool
}

// CSRF enforces the double-submit cookie check. The decision procedure
// runs top to bottom, first match wins:
//
//  1. the route is in the skip table
//  2. the method is safe (read-only)
//  3. the request authenticates with a bearer header instead of
//     cookies; such clients cannot be ridden by a cross-site form
//  4. otherwise cookie and header tokens must both be present and equal
//
// skipPaths entries are "METHOD /path".
func CSRF(validator CSRFValidator, skipPaths map[string]struct{}, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := skipPaths[c.Request.Method+" "+c.FullPath()]; skip {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.Next()
			return
		}

		cookieToken, _ := c.Cookie(CSRFTokenCookie)
		headerToken := c.GetHeader(CSRFTokenHeader)

		if cookieToken == "" || headerToken == "" {
			metrics.CSRFRejectionsTotal.Inc()
			logger.Warn("CSRF validation failed: missing token",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": domainErrors.ErrCSRFTokenMissing.Error(),
				"code":  "CSRF_TOKEN_MISSING",
			})
			return
		}

		if !validator.ValidateToken(cookieToken, headerToken) {
			metrics.CSRFRejectionsTotal.Inc()
			logger.Warn("CSRF validation failed: invalid token",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": domainErrors.ErrCSRFTokenInvalid.Error(),
				"code":  "CSRF_TOKEN_INVALID",
			})
			return
		}

		c.Next()
	}
}
