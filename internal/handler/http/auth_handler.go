package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/handler/http/middleware"
	"github.com/sonorousduck/foodtracker-backend/internal/service"
)

// AuthHandler owns the /auth endpoints.
type AuthHandler struct {
	authService *service.AuthService
	audit       *service.AuditService
	accessTTL   time.Duration
	refreshTTL  time.Duration
	logger      *zap.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(authService *service.AuthService, audit *service.AuditService, tokens *service.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		audit:       audit,
		accessTTL:   tokens.AccessTokenTTL(),
		refreshTTL:  tokens.RefreshTokenTTL(),
		logger:      logger,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, h.logger, http.StatusBadRequest, "invalid request payload", "VALIDATION_ERROR")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req, c.Request)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	h.setAuthCookies(c, result)
	c.JSON(http.StatusOK, h.buildAuthResponse(c, result))
}

// Create handles POST /auth/create.
func (h *AuthHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, h.logger, http.StatusBadRequest, "invalid request payload", "VALIDATION_ERROR")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req, c.Request)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	h.setAuthCookies(c, result)
	c.JSON(http.StatusOK, h.buildAuthResponse(c, result))
}

// Refresh handles POST /auth/refresh. The refresh token comes from the
// cookie when present, the body otherwise.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		var req models.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		RespondWithError(c, h.logger, http.StatusUnauthorized, "missing refresh token", "REFRESH_TOKEN_MISSING")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken, c.Request)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	h.setAuthCookies(c, result)
	c.JSON(http.StatusOK, h.buildAuthResponse(c, result))
}

// Logout handles POST /auth/logout: revoke the access token, clear the
// stored refresh token, drop the cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	accessToken := middleware.ExtractAccessToken(c)

	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)
	if refreshToken == "" {
		var req models.LogoutRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	if err := h.authService.Logout(c.Request.Context(), accessToken, refreshToken, c.Request); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CurrentUser handles GET /auth/user.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userId":   c.GetInt64(middleware.ContextUserIDKey),
		"username": c.GetString(middleware.ContextUserEmailKey),
	})
}

// History handles GET /auth/history: the caller's recent auth events.
func (h *AuthHandler) History(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	history, err := h.audit.UserHistory(c.Request.Context(), userID, 20)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": history})
}

// isSecureRequest reports whether the client connection is HTTPS,
// directly or through a terminating proxy.
func isSecureRequest(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		return false
	}
	return strings.TrimSpace(strings.Split(proto, ",")[0]) == "https"
}

func (h *AuthHandler) cookie(c *gin.Context, name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	secure := isSecureRequest(c)
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: sameSite,
	}
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, result *models.AuthResult) {
	http.SetCookie(c.Writer, h.cookie(c, middleware.AccessTokenCookie, result.AccessToken, h.accessTTL, true))
	http.SetCookie(c.Writer, h.cookie(c, middleware.RefreshTokenCookie, result.RefreshToken, h.refreshTTL, true))
	// The CSRF cookie is deliberately readable: browser scripts echo it
	// into the X-CSRF-Token header.
	http.SetCookie(c.Writer, h.cookie(c, middleware.CSRFTokenCookie, result.CSRFToken, h.refreshTTL, false))
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie, middleware.CSRFTokenCookie} {
		cookie := h.cookie(c, name, "", 0, name != middleware.CSRFTokenCookie)
		cookie.MaxAge = -1
		http.SetCookie(c.Writer, cookie)
	}
}

// buildAuthResponse strips the refresh token from browser responses;
// browsers carry it in the HttpOnly cookie instead. Requests without an
// Origin header (native and CLI clients) get it in the body.
func (h *AuthHandler) buildAuthResponse(c *gin.Context, result *models.AuthResult) models.AuthResult {
	out := *result
	if c.GetHeader("Origin") != "" {
		out.RefreshToken = ""
	}
	return out
}
