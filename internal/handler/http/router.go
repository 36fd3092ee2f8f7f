package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/config"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
	"github.com/sonorousduck/foodtracker-backend/internal/handler/http/middleware"
	"github.com/sonorousduck/foodtracker-backend/internal/service"
)

// csrfSkipRoutes are the unsafe routes exempt from the double-submit
// check. Pre-login endpoints cannot have a CSRF cookie yet, and refresh
// is protected by the HttpOnly refresh cookie itself.
var csrfSkipRoutes = map[string]struct{}{
	"POST /auth/login":   {},
	"POST /auth/create":  {},
	"POST /auth/refresh": {},
}

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Config      *config.Config
	Logger      *zap.Logger
	AuthHandler *AuthHandler
	Health      *HealthHandler
	Tokens      *service.TokenService
	CSRF        *service.CSRFService
	Revocation  *service.RevocationService
	Users       repository.UserRepository
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(),
		middleware.CORS(deps.Config.CORS),
		middleware.CSRF(deps.CSRF, csrfSkipRoutes, deps.Logger),
	)

	router.GET("/health", deps.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/auth")
	{
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/create", deps.AuthHandler.Create)
		auth.POST("/refresh", deps.AuthHandler.Refresh)
		auth.POST("/logout", deps.AuthHandler.Logout)

		authenticated := auth.Group("")
		authenticated.Use(middleware.Auth(deps.Tokens, deps.Revocation, deps.Users, deps.Logger))
		{
			authenticated.GET("/user", deps.AuthHandler.CurrentUser)
			authenticated.GET("/history", deps.AuthHandler.History)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": "NOT_FOUND"})
	})

	return router
}
