package handlers

import (
	"strconv"
	"time"

	"github.com/bookahq/booka_backend/cmd/docs"
	portssvc "github.com/bookahq/booka_backend/internal/core/ports/services"
	"github.com/bookahq/booka_backend/internal/middleware"
	"github.com/bookahq/booka_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	// Public webhook endpoints, rate limited per client IP
	setupWebhookRoutes(r, cfg, services)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupWebhookRoutes configures the unauthenticated provider webhook group.
// These carry no JWT; the provider signature is the credential.
func setupWebhookRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	rpm := cfg.WebhookRateLimit
	if rpm <= 0 {
		rpm = 120
	}
	rate, err := limiter.NewRateFromFormatted(strconv.FormatInt(rpm, 10) + "-M")
	if err != nil {
		rate = limiter.Rate{Formatted: "120-M", Period: time.Minute, Limit: 120}
	}
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)

	webhooks := r.Group("/webhooks", middleware.RateLimit(ipLimiter))
	registerWebhookRoutes(webhooks, services.Webhook)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// All tenant-scoped routes live under the tenant path; the Authorize
	// middleware on each route checks the token's tenant against it.
	tenant := v1.Group("/tenants/:tenantID")
	registerBookingRoutes(tenant, services.Booking)
	registerDepositRoutes(tenant, services.Deposit)
	registerReconciliationRoutes(tenant, services.Reconciliation)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
