package handler

import (
	"kekspay-gateway/internal/adapter/http/middleware"
	redisStore "kekspay-gateway/internal/adapter/storage/redis"
	"kekspay-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies; callbacks and admin writes are small.
const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	SettingsSvc    ports.SettingsService
	CheckoutSvc    ports.CheckoutService
	StatusSvc      ports.StatusService
	RefundSvc      ports.RefundService
	IPNSvc         ports.IPNService
	OrderRepo      ports.OrderRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check pings PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Provider callback (token authenticated by the IPN service) ---
	ipnHandler := NewIPNHandler(deps.IPNSvc, deps.Logger)
	r.GET(CallbackPath, rl(middleware.GroupIPN), ipnHandler.Handle)
	r.POST(CallbackPath, rl(middleware.GroupIPN), ipnHandler.Handle)

	v1 := r.Group("/api/v1")

	// --- Customer routes (order key / nonce authenticated) ---
	kekspayHandler := NewKekspayHandler(deps.CheckoutSvc, deps.StatusSvc)
	kekspay := v1.Group("/kekspay")
	{
		kekspay.GET("/checkout/:id", rl(middleware.GroupCheckout), kekspayHandler.Checkout)
		kekspay.POST("/status", rl(middleware.GroupStatusCheck), kekspayHandler.Status)
	}

	// --- Admin routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	v1.POST("/admin/login", rl(middleware.GroupAdminLogin), authHandler.Login)

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	adminHandler := NewAdminHandler(deps.SettingsSvc, deps.RefundSvc, deps.OrderRepo)
	admin := v1.Group("/admin", jwtAuth, rl(middleware.GroupAdmin))
	{
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.UpdateSettings)
		admin.GET("/settings/callback-url", adminHandler.CallbackURL)
		admin.GET("/orders/:id", adminHandler.GetOrder)
		admin.POST("/orders/:id/refund", adminHandler.Refund)
	}

	return r
}
