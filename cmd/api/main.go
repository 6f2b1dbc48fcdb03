package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kekspay-gateway/config"
	httpHandler "kekspay-gateway/internal/adapter/http/handler"
	"kekspay-gateway/internal/adapter/provider"
	"kekspay-gateway/internal/adapter/qr"
	pgStorage "kekspay-gateway/internal/adapter/storage/postgres"
	redisStorage "kekspay-gateway/internal/adapter/storage/redis"
	"kekspay-gateway/internal/core/domain"
	"kekspay-gateway/internal/core/ports"
	"kekspay-gateway/internal/service"
	"kekspay-gateway/pkg/logger"

	"github.com/joho/godotenv"
)

// qrModulePixels is the rendered size of one QR module.
const qrModulePixels = 5

func main() {
	// Optional .env for local runs; real deployments set KPG_* directly.
	envErr := godotenv.Load()

	cfg, err := config.Load(os.Getenv("KPG_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg(".env file could not be read")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting KEKS Pay Gateway")

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Repositories and Redis stores
	orderRepo := pgStorage.NewOrderRepo(pool)
	settingsRepo := pgStorage.NewSettingsRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	settingsCache := redisStorage.NewSettingsCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	settingsSvc := service.NewSettingsService(settingsRepo, settingsCache, encSvc, sigSvc, service.SettingsOptions{
		Defaults:    bootstrapSettings(cfg.Kekspay),
		SiteURL:     cfg.Kekspay.SiteURL,
		CallbackURL: cfg.Kekspay.CallbackURL,
		CacheTTL:    cfg.Kekspay.SettingsTTL,
	}, log)

	// Seeds the settings row and auth token on first start.
	settings, err := settingsSvc.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load gateway settings")
	}
	log.Info().
		Bool("enabled", settings.Enabled).
		Bool("test_mode", settings.TestMode).
		Bool("required_keys_set", settings.RequiredKeysSet()).
		Msg("Gateway settings loaded")

	providerClient := provider.NewClient(provider.Config{
		LiveBaseURL: cfg.Kekspay.APIBaseURL,
		TestBaseURL: cfg.Kekspay.TestAPIBaseURL,
		Timeout:     cfg.Kekspay.RefundTimeout,
	}, log)
	sellSvc := service.NewSellService(cfg.Kekspay.PayBaseURL, qr.NewRenderer(qrModulePixels), log)
	auditSvc := service.NewAuditService(auditRepo, log)
	authSvc := service.NewAuthService(service.AdminCredentials{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}, hashSvc, tokenSvc)
	if cfg.Admin.PasswordHash == "" {
		log.Warn().Msg("admin password hash not configured, admin API login is disabled")
	}

	// Health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		SettingsSvc:    settingsSvc,
		CheckoutSvc:    service.NewCheckoutService(orderRepo, settingsSvc, sellSvc, nonceStore, cfg.Kekspay.NonceTTL, log),
		StatusSvc:      service.NewStatusService(orderRepo, nonceStore, log),
		RefundSvc:      service.NewRefundService(orderRepo, settingsSvc, providerClient, log),
		IPNSvc:         service.NewIPNService(orderRepo, settingsSvc, auditSvc, log),
		OrderRepo:      orderRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Refund calls may take up to the provider timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Kekspay.RefundTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// bootstrapSettings maps the kekspay config section onto the settings the
// persisted row is seeded with on first start.
func bootstrapSettings(k config.KekspayConfig) domain.Settings {
	status, ok := domain.ParseOrderStatus(k.PaidOrderStatus)
	if !ok {
		status = domain.OrderStatusProcessing
	}
	return domain.Settings{
		Enabled:         k.Enabled,
		Title:           "KEKS Pay",
		Description:     "Plaćanje KEKS Pay aplikacijom.",
		TestMode:        k.TestMode,
		Live:            domain.Credentials{CID: k.Live.CID, TID: k.Live.TID, SecretKey: k.Live.SecretKey},
		Test:            domain.Credentials{CID: k.Test.CID, TID: k.Test.TID, SecretKey: k.Test.SecretKey},
		PaidOrderStatus: status,
		UseLogger:       k.UseLogger,
	}
}
