package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/core/services"
	"github.com/tillpoint/pos-backend/internal/handlers"
	"github.com/tillpoint/pos-backend/internal/middleware"
	"github.com/tillpoint/pos-backend/internal/providers"
	"github.com/tillpoint/pos-backend/internal/ratecache"
	"github.com/tillpoint/pos-backend/internal/repositories/database/pgsql"
	"github.com/tillpoint/pos-backend/pkg/config"
	"github.com/tillpoint/pos-backend/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.GET("/healthz", handlers.GetHealth)

	setupAPIV1Routes(r, cfg, dbPool, logger)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations over a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}

func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	addTransactionAPI(v1, cfg, dbPool, logger)
}

func addTransactionAPI(v1 *gin.RouterGroup, cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) {
	businessRepo := pgsql.NewBusinessRepository(dbPool)
	txnRepo := pgsql.NewTransactionRepository(dbPool, cfg.ReceiptMaxRetries)

	// Primary first, fallback second; the resolver tries them in order.
	rateProviders := []ports.ExchangeRateProvider{
		providers.NewExchangeRateAPIProvider(cfg.RateProviderTimeout, logger),
		providers.NewOpenERAPIProvider(cfg.RateProviderTimeout, logger),
	}
	// One resolver instance for the write path AND the rates endpoint, so
	// both share the same cache and the same TTL policy.
	rateService := services.NewExchangeRateService(rateProviders, ratecache.NewMemoryCache(), cfg.RateCacheTTL, logger)

	txnService := services.NewTransactionService(businessRepo, txnRepo, rateService)
	txnHandler := handlers.NewTransactionHandler(txnService)
	ratesHandler := handlers.NewRatesHandler(businessRepo, rateService)

	txns := v1.Group("/transactions")
	{
		txns.POST("", txnHandler.CreateTransaction)
		txns.GET("", txnHandler.ListTransactions)
		txns.GET("/rates", middleware.RateLimit(newRatesLimiter(cfg, logger)), ratesHandler.GetRates)
		txns.GET("/:transactionID", txnHandler.GetTransaction)
		txns.DELETE("/:transactionID", middleware.RequireRole(handlers.DeleteRoles...), txnHandler.DeleteTransaction)
	}
}

func newRatesLimiter(cfg *config.Config, logger *slog.Logger) *limiter.Limiter {
	rate, err := limiter.NewRateFromFormatted(cfg.RatesRateLimit)
	if err != nil {
		logger.Warn("Invalid RATES_RATE_LIMIT, defaulting to 30-M", slog.String("error", err.Error()))
		rate = limiter.Rate{Period: time.Minute, Limit: 30}
	}
	return limiter.New(memorystore.NewStore(), rate)
}
