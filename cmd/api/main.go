package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/sitebooks/sitebooks-backend/internal/config"
	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
	appHTTP "github.com/sitebooks/sitebooks-backend/internal/handler/http"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/cache"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/database"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/jwt"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/metrics"
	"github.com/sitebooks/sitebooks-backend/internal/repository/postgresql"
	dashboardService "github.com/sitebooks/sitebooks-backend/internal/service/dashboard"
	siteProfitService "github.com/sitebooks/sitebooks-backend/internal/service/siteprofit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.App.Location()
	if err != nil {
		logger.Error("error loading time zone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		TimeZone: location.String(),
	})
	if err != nil {
		logger.Error("error connecting to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	resultCache := newCache(ctx, cfg.Cache, logger)
	appMetrics := metrics.NewMetrics()

	siteProfitRepo := postgresql.NewSiteProfitRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	dateColumn := cfg.Dashboard.TxnDateColumn
	if dateColumn == "" {
		dateColumn = dashboardRepo.DetectTxnDateColumn(ctx, dashboard.TxnDateColumnCandidates, dashboard.TxnDateColumnFallback)
	}
	logger.Info("transaction date column resolved", slog.String("column", dateColumn))

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	siteProfitSvc := siteProfitService.NewSiteProfitService(siteProfitRepo, resultCache, appMetrics, logger)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, dashboardService.Settings{
		DateColumn:    dateColumn,
		CreditNatures: cfg.Dashboard.CreditNatures,
		DebitNatures:  cfg.Dashboard.DebitNatures,
		RecentLimit:   cfg.Dashboard.RecentLimit,
		Location:      location,
	}, resultCache, appMetrics, logger)

	siteProfitHandler := appHTTP.NewSiteProfitHandler(siteProfitSvc, logger)
	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc)

	router := appHTTP.NewRouter(
		cfg,
		logger,
		appMetrics,
		JWTService,
		siteProfitHandler,
		dashboardHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.String("error", err.Error()))
		}
	}()

	logger.Info("server running", slog.String("addr", "http://localhost"+server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(app.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "sitebooks"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)
}

// newCache returns nil when Redis is not configured or unreachable; aggregates are then computed on every request.
func newCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) *cache.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client, err := cache.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.String("error", err.Error()))
		return nil
	}

	c := cache.New(client, cfg.TTL)
	if err := c.ListenForInvalidation(ctx, cfg.InvalidationChannel); err != nil {
		logger.Warn("cache invalidation listener not started", slog.String("error", err.Error()))
	}
	return c
}
