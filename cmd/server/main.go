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

	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/api/handler"
	"github.com/JoeSaf/Allika-sub000/internal/api/middleware"
	"github.com/JoeSaf/Allika-sub000/internal/api/router"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/database"
	"github.com/JoeSaf/Allika-sub000/pkg/jwt"
	applogger "github.com/JoeSaf/Allika-sub000/pkg/logger"
	"github.com/JoeSaf/Allika-sub000/pkg/messaging"
	"github.com/JoeSaf/Allika-sub000/pkg/redis"
)

func main() {
	cfg, err := config.Load(os.Getenv("ALIKA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting alika api",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("log_level", cfg.Log.Level),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// Redis is optional: without it logout cannot revoke tokens and rate
	// limiting stays per-process.
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		rdb = nil
	}

	senders := messaging.NewRegistry()
	if cfg.Messaging.SMS.Enabled {
		senders.Register(messaging.NewSMSSender(&cfg.Messaging.SMS, logger))
	}
	if cfg.Messaging.Email.Enabled {
		senders.Register(messaging.NewEmailSender(&cfg.Messaging.Email, logger))
	}
	if cfg.Messaging.WhatsApp.Enabled {
		wa, err := messaging.NewWhatsAppSender(ctx, &cfg.Messaging.WhatsApp, logger)
		if err != nil {
			logger.Error("whatsapp sender disabled", zap.Error(err))
		} else if err := wa.Connect(ctx); err != nil {
			logger.Error("whatsapp connect failed", zap.Error(err))
		} else {
			defer wa.Close()
			senders.Register(wa)
		}
	}
	logger.Info("message channels ready", zap.Strings("channels", senders.Channels()))

	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, senders, logger)
	h := handler.NewHandler(cfg, svc, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, rdb, logger)
	go limiter.Sweep(ctx)

	engine := router.Setup(cfg, h, jwtMgr, rdb, limiter, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
