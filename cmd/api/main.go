package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/adilzhan/gameportal/internal/assetpath"
	"github.com/adilzhan/gameportal/internal/auth"
	"github.com/adilzhan/gameportal/internal/banner"
	"github.com/adilzhan/gameportal/internal/category"
	"github.com/adilzhan/gameportal/internal/config"
	"github.com/adilzhan/gameportal/internal/events"
	"github.com/adilzhan/gameportal/internal/game"
	"github.com/adilzhan/gameportal/internal/logger"
	"github.com/adilzhan/gameportal/internal/server"
	"github.com/adilzhan/gameportal/internal/settings"
	"github.com/adilzhan/gameportal/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		zl.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
		zl.Fatal("ensure bucket", zap.Error(err))
	}

	publisher := events.NewPublisher(cfg.Events)
	defer publisher.Close()

	resolver := assetpath.NewResolver(cfg.CDN.BaseURL)

	authService := auth.NewService(auth.NewRepository(dbPool), cfg.Auth)
	gameService := game.NewService(game.NewRepository(dbPool), minioClient, cfg.MinIO.Bucket, cfg.Upload, publisher, zl)
	bannerService := banner.NewService(banner.NewRepository(dbPool), minioClient, cfg.MinIO.Bucket, publisher, zl)
	categoryService := category.NewService(category.NewRepository(dbPool))
	settingsService := settings.NewService(settings.NewRepository(dbPool))

	router := server.NewRouter(server.Dependencies{
		Config:          cfg,
		DB:              dbPool,
		ObjectStore:     minioClient,
		Resolver:        resolver,
		AuthService:     authService,
		GameService:     gameService,
		BannerService:   bannerService,
		CategoryService: categoryService,
		SettingsService: settingsService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zl.Info("portal API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zl.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
