package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-tag-registry/internal/adapters/auth/jwtauth"
	"pet-tag-registry/internal/adapters/photos/s3"
	pg "pet-tag-registry/internal/adapters/storage/postgres"
	"pet-tag-registry/internal/config"
	"pet-tag-registry/internal/platform/logger"
	"pet-tag-registry/internal/ports/photos"
	"pet-tag-registry/internal/router"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		println("config error:", err.Error())
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = pg.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		log.Info().Msg("database connection established")
	} else {
		log.Warn().Msg("no database DSN configured, using in-memory storage")
	}

	opts := router.Options{
		DB:        db,
		BaseURL:   cfg.App.BaseURL,
		PhotosDir: cfg.Photos.Dir,
	}

	if cfg.Auth.JWTSecret != "" {
		provider, err := jwtauth.NewProvider(cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create auth provider")
		}
		opts.AuthVerifier = provider
		opts.TokenIssuer = provider
	} else {
		log.Warn().Msg("no JWT secret configured, running in dev auth mode")
	}

	if cfg.Photos.S3.Bucket != "" {
		store, err := buildS3Store(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create S3 photo store")
		}
		opts.PhotoStore = store
		log.Info().Str("bucket", cfg.Photos.S3.Bucket).Msg("photo storage on S3")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // el export zip puede tardar
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Shutdown ordenado
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func buildS3Store(cfg *config.Config) (photos.Store, error) {
	return s3.New(context.Background(), s3.Options{
		Region:    cfg.Photos.S3.Region,
		Bucket:    cfg.Photos.S3.Bucket,
		KeyPrefix: cfg.Photos.S3.KeyPrefix,
		AccessKey: cfg.Photos.S3.AccessKey,
		SecretKey: cfg.Photos.S3.SecretKey,
		Endpoint:  cfg.Photos.S3.Endpoint,
	})
}
