// cmd/server/main.go
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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medical-back/internal/auth"
	"medical-back/internal/clinic"
	"medical-back/internal/config"
	"medical-back/internal/database"
	"medical-back/internal/handlers"
	"medical-back/internal/identity"
	"medical-back/internal/notify"
	"medical-back/internal/storage"
	"medical-back/internal/verification"
)

const mailTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "medical-back",
		Short: "Clinic records API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := database.InitDB(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := database.MigrateDB(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info().Msg("database schema is up to date")
			return nil
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.StorageBackend == "minio" {
		return storage.NewMinIOStore(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	}
	return storage.NewLocalStore(cfg.UploadRoot, cfg.MediaURL)
}

func newMailer(cfg *config.Config, logger zerolog.Logger) (notify.Mailer, error) {
	if cfg.SMTPURL == "" {
		return notify.NewLogMailer(logger), nil
	}
	return notify.NewShoutrrrMailer(cfg.SMTPURL, mailTimeout, logger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.MigrateDB(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("connected to database")

	ctx := context.Background()
	images, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize image storage")
	}
	mailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize mailer")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := handlers.NewRouter(handlers.Deps{
		DB:                        db,
		Identity:                  identity.NewStore(db),
		Clinic:                    clinic.NewStore(db),
		Challenges:                verification.NewStore(db, cfg.VerificationCodeTTL),
		Mailer:                    mailer,
		Images:                    images,
		Tokens:                    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Log:                       logger,
		Registry:                  registry,
		CORSOrigins:               cfg.CORSOrigins,
		MaxUploadBytes:            cfg.MaxUploadMB << 20,
		ResetRequiresVerification: cfg.ResetRequiresVerification,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageBackend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
