package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/geo-visibility/internal/cache"
	"github.com/jonathan/geo-visibility/internal/config"
	"github.com/jonathan/geo-visibility/internal/logging"
	"github.com/jonathan/geo-visibility/internal/pipeline"
	"github.com/jonathan/geo-visibility/internal/server"
	"github.com/jonathan/geo-visibility/internal/server/ratelimit"
)

var (
	servePort        int
	serveConfigPath  string
	serveCORSOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing POST /analyze.

Storage is chosen from the environment: DATABASE_URL (Postgres, also enables
accounts and history when JWT_SECRET is set), else REDIS_ADDR, else memory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (environment variables override it)")
	serveCmd.Flags().StringSliceVar(&serveCORSOrigins, "cors-origin", nil, "Allowed CORS origins (default: any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer, err := pipeline.New(ctx, cfg, logger, progressLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	defer func() { _ = analyzer.Close() }()

	srvCfg := server.Config{
		Port:           servePort,
		Analysis:       cache.NewService(analyzer, store.Store, time.Duration(cfg.CacheTTL), logger),
		RateLimit:      ratelimit.LoadConfig(),
		AllowedOrigins: serveCORSOrigins,
		Logger:         logger,
	}
	if err := authConfig(&srvCfg, store, logger); err != nil {
		return err
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}

// authConfig enables accounts and history when Postgres and JWT_SECRET are both available.
func authConfig(srvCfg *server.Config, store *storage, logger logrus.FieldLogger) error {
	if store.DB == nil {
		logger.Info("no database configured, accounts and history disabled")
		return nil
	}

	jwtCfg, err := config.NewJWTConfig()
	if errors.Is(err, config.ErrJWTSecretMissing) {
		logger.Warn("JWT_SECRET not set, accounts and history disabled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordCfg, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	srvCfg.Users = store.DB
	srvCfg.History = store.DB
	srvCfg.JWT = jwtCfg
	srvCfg.Password = passwordCfg
	return nil
}

// progressLogger logs pipeline steps at debug level.
func progressLogger(logger logrus.FieldLogger) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		logger.WithFields(logrus.Fields{"step": e.Step, "url": e.URL}).Debug(e.Message)
	}
}
