package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridiron-data/gridiron/internal/cache"
	"github.com/gridiron-data/gridiron/internal/config"
	"github.com/gridiron-data/gridiron/internal/explorer"
	"github.com/gridiron-data/gridiron/internal/gqlclient"
	"github.com/gridiron-data/gridiron/internal/query"
	"github.com/gridiron-data/gridiron/internal/schema"
	"github.com/gridiron-data/gridiron/internal/server"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query gateway HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if cfg.Upstream.Endpoint == "" {
			return fmt.Errorf("upstream.endpoint is not configured")
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		registry, err := loadRegistry(cfg.SchemaPath)
		if err != nil {
			return err
		}
		logger.Info("schema loaded",
			zap.Int("entities", registry.Count()),
			zap.String("source", schemaSource(cfg.SchemaPath)))

		builder := query.NewBuilder(registry, cfg.Engine.Options())

		executor := gqlclient.New(gqlclient.Config{
			Endpoint:   cfg.Upstream.Endpoint,
			APIKey:     cfg.Upstream.APIKey,
			Timeout:    cfg.Upstream.Timeout,
			MaxRetries: cfg.Upstream.MaxRetries,
		}, logger)

		var resultCache *cache.ResultCache
		if cfg.Cache.Enabled {
			resultCache, err = cache.New(cache.Config{
				Addr:     cfg.Cache.Addr,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
				TTL:      cfg.Cache.TTL,
				Prefix:   "gridiron:result:",
			})
			if err != nil {
				return fmt.Errorf("failed to connect result cache: %w", err)
			}
			defer resultCache.Close()
		}

		srv := server.New(builder, explorer.New(registry), executor, resultCache, logger)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		httpServer := &http.Server{
			Addr:         addr,
			Handler:      srv.Handler(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", zap.String("addr", addr))
			errCh <- httpServer.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		}
	},
}

func loadRegistry(path string) (*schema.Registry, error) {
	if path == "" {
		return schema.LoadDefault()
	}
	return schema.LoadFile(path)
}

func schemaSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
