// Copyright 2026 The Gatearr Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/gatearr/gatearr/gateway"
	"github.com/gatearr/gatearr/lib/clock"
	"github.com/gatearr/gatearr/lib/identity"
	"github.com/gatearr/gatearr/lib/sessiontoken"
	"github.com/gatearr/gatearr/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var logLevel string
	var showVersion bool

	pflag.StringVar(&configPath, "config", "", "path to config file (required)")
	pflag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("gatearr %s\n", version.Full())
		return nil
	}

	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config, err := gateway.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("starting gatearr",
		"version", version.Info(),
		"listen_address", config.ListenAddress,
		"apps", len(config.Apps),
	)

	secret, err := loadSecret(config, logger)
	if err != nil {
		return err
	}

	engine := sessiontoken.NewEngine(secret, config.Security.RefreshTokenDays, clock.Real())

	provider, err := identity.NewJellyfinClient(identity.JellyfinConfig{
		URL:     config.Identity.URL,
		APIKey:  config.Identity.APIKey,
		Timeout: time.Duration(config.RequestTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create identity provider: %w", err)
	}

	server, err := gateway.NewServer(gateway.ServerConfig{
		Config:   config,
		Engine:   engine,
		Provider: provider,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// loadSecret builds the token signing secret from configuration, or
// generates a random one. Only the fingerprint is ever logged.
func loadSecret(config *gateway.Config, logger *slog.Logger) (sessiontoken.Secret, error) {
	if config.Security.SigningSecret != "" {
		secret, err := sessiontoken.ParseSecret(config.Security.SigningSecret)
		if err != nil {
			return sessiontoken.Secret{}, fmt.Errorf("invalid signing secret: %w", err)
		}
		logger.Info("using configured signing secret", "fingerprint", secret.Fingerprint())
		return secret, nil
	}

	secret, err := sessiontoken.RandomSecret()
	if err != nil {
		return sessiontoken.Secret{}, err
	}
	logger.Warn("no signing secret configured; generated a random one, all sessions will be invalidated on restart",
		"fingerprint", secret.Fingerprint())
	return secret, nil
}
