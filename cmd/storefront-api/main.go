package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	httpapi "storefront/internal/http"
	"storefront/internal/logging"
	"storefront/internal/service"
	"storefront/internal/shutdown"

	_ "storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description Reference implementation of the storefront REST API.
// @BasePath /
func main() {
	app := &cli.App{
		Name:  "storefront-api",
		Usage: "in-memory storefront API for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"STOREFRONT_CONFIG"}},
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides config"},
			&cli.BoolFlag{Name: "no-seed", Usage: "start with an empty store"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("storefront-api failed", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if c.Bool("no-seed") {
		cfg.Server.Seed = false
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := httpapi.NewMemoryServices(bcrypt.DefaultCost)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if cfg.Server.Seed {
		if err := service.Seed(ctx, svc.Categories, svc.Products, svc.Auth); err != nil {
			return err
		}
		log.Info("store seeded", "admin", service.SeedAdmin.Email, "customer", service.SeedCustomer.Email)
	}

	srv := httpapi.NewServer(svc, log, cfg.Server.Images)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
