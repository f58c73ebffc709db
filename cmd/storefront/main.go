package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"storefront/internal/apiclient"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/shutdown"
	"storefront/internal/storefront"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storefront",
		Usage: "storefront client and admin console",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"STOREFRONT_CONFIG"}},
			&cli.StringFlag{Name: "api-url", Usage: "API base URL, overrides config", EnvVars: []string{"STOREFRONT_API_URL"}},
		},
		Commands: append(authCommands(),
			productsCommand(),
			cartCommand(),
			checkoutCommand(),
			ordersCommand(),
			adminCommand(),
		),
	}
}

// session состояние одного запуска: конфиг, клиент и компоненты витрины
type session struct {
	cfg    config.Config
	log    *slog.Logger
	client *apiclient.Client
	out    io.Writer
	notify storefront.Notifier
	gate   *storefront.AuthGate
}

func open(c *cli.Context) (*session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("api-url"); v != "" {
		cfg.APIBaseURL = v
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	client, err := apiclient.New(cfg.APIBaseURL, apiclient.WithLogger(log), apiclient.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}
	if f, err := os.Open(cfg.SessionFile); err == nil {
		err = client.LoadSession(f)
		f.Close()
		if err != nil {
			log.Warn("ignoring unreadable session file", "path", cfg.SessionFile, "err", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open session file: %w", err)
	}

	notify := storefront.NotifierFunc(func(msg string) { fmt.Fprintln(c.App.ErrWriter, msg) })
	return &session{
		cfg:    cfg,
		log:    log,
		client: client,
		out:    c.App.Writer,
		notify: notify,
		gate:   storefront.NewAuthGate(client, log, notify),
	}, nil
}

// save переписывает файл сессии текущими cookie
func (s *session) save() error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.SessionFile), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(s.cfg.SessionFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	defer f.Close()
	return s.client.SaveSession(f)
}

// enter пропускает через AuthGate; отказ превращается в ошибку с маршрутом перенаправления
func (s *session) enter(c *cli.Context, route string) error {
	v, err := s.gate.Enter(c.Context, route)
	if err != nil {
		return fmt.Errorf("%w (go to %s)", err, v.Redirect)
	}
	if !v.Allowed {
		return fmt.Errorf("access to %s denied, redirected to %s", route, v.Redirect)
	}
	return nil
}

// action открывает сессию, выполняет fn и сохраняет cookie
func action(fn func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := open(c)
		if err != nil {
			return err
		}
		if err := fn(c, s); err != nil {
			return err
		}
		return s.save()
	}
}
