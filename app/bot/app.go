// Package bot wires the codegate services into the Telegram runtime.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/codegate/app/binder"
	"github.com/m3rciful/codegate/app/events"
	"github.com/m3rciful/codegate/app/gate"
	"github.com/m3rciful/codegate/app/membership"
	"github.com/m3rciful/codegate/app/registry"
	corebootstrap "github.com/m3rciful/codegate/core/bootstrap"
	"github.com/m3rciful/codegate/core/logger"
	coretelegram "github.com/m3rciful/codegate/core/telegram"
	"github.com/m3rciful/codegate/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// App holds everything the serve command runs.
type App struct {
	cfg      *Config
	infra    *corebootstrap.Result
	bot      *tele.Bot
	events   events.Publisher
	registry *registry.Store
	binder   *binder.Binder
	handlers *Handlers
}

// Bootstrap connects storage, the session store, the Bot API and the event bus.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}
	logger.AddSecrets(cfg.Telegram.Token, cfg.Database.Password)

	infra, err := corebootstrap.Run(ctx, corebootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: registry.Migrations(),
	})
	if err != nil {
		return nil, err
	}

	tb, err := coretelegram.NewBot(&cfg.Config)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	pub, err := events.Open(cfg.Events.NATSURL)
	if err != nil {
		_ = infra.Close()
		return nil, fmt.Errorf("bot: events: %w", err)
	}

	app := assemble(cfg, infra, tb, pub)
	logger.Info(ctx, "app", "bootstrap",
		slog.String("status", "ok"),
		slog.String("channel", cfg.Gate.Channel),
		slog.String("driver", cfg.Database.Driver),
		slog.String("session_backend", cfg.Session.Backend),
		slog.Bool("events", cfg.Events.NATSURL != ""),
		slog.Int("admins", len(cfg.Telegram.AdminIDs)),
	)
	return app, nil
}

func assemble(cfg *Config, infra *corebootstrap.Result, tb *tele.Bot, pub events.Publisher) *App {
	store := registry.New(infra.DB)
	oracle := membership.New(tb, cfg.Gate.Channel, cfg.Gate.InviteURL)
	g := gate.New(store, oracle, infra.State, pub)
	b := binder.New(binder.NewAllowList(cfg.Telegram.AdminIDs), store, infra.State, pub)
	return &App{
		cfg:      cfg,
		infra:    infra,
		bot:      tb,
		events:   pub,
		registry: store,
		binder:   b,
		handlers: NewHandlers(g, b, store, oracle.JoinURL()),
	}
}

// TelegramRunOptions registers handlers and returns the runtime options.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{IsAdmin: a.binder.IsAdmin})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.MessageRoutes(reg)...)

	return coretelegram.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          reg,
		Bot:               a.bot,
		DispatcherOptions: coretelegram.DispatcherOptions(a.cfg.Sender),
		Middlewares:       coretelegram.DefaultMiddlewares(&a.cfg.Config, a.handlers.Limited),
		Routes:            routes,
	}, nil
}

// Close releases the event bus, the session store and the database.
func (a *App) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	if a.infra != nil {
		errs = append(errs, a.infra.Close())
	}
	return errors.Join(errs...)
}
