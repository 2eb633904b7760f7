package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/racesync/internal/api"
	"github.com/mcoot/racesync/internal/dependencies/clock"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/mirror"
	"github.com/mcoot/racesync/internal/services/modbridge"
	"github.com/mcoot/racesync/internal/session"
	"github.com/mcoot/racesync/internal/storage"
	"github.com/mcoot/racesync/internal/storage/memory"
	redisstorage "github.com/mcoot/racesync/internal/storage/redis"
	"github.com/mcoot/racesync/internal/transport/modsocket"
	"github.com/mcoot/racesync/internal/transport/ws"
	"github.com/mcoot/racesync/internal/view"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Components
	Session   *session.Session
	Mirror    *mirror.Mirror
	Transport *ws.Client        // nil when offline
	ModSocket *modsocket.Server // nil when disabled
	Status    *api.Server       // nil when disabled

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the snapshot backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	// ServerURL is the websocket endpoint. If empty the session runs offline
	// and outbound commands are dropped.
	ServerURL string
	// Cookie is sent with the websocket handshake to authenticate
	Cookie string
	// ModAddr is where the mod socket listens. Empty disables it.
	ModAddr string
	// StatusAddr is where the status API listens. Empty disables it.
	StatusAddr string

	DevMode bool
	// Renderer draws the session (optional)
	Renderer view.Renderer
	// OnRestart runs when the user asks for a restart (optional)
	OnRestart func()
	// Mod overrides the mod channel, for running without a socket (optional)
	Mod modbridge.Channel
}

// dependencies are the parts New builds from Config and tests replace
type dependencies struct {
	store     storage.Storage
	clock     clock.Clock
	scheduler clock.Scheduler
	sender    session.Sender
	mod       modbridge.Channel
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	deps := dependencies{
		store: store,
		clock: clock.New(),
	}

	var transport *ws.Client
	if cfg.ServerURL != "" {
		header := http.Header{}
		if cfg.Cookie != "" {
			header.Set("Cookie", cfg.Cookie)
		}
		transport = ws.New(cfg.ServerURL, header, logger)
		deps.sender = transport
	} else {
		deps.sender = offlineSender{logger: logger}
	}

	var mods *modsocket.Server
	switch {
	case cfg.Mod != nil:
		deps.mod = cfg.Mod
	case cfg.ModAddr != "":
		mods = modsocket.NewServer(cfg.ModAddr, logger)
		deps.mod = mods
	}

	app := newWithDependencies(cfg, deps, logger)
	app.Transport = transport

	if mods != nil {
		mods.OnConnect(app.Session.ModConnected)
		mods.OnLine(app.Session.ModLine)
		app.ModSocket = mods
	}

	if cfg.StatusAddr != "" {
		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.StatusAddr
		router := api.NewRouter(api.RouterConfig{
			Logger:    logger,
			Storage:   store,
			SessionID: app.Session.ID,
		})
		app.Status = api.NewServer(router, serverCfg, logger)
	}

	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg Config, deps dependencies, logger *slog.Logger) *App {
	m := mirror.New(deps.store, logger)

	sess := session.New(session.Options{
		DevMode:   cfg.DevMode,
		Sender:    deps.sender,
		Renderer:  cfg.Renderer,
		Mod:       deps.mod,
		Publisher: m,
		Clock:     deps.clock,
		Scheduler: deps.scheduler,
		OnRestart: cfg.OnRestart,
		Logger:    logger,
	})

	return &App{
		Storage: deps.store,
		Clock:   deps.clock,
		Session: sess,
		Mirror:  m,
		logger:  logger.With(slog.String("component", "app")),
	}
}

// Run starts every component and blocks until ctx is cancelled or the server
// connection ends. The session's snapshot is removed from storage on return.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.ModSocket != nil {
		if err := a.ModSocket.Listen(); err != nil {
			return err
		}
	}
	if a.Status != nil {
		if err := a.Status.Listen(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Session.Run(gctx) })
	g.Go(func() error {
		a.Mirror.Run(gctx)
		return nil
	})

	if a.ModSocket != nil {
		g.Go(func() error { return a.ModSocket.Serve(gctx) })
	}

	if a.Status != nil {
		g.Go(a.Status.Start)
		g.Go(func() error {
			<-gctx.Done()
			return a.Status.Shutdown(context.Background())
		})
	}

	if a.Transport != nil {
		g.Go(func() error {
			defer cancel()
			err := a.Transport.Run(gctx, a.Session.HandleEvent)
			// Let the session apply whatever the transport queued last
			if flushErr := a.Session.Do(gctx, func() {}); flushErr != nil {
				a.logger.Debug("session flush skipped", slog.Any("error", flushErr))
			}
			return err
		})
	}

	err := g.Wait()
	a.Mirror.Remove(context.Background(), a.Session.ID())
	return err
}

// Close releases the storage connection, if it holds one
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// offlineSender stands in for the server connection when there is none
type offlineSender struct {
	logger *slog.Logger
}

func (o offlineSender) Send(cmd model.Command) error {
	o.logger.Debug("offline, command dropped", slog.String("command", cmd.CommandName()))
	return nil
}

func (o offlineSender) Close() error {
	return nil
}
