package core

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/truphotos-go/internal/config"
	"github.com/vrsandeep/truphotos-go/internal/credstore"
	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
	"github.com/vrsandeep/truphotos-go/internal/session"
	"github.com/vrsandeep/truphotos-go/internal/websocket"
)

// App holds the core components shared between the serve daemon and the
// one-shot CLI commands.
type App struct {
	Config   *config.Config
	Store    credstore.Store
	Client   *jellyfin.Client
	Sessions *session.Manager
	Hub      *websocket.Hub
	Log      zerolog.Logger

	closer func() error
}

// New sets up and returns a new App instance: configuration, credential
// store, device identity, remote client and session manager.
func New() (*App, error) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := credstore.OpenSQLite(cfg.Credstore.Path, cfg.Credstore.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	deviceID, err := credstore.ClientID(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to establish device identity: %w", err)
	}

	client := jellyfin.New(deviceID, cfg.RequestTimeout())
	manager := session.NewManager(store, client, log)
	hub := websocket.NewHub()
	go hub.Run()

	return &App{
		Config:   cfg,
		Store:    store,
		Client:   client,
		Sessions: manager,
		Hub:      hub,
		Log:      log,
		closer:   store.Close,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() {
	if a.closer != nil {
		a.closer()
	}
}
