// The local presentation surface. A UI talks to the core exclusively
// through these endpoints and the websocket event stream; it never mutates
// session or catalog state directly.
package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vrsandeep/truphotos-go/internal/catalog"
	"github.com/vrsandeep/truphotos-go/internal/config"
	"github.com/vrsandeep/truphotos-go/internal/core"
	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
	"github.com/vrsandeep/truphotos-go/internal/session"
	"github.com/vrsandeep/truphotos-go/internal/websocket"
)

// Server wires the session manager and catalog engine to the router.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	client   *jellyfin.Client
	hub      *websocket.Hub
	log      zerolog.Logger
	router   chi.Router

	engineMu  sync.Mutex
	engine    *catalog.Engine
	engineKey string
}

// NewServer creates the API server and subscribes it to session changes.
func NewServer(app *core.App) *Server {
	s := &Server{
		cfg:      app.Config,
		sessions: app.Sessions,
		client:   app.Client,
		hub:      app.Hub,
		log:      app.Log.With().Str("component", "api").Logger(),
	}
	s.setupRouter()

	s.sessions.Subscribe(func(snap session.Snapshot) {
		s.syncEngine(snap)
		s.hub.Broadcast(websocket.Event{Type: websocket.EventSessionChanged, Payload: snap})
	})

	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) setupRouter() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Post("/server", s.handleSelectServer)
			r.Delete("/server", s.handleClearServer)
			r.Post("/servers", s.handleAddServer)
			r.Post("/library", s.handleSelectLibrary)
			r.Delete("/library", s.handleClearLibrary)
			r.Get("/libraries", s.handleGetLibraries)
			r.Post("/libraries/refresh", s.handleRefreshLibraries)
			r.Post("/tab", s.handleSetTab)
		})
		r.Route("/photos", func(r chi.Router) {
			r.Get("/", s.handleGetCatalog)
			r.Post("/refresh", s.handleRefreshCatalog)
			r.Post("/more", s.handleLoadMore)
			r.Post("/{photoID}/favorite", s.handleSetFavorite)
		})
		r.Get("/timeline", s.handleGetTimeline)
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.hub, w, r)
	})

	s.router = r
}

// syncEngine keeps exactly one engine alive for the current Ready scope,
// rebuilding it whenever the token, server or library changes and dropping
// it when the session leaves Ready.
func (s *Server) syncEngine(snap session.Snapshot) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if snap.State != session.StateReady {
		s.engine = nil
		s.engineKey = ""
		return
	}

	sess := snap.Session
	key := sess.SelectedServer.Address + "|" + sess.SelectedLibrary.ID + "|" + sess.AuthToken
	if s.engine != nil && s.engineKey == key {
		return
	}

	engine := catalog.NewEngine(s.client, catalog.Scope{
		Server:    *sess.SelectedServer,
		UserID:    sess.User.ID,
		Token:     sess.AuthToken,
		LibraryID: sess.SelectedLibrary.ID,
	}, s.cfg.Catalog.PageSize, s.log)
	engine.OnChange(func(state catalog.State) {
		s.hub.Broadcast(websocket.Event{Type: websocket.EventCatalogChanged, Payload: catalogSummary(state)})
	})
	s.engine = engine
	s.engineKey = key
}

// UpdateConfig installs a freshly reloaded configuration. The cached engine
// is dropped so the next access rebuilds it with the new page size.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	s.cfg = cfg
	s.engine = nil
	s.engineKey = ""
}

// Engine returns the catalog engine for the current selection, or nil when
// the session is not Ready. It re-derives from a fresh snapshot so callers
// never observe an engine for a stale selection.
func (s *Server) Engine() *catalog.Engine {
	s.syncEngine(s.sessions.Snapshot())
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	return s.engine
}

// catalogSummary is what goes over the wire on catalog_changed: counts, not
// the full item list, which clients fetch via GET /api/photos.
func catalogSummary(state catalog.State) map[string]interface{} {
	return map[string]interface{}{
		"item_count":  len(state.Items),
		"total_count": state.TotalCount,
		"has_more":    state.HasMore,
	}
}
