// Package catalog accumulates a library's photo catalog page by page. One
// engine instance serves one (server, user, library) scope with a fixed
// page size; changing the selection means building a new engine.
package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
	"github.com/vrsandeep/truphotos-go/internal/models"
)

// DefaultPageSize matches the page size the server sort was tuned for.
const DefaultPageSize = 1000

// PhotoLister is the slice of the remote client the engine needs.
// *jellyfin.Client satisfies it.
type PhotoLister interface {
	ListPhotos(ctx context.Context, server models.Server, userID, token, libraryID string, offset, limit int) (*jellyfin.Page, error)
}

// Scope pins an engine to one catalog.
type Scope struct {
	Server    models.Server
	UserID    string
	Token     string
	LibraryID string
}

// State is a read-only view of the accumulation. HasMore is always exactly
// len(Items) < TotalCount after a successful load.
type State struct {
	Items         []models.Photo `json:"items"`
	TotalCount    int            `json:"total_count"`
	HasMore       bool           `json:"has_more"`
	IsLoadingMore bool           `json:"is_loading_more"`
}

// Engine performs paginated retrieval with at most one in-flight page fetch.
type Engine struct {
	client   PhotoLister
	scope    Scope
	pageSize int
	log      zerolog.Logger
	onChange func(State)

	mu          sync.Mutex
	items       []models.Photo
	totalCount  int
	loadingMore bool
}

// NewEngine creates an engine for scope. pageSize <= 0 selects the default.
func NewEngine(client PhotoLister, scope Scope, pageSize int, log zerolog.Logger) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{
		client:   client,
		scope:    scope,
		pageSize: pageSize,
		log:      log.With().Str("component", "catalog").Str("library", scope.LibraryID).Logger(),
	}
}

// OnChange registers a single callback invoked with a state copy after
// every successful merge. It must be set before the first load.
func (e *Engine) OnChange(fn func(State)) { e.onChange = fn }

// State returns a copy of the current accumulation.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	return State{
		Items:         append([]models.Photo(nil), e.items...),
		TotalCount:    e.totalCount,
		HasMore:       len(e.items) < e.totalCount,
		IsLoadingMore: e.loadingMore,
	}
}

// LoadInitial fetches the page at offset 0 and replaces the entire
// accumulation. This is the authoritative refresh path: it tolerates
// upstream insertions and deletions by discarding what came before. On
// failure the accumulation is left empty.
func (e *Engine) LoadInitial(ctx context.Context) error {
	page, err := e.client.ListPhotos(ctx, e.scope.Server, e.scope.UserID, e.scope.Token, e.scope.LibraryID, 0, e.pageSize)

	e.mu.Lock()
	if err != nil {
		e.items = nil
		e.totalCount = 0
		e.mu.Unlock()
		e.log.Warn().Err(err).Msg("Initial catalog load failed")
		return err
	}
	e.items = page.Items
	e.totalCount = page.TotalCount
	state := e.stateLocked()
	e.mu.Unlock()

	e.log.Info().Int("items", len(state.Items)).Int("total", state.TotalCount).Msg("Initial catalog page loaded")
	e.emit(state)
	return nil
}

// LoadMore appends the next page. It is a no-op when nothing remains or a
// load is already in flight: the loading flag is a mutual-exclusion gate,
// not a queue, so a second call while one is running is dropped. Pages are
// appended in the order received; the server's sort order is authoritative
// and no client-side dedup masks upstream mutation between fetches.
func (e *Engine) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if e.loadingMore || len(e.items) >= e.totalCount {
		e.mu.Unlock()
		return nil
	}
	e.loadingMore = true
	offset := len(e.items)
	e.mu.Unlock()

	page, err := e.client.ListPhotos(ctx, e.scope.Server, e.scope.UserID, e.scope.Token, e.scope.LibraryID, offset, e.pageSize)

	e.mu.Lock()
	e.loadingMore = false
	if err != nil {
		// Items and the derived HasMore stay as they were so the caller can
		// simply retry.
		e.mu.Unlock()
		e.log.Warn().Err(err).Int("offset", offset).Msg("Page fetch failed")
		return err
	}
	e.items = append(e.items, page.Items...)
	e.totalCount = page.TotalCount
	state := e.stateLocked()
	e.mu.Unlock()

	e.log.Debug().Int("offset", offset).Int("items", len(state.Items)).Msg("Catalog page appended")
	e.emit(state)
	return nil
}

// SyncAll drains the catalog: one initial load followed by LoadMore until
// the accumulation covers the total count. Used by the one-shot CLI sync.
func (e *Engine) SyncAll(ctx context.Context) error {
	if err := e.LoadInitial(ctx); err != nil {
		return err
	}
	for e.State().HasMore {
		if err := e.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) emit(state State) {
	if e.onChange != nil {
		e.onChange(state)
	}
}
