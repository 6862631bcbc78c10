package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/truphotos-go/internal/credstore"
	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
	"github.com/vrsandeep/truphotos-go/internal/models"
)

// CatalogClient is the slice of the remote client the manager needs.
// *jellyfin.Client satisfies it.
type CatalogClient interface {
	Authenticate(ctx context.Context, address, username, password string) (*jellyfin.AuthResult, error)
	ListLibraries(ctx context.Context, server models.Server, userID, token string) ([]models.Library, error)
}

// Manager drives the session state machine. All operations serialize on one
// mutex held across their I/O, so a failed operation is always a no-op on
// state and two racing callers never interleave.
type Manager struct {
	mu     sync.Mutex
	store  credstore.Store
	client CatalogClient
	log    zerolog.Logger

	state State
	sess  Session

	subMu sync.Mutex
	subs  []func(Snapshot)
}

// NewManager creates a manager in the Restoring state. Call Restore to load
// any persisted session.
func NewManager(store credstore.Store, client CatalogClient, log zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		client: client,
		log:    log.With().Str("component", "session").Logger(),
		state:  StateRestoring,
		sess:   Session{SelectedTab: models.TabTimeline},
	}
}

// Subscribe registers fn to be called with a snapshot after every state
// change. Callbacks run outside the manager's lock, synchronously on the
// mutating goroutine, so snapshots arrive in operation order.
func (m *Manager) Subscribe(fn func(Snapshot)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subs = append(m.subs, fn)
}

// Snapshot returns a read-only copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// State returns the current machine state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) snapshotLocked() Snapshot {
	sess := m.sess
	sess.KnownServers = append([]models.Server(nil), m.sess.KnownServers...)
	sess.Libraries = append([]models.Library(nil), m.sess.Libraries...)
	return Snapshot{State: m.state, Session: sess}
}

func (m *Manager) notify(snap Snapshot) {
	m.subMu.Lock()
	subs := append(([]func(Snapshot))(nil), m.subs...)
	m.subMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// applyLocked installs sess, re-derives the machine state, and returns the
// snapshot to broadcast after the lock is released.
func (m *Manager) applyLocked(sess Session) Snapshot {
	m.sess = sess
	m.state = deriveState(sess)
	return m.snapshotLocked()
}

// Restore loads the persisted session. It is valid only if token, user and
// server are all present and well-formed; anything less falls back to a
// clean unauthenticated session. Restore never fails: corrupt persisted
// state is logged and discarded.
func (m *Manager) Restore(ctx context.Context) State {
	m.mu.Lock()

	sess, err := m.readPersisted()
	if err != nil {
		m.log.Warn().Err(err).Msg("Discarding persisted session")
		sess = Session{SelectedTab: models.TabTimeline}
	}

	// Best-effort library fetch so a restored Ready session has its library
	// list without an extra round trip from the UI. Failure is tolerated:
	// stale-but-valid beats empty.
	if sess.SelectedServer != nil && sess.User != nil && sess.AuthToken != "" {
		libs, lerr := m.client.ListLibraries(ctx, *sess.SelectedServer, sess.User.ID, sess.AuthToken)
		if lerr != nil {
			m.log.Warn().Err(lerr).Msg("Failed to fetch libraries during restore")
		} else {
			sess.Libraries = libs
		}
	}

	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	m.log.Info().Stringer("state", snap.State).Msg("Session restored")
	return snap.State
}

// readPersisted assembles a session from the credential store. The returned
// error is a ValidationError or a read failure; either way the caller
// treats it as "nothing persisted".
func (m *Manager) readPersisted() (Session, error) {
	sess := Session{SelectedTab: models.TabTimeline}

	token, err := m.store.Get(credstore.KeyAuthToken)
	if err != nil {
		return sess, err
	}
	userJSON, err := m.store.Get(credstore.KeyUser)
	if err != nil {
		return sess, err
	}
	serverJSON, err := m.store.Get(credstore.KeySelectedServer)
	if err != nil {
		return sess, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == "" {
		return sess, &ValidationError{Key: credstore.KeyUser, Err: errOrMissing(err, "empty user id")}
	}
	var server models.Server
	if err := json.Unmarshal([]byte(serverJSON), &server); err != nil || server.Address == "" {
		return sess, &ValidationError{Key: credstore.KeySelectedServer, Err: errOrMissing(err, "empty server address")}
	}
	if token == "" {
		return sess, &ValidationError{Key: credstore.KeyAuthToken, Err: errors.New("empty token")}
	}

	sess.AuthToken = token
	sess.User = &user
	sess.SelectedServer = &server
	sess.KnownServers = []models.Server{server}

	// Library and tab are optional; a malformed value is dropped without
	// invalidating the rest of the session.
	if libJSON, err := m.store.Get(credstore.KeySelectedLibrary); err == nil {
		var lib models.Library
		if err := json.Unmarshal([]byte(libJSON), &lib); err == nil && lib.ID != "" {
			sess.SelectedLibrary = &lib
		} else {
			m.log.Warn().Msg("Ignoring malformed persisted library selection")
		}
	}
	if tab, err := m.store.Get(credstore.KeySelectedTab); err == nil && models.ValidTab(tab) {
		sess.SelectedTab = models.Tab(tab)
	}

	return sess, nil
}

func errOrMissing(err error, fallback string) error {
	if err != nil {
		return err
	}
	return errors.New(fallback)
}

// Login authenticates against the server at address and persists the
// resulting token, user and server. The three writes run concurrently; if
// any fails the persisted keys are rolled back and the session does not
// report itself authenticated.
func (m *Manager) Login(ctx context.Context, address, username, password string) error {
	m.mu.Lock()

	res, err := m.client.Authenticate(ctx, address, username, password)
	if err != nil {
		m.mu.Unlock()
		m.log.Warn().Err(err).Str("address", address).Msg("Login failed")
		return err
	}

	serverName := res.ServerName
	if serverName == "" {
		serverName = "Jellyfin Server"
	}
	server := models.Server{
		Name:        serverName,
		Address:     address,
		ID:          res.ServerID,
		AccessToken: res.AccessToken,
	}

	userJSON, _ := json.Marshal(res.User)
	serverJSON, _ := json.Marshal(server)
	if err := m.persistAll(map[string]string{
		credstore.KeyAuthToken:      res.AccessToken,
		credstore.KeyUser:           string(userJSON),
		credstore.KeySelectedServer: string(serverJSON),
	}); err != nil {
		// Partial persistence must not leave a session that restores as
		// half-authenticated.
		for _, key := range []string{credstore.KeyAuthToken, credstore.KeyUser, credstore.KeySelectedServer} {
			if rerr := m.store.Remove(key); rerr != nil {
				m.log.Warn().Err(rerr).Str("key", key).Msg("Rollback of persisted key failed")
			}
		}
		m.mu.Unlock()
		return fmt.Errorf("persisting session: %w", err)
	}

	sess := m.sess
	sess.AuthToken = res.AccessToken
	user := res.User
	sess.User = &user
	sess.SelectedServer = &server
	sess.SelectedLibrary = nil
	sess.Libraries = nil
	sess.KnownServers = addServer(sess.KnownServers, server)

	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	m.log.Info().Str("user", user.Name).Str("server", serverName).Msg("Logged in")
	return nil
}

// persistAll writes all key/value pairs concurrently and joins any
// failures into one aggregate error.
func (m *Manager) persistAll(kv map[string]string) error {
	var wg sync.WaitGroup
	errs := make([]error, 0, len(kv))
	var errMu sync.Mutex
	for key, value := range kv {
		wg.Add(1)
		go func(key, value string) {
			defer wg.Done()
			if err := m.store.Set(key, value); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(key, value)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// SelectServer switches the session to server. The library list for the
// candidate server is fetched first and must succeed before anything is
// persisted or applied; committing to an unreachable server is not allowed.
// Any previously selected library is cleared.
func (m *Manager) SelectServer(ctx context.Context, server models.Server) error {
	m.mu.Lock()

	if m.sess.AuthToken == "" || m.sess.User == nil {
		m.mu.Unlock()
		return errors.New("not authenticated")
	}

	libs, err := m.client.ListLibraries(ctx, server, m.sess.User.ID, m.sess.AuthToken)
	if err != nil {
		m.mu.Unlock()
		m.log.Warn().Err(err).Str("server", server.Address).Msg("Server selection failed")
		return err
	}

	serverJSON, _ := json.Marshal(server)
	if err := m.store.Set(credstore.KeySelectedServer, string(serverJSON)); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.store.Remove(credstore.KeySelectedLibrary); err != nil {
		// The stale persisted library belongs to the old server. Dropping it
		// in memory is still correct; the persisted copy gets overwritten by
		// the next SelectLibrary.
		m.log.Warn().Err(err).Msg("Failed to clear persisted library selection")
	}

	sess := m.sess
	sess.SelectedServer = &server
	sess.SelectedLibrary = nil
	sess.Libraries = libs
	sess.KnownServers = addServer(sess.KnownServers, server)

	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

// SelectLibrary persists and applies the library selection. No network
// validation: the library's identity came from the enclosing server's
// library list.
func (m *Manager) SelectLibrary(library models.Library) error {
	m.mu.Lock()

	if m.sess.SelectedServer == nil {
		m.mu.Unlock()
		return errors.New("no server selected")
	}

	libJSON, _ := json.Marshal(library)
	if err := m.store.Set(credstore.KeySelectedLibrary, string(libJSON)); err != nil {
		m.mu.Unlock()
		return err
	}

	sess := m.sess
	sess.SelectedLibrary = &library
	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

// ClearLibrary drops the library selection.
func (m *Manager) ClearLibrary() error {
	m.mu.Lock()

	if err := m.store.Remove(credstore.KeySelectedLibrary); err != nil {
		m.mu.Unlock()
		return err
	}
	sess := m.sess
	sess.SelectedLibrary = nil
	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

// ClearServer drops the server selection and, with it, the library.
func (m *Manager) ClearServer() error {
	m.mu.Lock()

	if err := m.store.Remove(credstore.KeySelectedServer); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.store.Remove(credstore.KeySelectedLibrary); err != nil {
		m.mu.Unlock()
		return err
	}
	sess := m.sess
	sess.SelectedServer = nil
	sess.SelectedLibrary = nil
	sess.Libraries = nil
	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

// Logout clears the persisted keys and resets the session. Persistence
// failures are logged and swallowed: logging out fails open to a clean
// unauthenticated state, never closed to a half-authenticated one.
func (m *Manager) Logout() {
	m.mu.Lock()

	keys := []string{
		credstore.KeyAuthToken,
		credstore.KeyUser,
		credstore.KeySelectedServer,
		credstore.KeySelectedLibrary,
	}
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := m.store.Remove(key); err != nil {
				m.log.Warn().Err(err).Str("key", key).Msg("Failed to clear persisted key during logout")
			}
		}(key)
	}
	wg.Wait()

	snap := m.applyLocked(Session{SelectedTab: models.TabTimeline})
	m.mu.Unlock()
	m.notify(snap)
	m.log.Info().Msg("Logged out")
}

// RefreshLibraries re-fetches the library list for the current server. On
// failure the existing list and selection stay untouched.
func (m *Manager) RefreshLibraries(ctx context.Context) error {
	m.mu.Lock()

	if m.sess.SelectedServer == nil || m.sess.User == nil || m.sess.AuthToken == "" {
		m.mu.Unlock()
		return nil
	}
	libs, err := m.client.ListLibraries(ctx, *m.sess.SelectedServer, m.sess.User.ID, m.sess.AuthToken)
	if err != nil {
		m.mu.Unlock()
		m.log.Warn().Err(err).Msg("Library refresh failed; keeping existing list")
		return err
	}
	sess := m.sess
	sess.Libraries = libs
	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

// SetTab persists and applies the top-level tab selection.
func (m *Manager) SetTab(tab models.Tab) error {
	m.mu.Lock()

	if err := m.store.Set(credstore.KeySelectedTab, string(tab)); err != nil {
		m.mu.Unlock()
		return err
	}
	sess := m.sess
	sess.SelectedTab = tab
	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
	return nil
}

// AddServer records a server in the known-servers set without selecting it.
// The set is in-memory only; the persisted server key always holds the
// selected one. Subscribers are notified like any other mutation.
func (m *Manager) AddServer(server models.Server) {
	m.mu.Lock()
	sess := m.sess
	sess.KnownServers = addServer(append([]models.Server(nil), m.sess.KnownServers...), server)
	snap := m.applyLocked(sess)
	m.mu.Unlock()
	m.notify(snap)
}

// addServer appends server if no entry shares its address. The address is
// the server's identity key.
func addServer(servers []models.Server, server models.Server) []models.Server {
	for i, s := range servers {
		if s.Address == server.Address {
			servers[i] = server
			return servers
		}
	}
	return append(servers, server)
}
