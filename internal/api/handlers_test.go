package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/truphotos-go/internal/config"
	"github.com/vrsandeep/truphotos-go/internal/core"
	"github.com/vrsandeep/truphotos-go/internal/credstore"
	"github.com/vrsandeep/truphotos-go/internal/jellyfin"
	"github.com/vrsandeep/truphotos-go/internal/session"
	"github.com/vrsandeep/truphotos-go/internal/testutil"
	"github.com/vrsandeep/truphotos-go/internal/websocket"
)

func newTestServer(t *testing.T) (*Server, *testutil.FakeJellyfin, *credstore.Memory) {
	t.Helper()

	fake := testutil.NewFakeJellyfin()
	t.Cleanup(fake.Close)

	cfg := &config.Config{Port: 0}
	cfg.Catalog.PageSize = 3
	cfg.Server.RequestTimeout = 5

	store := credstore.NewMemory()
	client := jellyfin.New("test-device", cfg.RequestTimeout())
	hub := websocket.NewHub()
	go hub.Run()

	app := &core.App{
		Config:   cfg,
		Store:    store,
		Client:   client,
		Sessions: session.NewManager(store, client, zerolog.Nop()),
		Hub:      hub,
		Log:      zerolog.Nop(),
	}
	return NewServer(app), fake, store
}

func doJSON(t *testing.T, s *Server, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, s *Server, fake *testutil.FakeJellyfin) {
	t.Helper()
	rr := doJSON(t, s, "POST", "/api/session/login", map[string]string{
		"address":  fake.URL(),
		"username": "alice",
		"password": "secret",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Login failed: status %d, body %s", rr.Code, rr.Body.String())
	}
}

func selectLibrary(t *testing.T, s *Server, id string) {
	t.Helper()
	rr := doJSON(t, s, "POST", "/api/session/library", map[string]string{"id": id, "name": "Photos"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Select library failed: status %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestLoginEndpoint(t *testing.T) {
	s, fake, store := newTestServer(t)

	login(t, s, fake)

	rr := doJSON(t, s, "GET", "/api/session", nil)
	var snap session.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Bad session payload: %v", err)
	}
	if snap.Session.User == nil || snap.Session.User.Name != "alice" {
		t.Errorf("Expected logged-in user in snapshot: %+v", snap.Session.User)
	}
	if snap.Session.SelectedServer == nil {
		t.Error("Expected the authenticated server to be selected")
	}

	// The full credential triple must be persisted.
	for _, key := range []string{credstore.KeyAuthToken, credstore.KeyUser, credstore.KeySelectedServer} {
		if _, err := store.Get(key); err != nil {
			t.Errorf("Expected %s to be persisted: %v", key, err)
		}
	}
}

func TestLoginEndpointRejected(t *testing.T) {
	s, fake, _ := newTestServer(t)
	fake.RejectAuth = true

	rr := doJSON(t, s, "POST", "/api/session/login", map[string]string{
		"address":  fake.URL(),
		"username": "alice",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for rejected credentials, got %d", rr.Code)
	}
}

func TestLoginEndpointValidation(t *testing.T) {
	s, _, _ := newTestServer(t)
	rr := doJSON(t, s, "POST", "/api/session/login", map[string]string{"username": "alice"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without a server address, got %d", rr.Code)
	}
}

func TestLibraryAndCatalogFlow(t *testing.T) {
	s, fake, _ := newTestServer(t)
	fake.TotalPhotos = 7
	login(t, s, fake)

	rr := doJSON(t, s, "POST", "/api/session/libraries/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Refresh libraries failed: %d", rr.Code)
	}

	selectLibrary(t, s, "lib-photos")

	// Photos are unavailable until an initial load happened.
	rr = doJSON(t, s, "POST", "/api/photos/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Catalog refresh failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, s, "GET", "/api/photos", nil)
	var state struct {
		Items      []json.RawMessage `json:"items"`
		TotalCount int               `json:"total_count"`
		HasMore    bool              `json:"has_more"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if len(state.Items) != 3 || state.TotalCount != 7 || !state.HasMore {
		t.Fatalf("Unexpected catalog state: items=%d total=%d hasMore=%v", len(state.Items), state.TotalCount, state.HasMore)
	}

	rr = doJSON(t, s, "POST", "/api/photos/more", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Load more failed: %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if len(state.Items) != 6 || !state.HasMore {
		t.Fatalf("Expected 6 items after one more page, got %d (hasMore=%v)", len(state.Items), state.HasMore)
	}
}

func TestCatalogRequiresSelection(t *testing.T) {
	s, fake, _ := newTestServer(t)
	login(t, s, fake)

	rr := doJSON(t, s, "GET", "/api/photos", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409 without a selected library, got %d", rr.Code)
	}
}

func TestTimelineEndpoint(t *testing.T) {
	s, fake, _ := newTestServer(t)
	fake.TotalPhotos = 2
	login(t, s, fake)
	doJSON(t, s, "POST", "/api/session/libraries/refresh", nil)
	selectLibrary(t, s, "lib-photos")
	doJSON(t, s, "POST", "/api/photos/refresh", nil)

	rr := doJSON(t, s, "GET", "/api/timeline", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Timeline failed: %d", rr.Code)
	}
	var buckets []struct {
		Label string            `json:"label"`
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &buckets); err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, b := range buckets {
		if b.Label == "" {
			t.Error("Bucket without a label")
		}
		total += len(b.Items)
	}
	if total != 2 {
		t.Errorf("Expected 2 photos across buckets, got %d", total)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	s, fake, store := newTestServer(t)
	login(t, s, fake)

	rr := doJSON(t, s, "POST", "/api/session/logout", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Logout failed: %d", rr.Code)
	}
	if _, err := store.Get(credstore.KeyAuthToken); err != credstore.ErrNotFound {
		t.Errorf("Token must be cleared on logout, got %v", err)
	}

	rr = doJSON(t, s, "GET", "/api/session", nil)
	var snap session.Snapshot
	json.Unmarshal(rr.Body.Bytes(), &snap)
	if snap.Session.User != nil || snap.Session.AuthToken != "" {
		t.Errorf("Session must be empty after logout: %+v", snap.Session)
	}

	rr = doJSON(t, s, "GET", "/api/photos", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("Catalog must be unavailable after logout, got %d", rr.Code)
	}
}

func TestSetTabEndpoint(t *testing.T) {
	s, fake, _ := newTestServer(t)
	login(t, s, fake)

	rr := doJSON(t, s, "POST", "/api/session/tab", map[string]string{"tab": "Library"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Set tab failed: %d", rr.Code)
	}
	rr = doJSON(t, s, "POST", "/api/session/tab", map[string]string{"tab": "Bogus"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown tab, got %d", rr.Code)
	}
}

func TestAddServerEndpoint(t *testing.T) {
	s, fake, _ := newTestServer(t)
	login(t, s, fake)

	rr := doJSON(t, s, "POST", "/api/session/servers", map[string]string{
		"name":    "Backup",
		"address": "https://backup.example",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Add server failed: %d %s", rr.Code, rr.Body.String())
	}
	var snap session.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Session.KnownServers) != 2 {
		t.Errorf("Expected two known servers, got %+v", snap.Session.KnownServers)
	}
	if snap.Session.SelectedServer == nil || snap.Session.SelectedServer.Address == "https://backup.example" {
		t.Error("Adding a server must not change the selection")
	}

	rr = doJSON(t, s, "POST", "/api/session/servers", map[string]string{"name": "No Address"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without an address, got %d", rr.Code)
	}
}

// A config reload drops the cached engine so the next access picks up the
// new page size.
func TestUpdateConfigRebuildsEngine(t *testing.T) {
	s, fake, _ := newTestServer(t)
	fake.TotalPhotos = 5
	login(t, s, fake)
	doJSON(t, s, "POST", "/api/session/libraries/refresh", nil)
	selectLibrary(t, s, "lib-photos")

	first := s.Engine()
	if first == nil {
		t.Fatal("Expected an engine once Ready")
	}

	cfg := &config.Config{Port: 0}
	cfg.Catalog.PageSize = 2
	cfg.Server.RequestTimeout = 5
	s.UpdateConfig(cfg)

	second := s.Engine()
	if second == first {
		t.Fatal("Engine must be rebuilt after a config reload")
	}

	rr := doJSON(t, s, "POST", "/api/photos/refresh", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Catalog refresh failed: %d", rr.Code)
	}
	var state struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	if len(state.Items) != 2 {
		t.Errorf("Expected the reloaded page size of 2, got %d items", len(state.Items))
	}
}

// Engine identity follows the selection: switching libraries replaces the
// engine and its accumulation.
func TestEngineFollowsSelection(t *testing.T) {
	s, fake, _ := newTestServer(t)
	fake.TotalPhotos = 4
	login(t, s, fake)
	doJSON(t, s, "POST", "/api/session/libraries/refresh", nil)
	selectLibrary(t, s, "lib-photos")

	first := s.Engine()
	if first == nil {
		t.Fatal("Expected an engine once Ready")
	}

	selectLibrary(t, s, "lib-pictures")
	second := s.Engine()
	if second == first {
		t.Error("Engine must be rebuilt when the library changes")
	}
}
