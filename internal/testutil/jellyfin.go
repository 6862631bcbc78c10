// Test helpers shared across packages: a fake Jellyfin server serving the
// handful of endpoints the client touches.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
)

// FakeJellyfin is a mock Jellyfin server. Photos are generated on demand so
// pagination tests can use any total count.
type FakeJellyfin struct {
	Server *httptest.Server

	// TotalPhotos is the catalog size reported by the Items endpoint.
	TotalPhotos int
	// FailItems makes the Items endpoint return 500.
	FailItems bool
	// FailViews makes the Views endpoint return 500.
	FailViews bool
	// RejectAuth makes authentication return 401.
	RejectAuth bool
}

// NewFakeJellyfin starts a fake server with a sensible default catalog.
func NewFakeJellyfin() *FakeJellyfin {
	f := &FakeJellyfin{TotalPhotos: 5}
	mux := http.NewServeMux()

	mux.HandleFunc("/Users/AuthenticateByName", func(w http.ResponseWriter, r *http.Request) {
		if f.RejectAuth {
			http.Error(w, "Invalid user or password", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"User": {"Id": "user-1", "Name": "alice", "ServerId": "server-1", "ServerName": "Home Jellyfin"},
			"AccessToken": "token-abc",
			"ServerId": "server-1"
		}`)
	})

	mux.HandleFunc("/System/Info/Public", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ServerName": "Home Jellyfin", "Version": "10.9.2", "Id": "server-1"}`)
	})

	mux.HandleFunc("/Users/user-1/Views", func(w http.ResponseWriter, r *http.Request) {
		if f.FailViews {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Items": [
			{"Id": "lib-photos", "Name": "Photos", "CollectionType": "homevideos"},
			{"Id": "lib-movies", "Name": "Movies", "CollectionType": "movies"},
			{"Id": "lib-pictures", "Name": "Old Pictures"}
		]}`)
	})

	mux.HandleFunc("/Users/user-1/Items", func(w http.ResponseWriter, r *http.Request) {
		if f.FailItems {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("StartIndex"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("Limit"))

		items := []map[string]interface{}{}
		for i := offset; i < f.TotalPhotos && i < offset+limit; i++ {
			items = append(items, map[string]interface{}{
				"Id":          fmt.Sprintf("photo-%d", i),
				"Name":        fmt.Sprintf("IMG_%04d.jpg", i),
				"Type":        "Photo",
				"Width":       4032,
				"Height":      3024,
				"DateCreated": fmt.Sprintf("2024-03-%02dT10:00:00Z", 1+i%28),
				"ImageTags":   map[string]string{"Primary": "tag" + strconv.Itoa(i)},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Items":            items,
			"TotalRecordCount": f.TotalPhotos,
		})
	})

	f.Server = httptest.NewServer(mux)
	return f
}

// URL returns the fake server's base address.
func (f *FakeJellyfin) URL() string { return f.Server.URL }

// Close shuts the fake server down.
func (f *FakeJellyfin) Close() { f.Server.Close() }
