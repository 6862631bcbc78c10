package models

// Server identifies a Jellyfin server. The address (base URL) is the stable
// identity key for comparison and storage.
type Server struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	ID          string `json:"id"`
	Version     string `json:"version,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// Library is a photo library on a server. Library identity is scoped to the
// server that returned it; selecting a new server invalidates any previously
// selected library.
type Library struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CollectionType string `json:"collection_type,omitempty"`
}

// User is the authenticated Jellyfin user.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ServerID string `json:"server_id"`
	// ServerName is the friendly name reported by the server at login time.
	ServerName string `json:"server_name,omitempty"`
}

// Tab is the persisted top-level tab selection.
type Tab string

const (
	TabTimeline Tab = "Timeline"
	TabLibrary  Tab = "Library"
)

// ValidTab reports whether s names a known tab.
func ValidTab(s string) bool {
	return s == string(TabTimeline) || s == string(TabLibrary)
}
