// Package credstore is the durable credential store: an opaque key→string
// capability with at-least-once-overwrite semantics. The session layer
// depends only on the Store interface; the sqlite implementation seals
// values at rest.
package credstore

import (
	"errors"
	"fmt"
)

// Keys used by the session layer. Kept stable so an upgrade restores the
// previous installation's session.
const (
	KeyAuthToken       = "jellyfin_auth_token"
	KeyUser            = "jellyfin_user"
	KeySelectedServer  = "jellyfin_selected_server"
	KeySelectedLibrary = "jellyfin_selected_library"
	KeySelectedTab     = "jellyfin_selected_tab"
	KeyClientID        = "jellyfin_client_id"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("credstore: key not found")

// Store is the secure credential capability.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// PersistenceError wraps a credential store read or write failure.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("credstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
