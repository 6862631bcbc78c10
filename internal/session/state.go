// Package session owns the authentication/session state machine. All
// mutation goes through Manager's operations; everyone else sees read-only
// snapshots.
package session

import (
	"fmt"

	"github.com/vrsandeep/truphotos-go/internal/models"
)

// State is the position of the session state machine.
type State int

const (
	// StateRestoring is the initial state while persisted session data is
	// being loaded.
	StateRestoring State = iota
	// StateUnauthenticated means no valid token is held.
	StateUnauthenticated
	// StateAuthenticatedNoServer means the token is valid but no server is
	// selected.
	StateAuthenticatedNoServer
	// StateAuthenticatedNoLibrary means a server is selected but no library.
	StateAuthenticatedNoLibrary
	// StateReady means server and library are selected; fully operational.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticatedNoServer:
		return "authenticated_no_server"
	case StateAuthenticatedNoLibrary:
		return "authenticated_no_library"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is the authoritative authentication/selection state. Invariants:
// User and AuthToken are both set or both empty; SelectedLibrary is non-nil
// only when SelectedServer is; KnownServers contains SelectedServer when
// the latter is set.
type Session struct {
	AuthToken       string           `json:"auth_token,omitempty"`
	User            *models.User     `json:"user,omitempty"`
	SelectedServer  *models.Server   `json:"selected_server,omitempty"`
	SelectedLibrary *models.Library  `json:"selected_library,omitempty"`
	KnownServers    []models.Server  `json:"known_servers,omitempty"`
	Libraries       []models.Library `json:"libraries,omitempty"`
	SelectedTab     models.Tab       `json:"selected_tab"`
}

// Snapshot is a point-in-time copy of the manager's state, handed to
// subscribers and read-only consumers.
type Snapshot struct {
	State   State   `json:"state"`
	Session Session `json:"session"`
}

// deriveState maps session fields to the machine state. The state is never
// stored independently of the fields that imply it.
func deriveState(s Session) State {
	switch {
	case s.AuthToken == "" || s.User == nil:
		return StateUnauthenticated
	case s.SelectedServer == nil:
		return StateAuthenticatedNoServer
	case s.SelectedLibrary == nil:
		return StateAuthenticatedNoLibrary
	default:
		return StateReady
	}
}

// ValidationError marks malformed persisted state detected during restore.
// It is always swallowed into a clean unauthenticated session, never
// propagated as a crash.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid persisted value for %q: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
