package api

import (
	"encoding/json"
	"net/http"

	"github.com/vrsandeep/truphotos-go/internal/models"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.sessions.Snapshot())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Address  string `json:"address"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Address == "" || payload.Username == "" {
		RespondWithError(w, http.StatusBadRequest, "Server address and username are required")
		return
	}

	if err := s.sessions.Login(r.Context(), payload.Address, payload.Username, payload.Password); err != nil {
		respondWithTypedError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, s.sessions.Snapshot())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectServer(w http.ResponseWriter, r *http.Request) {
	var server models.Server
	if err := json.NewDecoder(r.Body).Decode(&server); err != nil || server.Address == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid server payload")
		return
	}
	if err := s.sessions.SelectServer(r.Context(), server); err != nil {
		respondWithTypedError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, s.sessions.Snapshot())
}

// handleAddServer records a server in the known-servers set without
// selecting it, so a UI can offer it for later selection.
func (s *Server) handleAddServer(w http.ResponseWriter, r *http.Request) {
	var server models.Server
	if err := json.NewDecoder(r.Body).Decode(&server); err != nil || server.Address == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid server payload")
		return
	}
	s.sessions.AddServer(server)
	RespondWithJSON(w, http.StatusOK, s.sessions.Snapshot())
}

func (s *Server) handleClearServer(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.ClearServer(); err != nil {
		respondWithTypedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectLibrary(w http.ResponseWriter, r *http.Request) {
	var library models.Library
	if err := json.NewDecoder(r.Body).Decode(&library); err != nil || library.ID == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid library payload")
		return
	}
	if err := s.sessions.SelectLibrary(library); err != nil {
		respondWithTypedError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, s.sessions.Snapshot())
}

func (s *Server) handleClearLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.ClearLibrary(); err != nil {
		respondWithTypedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetLibraries(w http.ResponseWriter, r *http.Request) {
	snap := s.sessions.Snapshot()
	RespondWithJSON(w, http.StatusOK, snap.Session.Libraries)
}

func (s *Server) handleRefreshLibraries(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.RefreshLibraries(r.Context()); err != nil {
		respondWithTypedError(w, err)
		return
	}
	snap := s.sessions.Snapshot()
	RespondWithJSON(w, http.StatusOK, snap.Session.Libraries)
}

func (s *Server) handleSetTab(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Tab string `json:"tab"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || !models.ValidTab(payload.Tab) {
		RespondWithError(w, http.StatusBadRequest, "Invalid tab")
		return
	}
	if err := s.sessions.SetTab(models.Tab(payload.Tab)); err != nil {
		respondWithTypedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
