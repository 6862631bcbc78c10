package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vrsandeep/truphotos-go/internal/timeline"
)

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	engine := s.Engine()
	if engine == nil {
		RespondWithError(w, http.StatusConflict, "No library selected")
		return
	}
	RespondWithJSON(w, http.StatusOK, engine.State())
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	engine := s.Engine()
	if engine == nil {
		RespondWithError(w, http.StatusConflict, "No library selected")
		return
	}
	if err := engine.LoadInitial(r.Context()); err != nil {
		respondWithTypedError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, engine.State())
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	engine := s.Engine()
	if engine == nil {
		RespondWithError(w, http.StatusConflict, "No library selected")
		return
	}
	if err := engine.LoadMore(r.Context()); err != nil {
		respondWithTypedError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, engine.State())
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	engine := s.Engine()
	if engine == nil {
		RespondWithError(w, http.StatusConflict, "No library selected")
		return
	}
	state := engine.State()
	RespondWithJSON(w, http.StatusOK, timeline.Group(state.Items, time.Now()))
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "photoID")
	var payload struct {
		Favorite bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	snap := s.sessions.Snapshot()
	sess := snap.Session
	if sess.SelectedServer == nil || sess.User == nil || sess.AuthToken == "" {
		RespondWithError(w, http.StatusConflict, "Not authenticated")
		return
	}
	err := s.client.SetFavorite(r.Context(), *sess.SelectedServer, sess.User.ID, sess.AuthToken, photoID, payload.Favorite)
	if err != nil {
		respondWithTypedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
