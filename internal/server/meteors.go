package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendorbit/orbit/internal/store"
)

// ownedMeteor loads a meteor and checks the caller owns it. Writes the
// error response and returns nil when access fails.
func (s *Server) ownedMeteor(w http.ResponseWriter, r *http.Request) *store.Meteor {
	m, err := s.db.GetMeteor(chi.URLParam(r, "meteorID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return nil
	}
	if m == nil {
		http.Error(w, `{"error":"meteor not found"}`, http.StatusNotFound)
		return nil
	}
	if m.UserID != currentUser(r).ID {
		http.Error(w, `{"error":"not your orbit"}`, http.StatusForbidden)
		return nil
	}
	return m
}

func (s *Server) handleCreateMeteor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PersonID string `json:"person_id"`
		Content  string `json:"content"`
		Tag      string `json:"tag"`
		DueDate  string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, `{"error":"content required"}`, http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	// The note must attach to one of the caller's own people.
	p, err := s.db.GetPerson(req.PersonID)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, `{"error":"person not found"}`, http.StatusNotFound)
		return
	}
	if p.UserID != user.ID {
		http.Error(w, `{"error":"not your orbit"}`, http.StatusForbidden)
		return
	}

	m := &store.Meteor{
		PersonID: p.ID,
		UserID:   user.ID,
		Content:  req.Content,
		Tag:      req.Tag,
		DueDate:  req.DueDate,
	}
	if err := s.db.CreateMeteor(m); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMeteors(w http.ResponseWriter, r *http.Request) {
	meteors, err := s.db.ListMeteors(currentUser(r).ID, r.URL.Query().Get("person_id"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if meteors == nil {
		meteors = []store.Meteor{}
	}
	respondJSON(w, http.StatusOK, meteors)
}

func (s *Server) handleUpdateMeteor(w http.ResponseWriter, r *http.Request) {
	m := s.ownedMeteor(w, r)
	if m == nil {
		return
	}

	var req struct {
		Content  *string `json:"content"`
		Tag      *string `json:"tag"`
		Done     *bool   `json:"done"`
		Archived *bool   `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	fresh, err := s.db.UpdateMeteor(m.ID, store.MeteorUpdate{
		Content:  req.Content,
		Tag:      req.Tag,
		Done:     req.Done,
		Archived: req.Archived,
	})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if fresh == nil {
		http.Error(w, `{"error":"meteor not found"}`, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, fresh)
}

func (s *Server) handleArchiveMeteor(w http.ResponseWriter, r *http.Request) {
	m := s.ownedMeteor(w, r)
	if m == nil {
		return
	}

	if err := s.db.ArchiveMeteor(m.ID); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
