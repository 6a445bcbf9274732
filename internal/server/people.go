package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/friendorbit/orbit/internal/gravity"
	"github.com/friendorbit/orbit/internal/store"
)

// personView is a person annotated with the orbit zone derived from
// the current gravity score.
type personView struct {
	store.Person
	OrbitZone gravity.Zone `json:"orbit_zone"`
}

func viewOf(p *store.Person) personView {
	return personView{Person: *p, OrbitZone: gravity.Classify(p.GravityScore)}
}

// ownedPerson loads a person and checks the caller owns it. Writes the
// error response and returns nil when access fails.
func (s *Server) ownedPerson(w http.ResponseWriter, r *http.Request) *store.Person {
	p, err := s.db.GetPerson(chi.URLParam(r, "personID"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return nil
	}
	if p == nil {
		http.Error(w, `{"error":"person not found"}`, http.StatusNotFound)
		return nil
	}
	if p.UserID != currentUser(r).ID {
		http.Error(w, `{"error":"not your orbit"}`, http.StatusForbidden)
		return nil
	}
	return p
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string   `json:"name"`
		RelationshipType    string   `json:"relationship_type"`
		RelationshipSubtype string   `json:"relationship_subtype"`
		Archetype           string   `json:"archetype"`
		CadenceDays         int      `json:"cadence_days"`
		Tags                []string `json:"tags"`
		Pinned              bool     `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}
	switch req.RelationshipType {
	case "partner", "family", "friend":
	default:
		http.Error(w, `{"error":"relationship_type must be partner, family, or friend"}`, http.StatusBadRequest)
		return
	}

	user := currentUser(r)

	if req.RelationshipType == "partner" {
		has, err := s.db.HasActivePartner(user.ID)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if has {
			http.Error(w, `{"error":"an active partner already exists"}`, http.StatusBadRequest)
			return
		}
	}

	p := &store.Person{
		UserID:              user.ID,
		Name:                req.Name,
		RelationshipType:    req.RelationshipType,
		RelationshipSubtype: req.RelationshipSubtype,
		Archetype:           req.Archetype,
		CadenceDays:         req.CadenceDays,
		Tags:                req.Tags,
		Pinned:              req.Pinned,
	}
	if err := s.db.CreatePerson(p); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, viewOf(p))
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	people, err := s.db.ListPeople(currentUser(r).ID, includeArchived)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	views := make([]personView, len(people))
	for i := range people {
		views[i] = viewOf(&people[i])
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	p := s.ownedPerson(w, r)
	if p == nil {
		return
	}
	respondJSON(w, http.StatusOK, viewOf(p))
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	p := s.ownedPerson(w, r)
	if p == nil {
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Archetype   *string  `json:"archetype"`
		CadenceDays *int     `json:"cadence_days"`
		Tags        []string `json:"tags"`
		Pinned      *bool    `json:"pinned"`
		Archived    *bool    `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	fresh, err := s.db.UpdatePerson(p.ID, store.PersonUpdate{
		Name:        req.Name,
		Archetype:   req.Archetype,
		CadenceDays: req.CadenceDays,
		Tags:        req.Tags,
		Pinned:      req.Pinned,
		Archived:    req.Archived,
	})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if fresh == nil {
		http.Error(w, `{"error":"person not found"}`, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(fresh))
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	p := s.ownedPerson(w, r)
	if p == nil {
		return
	}

	fresh, err := s.db.LogInteraction(p.ID, time.Now())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(fresh))
}

func (s *Server) handleArchivePerson(w http.ResponseWriter, r *http.Request) {
	p := s.ownedPerson(w, r)
	if p == nil {
		return
	}

	if err := s.db.ArchivePerson(p.ID); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
