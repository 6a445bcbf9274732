package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/friendorbit/orbit/internal/gravity"
	"github.com/friendorbit/orbit/internal/store"
)

// suggestionsFor ranks the user's active people against a battery
// reading and returns reconnect suggestions.
func (s *Server) suggestionsFor(user *store.User, battery int) ([]gravity.Suggestion, error) {
	people, err := s.db.ListPeople(user.ID, false)
	if err != nil {
		return nil, err
	}

	rels := make([]gravity.Relationship, len(people))
	for i := range people {
		rels[i] = people[i].Relationship()
	}
	return gravity.Rank(rels, battery), nil
}

func (s *Server) handleLogBattery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score *int `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > 100 {
		http.Error(w, `{"error":"score must be between 0 and 100"}`, http.StatusBadRequest)
		return
	}

	user := currentUser(r)
	entry, err := s.db.LogBattery(user.ID, *req.Score, time.Now())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	suggestions, err := s.suggestionsFor(user, *req.Score)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"entry":       entry,
		"suggestions": suggestions,
	})
}

func (s *Server) handleGetBattery(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	resp := map[string]any{
		"score":        nil,
		"logged_at":    nil,
		"needs_update": true,
		"suggestions":  []gravity.Suggestion{},
	}

	if user.LastBattery != nil {
		resp["score"] = *user.LastBattery

		suggestions, err := s.suggestionsFor(user, *user.LastBattery)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		resp["suggestions"] = suggestions
	}
	if user.LastBatteryAt != nil {
		resp["logged_at"] = *user.LastBatteryAt
		resp["needs_update"] = !loggedToday(*user.LastBatteryAt, user.Timezone, time.Now())
	}

	respondJSON(w, http.StatusOK, resp)
}

// loggedToday reports whether the unix-milli timestamp falls on the
// current calendar day in the given timezone. Unknown timezones fall
// back to UTC.
func loggedToday(atMilli int64, timezone string, now time.Time) bool {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	at := time.UnixMilli(atMilli).In(loc)
	local := now.In(loc)
	return at.Year() == local.Year() && at.YearDay() == local.YearDay()
}
