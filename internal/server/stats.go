package server

import (
	"net/http"

	"github.com/friendorbit/orbit/internal/gravity"
)

const driftThreshold = 40.0

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	people, err := s.db.ListPeople(currentUser(r).ID, false)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	zones := map[gravity.Zone]int{
		gravity.ZoneInner:      0,
		gravity.ZoneGoldilocks: 0,
		gravity.ZoneOuter:      0,
	}
	types := map[string]int{}
	drifting := 0
	var driftingNames []string

	for i := range people {
		p := &people[i]
		zones[gravity.Classify(p.GravityScore)]++
		types[p.RelationshipType]++
		if p.GravityScore < driftThreshold {
			drifting++
			if len(driftingNames) < 5 {
				driftingNames = append(driftingNames, p.Name)
			}
		}
	}
	if driftingNames == nil {
		driftingNames = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total":          len(people),
		"zones":          zones,
		"types":          types,
		"drifting":       drifting,
		"drifting_names": driftingNames,
	})
}
