package gravity

import "sort"

// Suggestion is one "reach out to this person" recommendation.
type Suggestion struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"gravity_score"`
	Zone   Zone    `json:"orbit_zone"`
	Reason string  `json:"reason"`
}

const suggestionReason = "Drifting - last interaction was a while ago"

// suggestionCount maps a battery reading to how many suggestions to
// return. Deliberately coarse: low battery means one small nudge.
func suggestionCount(capacity int) int {
	switch {
	case capacity <= 20:
		return 1
	case capacity <= 50:
		return 2
	default:
		return 3
	}
}

// Rank selects the most-drifted relationships, bounded by the user's
// battery capacity. Input must already be filtered to active (non
// archived) relationships. Lowest score first; equal scores keep their
// input order. Returns fewer than the cap when fewer exist.
func Rank(rels []Relationship, capacity int) []Suggestion {
	sorted := make([]Relationship, len(rels))
	copy(sorted, rels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})

	n := suggestionCount(capacity)
	if n > len(sorted) {
		n = len(sorted)
	}

	suggestions := make([]Suggestion, 0, n)
	for _, rel := range sorted[:n] {
		suggestions = append(suggestions, Suggestion{
			ID:     rel.ID,
			Name:   rel.Name,
			Score:  rel.Score,
			Zone:   Classify(rel.Score),
			Reason: suggestionReason,
		})
	}
	return suggestions
}
