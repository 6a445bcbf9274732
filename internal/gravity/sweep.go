package gravity

import (
	"fmt"
	"log"
	"time"
)

// Sweep data-access capabilities, injected so the core stays free of
// storage coupling.
type (
	// FetchActiveFunc returns every non-archived relationship.
	FetchActiveFunc func() ([]Relationship, error)
	// StrictnessFunc resolves the owning user's decay strictness.
	StrictnessFunc func(userID string) Strictness
	// PersistFunc writes an updated score for one relationship.
	PersistFunc func(id string, score float64) error
)

// RunSweep recomputes decay for every active relationship and persists
// the ones whose score changed. Per-item persist failures are logged
// and skipped; the sweep is best-effort and safe to re-run (a second
// run within the same day writes nothing). Returns the number of
// relationships updated. The only fatal error is a failed fetch.
func RunSweep(now time.Time, fetch FetchActiveFunc, strictnessFor StrictnessFunc, persist PersistFunc) (int, error) {
	rels, err := fetch()
	if err != nil {
		return 0, fmt.Errorf("fetch active relationships: %w", err)
	}

	updated := 0
	for _, rel := range rels {
		score := Compute(rel, strictnessFor(rel.UserID), now)
		if score == rel.Score {
			continue
		}
		if err := persist(rel.ID, score); err != nil {
			log.Printf("sweep: persist %s: %v", rel.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
