package gravity

import (
	"errors"
	"testing"
)

// sweepFixture is a tiny in-memory backing set for sweep tests.
type sweepFixture struct {
	rels       map[string]Relationship
	strictness map[string]Strictness
	persistErr map[string]error
}

func newSweepFixture(rels ...Relationship) *sweepFixture {
	f := &sweepFixture{
		rels:       make(map[string]Relationship),
		strictness: make(map[string]Strictness),
		persistErr: make(map[string]error),
	}
	for _, r := range rels {
		f.rels[r.ID] = r
	}
	return f
}

func (f *sweepFixture) fetch() ([]Relationship, error) {
	var out []Relationship
	for _, id := range []string{"p1", "p2", "p3"} {
		if r, ok := f.rels[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *sweepFixture) strictnessFor(userID string) Strictness {
	if s, ok := f.strictness[userID]; ok {
		return s
	}
	return StrictnessNormal
}

// persist mirrors the store: it writes the score and stamps the decay
// time.
func (f *sweepFixture) persist(id string, score float64) error {
	if err := f.persistErr[id]; err != nil {
		return err
	}
	r := f.rels[id]
	r.Score = score
	at := testNow
	r.LastDecay = &at
	f.rels[id] = r
	return nil
}

func TestRunSweepUpdatesChangedScores(t *testing.T) {
	f := newSweepFixture(
		Relationship{ID: "p1", UserID: "u1", Category: CategoryFriend, Archetype: ArchetypeAnchor, Score: 80, LastInteraction: daysAgo(10)},
		Relationship{ID: "p2", UserID: "u1", Category: CategoryFriend, Score: 50, Pinned: true, LastInteraction: daysAgo(10)},
		Relationship{ID: "p3", UserID: "u1", Category: CategoryPartner, Archetype: ArchetypeComet, Score: 90}, // never interacted
	)

	updated, err := RunSweep(testNow, f.fetch, f.strictnessFor, f.persist)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}
	if f.rels["p1"].Score != 56.0 {
		t.Errorf("p1 score = %v, want 56.0", f.rels["p1"].Score)
	}
	if f.rels["p2"].Score != 50 {
		t.Errorf("pinned p2 score = %v, want 50", f.rels["p2"].Score)
	}
	if f.rels["p3"].Score != 90 {
		t.Errorf("untouched p3 score = %v, want 90", f.rels["p3"].Score)
	}
}

func TestRunSweepIdempotentWithinDay(t *testing.T) {
	f := newSweepFixture(
		Relationship{ID: "p1", UserID: "u1", Category: CategoryFriend, Archetype: ArchetypeAnchor, Score: 80, LastInteraction: daysAgo(10)},
	)

	if _, err := RunSweep(testNow, f.fetch, f.strictnessFor, f.persist); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	// The first run charged all ten days and stamped the decay time, so
	// a second run inside the same day has nothing left to charge.
	updated, err := RunSweep(testNow, f.fetch, f.strictnessFor, f.persist)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if updated != 0 {
		t.Errorf("second sweep updated = %d, want 0", updated)
	}
}

func TestRunSweepUsesPerUserStrictness(t *testing.T) {
	f := newSweepFixture(
		Relationship{ID: "p1", UserID: "gentle-user", Category: CategoryFriend, Archetype: ArchetypeAnchor, Score: 80, LastInteraction: daysAgo(10)},
	)
	f.strictness["gentle-user"] = StrictnessGentle

	if _, err := RunSweep(testNow, f.fetch, f.strictnessFor, f.persist); err != nil {
		t.Fatalf("RunSweep: %v", err)
	}

	// 3.0 * 0.8 * 0.6 = 1.44/day -> 80 - 14.4 = 65.6
	if f.rels["p1"].Score != 65.6 {
		t.Errorf("score = %v, want 65.6", f.rels["p1"].Score)
	}
}

func TestRunSweepIsolatesPersistFailures(t *testing.T) {
	f := newSweepFixture(
		Relationship{ID: "p1", UserID: "u1", Category: CategoryFriend, Score: 80, LastInteraction: daysAgo(5)},
		Relationship{ID: "p2", UserID: "u1", Category: CategoryFriend, Score: 80, LastInteraction: daysAgo(5)},
	)
	f.persistErr["p1"] = errors.New("disk full")

	updated, err := RunSweep(testNow, f.fetch, f.strictnessFor, f.persist)
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1 (failure skipped, sweep continues)", updated)
	}
	if f.rels["p2"].Score == 80 {
		t.Error("p2 should have decayed despite p1 failing")
	}
}

func TestRunSweepFetchError(t *testing.T) {
	fetch := func() ([]Relationship, error) {
		return nil, errors.New("db closed")
	}

	updated, err := RunSweep(testNow, fetch, func(string) Strictness { return StrictnessNormal }, func(string, float64) error { return nil })
	if err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0", updated)
	}
}
