package gravity

import "testing"

func rankFixture() []Relationship {
	return []Relationship{
		{ID: "a", Name: "Asha", Score: 10},
		{ID: "b", Name: "Ben", Score: 90},
		{ID: "c", Name: "Cleo", Score: 45},
		{ID: "d", Name: "Dev", Score: 30},
		{ID: "e", Name: "Ema", Score: 70},
	}
}

func TestRankLowBattery(t *testing.T) {
	got := Rank(rankFixture(), 15)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != "a" || got[0].Score != 10 {
		t.Errorf("suggestion = %+v, want the score-10 relationship", got[0])
	}
	if got[0].Zone != ZoneOuter {
		t.Errorf("zone = %v, want outer", got[0].Zone)
	}
	if got[0].Reason == "" {
		t.Error("expected a reason string")
	}
}

func TestRankHighBattery(t *testing.T) {
	got := Rank(rankFixture(), 80)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantScores := []float64{10, 30, 45}
	for i, want := range wantScores {
		if got[i].Score != want {
			t.Errorf("suggestion[%d].Score = %v, want %v", i, got[i].Score, want)
		}
	}
}

func TestRankBuckets(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{0, 1},
		{20, 1},
		{21, 2},
		{50, 2},
		{51, 3},
		{100, 3},
		{-10, 1}, // unsanitized input clamps into the lowest bucket
	}

	for _, tt := range tests {
		if got := Rank(rankFixture(), tt.capacity); len(got) != tt.want {
			t.Errorf("capacity %d: len = %d, want %d", tt.capacity, len(got), tt.want)
		}
	}
}

func TestRankFewerThanCap(t *testing.T) {
	rels := []Relationship{{ID: "solo", Name: "Solo", Score: 55}}

	got := Rank(rels, 100)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (no padding)", len(got))
	}
}

func TestRankEmpty(t *testing.T) {
	if got := Rank(nil, 80); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestRankStableOnTies(t *testing.T) {
	rels := []Relationship{
		{ID: "first", Score: 25},
		{ID: "second", Score: 25},
		{ID: "third", Score: 25},
	}

	got := Rank(rels, 100)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].ID != want {
			t.Errorf("suggestion[%d].ID = %s, want %s (input order on ties)", i, got[i].ID, want)
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	rels := rankFixture()
	Rank(rels, 100)

	if rels[0].ID != "a" || rels[1].ID != "b" {
		t.Error("Rank reordered its input slice")
	}
}
