package gravity

import (
	"math"
	"time"
)

// Daily decay rate components. The product of the three is how many
// gravity points a relationship loses per day without interaction.
var (
	categoryBase = map[Category]float64{
		CategoryPartner: 1.0, // closest, drifts slowest
		CategoryFamily:  2.0,
		CategoryFriend:  3.0,
	}

	archetypeMultiplier = map[Archetype]float64{
		ArchetypeAnchor: 0.8,
		ArchetypeSage:   0.9,
		ArchetypeSpark:  1.2, // energizing but needs attention
		ArchetypeComet:  0.5, // expected to be distant
	}

	strictnessMultiplier = map[Strictness]float64{
		StrictnessGentle: 0.6,
		StrictnessNormal: 1.0,
		StrictnessStrict: 1.5,
	}
)

const day = 24 * time.Hour

// Compute returns the relationship's score after decay as of now.
// Pinned relationships and relationships with no recorded interaction
// never decay. Days already charged by an earlier sweep (per LastDecay)
// are not charged again. Unknown enum values fall back to
// friend / 1.0 / normal. The result is clamped to [0,100] and rounded
// to one decimal.
func Compute(rel Relationship, strictness Strictness, now time.Time) float64 {
	if rel.Pinned || rel.LastInteraction == nil {
		return clampScore(rel.Score)
	}

	// Whole days elapsed, truncated toward zero. UTC on both sides so a
	// zone offset can't shift the day count.
	days := wholeDays(*rel.LastInteraction, now)
	if rel.LastDecay != nil {
		// A decay stamp older than the interaction has charged nothing.
		if applied := wholeDays(*rel.LastInteraction, *rel.LastDecay); applied > 0 {
			days -= applied
		}
	}
	if days <= 0 {
		return clampScore(rel.Score)
	}

	base, ok := categoryBase[rel.Category]
	if !ok {
		base = categoryBase[CategoryFriend]
	}
	archMult, ok := archetypeMultiplier[rel.Archetype]
	if !ok {
		archMult = 1.0
	}
	strictMult, ok := strictnessMultiplier[strictness]
	if !ok {
		strictMult = strictnessMultiplier[StrictnessNormal]
	}

	rate := base * archMult * strictMult
	score := rel.Score - float64(days)*rate

	return clampScore(roundTenth(score))
}

// wholeDays counts full 24h periods between from and to, truncated
// toward zero. Negative when to precedes from.
func wholeDays(from, to time.Time) int64 {
	return int64(to.UTC().Sub(from.UTC()) / day)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
