// Package gravity implements the scoring core: decay of closeness over
// time, orbit zone classification, and battery-bounded suggestion ranking.
// Everything here is pure — callers supply the clock and the data.
package gravity

import "time"

// Category is the relationship type. Closer categories decay slower.
type Category string

const (
	CategoryPartner Category = "partner"
	CategoryFamily  Category = "family"
	CategoryFriend  Category = "friend"
)

// Archetype tags how a relationship behaves, independent of category.
type Archetype string

const (
	ArchetypeAnchor Archetype = "Anchor"
	ArchetypeSage   Archetype = "Sage"
	ArchetypeSpark  Archetype = "Spark"
	ArchetypeComet  Archetype = "Comet"
)

// Strictness is the per-user global decay speed setting.
type Strictness string

const (
	StrictnessGentle Strictness = "gentle"
	StrictnessNormal Strictness = "normal"
	StrictnessStrict Strictness = "strict"
)

// Zone is the discrete orbit band derived from a gravity score.
type Zone string

const (
	ZoneInner      Zone = "inner"
	ZoneGoldilocks Zone = "goldilocks"
	ZoneOuter      Zone = "outer"
)

// Relationship is the plain-data view of a person the core operates on.
// No coupling to storage; the store and server layers map into it.
//
// LastDecay marks when a sweep last persisted decay for this
// relationship. Compute only charges the whole days it has not yet
// accounted for, which is what keeps a repeated sweep inside the same
// day from decaying twice.
type Relationship struct {
	ID              string
	UserID          string
	Name            string
	Category        Category
	Archetype       Archetype
	Pinned          bool
	Score           float64
	LastInteraction *time.Time
	LastDecay       *time.Time
}
