package gravity

// Zone thresholds. Inclusive lower bounds: [80,100] inner,
// [40,80) goldilocks, [0,40) outer.
const (
	innerThreshold      = 80.0
	goldilocksThreshold = 40.0
)

// Classify maps a gravity score to its orbit zone. Total over all
// inputs; out-of-range scores land in the nearest band.
func Classify(score float64) Zone {
	switch {
	case score >= innerThreshold:
		return ZoneInner
	case score >= goldilocksThreshold:
		return ZoneGoldilocks
	default:
		return ZoneOuter
	}
}
