package analysis

import "velohub/internal/store"

// estimatedNPFactor approximates normalized power from average power when
// the weighted average is missing.
const estimatedNPFactor = 1.05

// rideSportTypes is the ride family eligible for power-based stress
// estimation. All other sports only get a TSS through the suffer score.
var rideSportTypes = map[string]struct{}{
	"Ride":             {},
	"VirtualRide":      {},
	"MountainBikeRide": {},
	"GravelRide":       {},
	"EBikeRide":        {},
	"Velomobile":       {},
}

// IsRideSport reports whether the sport type belongs to the ride family
func IsRideSport(sportType string) bool {
	_, ok := rideSportTypes[sportType]
	return ok
}

// LoadEstimate is the derived training stress for one activity
type LoadEstimate struct {
	TSS float64 `json:"tss"`
	NP  float64 `json:"np"`
	IF  float64 `json:"if"`
}

// ActivityWithLoad pairs an activity with its derived load. The source
// record is never annotated in place; summaries reusing the same batch see
// identical rows.
type ActivityWithLoad struct {
	store.Activity
	Load LoadEstimate `json:"load"`
}

// EstimateLoad converts one activity into a training-stress estimate.
//
// A positive suffer score is authoritative for every sport type. Otherwise
// ride-family activities with a usable FTP get a power-derived estimate:
// NP from the weighted average watts, or average watts scaled when only
// that is recorded. Anything else scores zero.
//
// The caller resolves a missing FTP before calling; this function never
// substitutes a default.
func EstimateLoad(a store.Activity, ftp float64) LoadEstimate {
	if a.SufferScore != nil && *a.SufferScore > 0 {
		return LoadEstimate{TSS: *a.SufferScore}
	}

	if !IsRideSport(a.SportType) || ftp <= 0 {
		return LoadEstimate{}
	}

	var np float64
	switch {
	case a.WeightedAverageWatts != nil && *a.WeightedAverageWatts > 0:
		np = *a.WeightedAverageWatts
	case a.AverageWatts != nil && *a.AverageWatts > 0:
		np = *a.AverageWatts * estimatedNPFactor
	}
	if np == 0 {
		return LoadEstimate{}
	}

	intensity := np / ftp
	tss := float64(a.MovingTime) * np * intensity / (ftp * 3600) * 100

	return LoadEstimate{TSS: tss, NP: np, IF: intensity}
}

// AnnotateLoads derives a load estimate for every activity, preserving
// input order.
func AnnotateLoads(activities []store.Activity, ftp float64) []ActivityWithLoad {
	out := make([]ActivityWithLoad, len(activities))
	for i, a := range activities {
		out[i] = ActivityWithLoad{Activity: a, Load: EstimateLoad(a, ftp)}
	}
	return out
}
