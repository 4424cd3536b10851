package analysis

import (
	"math"
	"testing"
	"time"

	"velohub/internal/store"
)

func floatPtr(f float64) *float64 { return &f }

func TestEstimateLoad(t *testing.T) {
	tests := []struct {
		name     string
		activity store.Activity
		ftp      float64
		expected LoadEstimate
		delta    float64
	}{
		{
			name: "suffer score wins over power data",
			activity: store.Activity{
				SportType:            "Ride",
				MovingTime:           3600,
				SufferScore:          floatPtr(50),
				WeightedAverageWatts: floatPtr(250),
			},
			ftp:      200,
			expected: LoadEstimate{TSS: 50},
		},
		{
			name: "suffer score applies to non-ride sports",
			activity: store.Activity{
				SportType:   "Run",
				MovingTime:  3600,
				SufferScore: floatPtr(80),
			},
			ftp:      200,
			expected: LoadEstimate{TSS: 80},
		},
		{
			name: "weighted watts at FTP for an hour is ~100 TSS",
			activity: store.Activity{
				SportType:            "Ride",
				MovingTime:           3600,
				WeightedAverageWatts: floatPtr(200),
			},
			ftp:      200,
			expected: LoadEstimate{TSS: 100, NP: 200, IF: 1.0},
			delta:    1e-9,
		},
		{
			name: "average watts scaled when weighted missing",
			activity: store.Activity{
				SportType:    "VirtualRide",
				MovingTime:   3600,
				AverageWatts: floatPtr(200),
			},
			ftp: 200,
			// np = 200 * 1.05 = 210, if = 1.05, tss = 210*1.05/200*100
			expected: LoadEstimate{TSS: 110.25, NP: 210, IF: 1.05},
			delta:    1e-9,
		},
		{
			name: "half FTP for an hour is ~25 TSS",
			activity: store.Activity{
				SportType:            "GravelRide",
				MovingTime:           3600,
				WeightedAverageWatts: floatPtr(100),
			},
			ftp:      200,
			expected: LoadEstimate{TSS: 25, NP: 100, IF: 0.5},
			delta:    1e-9,
		},
		{
			name: "non-ride power data never estimates",
			activity: store.Activity{
				SportType:            "Run",
				MovingTime:           3600,
				WeightedAverageWatts: floatPtr(300),
				AverageWatts:         floatPtr(280),
			},
			ftp:      200,
			expected: LoadEstimate{},
		},
		{
			name: "ride without any power data",
			activity: store.Activity{
				SportType:  "Ride",
				MovingTime: 3600,
			},
			ftp:      200,
			expected: LoadEstimate{},
		},
		{
			name: "zero FTP disables power estimation",
			activity: store.Activity{
				SportType:            "Ride",
				MovingTime:           3600,
				WeightedAverageWatts: floatPtr(250),
			},
			ftp:      0,
			expected: LoadEstimate{},
		},
		{
			name: "zero suffer score falls through to power",
			activity: store.Activity{
				SportType:            "Ride",
				MovingTime:           1800,
				SufferScore:          floatPtr(0),
				WeightedAverageWatts: floatPtr(200),
			},
			ftp:      200,
			expected: LoadEstimate{TSS: 50, NP: 200, IF: 1.0},
			delta:    1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateLoad(tt.activity, tt.ftp)
			if math.Abs(got.TSS-tt.expected.TSS) > tt.delta {
				t.Errorf("TSS = %v, want %v", got.TSS, tt.expected.TSS)
			}
			if math.Abs(got.NP-tt.expected.NP) > tt.delta {
				t.Errorf("NP = %v, want %v", got.NP, tt.expected.NP)
			}
			if math.Abs(got.IF-tt.expected.IF) > tt.delta {
				t.Errorf("IF = %v, want %v", got.IF, tt.expected.IF)
			}
		})
	}
}

func TestIsRideSport(t *testing.T) {
	rides := []string{"Ride", "VirtualRide", "MountainBikeRide", "GravelRide", "EBikeRide", "Velomobile"}
	for _, s := range rides {
		if !IsRideSport(s) {
			t.Errorf("IsRideSport(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"Run", "Swim", "Walk", "Hike", ""} {
		if IsRideSport(s) {
			t.Errorf("IsRideSport(%q) = true, want false", s)
		}
	}
}

func TestAnnotateLoadsDoesNotMutateInput(t *testing.T) {
	activities := []store.Activity{
		{
			ID:                   1,
			SportType:            "Ride",
			MovingTime:           3600,
			StartDate:            time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			WeightedAverageWatts: floatPtr(200),
		},
	}

	annotated := AnnotateLoads(activities, 200)
	if len(annotated) != 1 {
		t.Fatalf("expected 1 annotated activity, got %d", len(annotated))
	}
	if annotated[0].Load.TSS == 0 {
		t.Error("expected a non-zero TSS on the derived copy")
	}

	// the source slice and its rows stay untouched
	if activities[0].WeightedAverageWatts == nil || *activities[0].WeightedAverageWatts != 200 {
		t.Error("source activity was mutated")
	}

	// annotating again from the same batch yields the same result
	again := AnnotateLoads(activities, 200)
	if again[0].Load != annotated[0].Load {
		t.Errorf("repeat annotation differs: %+v vs %+v", again[0].Load, annotated[0].Load)
	}
}
