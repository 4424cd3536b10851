package store

import (
	"strconv"
	"strings"
	"time"
)

// Athlete holds the profile fields the analytics engine reads
type Athlete struct {
	ID           int64    `db:"id"`
	Firstname    string   `db:"firstname"`
	Lastname     string   `db:"lastname"`
	FTP          *float64 `db:"ftp"`           // nullable
	MaxHeartrate *float64 `db:"max_heartrate"` // nullable
}

// DisplayName assembles "first last", falling back to the athlete ID
func (a Athlete) DisplayName() string {
	name := strings.TrimSpace(a.Firstname + " " + a.Lastname)
	if name == "" {
		return "Athlete " + strconv.FormatInt(a.ID, 10)
	}
	return name
}

// Activity represents a synced Strava activity summary
type Activity struct {
	ID                   int64     `db:"id"`
	AthleteID            int64     `db:"athlete_id"`
	Name                 string    `db:"name"`
	SportType            string    `db:"sport_type"`
	GearID               string    `db:"gear_id"` // empty when no bike assigned
	StartDate            time.Time `db:"start_date"`
	Distance             float64   `db:"distance"`    // meters
	MovingTime           int       `db:"moving_time"` // seconds
	ElapsedTime          int       `db:"elapsed_time"`
	TotalElevationGain   float64   `db:"total_elevation_gain"`
	AverageWatts         *float64  `db:"average_watts"`          // nullable
	WeightedAverageWatts *float64  `db:"weighted_average_watts"` // nullable
	MaxWatts             *float64  `db:"max_watts"`              // nullable
	AverageHeartrate     *float64  `db:"average_heartrate"`      // nullable
	MaxHeartrate         *float64  `db:"max_heartrate"`          // nullable
	SufferScore          *float64  `db:"suffer_score"`           // nullable
}

// Bike represents a piece of gear owned by an athlete
type Bike struct {
	ID                string  `db:"id"` // Strava gear id, e.g. "b1234567"
	AthleteID         int64   `db:"athlete_id"`
	Name              string  `db:"name"`
	Distance          float64 `db:"distance"`           // lifetime meters
	ConvertedDistance float64 `db:"converted_distance"` // lifetime km, 0 when unset
	Retired           bool    `db:"retired"`
}

// CurrentKm returns the bike's lifetime distance in kilometers,
// preferring the pre-converted figure when the sync provided one.
func (b Bike) CurrentKm() float64 {
	if b.ConvertedDistance > 0 {
		return b.ConvertedDistance
	}
	return b.Distance / 1000
}

// MaintenanceType is a catalog entry shared across athletes
type MaintenanceType struct {
	ID                  string   `db:"id"`
	Name                string   `db:"name"`
	DefaultIntervalKm   float64  `db:"default_interval_km"`
	EstimatedLifespanKm *float64 `db:"estimated_lifespan_km"` // nullable, overrides default
	SortOrder           int      `db:"sort_order"`
}

// IntervalKm resolves the catalog interval: a configured estimated lifespan
// wins over the default.
func (t MaintenanceType) IntervalKm() float64 {
	if t.EstimatedLifespanKm != nil && *t.EstimatedLifespanKm > 0 {
		return *t.EstimatedLifespanKm
	}
	return t.DefaultIntervalKm
}

// MaintenanceSetting is a per-bike interval override
type MaintenanceSetting struct {
	AthleteID         int64   `db:"athlete_id"`
	BikeID            string  `db:"bike_id"`
	MaintenanceTypeID string  `db:"maintenance_type_id"`
	CustomIntervalKm  float64 `db:"custom_interval_km"`
}

// ServiceRecord is one maintenance event on a bike. The upstream schema
// stores the covered maintenance types as a comma-joined string; the model
// surfaces them as a code set so matching never depends on string layout.
type ServiceRecord struct {
	ID          string    `db:"id"`
	BikeID      string    `db:"bike_id"`
	AthleteID   int64     `db:"athlete_id"`
	ServiceDate time.Time `db:"service_date"`
	TypeCodes   []string  `db:"-"`
	Cost        float64   `db:"cost"`
}

// HasCode reports whether the record covers the given maintenance type
func (r ServiceRecord) HasCode(code string) bool {
	for _, c := range r.TypeCodes {
		if c == code {
			return true
		}
	}
	return false
}

// splitTypeCodes parses a comma-joined code list, dropping whitespace and
// empty entries so a malformed row degrades to "no match" rather than an error
func splitTypeCodes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

func joinTypeCodes(codes []string) string {
	return strings.Join(codes, ", ")
}
