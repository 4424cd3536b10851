package analysis

import (
	"sort"
	"time"

	"velohub/internal/store"
)

// Wear statuses, ordered ok < due_soon < overdue
const (
	StatusOK      = "ok"
	StatusDueSoon = "due_soon"
	StatusOverdue = "overdue"
)

// Catalog entries that are umbrella categories rather than trackable
// components. They never appear as standalone wear items; a full-service
// record additionally resets every component's clock.
const (
	TypeFullService = "full_service"
	TypeWheelCheck  = "wheel_check"
)

// TypeGearReplacement is a catch-all catalog entry presented under a
// generic label.
const TypeGearReplacement = "gear_replacement"

// WearItem is the derived wear state of one component on one bike
type WearItem struct {
	TypeID         string  `json:"type_id"`
	Name           string  `json:"name"`
	MileageSinceKm float64 `json:"mileage_since_service_km"`
	IntervalKm     float64 `json:"interval_km"`
	Percentage     float64 `json:"percentage"`
	Status         string  `json:"status"`
}

// BikeWearSummary aggregates the wear items of one bike
type BikeWearSummary struct {
	BikeID          string     `json:"bike_id"`
	Name            string     `json:"name"`
	DistanceKm      float64    `json:"distance_km"`
	Status          string     `json:"status"`
	OverdueCount    int        `json:"overdue_count"`
	DueSoonCount    int        `json:"due_soon_count"`
	LastServiceDate *time.Time `json:"last_service_date,omitempty"`
	Items           []WearItem `json:"items"`
}

// EvaluateBikeWear computes the wear state of every applicable maintenance
// type on one bike.
//
// For each type the most recent service covering it (or a full service)
// resets the clock; mileage since is the distance of the bike's activities
// strictly after that service. A bike with no qualifying service counts its
// entire lifetime distance against the first interval. A resolved interval
// of zero (or an invalid negative one) means the type is not tracked for
// this bike and produces no item.
func EvaluateBikeWear(bike store.Bike, types []store.MaintenanceType, settings []store.MaintenanceSetting, records []store.ServiceRecord, activities []store.Activity, p Params) BikeWearSummary {
	bikeRecords := make([]store.ServiceRecord, 0, len(records))
	for _, r := range records {
		if r.BikeID == bike.ID {
			bikeRecords = append(bikeRecords, r)
		}
	}
	// most recent first; stable so equal dates keep input order
	sort.SliceStable(bikeRecords, func(i, j int) bool {
		return bikeRecords[i].ServiceDate.After(bikeRecords[j].ServiceDate)
	})

	summary := BikeWearSummary{
		BikeID:     bike.ID,
		Name:       bike.Name,
		DistanceKm: bike.CurrentKm(),
		Status:     StatusOK,
	}
	if len(bikeRecords) > 0 {
		last := bikeRecords[0].ServiceDate
		summary.LastServiceDate = &last
	}

	for _, t := range types {
		if t.ID == TypeFullService || t.ID == TypeWheelCheck {
			continue
		}

		intervalKm := resolveInterval(t, settings, bike.ID)
		if intervalKm <= 0 {
			continue
		}

		mileageKm := bike.CurrentKm()
		if rec := lastServiceFor(bikeRecords, t.ID); rec != nil {
			mileageKm = mileageSince(activities, bike.ID, rec.ServiceDate)
		}

		percentage := mileageKm / intervalKm * 100
		status := StatusOK
		switch {
		case percentage >= p.OverduePercent:
			status = StatusOverdue
			summary.OverdueCount++
		case percentage >= p.DueSoonPercent:
			status = StatusDueSoon
			summary.DueSoonCount++
		}

		summary.Items = append(summary.Items, WearItem{
			TypeID:         t.ID,
			Name:           displayName(t),
			MileageSinceKm: mileageKm,
			IntervalKm:     intervalKm,
			Percentage:     percentage,
			Status:         status,
		})
	}

	if summary.OverdueCount > 0 {
		summary.Status = StatusOverdue
	} else if summary.DueSoonCount > 0 {
		summary.Status = StatusDueSoon
	}

	return summary
}

// resolveInterval picks the interval for a (bike, type) pair: a per-bike
// override beats the catalog's estimated lifespan, which beats the default.
func resolveInterval(t store.MaintenanceType, settings []store.MaintenanceSetting, bikeID string) float64 {
	for _, s := range settings {
		if s.BikeID == bikeID && s.MaintenanceTypeID == t.ID {
			return s.CustomIntervalKm
		}
	}
	return t.IntervalKm()
}

// lastServiceFor finds the most recent record covering the type or a full
// service. Records must be sorted most recent first.
func lastServiceFor(records []store.ServiceRecord, typeID string) *store.ServiceRecord {
	for i := range records {
		if records[i].HasCode(typeID) || records[i].HasCode(TypeFullService) {
			return &records[i]
		}
	}
	return nil
}

// mileageSince sums the distance of the bike's activities strictly after
// the service date. An activity at the exact service timestamp does not
// count toward the new interval.
func mileageSince(activities []store.Activity, bikeID string, since time.Time) float64 {
	var meters float64
	for _, a := range activities {
		if a.GearID == bikeID && a.StartDate.After(since) {
			meters += a.Distance
		}
	}
	return meters / 1000
}

func displayName(t store.MaintenanceType) string {
	if t.ID == TypeGearReplacement {
		return "Other"
	}
	return t.Name
}
