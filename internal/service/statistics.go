package service

import (
	"context"
	"sort"

	"velohub/internal/store"
)

// MaintenanceStatistic aggregates a maintenance type across a cohort
type MaintenanceStatistic struct {
	TypeID        string  `json:"type_id"`
	TypeName      string  `json:"type_name"`
	TotalCount    int     `json:"total_count"`
	TotalCost     float64 `json:"total_cost"`
	AvgIntervalKm float64 `json:"avg_interval_km"`
	AthletesCount int     `json:"athletes_count"`
}

// BuildMaintenanceStatistics reports service-record counts and spend per
// maintenance type across the cohort, busiest type first. Types without
// any records are omitted.
func (f *Facade) BuildMaintenanceStatistics(ctx context.Context, athleteIDs []int64) ([]MaintenanceStatistic, []Warning, error) {
	if len(athleteIDs) == 0 {
		return nil, nil, nil
	}

	var (
		types   []store.MaintenanceType
		records []store.ServiceRecord
	)

	warnings, err := f.fetchAll(ctx, []categoryFetch{
		{CategoryTypes, func(ctx context.Context) error {
			var err error
			types, err = f.repo.ListMaintenanceTypes(ctx)
			return err
		}},
		{CategoryRecords, func(ctx context.Context) error {
			var err error
			records, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.ListServiceRecords)
			return err
		}},
	})
	if err != nil {
		return nil, warnings, err
	}

	var stats []MaintenanceStatistic
	for _, t := range types {
		stat := MaintenanceStatistic{
			TypeID:        t.ID,
			TypeName:      t.Name,
			AvgIntervalKm: t.DefaultIntervalKm,
		}
		athletes := make(map[int64]struct{})
		for _, r := range records {
			if !r.HasCode(t.ID) {
				continue
			}
			stat.TotalCount++
			stat.TotalCost += r.Cost
			athletes[r.AthleteID] = struct{}{}
		}
		if stat.TotalCount == 0 {
			continue
		}
		stat.AthletesCount = len(athletes)
		stats = append(stats, stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalCount > stats[j].TotalCount
	})
	return stats, warnings, nil
}
