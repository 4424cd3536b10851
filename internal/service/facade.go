package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"velohub/internal/analysis"
	"velohub/internal/store"
)

// Fetch category names reported on the warning channel
const (
	CategoryAthletes   = "athletes"
	CategoryActivities = "activities"
	CategoryBikes      = "bikes"
	CategoryRecords    = "service_records"
	CategorySettings   = "maintenance_settings"
	CategoryTypes      = "maintenance_types"
)

// ErrRepositoryUnavailable is returned when every batch fetch of a call
// fails, i.e. the record repository cannot be reached at all.
var ErrRepositoryUnavailable = errors.New("record repository unavailable")

// Warning reports a data category that failed to load and was replaced by
// an empty result set.
type Warning struct {
	Category string `json:"category"`
	Err      error  `json:"-"`
}

// Facade derives dashboard summaries from the record repository. Batch
// I/O per category runs concurrently; the per-athlete derivation is
// sequential in input order, so callers get deterministic result ordering.
type Facade struct {
	repo   Repository
	params analysis.Params
	log    zerolog.Logger
	now    func() time.Time
}

// NewFacade creates an analytics facade
func NewFacade(repo Repository, params analysis.Params, log zerolog.Logger) *Facade {
	return &Facade{
		repo:   repo,
		params: params,
		log:    log.With().Str("component", "analytics").Logger(),
		now:    time.Now,
	}
}

// AthleteMaintenanceSummary is the per-athlete wear report
type AthleteMaintenanceSummary struct {
	AthleteID    int64                      `json:"athlete_id"`
	AthleteName  string                     `json:"athlete_name"`
	Bikes        []analysis.BikeWearSummary `json:"bikes"`
	TotalOverdue int                        `json:"total_overdue"`
	TotalDueSoon int                        `json:"total_due_soon"`
}

// BikeUsage is the trailing-week usage of one bike
type BikeUsage struct {
	BikeID        string  `json:"bike_id"`
	BikeName      string  `json:"bike_name"`
	DistanceKm    float64 `json:"distance"`
	ActivityCount int     `json:"activity_count"`
}

// ActivitySummary is the per-athlete training report
type ActivitySummary struct {
	AthleteID        int64                       `json:"athlete_id"`
	AthleteName      string                      `json:"athlete_name"`
	TotalActivities  int                         `json:"total_activities"`
	TotalDistanceKm  float64                     `json:"total_distance"`
	TotalElevationM  float64                     `json:"total_elevation"`
	TotalTimeHours   float64                     `json:"total_time"`
	BikesUsed        []BikeUsage                 `json:"bikes_used"`
	AvgWatts         *float64                    `json:"avg_watts,omitempty"`
	MaxWatts         *float64                    `json:"max_watts,omitempty"`
	AvgHeartrate     *float64                    `json:"avg_heartrate,omitempty"`
	RecentActivities []analysis.ActivityWithLoad `json:"recent_activities"`
	FTP              float64                     `json:"ftp"`
	MaxHeartrate     *float64                    `json:"max_heartrate,omitempty"`
	TotalTSS         float64                     `json:"total_tss"`
	CTL              float64                     `json:"ctl"`
	ATL              float64                     `json:"atl"`
	TSB              float64                     `json:"tsb"`
}

// categoryFetch is one batch load; failures degrade the category to an
// empty result instead of aborting the call.
type categoryFetch struct {
	name string
	run  func(ctx context.Context) error
}

// fetchAll runs the category fetches concurrently and collects a warning
// per failed category. It returns ErrRepositoryUnavailable only when every
// category failed.
func (f *Facade) fetchAll(ctx context.Context, fetches []categoryFetch) ([]Warning, error) {
	errs := make([]error, len(fetches))

	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func(i int, fetch categoryFetch) {
			defer wg.Done()
			errs[i] = fetch.run(ctx)
		}(i, fetch)
	}
	wg.Wait()

	var warnings []Warning
	for i, err := range errs {
		if err == nil {
			continue
		}
		f.log.Warn().Err(err).Str("category", fetches[i].name).Msg("category fetch failed, degrading to empty")
		warnings = append(warnings, Warning{Category: fetches[i].name, Err: err})
	}
	if len(warnings) == len(fetches) {
		return warnings, ErrRepositoryUnavailable
	}
	return warnings, nil
}

// BuildMaintenanceSummaries assembles the wear report for an athlete
// cohort. Athletes without an active bike are omitted; a degraded data
// category is reported on the warnings list rather than failing the batch.
func (f *Facade) BuildMaintenanceSummaries(ctx context.Context, athleteIDs []int64) ([]AthleteMaintenanceSummary, []Warning, error) {
	if len(athleteIDs) == 0 {
		return nil, nil, nil
	}

	since := f.now().AddDate(0, 0, -f.params.WearLookbackDays)

	var (
		types      []store.MaintenanceType
		bikes      []store.Bike
		records    []store.ServiceRecord
		settings   []store.MaintenanceSetting
		activities []store.Activity
		athletes   []store.Athlete
	)

	warnings, err := f.fetchAll(ctx, []categoryFetch{
		{CategoryTypes, func(ctx context.Context) error {
			var err error
			types, err = f.repo.ListMaintenanceTypes(ctx)
			return err
		}},
		{CategoryBikes, func(ctx context.Context) error {
			var err error
			bikes, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.ListActiveBikes)
			return err
		}},
		{CategoryRecords, func(ctx context.Context) error {
			var err error
			records, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.ListServiceRecords)
			return err
		}},
		{CategorySettings, func(ctx context.Context) error {
			var err error
			settings, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.ListMaintenanceSettings)
			return err
		}},
		{CategoryActivities, func(ctx context.Context) error {
			var err error
			activities, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, func(ctx context.Context, ids []int64) ([]store.Activity, error) {
				return f.repo.ListActivitiesSince(ctx, ids, since)
			})
			return err
		}},
		{CategoryAthletes, func(ctx context.Context) error {
			var err error
			athletes, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.GetAthletes)
			return err
		}},
	})
	if err != nil {
		return nil, warnings, err
	}

	// no catalog means nothing is trackable
	if len(types) == 0 {
		return nil, warnings, nil
	}

	bikesByAthlete := groupBy(bikes, func(b store.Bike) int64 { return b.AthleteID })
	recordsByAthlete := groupBy(records, func(r store.ServiceRecord) int64 { return r.AthleteID })
	settingsByAthlete := groupBy(settings, func(s store.MaintenanceSetting) int64 { return s.AthleteID })
	activitiesByAthlete := groupBy(activities, func(a store.Activity) int64 { return a.AthleteID })
	athletesByID := indexBy(athletes, func(a store.Athlete) int64 { return a.ID })

	summaries := make([]AthleteMaintenanceSummary, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		athleteBikes := bikesByAthlete[id]
		if len(athleteBikes) == 0 {
			continue
		}

		summary := AthleteMaintenanceSummary{
			AthleteID:   id,
			AthleteName: athleteName(athletesByID, id),
		}
		for _, bike := range athleteBikes {
			wear := analysis.EvaluateBikeWear(bike, types, settingsByAthlete[id], recordsByAthlete[id], activitiesByAthlete[id], f.params)
			summary.TotalOverdue += wear.OverdueCount
			summary.TotalDueSoon += wear.DueSoonCount
			summary.Bikes = append(summary.Bikes, wear)
		}
		summaries = append(summaries, summary)
	}

	return summaries, warnings, nil
}

// BuildActivitySummaries assembles the training report for an athlete
// cohort. Every requested athlete appears in the result, including those
// with no activities in the window.
func (f *Facade) BuildActivitySummaries(ctx context.Context, athleteIDs []int64) ([]ActivitySummary, []Warning, error) {
	if len(athleteIDs) == 0 {
		return nil, nil, nil
	}

	evalTime := f.now()
	since := evalTime.AddDate(0, 0, -f.params.LoadLookbackDays)
	weekStart := evalTime.AddDate(0, 0, -f.params.HeadlineWindowDays)

	var (
		activities []store.Activity
		athletes   []store.Athlete
		bikes      []store.Bike
	)

	warnings, err := f.fetchAll(ctx, []categoryFetch{
		{CategoryActivities, func(ctx context.Context) error {
			var err error
			activities, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, func(ctx context.Context, ids []int64) ([]store.Activity, error) {
				return f.repo.ListActivitiesSince(ctx, ids, since)
			})
			return err
		}},
		{CategoryAthletes, func(ctx context.Context) error {
			var err error
			athletes, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.GetAthletes)
			return err
		}},
		{CategoryBikes, func(ctx context.Context) error {
			var err error
			bikes, err = fetchChunked(ctx, athleteIDs, f.params.ChunkSize, f.repo.ListActiveBikes)
			return err
		}},
	})
	if err != nil {
		return nil, warnings, err
	}

	activitiesByAthlete := groupBy(activities, func(a store.Activity) int64 { return a.AthleteID })
	athletesByID := indexBy(athletes, func(a store.Athlete) int64 { return a.ID })
	bikeNames := make(map[string]string, len(bikes))
	for _, b := range bikes {
		bikeNames[b.ID] = b.Name
	}

	summaries := make([]ActivitySummary, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		summaries = append(summaries, f.buildActivitySummary(id, athletesByID, activitiesByAthlete[id], bikeNames, evalTime, weekStart))
	}
	return summaries, warnings, nil
}

func (f *Facade) buildActivitySummary(athleteID int64, athletes map[int64]store.Athlete, activities []store.Activity, bikeNames map[string]string, evalTime, weekStart time.Time) ActivitySummary {
	ftp := f.params.DefaultFTP
	var maxHR *float64
	if athlete, ok := athletes[athleteID]; ok {
		if athlete.FTP != nil && *athlete.FTP > 0 {
			ftp = *athlete.FTP
		}
		maxHR = athlete.MaxHeartrate
	}

	annotated := analysis.AnnotateLoads(activities, ftp)

	var loadState analysis.TrainingLoadState
	if len(annotated) > 0 {
		daily := analysis.AggregateDaily(annotated)
		loadState = analysis.Integrate(daily, annotated[0].StartDate, evalTime, f.params)
	}

	summary := ActivitySummary{
		AthleteID:        athleteID,
		AthleteName:      athleteName(athletes, athleteID),
		FTP:              ftp,
		MaxHeartrate:     maxHR,
		CTL:              math.Round(loadState.CTL),
		ATL:              math.Round(loadState.ATL),
		TSB:              math.Round(loadState.TSB),
		RecentActivities: []analysis.ActivityWithLoad{},
	}

	// headline aggregates over the trailing week
	var wattsSum, hrSum float64
	var wattsCount, hrCount int
	var maxWatts float64
	usage := make(map[string]*BikeUsage)
	var usageOrder []string

	for _, a := range annotated {
		if a.StartDate.Before(weekStart) {
			continue
		}
		summary.TotalActivities++
		summary.TotalDistanceKm += a.Distance / 1000
		summary.TotalElevationM += a.TotalElevationGain
		summary.TotalTimeHours += float64(a.MovingTime) / 3600
		summary.TotalTSS += a.Load.TSS

		if a.AverageWatts != nil && *a.AverageWatts > 0 {
			wattsSum += *a.AverageWatts
			wattsCount++
		}
		if a.MaxWatts != nil && *a.MaxWatts > maxWatts {
			maxWatts = *a.MaxWatts
		}
		if a.AverageHeartrate != nil && *a.AverageHeartrate > 0 {
			hrSum += *a.AverageHeartrate
			hrCount++
		}

		if a.GearID != "" {
			u, ok := usage[a.GearID]
			if !ok {
				u = &BikeUsage{BikeID: a.GearID, BikeName: a.GearID}
				if name, ok := bikeNames[a.GearID]; ok {
					u.BikeName = name
				}
				usage[a.GearID] = u
				usageOrder = append(usageOrder, a.GearID)
			}
			u.DistanceKm += a.Distance / 1000
			u.ActivityCount++
		}
	}

	summary.TotalTSS = math.Round(summary.TotalTSS)
	if wattsCount > 0 {
		avg := wattsSum / float64(wattsCount)
		summary.AvgWatts = &avg
	}
	if maxWatts > 0 {
		summary.MaxWatts = &maxWatts
	}
	if hrCount > 0 {
		avg := hrSum / float64(hrCount)
		summary.AvgHeartrate = &avg
	}
	for _, gearID := range usageOrder {
		summary.BikesUsed = append(summary.BikesUsed, *usage[gearID])
	}

	// recent activities, most recent first, bounded
	recent := make([]analysis.ActivityWithLoad, len(annotated))
	copy(recent, annotated)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].StartDate.After(recent[j].StartDate)
	})
	if limit := f.params.RecentActivitiesCap; limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	summary.RecentActivities = recent

	return summary
}

func athleteName(athletes map[int64]store.Athlete, id int64) string {
	if a, ok := athletes[id]; ok {
		return a.DisplayName()
	}
	return store.Athlete{ID: id}.DisplayName()
}

func groupBy[T any](items []T, key func(T) int64) map[int64][]T {
	grouped := make(map[int64][]T)
	for _, item := range items {
		k := key(item)
		grouped[k] = append(grouped[k], item)
	}
	return grouped
}

func indexBy[T any](items []T, key func(T) int64) map[int64]T {
	indexed := make(map[int64]T, len(items))
	for _, item := range items {
		indexed[key(item)] = item
	}
	return indexed
}
