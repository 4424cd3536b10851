package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"velohub/internal/store"
	"velohub/internal/strava"
)

// ActivitySource is the slice of the Strava client the sync needs.
// *strava.Client satisfies it; tests substitute fakes.
type ActivitySource interface {
	GetAthlete(ctx context.Context) (*strava.DetailedAthlete, error)
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
}

// SyncStore is the write side of the record repository used during sync
type SyncStore interface {
	UpsertAthlete(ctx context.Context, a *store.Athlete) error
	UpsertBike(ctx context.Context, b *store.Bike) error
	UpsertActivity(ctx context.Context, a *store.Activity) error
}

// SyncService pulls an athlete's profile, gear, and activities from Strava
// into the record repository
type SyncService struct {
	client ActivitySource
	store  SyncStore
	log    zerolog.Logger
}

// NewSyncService creates a sync service
func NewSyncService(client ActivitySource, st SyncStore, log zerolog.Logger) *SyncService {
	return &SyncService{
		client: client,
		store:  st,
		log:    log.With().Str("component", "sync").Logger(),
	}
}

// SyncResult summarizes one sync run
type SyncResult struct {
	AthleteID         int64
	BikesStored       int
	ActivitiesFetched int
	ActivitiesStored  int
	Errors            []error
}

// SyncAthlete pulls the profile and gear, then all activities after the
// given watermark. Per-record store failures are collected, not fatal.
func (s *SyncService) SyncAthlete(ctx context.Context, after time.Time) (*SyncResult, error) {
	result := &SyncResult{}

	athlete, err := s.client.GetAthlete(ctx)
	if err != nil {
		return result, fmt.Errorf("fetching athlete: %w", err)
	}
	result.AthleteID = athlete.ID

	if err := s.store.UpsertAthlete(ctx, convertAthlete(athlete)); err != nil {
		return result, fmt.Errorf("storing athlete %d: %w", athlete.ID, err)
	}

	for i := range athlete.Bikes {
		bike := convertBike(athlete.ID, &athlete.Bikes[i])
		if err := s.store.UpsertBike(ctx, bike); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing bike %s: %w", bike.ID, err))
			continue
		}
		result.BikesStored++
	}

	if err := s.syncActivities(ctx, athlete.ID, after, result); err != nil {
		return result, err
	}

	s.log.Info().
		Int64("athlete_id", athlete.ID).
		Int("bikes", result.BikesStored).
		Int("activities", result.ActivitiesStored).
		Int("errors", len(result.Errors)).
		Msg("sync complete")

	return result, nil
}

func (s *SyncService) syncActivities(ctx context.Context, athleteID int64, after time.Time, result *SyncResult) error {
	page := 1
	perPage := 100

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.client.GetActivities(ctx, after, page, perPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for i := range activities {
			a := convertActivity(athleteID, &activities[i])
			if err := s.store.UpsertActivity(ctx, a); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.ActivitiesStored++
		}

		s.log.Debug().Int("page", page).Int("fetched", result.ActivitiesFetched).Msg("synced activity page")

		if len(activities) < perPage {
			break
		}

		page++
	}

	return nil
}

func convertAthlete(a *strava.DetailedAthlete) *store.Athlete {
	out := &store.Athlete{
		ID:        a.ID,
		Firstname: a.Firstname,
		Lastname:  a.Lastname,
	}
	if a.FTP > 0 {
		ftp := a.FTP
		out.FTP = &ftp
	}
	return out
}

func convertBike(athleteID int64, g *strava.SummaryGear) *store.Bike {
	return &store.Bike{
		ID:                g.ID,
		AthleteID:         athleteID,
		Name:              g.Name,
		Distance:          g.Distance,
		ConvertedDistance: g.ConvertedDistance,
		Retired:           g.Retired,
	}
}

func convertActivity(athleteID int64, a *strava.Activity) *store.Activity {
	out := &store.Activity{
		ID:                 a.ID,
		AthleteID:          athleteID,
		Name:               a.Name,
		SportType:          a.SportType,
		GearID:             a.GearID,
		StartDate:          a.StartDate,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		TotalElevationGain: a.TotalElevationGain,
	}
	// Strava omits these fields rather than sending zeros, so a zero
	// means "not measured" and maps to NULL.
	if a.AverageWatts > 0 {
		v := a.AverageWatts
		out.AverageWatts = &v
	}
	if a.WeightedAverageWatts > 0 {
		v := a.WeightedAverageWatts
		out.WeightedAverageWatts = &v
	}
	if a.MaxWatts > 0 {
		v := a.MaxWatts
		out.MaxWatts = &v
	}
	if a.AverageHeartrate > 0 {
		v := a.AverageHeartrate
		out.AverageHeartrate = &v
	}
	if a.MaxHeartrate > 0 {
		v := a.MaxHeartrate
		out.MaxHeartrate = &v
	}
	if a.SufferScore > 0 {
		v := a.SufferScore
		out.SufferScore = &v
	}
	return out
}
