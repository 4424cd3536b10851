package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertActivity inserts or updates an activity
func (s *Store) UpsertActivity(ctx context.Context, a *Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (
			id, athlete_id, name, sport_type, gear_id, start_date,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_watts, weighted_average_watts, max_watts,
			average_heartrate, max_heartrate, suffer_score, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			sport_type = excluded.sport_type,
			gear_id = excluded.gear_id,
			start_date = excluded.start_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_watts = excluded.average_watts,
			weighted_average_watts = excluded.weighted_average_watts,
			max_watts = excluded.max_watts,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			suffer_score = excluded.suffer_score,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.SportType, toNullString(a.GearID),
		a.StartDate.Format(time.RFC3339), a.Distance, a.MovingTime, a.ElapsedTime,
		a.TotalElevationGain, toNullFloat64(a.AverageWatts),
		toNullFloat64(a.WeightedAverageWatts), toNullFloat64(a.MaxWatts),
		toNullFloat64(a.AverageHeartrate), toNullFloat64(a.MaxHeartrate),
		toNullFloat64(a.SufferScore),
	)
	return err
}

// ListActivitiesSince returns activities for an athlete-id set with a
// start-date lower bound, ordered by start date ascending.
func (s *Store) ListActivitiesSince(ctx context.Context, athleteIDs []int64, since time.Time) ([]Activity, error) {
	if len(athleteIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(athleteIDs)
	args = append(args, since.Format(time.RFC3339))

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, athlete_id, name, sport_type, gear_id, start_date,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_watts, weighted_average_watts, max_watts,
			average_heartrate, max_heartrate, suffer_score
		FROM activities
		WHERE athlete_id IN (`+placeholders+`) AND start_date >= ?
		ORDER BY start_date ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func scanActivity(rows *sql.Rows) (*Activity, error) {
	var a Activity
	var gearID sql.NullString
	var startDate string
	var elevation sql.NullFloat64
	var avgWatts, weightedWatts, maxWatts, avgHR, maxHR, suffer sql.NullFloat64

	err := rows.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.SportType, &gearID, &startDate,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &elevation,
		&avgWatts, &weightedWatts, &maxWatts, &avgHR, &maxHR, &suffer,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning activity: %w", err)
	}

	a.StartDate, err = parseTime(startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}

	a.GearID = gearID.String
	if elevation.Valid {
		a.TotalElevationGain = elevation.Float64
	}
	a.AverageWatts = fromNullFloat64(avgWatts)
	a.WeightedAverageWatts = fromNullFloat64(weightedWatts)
	a.MaxWatts = fromNullFloat64(maxWatts)
	a.AverageHeartrate = fromNullFloat64(avgHR)
	a.MaxHeartrate = fromNullFloat64(maxHR)
	a.SufferScore = fromNullFloat64(suffer)
	return &a, nil
}
