package store

import (
	"context"
	"fmt"
)

// UpsertBike inserts or updates a bike
func (s *Store) UpsertBike(ctx context.Context, b *Bike) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bikes (id, athlete_id, name, distance, converted_distance, retired, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			distance = excluded.distance,
			converted_distance = excluded.converted_distance,
			retired = excluded.retired,
			updated_at = CURRENT_TIMESTAMP
	`, b.ID, b.AthleteID, b.Name, b.Distance, b.ConvertedDistance, boolToInt(b.Retired))
	return err
}

// SetBikeRetired flips the console's retired flag on a bike
func (s *Store) SetBikeRetired(ctx context.Context, bikeID string, retired bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE bikes SET retired = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, boolToInt(retired), bikeID)
	return err
}

// ListActiveBikes returns non-retired bikes for an athlete-id set
func (s *Store) ListActiveBikes(ctx context.Context, athleteIDs []int64) ([]Bike, error) {
	if len(athleteIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(athleteIDs)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, athlete_id, name, distance, converted_distance, retired
		FROM bikes
		WHERE athlete_id IN (`+placeholders+`) AND retired = 0
		ORDER BY athlete_id, name
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bikes []Bike
	for rows.Next() {
		var b Bike
		var retired int
		if err := rows.Scan(&b.ID, &b.AthleteID, &b.Name, &b.Distance, &b.ConvertedDistance, &retired); err != nil {
			return nil, fmt.Errorf("scanning bike: %w", err)
		}
		b.Retired = retired != 0
		bikes = append(bikes, b)
	}
	return bikes, rows.Err()
}
