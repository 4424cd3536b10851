package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertAthlete inserts or updates an athlete profile
func (s *Store) UpsertAthlete(ctx context.Context, a *Athlete) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO athletes (id, firstname, lastname, ftp, max_heartrate, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			ftp = excluded.ftp,
			max_heartrate = excluded.max_heartrate,
			updated_at = CURRENT_TIMESTAMP
	`, a.ID, a.Firstname, a.Lastname, toNullFloat64(a.FTP), toNullFloat64(a.MaxHeartrate))
	return err
}

// GetAthlete retrieves one athlete profile by ID
func (s *Store) GetAthlete(ctx context.Context, id int64) (*Athlete, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, firstname, lastname, ftp, max_heartrate
		FROM athletes
		WHERE id = ?
	`, id)

	var a Athlete
	var ftp, maxHR sql.NullFloat64
	err := row.Scan(&a.ID, &a.Firstname, &a.Lastname, &ftp, &maxHR)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, err
	}
	a.FTP = fromNullFloat64(ftp)
	a.MaxHeartrate = fromNullFloat64(maxHR)
	return &a, nil
}

// GetAthletes retrieves athlete profiles for an ID set
func (s *Store) GetAthletes(ctx context.Context, ids []int64) ([]Athlete, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, firstname, lastname, ftp, max_heartrate
		FROM athletes
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var athletes []Athlete
	for rows.Next() {
		var a Athlete
		var ftp, maxHR sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Firstname, &a.Lastname, &ftp, &maxHR); err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		a.FTP = fromNullFloat64(ftp)
		a.MaxHeartrate = fromNullFloat64(maxHR)
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}
