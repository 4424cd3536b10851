package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertMaintenanceType inserts or updates a catalog entry
func (s *Store) UpsertMaintenanceType(ctx context.Context, t *MaintenanceType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO maintenance_types (id, name, default_interval_km, estimated_lifespan_km, sort_order)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			default_interval_km = excluded.default_interval_km,
			estimated_lifespan_km = excluded.estimated_lifespan_km,
			sort_order = excluded.sort_order
	`, t.ID, t.Name, t.DefaultIntervalKm, toNullFloat64(t.EstimatedLifespanKm), t.SortOrder)
	return err
}

// ListMaintenanceTypes returns the shared catalog ordered by sort order
func (s *Store) ListMaintenanceTypes(ctx context.Context) ([]MaintenanceType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, default_interval_km, estimated_lifespan_km, sort_order
		FROM maintenance_types
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []MaintenanceType
	for rows.Next() {
		var t MaintenanceType
		var lifespan sql.NullFloat64
		if err := rows.Scan(&t.ID, &t.Name, &t.DefaultIntervalKm, &lifespan, &t.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning maintenance type: %w", err)
		}
		t.EstimatedLifespanKm = fromNullFloat64(lifespan)
		types = append(types, t)
	}
	return types, rows.Err()
}

// UpsertMaintenanceSetting stores a per-bike interval override
func (s *Store) UpsertMaintenanceSetting(ctx context.Context, m *MaintenanceSetting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO maintenance_settings (athlete_id, bike_id, maintenance_type_id, custom_interval_km, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(bike_id, maintenance_type_id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			custom_interval_km = excluded.custom_interval_km,
			updated_at = CURRENT_TIMESTAMP
	`, m.AthleteID, m.BikeID, m.MaintenanceTypeID, m.CustomIntervalKm)
	return err
}

// ListMaintenanceSettings returns interval overrides for an athlete-id set
func (s *Store) ListMaintenanceSettings(ctx context.Context, athleteIDs []int64) ([]MaintenanceSetting, error) {
	if len(athleteIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(athleteIDs)
	rows, err := s.db.QueryContext(ctx, `
		SELECT athlete_id, bike_id, maintenance_type_id, custom_interval_km
		FROM maintenance_settings
		WHERE athlete_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []MaintenanceSetting
	for rows.Next() {
		var m MaintenanceSetting
		if err := rows.Scan(&m.AthleteID, &m.BikeID, &m.MaintenanceTypeID, &m.CustomIntervalKm); err != nil {
			return nil, fmt.Errorf("scanning maintenance setting: %w", err)
		}
		settings = append(settings, m)
	}
	return settings, rows.Err()
}

// InsertServiceRecord stores one maintenance event. A missing ID gets a
// generated one.
func (s *Store) InsertServiceRecord(ctx context.Context, r *ServiceRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_records (id, bike_id, athlete_id, service_date, maintenance_type, cost)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.BikeID, r.AthleteID, r.ServiceDate.Format(time.RFC3339), joinTypeCodes(r.TypeCodes), r.Cost)
	return err
}

// ListServiceRecords returns service history for an athlete-id set,
// most recent first.
func (s *Store) ListServiceRecords(ctx context.Context, athleteIDs []int64) ([]ServiceRecord, error) {
	if len(athleteIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(athleteIDs)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bike_id, athlete_id, service_date, maintenance_type, cost
		FROM service_records
		WHERE athlete_id IN (`+placeholders+`)
		ORDER BY service_date DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ServiceRecord
	for rows.Next() {
		var r ServiceRecord
		var serviceDate, codes string
		if err := rows.Scan(&r.ID, &r.BikeID, &r.AthleteID, &serviceDate, &codes, &r.Cost); err != nil {
			return nil, fmt.Errorf("scanning service record: %w", err)
		}
		r.ServiceDate, err = parseTime(serviceDate)
		if err != nil {
			return nil, fmt.Errorf("parsing service_date %q: %w", serviceDate, err)
		}
		r.TypeCodes = splitTypeCodes(codes)
		records = append(records, r)
	}
	return records, rows.Err()
}
