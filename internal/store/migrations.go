package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Athlete profiles (synced from Strava plus shop-entered FTP/HR)
		`CREATE TABLE IF NOT EXISTS athletes (
			id INTEGER PRIMARY KEY,
			firstname TEXT NOT NULL DEFAULT '',
			lastname TEXT NOT NULL DEFAULT '',
			ftp REAL,
			max_heartrate REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activity summaries (from /athlete/activities)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			sport_type TEXT NOT NULL,
			gear_id TEXT,
			start_date TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			total_elevation_gain REAL,
			average_watts REAL,
			weighted_average_watts REAL,
			max_watts REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			suffer_score REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_athlete ON activities(athlete_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_gear ON activities(gear_id)`,

		// Bikes (Strava gear, plus the retired flag set in the console)
		`CREATE TABLE IF NOT EXISTS bikes (
			id TEXT PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			distance REAL NOT NULL DEFAULT 0,
			converted_distance REAL NOT NULL DEFAULT 0,
			retired INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bikes_athlete ON bikes(athlete_id)`,

		// Maintenance type catalog, shared across athletes
		`CREATE TABLE IF NOT EXISTS maintenance_types (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			default_interval_km REAL NOT NULL DEFAULT 0,
			estimated_lifespan_km REAL,
			sort_order INTEGER NOT NULL DEFAULT 0
		)`,

		// Per-bike interval overrides
		`CREATE TABLE IF NOT EXISTS maintenance_settings (
			athlete_id INTEGER NOT NULL,
			bike_id TEXT NOT NULL,
			maintenance_type_id TEXT NOT NULL,
			custom_interval_km REAL NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (bike_id, maintenance_type_id)
		)`,

		// Service history; maintenance_type keeps the upstream comma-joined
		// code list
		`CREATE TABLE IF NOT EXISTS service_records (
			id TEXT PRIMARY KEY,
			bike_id TEXT NOT NULL,
			athlete_id INTEGER NOT NULL,
			service_date TEXT NOT NULL,
			maintenance_type TEXT NOT NULL,
			cost REAL NOT NULL DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_service_records_athlete ON service_records(athlete_id, service_date)`,
		`CREATE INDEX IF NOT EXISTS idx_service_records_bike ON service_records(bike_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
