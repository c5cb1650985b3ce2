package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tabletop-map/server/models"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore handles map persistence using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and makes sure the schema exists
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		name TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		grid_columns INTEGER NOT NULL,
		grid_rows INTEGER NOT NULL,
		document JSONB NOT NULL,
		modified_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	ALTER TABLE maps ADD COLUMN IF NOT EXISTS modified_at TIMESTAMP WITH TIME ZONE;
	`

	_, err := ps.db.Exec(schema)
	return err
}

// SaveMap upserts a map document under name
func (ps *PostgresStore) SaveMap(name string, m *models.MapData) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal map %s: %w", name, err)
	}

	query := `
	INSERT INTO maps (name, version, grid_columns, grid_rows, document, modified_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (name)
	DO UPDATE SET
		version = $2, grid_columns = $3, grid_rows = $4, document = $5,
		modified_at = $6, updated_at = NOW()
	`

	_, err = ps.db.Exec(query, name, m.Version, m.Grid.Columns, m.Grid.Rows, string(doc), m.Metadata.Modified)
	if err != nil {
		return fmt.Errorf("failed to save map %s: %w", name, err)
	}
	return nil
}

// LoadMap loads a map document by name
func (ps *PostgresStore) LoadMap(name string) (*models.MapData, error) {
	var doc string
	err := ps.db.QueryRow(`SELECT document FROM maps WHERE name = $1`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrMapNotFound, name)
		}
		return nil, fmt.Errorf("failed to load map %s: %w", name, err)
	}

	var m models.MapData
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("failed to decode map %s: %w", name, err)
	}
	return &m, nil
}

// ListMaps returns a summary of every stored map sorted by name. Modified is
// the document's own metadata timestamp, not the row update time.
func (ps *PostgresStore) ListMaps() ([]MapSummary, error) {
	rows, err := ps.db.Query(`SELECT name, version, modified_at FROM maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var summaries []MapSummary
	for rows.Next() {
		var s MapSummary
		var modified sql.NullTime
		if err := rows.Scan(&s.Name, &s.Version, &modified); err != nil {
			return nil, fmt.Errorf("failed to scan map row: %w", err)
		}
		if modified.Valid {
			s.Modified = modified.Time.UTC()
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteMap removes a stored map
func (ps *PostgresStore) DeleteMap(name string) error {
	res, err := ps.db.Exec(`DELETE FROM maps WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete map %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	return nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
