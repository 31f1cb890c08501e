package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/loadmatch/internal/model"
)

// sqliteTime is a fixed-width UTC layout so stored timestamps sort as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS carrier_profiles (
	carrier_id   TEXT PRIMARY KEY,
	carrier_name TEXT NOT NULL DEFAULT '',
	mc_number    TEXT NOT NULL DEFAULT '',
	profile      TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS benchmarks (
	lane_key       TEXT NOT NULL,
	provider       TEXT NOT NULL,
	provider_rank  INTEGER NOT NULL,
	origin         TEXT NOT NULL DEFAULT '',
	destination    TEXT NOT NULL DEFAULT '',
	distance_miles REAL NOT NULL DEFAULT 0,
	rate_per_mile  REAL NOT NULL DEFAULT 0,
	transit_hours  REAL NOT NULL DEFAULT 0,
	as_of          TEXT NOT NULL,
	PRIMARY KEY (lane_key, provider)
);

CREATE INDEX IF NOT EXISTS idx_carrier_profiles_mc ON carrier_profiles(mc_number);
CREATE INDEX IF NOT EXISTS idx_carrier_profiles_updated ON carrier_profiles(updated_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetProfile(ctx context.Context, carrierID string) (*model.CarrierProfile, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM carrier_profiles WHERE carrier_id = ?`, carrierID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", carrierID)
	}
	return decodeProfile([]byte(raw))
}

func (s *SQLiteStore) PutProfile(ctx context.Context, p *model.CarrierProfile) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO carrier_profiles (carrier_id, carrier_name, mc_number, profile, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (carrier_id) DO UPDATE SET
			carrier_name = excluded.carrier_name,
			mc_number = excluded.mc_number,
			profile = excluded.profile,
			updated_at = excluded.updated_at`,
		p.CarrierID, p.CarrierName, p.MCNumber, string(data),
		formatSQLiteTime(p.CreatedAt), formatSQLiteTime(p.UpdatedAt),
	)
	return eris.Wrapf(err, "sqlite: put profile %s", p.CarrierID)
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, limit int) ([]ProfileSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT carrier_id, carrier_name, mc_number, updated_at FROM carrier_profiles
		 ORDER BY updated_at DESC, carrier_id LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close() //nolint:errcheck

	var out []ProfileSummary
	for rows.Next() {
		var ps ProfileSummary
		var updated string
		if err := rows.Scan(&ps.CarrierID, &ps.CarrierName, &ps.MCNumber, &updated); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile summary")
		}
		if ps.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list profiles")
}

func (s *SQLiteStore) GetBenchmark(ctx context.Context, laneKey string) (*model.Benchmark, error) {
	var b model.Benchmark
	var provider, asOf string
	err := s.db.QueryRowContext(ctx,
		`SELECT lane_key, provider, origin, destination, distance_miles, rate_per_mile, transit_hours, as_of
		 FROM benchmarks WHERE lane_key = ?
		 ORDER BY provider_rank DESC, as_of DESC LIMIT 1`, laneKey,
	).Scan(&b.LaneKey, &provider, &b.Origin, &b.Destination, &b.DistanceMiles, &b.RatePerMile, &b.TransitHours, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get benchmark %s", laneKey)
	}
	if b.Provider, err = model.ParseEnrichmentSource(provider); err != nil {
		return nil, eris.Wrapf(err, "sqlite: benchmark %s", laneKey)
	}
	if b.AsOf, err = parseSQLiteTime(asOf); err != nil {
		return nil, err
	}
	return &b, nil
}

const sqliteUpsertBenchmark = `
INSERT INTO benchmarks (lane_key, provider, provider_rank, origin, destination, distance_miles, rate_per_mile, transit_hours, as_of)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (lane_key, provider) DO UPDATE SET
	origin = excluded.origin,
	destination = excluded.destination,
	distance_miles = excluded.distance_miles,
	rate_per_mile = excluded.rate_per_mile,
	transit_hours = excluded.transit_hours,
	as_of = excluded.as_of`

func (s *SQLiteStore) PutBenchmark(ctx context.Context, b model.Benchmark) error {
	if err := checkBenchmark(b); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, sqliteUpsertBenchmark, benchmarkArgs(b)...)
	return eris.Wrapf(err, "sqlite: put benchmark %s", b.LaneKey)
}

func (s *SQLiteStore) PutBenchmarks(ctx context.Context, bs []model.Benchmark) (int64, error) {
	for _, b := range bs {
		if err := checkBenchmark(b); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin benchmarks tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertBenchmark)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare benchmark upsert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, b := range bs {
		if _, err := stmt.ExecContext(ctx, benchmarkArgs(b)...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: put benchmark %s", b.LaneKey)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit benchmarks")
	}
	return int64(len(bs)), nil
}

func benchmarkArgs(b model.Benchmark) []any {
	return []any{
		b.LaneKey, b.Provider.String(), int(b.Provider), b.Origin, b.Destination,
		b.DistanceMiles, b.RatePerMile, b.TransitHours, formatSQLiteTime(b.AsOf),
	}
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTime, s)
	return t, eris.Wrapf(err, "sqlite: parse time %q", s)
}

func encodeProfile(p *model.CarrierProfile) ([]byte, error) {
	if p == nil || p.CarrierID == "" {
		return nil, eris.New("store: profile needs a carrier id")
	}
	data, err := json.Marshal(p)
	return data, eris.Wrapf(err, "store: marshal profile %s", p.CarrierID)
}

func decodeProfile(data []byte) (*model.CarrierProfile, error) {
	var p model.CarrierProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal profile")
	}
	return &p, nil
}

func checkBenchmark(b model.Benchmark) error {
	if b.LaneKey == "" {
		return eris.New("store: benchmark needs a lane key")
	}
	if !b.Provider.IsBenchmark() {
		return eris.Errorf("store: %s is not a benchmark provider", b.Provider)
	}
	return nil
}
