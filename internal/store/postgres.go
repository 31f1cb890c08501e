package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/loadmatch/internal/db"
	"github.com/sells-group/loadmatch/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var benchmarkColumns = []string{
	"lane_key", "provider", "provider_rank", "origin", "destination",
	"distance_miles", "rate_per_mile", "transit_hours", "as_of",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS carrier_profiles (
	carrier_id   TEXT PRIMARY KEY,
	carrier_name TEXT NOT NULL DEFAULT '',
	mc_number    TEXT NOT NULL DEFAULT '',
	profile      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS benchmarks (
	lane_key       TEXT NOT NULL,
	provider       TEXT NOT NULL,
	provider_rank  INTEGER NOT NULL,
	origin         TEXT NOT NULL DEFAULT '',
	destination    TEXT NOT NULL DEFAULT '',
	distance_miles DOUBLE PRECISION NOT NULL DEFAULT 0,
	rate_per_mile  DOUBLE PRECISION NOT NULL DEFAULT 0,
	transit_hours  DOUBLE PRECISION NOT NULL DEFAULT 0,
	as_of          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (lane_key, provider)
);

CREATE INDEX IF NOT EXISTS idx_carrier_profiles_mc ON carrier_profiles(mc_number);
CREATE INDEX IF NOT EXISTS idx_carrier_profiles_updated ON carrier_profiles(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_benchmarks_rank ON benchmarks(lane_key, provider_rank DESC, as_of DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, carrierID string) (*model.CarrierProfile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM carrier_profiles WHERE carrier_id = $1`, carrierID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", carrierID)
	}
	return decodeProfile(raw)
}

func (s *PostgresStore) PutProfile(ctx context.Context, p *model.CarrierProfile) error {
	data, err := encodeProfile(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO carrier_profiles (carrier_id, carrier_name, mc_number, profile, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (carrier_id) DO UPDATE SET
			carrier_name = EXCLUDED.carrier_name,
			mc_number = EXCLUDED.mc_number,
			profile = EXCLUDED.profile,
			updated_at = EXCLUDED.updated_at`,
		p.CarrierID, p.CarrierName, p.MCNumber, data, p.CreatedAt, p.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: put profile %s", p.CarrierID)
}

func (s *PostgresStore) ListProfiles(ctx context.Context, limit int) ([]ProfileSummary, error) {
	query := `SELECT carrier_id, carrier_name, mc_number, updated_at FROM carrier_profiles
		ORDER BY updated_at DESC, carrier_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var out []ProfileSummary
	for rows.Next() {
		var ps ProfileSummary
		if err := rows.Scan(&ps.CarrierID, &ps.CarrierName, &ps.MCNumber, &ps.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile summary")
		}
		out = append(out, ps)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list profiles")
}

func (s *PostgresStore) GetBenchmark(ctx context.Context, laneKey string) (*model.Benchmark, error) {
	var b model.Benchmark
	var provider string
	err := s.pool.QueryRow(ctx,
		`SELECT lane_key, provider, origin, destination, distance_miles, rate_per_mile, transit_hours, as_of
		 FROM benchmarks WHERE lane_key = $1
		 ORDER BY provider_rank DESC, as_of DESC LIMIT 1`, laneKey,
	).Scan(&b.LaneKey, &provider, &b.Origin, &b.Destination, &b.DistanceMiles, &b.RatePerMile, &b.TransitHours, &b.AsOf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get benchmark %s", laneKey)
	}
	if b.Provider, err = model.ParseEnrichmentSource(provider); err != nil {
		return nil, eris.Wrapf(err, "postgres: benchmark %s", laneKey)
	}
	return &b, nil
}

func (s *PostgresStore) PutBenchmark(ctx context.Context, b model.Benchmark) error {
	if err := checkBenchmark(b); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO benchmarks (lane_key, provider, provider_rank, origin, destination, distance_miles, rate_per_mile, transit_hours, as_of)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (lane_key, provider) DO UPDATE SET
			origin = EXCLUDED.origin,
			destination = EXCLUDED.destination,
			distance_miles = EXCLUDED.distance_miles,
			rate_per_mile = EXCLUDED.rate_per_mile,
			transit_hours = EXCLUDED.transit_hours,
			as_of = EXCLUDED.as_of`,
		postgresBenchmarkRow(b)...,
	)
	return eris.Wrapf(err, "postgres: put benchmark %s", b.LaneKey)
}

// PutBenchmarks bulk-loads benchmarks through a COPY staging table. A later
// entry for the same lane and provider replaces an earlier one.
func (s *PostgresStore) PutBenchmarks(ctx context.Context, bs []model.Benchmark) (int64, error) {
	latest := make(map[[2]string]int, len(bs))
	rows := make([][]any, 0, len(bs))
	for _, b := range bs {
		if err := checkBenchmark(b); err != nil {
			return 0, err
		}
		k := [2]string{b.LaneKey, b.Provider.String()}
		if i, ok := latest[k]; ok {
			rows[i] = postgresBenchmarkRow(b)
			continue
		}
		latest[k] = len(rows)
		rows = append(rows, postgresBenchmarkRow(b))
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "benchmarks",
		Columns:      benchmarkColumns,
		ConflictKeys: []string{"lane_key", "provider"},
		UpdateCols:   []string{"origin", "destination", "distance_miles", "rate_per_mile", "transit_hours", "as_of"},
	}, rows)
	return n, eris.Wrap(err, "postgres: put benchmarks")
}

func postgresBenchmarkRow(b model.Benchmark) []any {
	return []any{
		b.LaneKey, b.Provider.String(), int(b.Provider), b.Origin, b.Destination,
		b.DistanceMiles, b.RatePerMile, b.TransitHours, b.AsOf.UTC(),
	}
}
