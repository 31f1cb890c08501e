// Package store persists carrier profiles and lane benchmarks.
package store

import (
	"context"
	"time"

	"github.com/sells-group/loadmatch/internal/model"
)

// Store is the persistence interface for onboarding and enrichment. Reads of
// absent keys return (nil, nil). Writes are single-key and last-write-wins.
type Store interface {
	// Profiles
	GetProfile(ctx context.Context, carrierID string) (*model.CarrierProfile, error)
	PutProfile(ctx context.Context, profile *model.CarrierProfile) error
	ListProfiles(ctx context.Context, limit int) ([]ProfileSummary, error)

	// Benchmarks
	GetBenchmark(ctx context.Context, laneKey string) (*model.Benchmark, error)
	PutBenchmark(ctx context.Context, b model.Benchmark) error
	PutBenchmarks(ctx context.Context, bs []model.Benchmark) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ProfileSummary is the listing view of a stored profile.
type ProfileSummary struct {
	CarrierID   string    `json:"carrier_id" yaml:"carrier_id"`
	CarrierName string    `json:"carrier_name" yaml:"carrier_name"`
	MCNumber    string    `json:"mc_number" yaml:"mc_number"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}
