// Package onboard runs the carrier pipeline end to end: normalize booking
// records into a profile, enrich its lanes, persist it, and later rank
// candidate loads against it.
package onboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/enrich"
	"github.com/sells-group/loadmatch/internal/match"
	"github.com/sells-group/loadmatch/internal/model"
	"github.com/sells-group/loadmatch/internal/normalize"
	"github.com/sells-group/loadmatch/internal/store"
)

// Service wires the three engines to a store. It is safe for concurrent use;
// the enrichment cache inside the enricher is shared by all calls.
type Service struct {
	store      store.Store
	normalizer *normalize.Engine
	enricher   *enrich.Engine
	matcher    *match.Engine
	now        func() time.Time
}

// New creates a Service.
func New(st store.Store, n *normalize.Engine, e *enrich.Engine, m *match.Engine) *Service {
	return &Service{store: st, normalizer: n, enricher: e, matcher: m, now: time.Now}
}

// WithNow sets a fixed time for testing.
func (s *Service) WithNow(t time.Time) *Service {
	s.now = func() time.Time { return t }
	return s
}

// Request is one onboarding upload. An empty CarrierID creates a new
// carrier; an existing one adds the records to that carrier's history.
type Request struct {
	CarrierID   string            `json:"carrier_id,omitempty"`
	CarrierName string            `json:"carrier_name,omitempty"`
	MCNumber    string            `json:"mc_number,omitempty"`
	Records     []model.RawRecord `json:"records"`

	// MustExist rejects the request with model.ErrNotFound instead of
	// creating the carrier when CarrierID is not stored.
	MustExist bool `json:"-"`
}

// Result reports what onboarding produced.
type Result struct {
	CarrierID   string                `json:"carrier_id"`
	Profile     *model.CarrierProfile `json:"profile"`
	Warnings    []model.Warning       `json:"warnings"`
	Normalize   normalize.Stats       `json:"normalize"`
	Enrich      enrich.Stats          `json:"enrich"`
	RatesFilled int                   `json:"rates_filled"`
}

// Onboard normalizes req.Records (plus the carrier's stored history, if
// any), enriches every lane, fills missing load rates from the enrichment and
// saves the profile. Per-record problems are returned as warnings.
func (s *Service) Onboard(ctx context.Context, req Request) (*Result, error) {
	log := zap.L().With(zap.String("component", "onboard"))

	var existing *model.CarrierProfile
	if req.CarrierID != "" {
		p, err := s.store.GetProfile(ctx, req.CarrierID)
		if err != nil {
			return nil, eris.Wrapf(err, "onboard: load carrier %s", req.CarrierID)
		}
		existing = p
	}
	if req.MustExist && existing == nil {
		return nil, eris.Wrapf(model.ErrNotFound, "onboard: carrier %q", req.CarrierID)
	}

	records := req.Records
	if existing != nil {
		records = append(normalize.Flatten(existing), req.Records...)
	}

	norm := s.normalizer.Normalize(records)
	profile := norm.Profile

	enriched := s.enricher.EnrichLanes(ctx, profile.Lanes)
	profile = profile.WithEnrichment(enriched.Data)
	filled := enrich.FillMissingRates(profile.Loads, profile.Enrichment)

	now := s.now().UTC()
	profile.CarrierID = req.CarrierID
	profile.CarrierName = req.CarrierName
	profile.MCNumber = req.MCNumber
	profile.CreatedAt = now
	if existing != nil {
		profile.CreatedAt = existing.CreatedAt
		profile.CarrierName = firstNonEmpty(req.CarrierName, existing.CarrierName)
		profile.MCNumber = firstNonEmpty(req.MCNumber, existing.MCNumber)
	}
	if profile.CarrierID == "" {
		profile.CarrierID = uuid.New().String()
	}
	profile.UpdatedAt = now

	if err := s.store.PutProfile(ctx, profile); err != nil {
		return nil, eris.Wrapf(err, "onboard: save carrier %s", profile.CarrierID)
	}

	warnings := append(norm.Warnings, enriched.Warnings...)
	log.Info("onboard: carrier saved",
		zap.String("carrier_id", profile.CarrierID),
		zap.Int("records", len(req.Records)),
		zap.Int("brokers", len(profile.Brokers)),
		zap.Int("loads", len(profile.Loads)),
		zap.Int("lanes", len(profile.Lanes)),
		zap.Int("rates_filled", filled),
		zap.Int("warnings", len(warnings)),
	)

	return &Result{
		CarrierID:   profile.CarrierID,
		Profile:     profile,
		Warnings:    warnings,
		Normalize:   norm.Stats,
		Enrich:      enriched.Stats,
		RatesFilled: filled,
	}, nil
}

// Profile returns a stored profile or an error wrapping model.ErrNotFound.
func (s *Service) Profile(ctx context.Context, carrierID string) (*model.CarrierProfile, error) {
	p, err := s.store.GetProfile(ctx, carrierID)
	if err != nil {
		return nil, eris.Wrapf(err, "onboard: load carrier %s", carrierID)
	}
	if p == nil {
		return nil, eris.Wrapf(model.ErrNotFound, "onboard: carrier %s", carrierID)
	}
	return p, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Carriers lists stored carriers, most recently updated first. A limit of
// zero lists all of them.
func (s *Service) Carriers(ctx context.Context, limit int) ([]store.ProfileSummary, error) {
	list, err := s.store.ListProfiles(ctx, limit)
	if err != nil {
		return nil, eris.Wrap(err, "onboard: list carriers")
	}
	if list == nil {
		list = []store.ProfileSummary{}
	}
	return list, nil
}
