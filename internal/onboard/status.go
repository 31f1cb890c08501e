package onboard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Status is how far a carrier's onboarding has progressed.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusPartial    Status = "partial"
	StatusIncomplete Status = "incomplete"
	StatusNotFound   Status = "not_found"
)

// StatusReport describes a stored carrier's readiness for matching.
type StatusReport struct {
	CarrierID  string    `json:"carrier_id" yaml:"carrier_id"`
	Status     Status    `json:"status" yaml:"status"`
	Message    string    `json:"message" yaml:"message"`
	HasBrokers bool      `json:"has_brokers" yaml:"has_brokers"`
	HasLoads   bool      `json:"has_loads" yaml:"has_loads"`
	HasLanes   bool      `json:"has_lanes" yaml:"has_lanes"`
	Brokers    int       `json:"brokers" yaml:"brokers"`
	Loads      int       `json:"loads" yaml:"loads"`
	Lanes      int       `json:"lanes" yaml:"lanes"`
	Enriched   int       `json:"enriched_lanes" yaml:"enriched_lanes"`
	UpdatedAt  time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// Status reports whether a carrier has enough history to match against.
// A missing carrier is reported as StatusNotFound, not as an error.
func (s *Service) Status(ctx context.Context, carrierID string) (*StatusReport, error) {
	p, err := s.store.GetProfile(ctx, carrierID)
	if err != nil {
		return nil, eris.Wrapf(err, "onboard: load carrier %s", carrierID)
	}
	r := &StatusReport{CarrierID: carrierID}
	if p == nil {
		r.Status = StatusNotFound
		r.Message = "Carrier not found"
		return r, nil
	}

	r.Brokers, r.Loads, r.Lanes = len(p.Brokers), len(p.Loads), len(p.Lanes)
	r.HasBrokers, r.HasLoads, r.HasLanes = r.Brokers > 0, r.Loads > 0, r.Lanes > 0
	r.Enriched = len(p.Enrichment)
	r.UpdatedAt = p.UpdatedAt

	switch {
	case r.HasLoads && r.HasLanes:
		r.Status = StatusComplete
		r.Message = "Onboarding complete, ready for matching"
	case r.HasBrokers || r.HasLoads:
		r.Status = StatusPartial
		r.Message = "Partial data, upload load history to improve matches"
	default:
		r.Status = StatusIncomplete
		r.Message = "Insufficient data, upload more files"
	}
	return r, nil
}
