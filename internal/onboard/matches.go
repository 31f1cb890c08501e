package onboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/match"
	"github.com/sells-group/loadmatch/internal/model"
)

// MatchResult is a ranked candidate list for one carrier.
type MatchResult struct {
	CarrierID string              `json:"carrier_id" yaml:"carrier_id"`
	Matches   []match.ScoredMatch `json:"matches" yaml:"matches"`
	Summary   match.Summary       `json:"summary" yaml:"summary"`
	Warnings  []model.Warning     `json:"warnings" yaml:"warnings"`
}

// Candidates normalizes candidate load records into loads. Duplicates
// collapse by load id the same way history does.
func (s *Service) Candidates(records []model.RawRecord) ([]model.Load, []model.Warning) {
	res := s.normalizer.Normalize(records)
	return res.Profile.Loads, res.Warnings
}

// Matches ranks candidates for a stored carrier. Candidate lanes are
// enriched first so rate quality can be judged on lanes the carrier has
// never run. The stored profile is not modified.
func (s *Service) Matches(ctx context.Context, carrierID string, candidates []model.Load, limit int) (*MatchResult, error) {
	profile, err := s.Profile(ctx, carrierID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var lanes []model.Lane
	for _, c := range candidates {
		k := c.Origin + "|" + c.Destination
		if seen[k] || c.Origin == "" || c.Destination == "" {
			continue
		}
		seen[k] = true
		lanes = append(lanes, model.Lane{Origin: c.Origin, Destination: c.Destination})
	}
	enriched := s.enricher.EnrichLanes(ctx, lanes)

	matches := s.matcher.MatchLoads(profile.WithEnrichment(enriched.Data), candidates, limit)
	summary := s.matcher.Summarize(matches)

	zap.L().Info("onboard: matches ranked",
		zap.String("component", "onboard"),
		zap.String("carrier_id", carrierID),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(matches)),
		zap.Int("high_confidence", summary.HighConfidence),
	)

	return &MatchResult{
		CarrierID: carrierID,
		Matches:   matches,
		Summary:   summary,
		Warnings:  enriched.Warnings,
	}, nil
}
