package match

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/model"
)

// DefaultConfig returns a config.MatchConfig with the default weights.
// A candidate earning every signal scores 0.95.
func DefaultConfig() config.MatchConfig {
	return config.MatchConfig{
		// History.
		PastBrokerWeight:      0.25,
		BrokerFrequencyWeight: 0.05,
		BrokerFrequencyCap:    4,
		ExactLaneWeight:       0.30,
		ReverseLaneWeight:     0.15,

		// Preferences.
		PreferredLaneWeight:      0.10,
		PreferredBrokerWeight:    0.10,
		PreferredEquipmentWeight: 0.05,

		// Rate vs. benchmark.
		RateQualityWeight:  0.10,
		RateRatioThreshold: 1.0,
		RateRatioBand:      0.2,

		SparseBaseline:      0.10,
		SparseLoadThreshold: 5,

		HighConfidence: 0.7,
		Workers:        8,
		DefaultLimit:   25,
	}
}

// ValidateConfig checks that a MatchConfig is internally consistent.
func ValidateConfig(c config.MatchConfig) error {
	var errs []string

	weights := []struct {
		name string
		v    float64
	}{
		{"past_broker_weight", c.PastBrokerWeight},
		{"broker_frequency_weight", c.BrokerFrequencyWeight},
		{"exact_lane_weight", c.ExactLaneWeight},
		{"reverse_lane_weight", c.ReverseLaneWeight},
		{"preferred_lane_weight", c.PreferredLaneWeight},
		{"preferred_broker_weight", c.PreferredBrokerWeight},
		{"preferred_equipment_weight", c.PreferredEquipmentWeight},
		{"rate_quality_weight", c.RateQualityWeight},
		{"sparse_baseline", c.SparseBaseline},
		{"high_confidence", c.HighConfidence},
	}
	for _, w := range weights {
		if w.v < 0 || w.v > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1", w.name))
		}
	}

	// A reverse lane is weaker evidence than the lane itself.
	if c.ReverseLaneWeight > c.ExactLaneWeight {
		errs = append(errs, "reverse_lane_weight must be <= exact_lane_weight")
	}
	if c.BrokerFrequencyCap < 1 {
		errs = append(errs, "broker_frequency_cap must be >= 1")
	}
	if c.RateRatioThreshold <= 0 {
		errs = append(errs, "rate_ratio_threshold must be > 0")
	}
	if c.RateRatioBand <= 0 || c.RateRatioBand >= c.RateRatioThreshold {
		errs = append(errs, "rate_ratio_band must be > 0 and < rate_ratio_threshold")
	}
	if c.SparseLoadThreshold < 0 {
		errs = append(errs, "sparse_load_threshold must be >= 0")
	}
	if c.Workers < 1 {
		errs = append(errs, "workers must be >= 1")
	}
	if c.DefaultLimit < 0 {
		errs = append(errs, "default_limit must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Wrapf(model.ErrInvalidConfig, "match: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadWeights overlays the YAML file at path on base. Keys missing from the
// file keep their base value.
func LoadWeights(path string, base config.MatchConfig) (config.MatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "match: read weights %s", path)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, eris.Wrapf(err, "match: parse weights %s", path)
	}
	if err := ValidateConfig(cfg); err != nil {
		return base, err
	}
	return cfg, nil
}
