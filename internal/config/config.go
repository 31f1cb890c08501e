package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port              int      `yaml:"port" mapstructure:"port"`
	CORSOrigins       []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int      `yaml:"burst" mapstructure:"burst"`
	MaxBodyBytes      int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NormalizeConfig sizes the preference lists extracted from load history.
type NormalizeConfig struct {
	PreferredLanes     int `yaml:"preferred_lanes" mapstructure:"preferred_lanes"`
	PreferredBrokers   int `yaml:"preferred_brokers" mapstructure:"preferred_brokers"`
	PreferredEquipment int `yaml:"preferred_equipment" mapstructure:"preferred_equipment"`
}

// EnrichConfig controls confidence bands and the heuristic lane estimator.
type EnrichConfig struct {
	BenchmarkMaxConfidence float64 `yaml:"benchmark_max_confidence" mapstructure:"benchmark_max_confidence"`
	BenchmarkMinConfidence float64 `yaml:"benchmark_min_confidence" mapstructure:"benchmark_min_confidence"`
	BenchmarkHalfLifeDays  int     `yaml:"benchmark_half_life_days" mapstructure:"benchmark_half_life_days"`
	CityConfidence         float64 `yaml:"city_confidence" mapstructure:"city_confidence"`
	StateConfidence        float64 `yaml:"state_confidence" mapstructure:"state_confidence"`
	AverageSpeedMPH        float64 `yaml:"average_speed_mph" mapstructure:"average_speed_mph"`
	CircuityFactor         float64 `yaml:"circuity_factor" mapstructure:"circuity_factor"`
	MinDistanceMiles       float64 `yaml:"min_distance_miles" mapstructure:"min_distance_miles"`
	MarketSpread           float64 `yaml:"market_spread" mapstructure:"market_spread"`
}

// MatchConfig holds the signal weights and limits of the matching engine.
type MatchConfig struct {
	PastBrokerWeight         float64 `yaml:"past_broker_weight" mapstructure:"past_broker_weight"`
	BrokerFrequencyWeight    float64 `yaml:"broker_frequency_weight" mapstructure:"broker_frequency_weight"`
	BrokerFrequencyCap       int     `yaml:"broker_frequency_cap" mapstructure:"broker_frequency_cap"`
	ExactLaneWeight          float64 `yaml:"exact_lane_weight" mapstructure:"exact_lane_weight"`
	ReverseLaneWeight        float64 `yaml:"reverse_lane_weight" mapstructure:"reverse_lane_weight"`
	PreferredLaneWeight      float64 `yaml:"preferred_lane_weight" mapstructure:"preferred_lane_weight"`
	PreferredBrokerWeight    float64 `yaml:"preferred_broker_weight" mapstructure:"preferred_broker_weight"`
	PreferredEquipmentWeight float64 `yaml:"preferred_equipment_weight" mapstructure:"preferred_equipment_weight"`
	RateQualityWeight        float64 `yaml:"rate_quality_weight" mapstructure:"rate_quality_weight"`
	RateRatioThreshold       float64 `yaml:"rate_ratio_threshold" mapstructure:"rate_ratio_threshold"`
	RateRatioBand            float64 `yaml:"rate_ratio_band" mapstructure:"rate_ratio_band"`
	SparseBaseline           float64 `yaml:"sparse_baseline" mapstructure:"sparse_baseline"`
	SparseLoadThreshold      int     `yaml:"sparse_load_threshold" mapstructure:"sparse_load_threshold"`
	HighConfidence           float64 `yaml:"high_confidence" mapstructure:"high_confidence"`
	Workers                  int     `yaml:"workers" mapstructure:"workers"`
	DefaultLimit             int     `yaml:"default_limit" mapstructure:"default_limit"`
}

// Validate checks the settings a command needs before it starts work.
// Engine settings are validated by the engines themselves.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.MinConns < 0 || (c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns) {
		errs = append(errs, "store.min_conns must be between 0 and store.max_conns")
	}

	switch mode {
	case "onboard", "match", "status", "migrate", "benchmark":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RequestsPerSecond < 0 {
			errs = append(errs, "server.requests_per_second must be >= 0")
		}
		if c.Server.RequestsPerSecond > 0 && c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1 when rate limiting")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOADMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.requests_per_second", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("normalize.preferred_lanes", 10)
	v.SetDefault("normalize.preferred_brokers", 10)
	v.SetDefault("normalize.preferred_equipment", 10)
	v.SetDefault("enrich.benchmark_max_confidence", 0.95)
	v.SetDefault("enrich.benchmark_min_confidence", 0.70)
	v.SetDefault("enrich.benchmark_half_life_days", 180)
	v.SetDefault("enrich.city_confidence", 0.35)
	v.SetDefault("enrich.state_confidence", 0.25)
	v.SetDefault("enrich.average_speed_mph", 50.0)
	v.SetDefault("enrich.circuity_factor", 1.2)
	v.SetDefault("enrich.min_distance_miles", 10.0)
	v.SetDefault("enrich.market_spread", 0.15)
	v.SetDefault("match.past_broker_weight", 0.25)
	v.SetDefault("match.broker_frequency_weight", 0.05)
	v.SetDefault("match.broker_frequency_cap", 4)
	v.SetDefault("match.exact_lane_weight", 0.30)
	v.SetDefault("match.reverse_lane_weight", 0.15)
	v.SetDefault("match.preferred_lane_weight", 0.10)
	v.SetDefault("match.preferred_broker_weight", 0.10)
	v.SetDefault("match.preferred_equipment_weight", 0.05)
	v.SetDefault("match.rate_quality_weight", 0.10)
	v.SetDefault("match.rate_ratio_threshold", 1.0)
	v.SetDefault("match.rate_ratio_band", 0.2)
	v.SetDefault("match.sparse_baseline", 0.10)
	v.SetDefault("match.sparse_load_threshold", 5)
	v.SetDefault("match.high_confidence", 0.7)
	v.SetDefault("match.workers", 8)
	v.SetDefault("match.default_limit", 25)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
