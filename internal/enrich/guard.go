package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/model"
	"github.com/sells-group/loadmatch/internal/resilience"
)

// GuardedBenchmarks puts a circuit breaker in front of a BenchmarkSource.
// While the breaker is open lookups fail fast with resilience.ErrOpen and the
// engine estimates instead of waiting on a dead store for every lane.
type GuardedBenchmarks struct {
	src     BenchmarkSource
	breaker *resilience.Breaker
}

// GuardBenchmarks wraps src. A nil src stays nil so the engine skips
// benchmark lookups entirely.
func GuardBenchmarks(src BenchmarkSource, cfg resilience.Config) BenchmarkSource {
	if src == nil {
		return nil
	}
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(from, to resilience.State) {
			zap.L().Warn("enrich: benchmark breaker state change",
				zap.Stringer("from", from), zap.Stringer("to", to))
		}
	}
	return &GuardedBenchmarks{src: src, breaker: resilience.New(cfg)}
}

func (g *GuardedBenchmarks) GetBenchmark(ctx context.Context, laneKey string) (*model.Benchmark, error) {
	return resilience.Do(ctx, g.breaker, func(ctx context.Context) (*model.Benchmark, error) {
		return g.src.GetBenchmark(ctx, laneKey)
	})
}

// State reports the breaker position.
func (g *GuardedBenchmarks) State() resilience.State {
	return g.breaker.State()
}
