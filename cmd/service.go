package main

import (
	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/enrich"
	"github.com/sells-group/loadmatch/internal/match"
	"github.com/sells-group/loadmatch/internal/normalize"
	"github.com/sells-group/loadmatch/internal/onboard"
	"github.com/sells-group/loadmatch/internal/resilience"
	"github.com/sells-group/loadmatch/internal/store"
)

// newService builds the three engines from c and wires them to st. Each
// engine validates its own section of the config.
func newService(c *config.Config, st store.Store) (*onboard.Service, error) {
	n, err := normalize.New(c.Normalize)
	if err != nil {
		return nil, err
	}
	e, err := enrich.New(c.Enrich, enrich.NewMemoryCache(), enrich.GuardBenchmarks(st, resilience.Config{}), nil)
	if err != nil {
		return nil, err
	}
	m, err := match.New(c.Match)
	if err != nil {
		return nil, err
	}
	return onboard.New(st, n, e, m), nil
}
