package normalize

import (
	"slices"
	"strings"
	"time"

	"github.com/sells-group/loadmatch/internal/model"
)

type tally struct {
	key   string
	count int
	last  time.Time
}

// counter accumulates frequency and recency per key.
type counter map[string]*tally

func (c counter) add(key string, when *time.Time) {
	if key == "" {
		return
	}
	t, ok := c[key]
	if !ok {
		t = &tally{key: key}
		c[key] = t
	}
	t.count++
	if when != nil && when.After(t.last) {
		t.last = *when
	}
}

// top returns at most k keys ordered by frequency desc, recency desc,
// then key asc.
func (c counter) top(k int) []string {
	all := make([]*tally, 0, len(c))
	for _, t := range c {
		all = append(all, t)
	}
	slices.SortFunc(all, func(a, b *tally) int {
		if a.count != b.count {
			return b.count - a.count
		}
		if !a.last.Equal(b.last) {
			return b.last.Compare(a.last)
		}
		return strings.Compare(a.key, b.key)
	})
	if len(all) > k {
		all = all[:k]
	}
	keys := make([]string, len(all))
	for i, t := range all {
		keys[i] = t.key
	}
	return keys
}

// extractPreferences ranks the lanes, brokers and equipment of loads.
func extractPreferences(loads []model.Load, lanesK, brokersK, equipmentK int) (lanes, brokers, equipment []string) {
	lc, bc, ec := counter{}, counter{}, counter{}
	for _, l := range loads {
		when := l.Date()
		lc.add(l.LaneKey(), when)
		bc.add(l.BrokerKey, when)
		ec.add(l.Equipment, when)
	}
	return lc.top(lanesK), bc.top(brokersK), ec.top(equipmentK)
}
