package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(cfg Config) (*Breaker, *clock) {
	c := &clock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	b := New(cfg)
	b.now = c.now
	return b, c
}

func call(b *Breaker, err error) (int, error) {
	return Do(context.Background(), b, func(context.Context) (int, error) {
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
}

func TestNew_Defaults(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, 5, b.cfg.FailureThreshold)
	assert.Equal(t, 30*time.Second, b.cfg.ResetTimeout)
	assert.Equal(t, 1, b.cfg.Probes)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(Config{FailureThreshold: 3, ResetTimeout: time.Minute})

	for range 2 {
		_, err := call(b, errDown)
		assert.ErrorIs(t, err, errDown)
	}
	assert.Equal(t, Closed, b.State())

	_, err := call(b, errDown)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, Open, b.State())

	calls := 0
	_, err = Do(context.Background(), b, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, calls)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(Config{FailureThreshold: 2})

	_, _ = call(b, errDown)
	v, err := call(b, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	_, _ = call(b, errDown)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, c := newTestBreaker(Config{FailureThreshold: 1, ResetTimeout: time.Minute, Probes: 2})

	_, _ = call(b, errDown)
	require.Equal(t, Open, b.State())

	c.t = c.t.Add(time.Minute)
	assert.Equal(t, HalfOpen, b.State())

	_, err := call(b, nil)
	require.NoError(t, err)
	assert.Equal(t, HalfOpen, b.State())
	_, err = call(b, nil)
	require.NoError(t, err)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, c := newTestBreaker(Config{FailureThreshold: 3, ResetTimeout: time.Minute})

	for range 3 {
		_, _ = call(b, errDown)
	}
	c.t = c.t.Add(2 * time.Minute)

	_, err := call(b, errDown)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, Open, b.State())

	_, err = call(b, nil)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreaker_StateChangesAndReset(t *testing.T) {
	var changes []string
	b, _ := newTestBreaker(Config{
		FailureThreshold: 1,
		OnStateChange:    func(from, to State) { changes = append(changes, from.String()+"->"+to.String()) },
	})

	_, _ = call(b, errDown)
	b.Reset()
	b.Reset()
	assert.Equal(t, []string{"closed->open", "open->closed"}, changes)
	assert.Equal(t, Closed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
