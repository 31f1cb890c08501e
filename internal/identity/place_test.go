package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalCityState(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"canonical", "Miami, FL", "Miami, FL", true},
		{"lower no comma", "miami fl", "Miami, FL", true},
		{"no space after comma", "Miami,FL", "Miami, FL", true},
		{"full state name", "Miami, Florida", "Miami, FL", true},
		{"zip", "Miami, FL 33101", "Miami, FL", true},
		{"zip plus four", "Miami FL 33101-1234", "Miami, FL", true},
		{"two word city", "kansas city mo", "Kansas City, MO", true},
		{"two word state", "Charleston West Virginia", "Charleston, WV", true},
		{"extra whitespace", "  St.   Louis ,  mo ", "St. Louis, MO", true},
		{"no state", "Miami", "", false},
		{"state only", "Florida", "", false},
		{"unknown state", "Springfield, ZZ", "", false},
		{"garbage", "???", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalCityState(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalCityState_Idempotent(t *testing.T) {
	for _, in := range []string{"st. louis mo", "NEW YORK, new york", "winston-salem nc"} {
		once, ok := CanonicalCityState(in)
		assert.True(t, ok, in)
		twice, ok := CanonicalCityState(once)
		assert.True(t, ok, once)
		assert.Equal(t, once, twice)
	}
}

func TestCanonicalState(t *testing.T) {
	st, ok := CanonicalState("tx")
	assert.True(t, ok)
	assert.Equal(t, "TX", st)

	st, ok = CanonicalState("District of Columbia")
	assert.True(t, ok)
	assert.Equal(t, "DC", st)

	_, ok = CanonicalState("Texass")
	assert.False(t, ok)
}
