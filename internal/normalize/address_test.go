package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/loadmatch/internal/model"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want model.Address
	}{
		{"123 Main St, Miami, FL 33101", model.Address{Street: "123 Main St", City: "Miami", State: "FL", Zip: "33101"}},
		{"123  main st,  miami , florida", model.Address{Street: "123 main st", City: "Miami", State: "FL"}},
		{"Miami FL", model.Address{City: "Miami", State: "FL"}},
		{"500 W Madison, Suite 2, chicago il 60661", model.Address{Street: "500 W Madison, Suite 2", City: "Chicago", State: "IL", Zip: "60661"}},
		{"PO Box 12", model.Address{Street: "PO Box 12"}},
		{"", model.Address{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAddress(tt.in))
		})
	}
}

func TestParseAddress_RoundTrip(t *testing.T) {
	for _, in := range []string{
		"123 Main St, Miami, FL 33101",
		"miami fl",
		"FL 33101",
		"33101",
		"500 W Madison, Suite 2, chicago il 60661-1234",
		"PO Box 12",
	} {
		a := ParseAddress(in)
		assert.Equal(t, a, ParseAddress(a.String()), in)
	}
}
