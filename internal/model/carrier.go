package model

import (
	"strings"
	"time"

	"github.com/sells-group/loadmatch/internal/identity"
)

// Address is a postal address. Street and zip are optional.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// Canonical returns the "City, ST" form, or "" when city or state is missing.
func (a Address) Canonical() string {
	if a.City == "" || a.State == "" {
		return ""
	}
	return a.City + ", " + a.State
}

// Equal reports whether both addresses share a canonical form.
func (a Address) Equal(b Address) bool {
	return a.Canonical() == b.Canonical()
}

// String formats the address as "Street, City, ST Zip", skipping missing parts.
func (a Address) String() string {
	var parts []string
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if tail := strings.TrimSpace(a.State + " " + a.Zip); tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// IsZero reports whether no address component is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Broker is a freight broker the carrier has booked with.
type Broker struct {
	Key         string     `json:"key"`
	CompanyName string     `json:"company_name,omitempty"`
	ContactName string     `json:"contact_name,omitempty"`
	MCNumber    string     `json:"mc_number,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
	Address     Address    `json:"address,omitzero"`
	LoadBoard   string     `json:"load_board,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Source      DataSource `json:"source"`
}

// Lane is an ordered origin/destination pair in canonical "City, ST" form.
type Lane struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DistanceMiles *float64   `json:"distance_miles,omitempty"`
	TransitHours  *float64   `json:"transit_hours,omitempty"`
	Source        DataSource `json:"source"`
	Loads         int        `json:"loads"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
}

// Key returns the lane identity.
func (l Lane) Key() string {
	return identity.LaneKey(l.Origin, l.Destination)
}

// Rate is the amount paid for a load.
type Rate struct {
	Amount   float64    `json:"amount"`
	PerMile  *float64   `json:"per_mile,omitempty"`
	Currency string     `json:"currency"`
	Origin   RateOrigin `json:"origin"`
}

// Load is a single booked (or candidate) shipment.
type Load struct {
	ID           string     `json:"id"`
	BrokerKey    string     `json:"broker_key,omitempty"`
	BrokerName   string     `json:"broker_name,omitempty"`
	BrokerMC     string     `json:"broker_mc,omitempty"`
	Origin       string     `json:"origin"`
	Destination  string     `json:"destination"`
	Rate         *Rate      `json:"rate,omitempty"`
	Equipment    string     `json:"equipment,omitempty"`
	BookingDate  *time.Time `json:"booking_date,omitempty"`
	PickupDate   *time.Time `json:"pickup_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	Source       DataSource `json:"source"`
}

// LaneKey returns the identity of the lane the load travels.
func (l Load) LaneKey() string {
	return identity.LaneKey(l.Origin, l.Destination)
}

// Date returns the date used for recency: booking, else pickup, else delivery.
func (l Load) Date() *time.Time {
	switch {
	case l.BookingDate != nil:
		return l.BookingDate
	case l.PickupDate != nil:
		return l.PickupDate
	default:
		return l.DeliveryDate
	}
}

// CarrierProfile is the deduplicated history and preferences of one carrier.
type CarrierProfile struct {
	CarrierID   string `json:"carrier_id,omitempty"`
	CarrierName string `json:"carrier_name,omitempty"`
	MCNumber    string `json:"mc_number,omitempty"`

	Brokers []Broker `json:"brokers"`
	Loads   []Load   `json:"loads"`
	Lanes   []Lane   `json:"lanes"`

	PreferredLanes     []string `json:"preferred_lanes"`
	PreferredBrokers   []string `json:"preferred_brokers"`
	PreferredEquipment []string `json:"preferred_equipment"`

	Enrichment map[string]EnrichedData `json:"enrichment,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// WithEnrichment returns a shallow copy of p whose enrichment map also holds
// extra. p itself is left untouched; entries in p win over extra.
func (p *CarrierProfile) WithEnrichment(extra []EnrichedData) *CarrierProfile {
	cp := *p
	cp.Enrichment = make(map[string]EnrichedData, len(p.Enrichment)+len(extra))
	for _, ed := range extra {
		if ed.Source == EnrichUnresolved {
			continue
		}
		cp.Enrichment[ed.LaneKey] = ed
	}
	for k, v := range p.Enrichment {
		cp.Enrichment[k] = v
	}
	return &cp
}
