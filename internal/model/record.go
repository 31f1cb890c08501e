package model

// RawRecord is one booking row as produced by a parser. Every field is
// optional; the normalizer validates and canonicalizes them.
type RawRecord struct {
	Source DataSource `json:"source"`
	File   string     `json:"file,omitempty"`
	Row    int        `json:"row,omitempty"`

	BrokerName  string `json:"broker_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	MCNumber    string `json:"mc_number,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	LoadBoard   string `json:"load_board,omitempty"`
	Notes       string `json:"notes,omitempty"`

	LoadID      string `json:"load_id,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Trip        string `json:"trip,omitempty"`
	Equipment   string `json:"equipment,omitempty"`

	Rate          string   `json:"rate,omitempty"`
	RatePerMile   *float64 `json:"rate_per_mile,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	TransitHours  *float64 `json:"transit_hours,omitempty"`

	BookingDate  string `json:"booking_date,omitempty"`
	PickupDate   string `json:"pickup_date,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
}
