package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/loadmatch/internal/identity"
	"github.com/sells-group/loadmatch/internal/model"
)

// blankValues are placeholders booking sheets use for "no value".
var blankValues = map[string]bool{
	"n/a": true, "n/l": true, "na": true, "none": true, "null": true, "-": true, "--": true, "tbd": true,
}

// clean trims whitespace and markdown emphasis and maps placeholders to "".
func clean(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
	if blankValues[strings.ToLower(s)] {
		return ""
	}
	return s
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"01-02-06",
	"2006/01/02",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Mon, Jan 2, 2006",
}

// ParseDate accepts the date layouts seen in booking sheets and confirmations
// and returns the calendar day at UTC midnight. Blank input yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = clean(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, nil
		}
	}
	return nil, eris.Errorf("normalize: unrecognized date %q", s)
}

var amountCleaner = strings.NewReplacer("$", "", ",", "", "USD", "", "usd", "", " ", "")

var amountRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// ParseAmount parses a currency amount such as "$1,250.00". Blank input
// yields nil. Negative or non-numeric input is an error.
func ParseAmount(s string) (*float64, error) {
	s = clean(s)
	if s == "" {
		return nil, nil
	}
	v := amountCleaner.Replace(s)
	if strings.HasPrefix(v, "-") {
		return nil, eris.Errorf("normalize: negative amount %q", s)
	}
	if !amountRe.MatchString(v) {
		return nil, eris.Errorf("normalize: unrecognized amount %q", s)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: parse amount %q", s)
	}
	return &f, nil
}

func positive(p *float64) *float64 {
	if p == nil || *p <= 0 {
		return nil
	}
	v := *p
	return &v
}

// parsedRecord is a raw record after field-level validation.
type parsedRecord struct {
	index  int
	broker model.Broker
	load   model.Load
	lane   *model.Lane
	rpm    *float64
}

// parseRecord validates one raw record. It returns false when the record
// must be dropped; the warnings say why.
func parseRecord(index int, r model.RawRecord) (parsedRecord, []model.Warning, bool) {
	var warns []model.Warning
	warn := func(kind model.WarningKind, field, msg string) {
		warns = append(warns, model.Warning{Kind: kind, Record: index, Field: field, Message: msg})
	}

	source := r.Source
	switch {
	case source == "":
		source = model.SourceManual
	case !source.Valid():
		warn(model.WarnValidation, "source", "unknown source "+string(source)+", treated as manual")
		source = model.SourceManual
	}

	p := parsedRecord{index: index}

	company := clean(r.CompanyName)
	contact := clean(r.BrokerName)
	mc := identity.NormalizeMC(clean(r.MCNumber))
	keyName := company
	if keyName == "" {
		keyName = contact
	}
	p.broker = model.Broker{
		Key:         identity.BrokerKey(mc, keyName),
		CompanyName: company,
		ContactName: contact,
		MCNumber:    mc,
		Phone:       clean(r.Phone),
		Email:       strings.ToLower(clean(r.Email)),
		Address:     ParseAddress(clean(r.Address)),
		LoadBoard:   clean(r.LoadBoard),
		Notes:       clean(r.Notes),
		Source:      source,
	}

	origin, destination := clean(r.Origin), clean(r.Destination)
	if origin == "" && destination == "" {
		if trip := clean(r.Trip); trip != "" {
			o, d, ok := identity.SplitTrip(trip)
			if !ok {
				warn(model.WarnValidation, "trip", "unparseable trip "+trip)
				return p, warns, false
			}
			origin, destination = o, d
		}
	}
	if origin != "" || destination != "" {
		o, okO := identity.CanonicalCityState(origin)
		d, okD := identity.CanonicalCityState(destination)
		if !okO || !okD {
			warn(model.WarnValidation, "lane", "unparseable lane "+origin+" to "+destination)
			return p, warns, false
		}
		p.lane = &model.Lane{
			Origin:        o,
			Destination:   d,
			DistanceMiles: positive(r.DistanceMiles),
			TransitHours:  positive(r.TransitHours),
			Source:        source,
		}
	}

	dates := [3]*time.Time{}
	for i, f := range []struct{ name, value string }{
		{"booking_date", r.BookingDate},
		{"pickup_date", r.PickupDate},
		{"delivery_date", r.DeliveryDate},
	} {
		d, err := ParseDate(f.value)
		if err != nil {
			warn(model.WarnValidation, f.name, err.Error())
			return p, warns, false
		}
		dates[i] = d
	}

	amount, err := ParseAmount(r.Rate)
	if err != nil {
		warn(model.WarnValidation, "rate", err.Error())
		return p, warns, false
	}
	p.rpm = positive(r.RatePerMile)

	p.load = model.Load{
		ID:           identity.NormalizeLoadID(clean(r.LoadID)),
		BrokerKey:    p.broker.Key,
		Equipment:    identity.NormalizeEquipment(clean(r.Equipment)),
		BookingDate:  dates[0],
		PickupDate:   dates[1],
		DeliveryDate: dates[2],
		Source:       source,
	}
	if amount != nil {
		currency := strings.ToUpper(clean(r.Currency))
		if currency == "" {
			currency = "USD"
		}
		p.load.Rate = &model.Rate{Amount: *amount, Currency: currency, Origin: model.RateRaw}
	}
	if p.lane != nil {
		p.load.Origin, p.load.Destination = p.lane.Origin, p.lane.Destination
		p.lane.LastSeen = p.load.Date()
	}
	if p.load.ID == "" && p.lane != nil {
		var day time.Time
		if d := p.load.Date(); d != nil {
			day = *d
		}
		p.load.ID = identity.LoadKey(p.broker.Key, p.lane.Key(), day)
	}

	if p.load.ID == "" && p.broker.Key == "" {
		warn(model.WarnValidation, "", "record has no load number, broker identity or lane")
		return p, warns, false
	}
	return p, warns, true
}
