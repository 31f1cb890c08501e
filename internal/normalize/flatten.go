package normalize

import (
	"strconv"
	"time"

	"github.com/sells-group/loadmatch/internal/model"
)

// Flatten regenerates raw records from a normalized profile: one record per
// broker, in profile order, followed by one record per load. Enriched rates
// are estimates, not observations, and are left out. Normalizing the result
// reproduces the profile's brokers, loads, lanes and preferences.
func Flatten(p *model.CarrierProfile) []model.RawRecord {
	records := make([]model.RawRecord, 0, len(p.Brokers)+len(p.Loads))

	brokers := make(map[string]model.Broker, len(p.Brokers))
	for _, b := range p.Brokers {
		brokers[b.Key] = b
		records = append(records, brokerRecord(b))
	}

	lanes := make(map[string]model.Lane, len(p.Lanes))
	for _, l := range p.Lanes {
		lanes[l.Key()] = l
	}

	for _, l := range p.Loads {
		r := model.RawRecord{Source: l.Source}
		if b, ok := brokers[l.BrokerKey]; ok {
			r = brokerRecord(b)
			r.Source = l.Source
		}
		r.LoadID = l.ID
		r.Origin = l.Origin
		r.Destination = l.Destination
		r.Equipment = l.Equipment
		r.BookingDate = formatDate(l.BookingDate)
		r.PickupDate = formatDate(l.PickupDate)
		r.DeliveryDate = formatDate(l.DeliveryDate)
		if lane, ok := lanes[l.LaneKey()]; ok {
			r.DistanceMiles = lane.DistanceMiles
			r.TransitHours = lane.TransitHours
		}
		if l.Rate != nil && l.Rate.Origin != model.RateEnriched {
			r.Rate = strconv.FormatFloat(l.Rate.Amount, 'f', -1, 64)
			r.Currency = l.Rate.Currency
		}
		records = append(records, r)
	}
	return records
}

func brokerRecord(b model.Broker) model.RawRecord {
	return model.RawRecord{
		Source:      b.Source,
		BrokerName:  b.ContactName,
		CompanyName: b.CompanyName,
		MCNumber:    b.MCNumber,
		Phone:       b.Phone,
		Email:       b.Email,
		Address:     b.Address.String(),
		LoadBoard:   b.LoadBoard,
		Notes:       b.Notes,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
