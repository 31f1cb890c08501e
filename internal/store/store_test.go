package store

import (
	"time"

	"github.com/sells-group/loadmatch/internal/model"
)

var (
	testCreated = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	testBooked  = time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)
)

func sampleProfile(id string) *model.CarrierProfile {
	booked := testBooked
	return &model.CarrierProfile{
		CarrierID:   id,
		CarrierName: "Gulf Coast Hauling",
		MCNumber:    "778899",
		Brokers: []model.Broker{{
			Key:         "mc:123456",
			CompanyName: "Sunshine Freight",
			MCNumber:    "123456",
			Address:     model.Address{City: "Miami", State: "FL"},
			Source:      model.SourceCSV,
		}},
		Loads: []model.Load{{
			ID:          "L-1",
			BrokerKey:   "mc:123456",
			BrokerName:  "Sunshine Freight",
			Origin:      "Miami, FL",
			Destination: "Tampa, FL",
			Rate:        &model.Rate{Amount: 700, PerMile: model.Float(2.5), Currency: "USD", Origin: model.RateRaw},
			BookingDate: &booked,
			Source:      model.SourceCSV,
		}},
		Lanes: []model.Lane{{
			Origin:        "Miami, FL",
			Destination:   "Tampa, FL",
			DistanceMiles: model.Float(280),
			Source:        model.SourceCSV,
			Loads:         1,
			LastSeen:      &booked,
		}},
		PreferredLanes:   []string{"Miami, FL → Tampa, FL"},
		PreferredBrokers: []string{"mc:123456"},
		Enrichment: map[string]model.EnrichedData{
			"Miami, FL → Tampa, FL": {
				LaneKey:       "Miami, FL → Tampa, FL",
				Origin:        "Miami, FL",
				Destination:   "Tampa, FL",
				DistanceMiles: model.Float(280),
				RatePerMile:   model.Float(2.2),
				Confidence:    0.95,
				Source:        model.EnrichDAT,
				ComputedAt:    testCreated,
			},
		},
		CreatedAt: testCreated,
		UpdatedAt: testCreated,
	}
}

func sampleBenchmark(provider model.EnrichmentSource, rpm float64, asOf time.Time) model.Benchmark {
	return model.Benchmark{
		LaneKey:       "Miami, FL → Tampa, FL",
		Origin:        "Miami, FL",
		Destination:   "Tampa, FL",
		Provider:      provider,
		DistanceMiles: 280,
		RatePerMile:   rpm,
		TransitHours:  5,
		AsOf:          asOf,
	}
}
