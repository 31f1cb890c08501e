package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/loadmatch/internal/config"
	"github.com/sells-group/loadmatch/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func booking(id, mc, company, origin, destination, rate, date string, source model.DataSource) model.RawRecord {
	return model.RawRecord{
		Source:      source,
		LoadID:      id,
		MCNumber:    mc,
		CompanyName: company,
		Origin:      origin,
		Destination: destination,
		Rate:        rate,
		BookingDate: date,
	}
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(config.NormalizeConfig{PreferredLanes: 0, PreferredBrokers: 10, PreferredEquipment: -1})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "preferred_lanes must be >= 1")
	assert.Contains(t, err.Error(), "preferred_equipment must be >= 1")
}

func TestNormalize_DedupBrokersByMC(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		{Source: model.SourceCSV, MCNumber: "MC-123456", CompanyName: "Acme Logistics LLC", Phone: "555-0100"},
		{Source: model.SourceCSV, MCNumber: "123456", CompanyName: "ACME LOGISTICS", Email: "Ops@Acme.com", Phone: "555-9999"},
	})

	require.Len(t, res.Profile.Brokers, 1)
	b := res.Profile.Brokers[0]
	assert.Equal(t, "mc:123456", b.Key)
	assert.Equal(t, "Acme Logistics LLC", b.CompanyName)
	assert.Equal(t, "555-0100", b.Phone, "populated field must not be overwritten")
	assert.Equal(t, "ops@acme.com", b.Email, "blank field is filled by later mention")
	assert.Equal(t, 2, res.Stats.BrokerMentions["mc:123456"])
	assert.Empty(t, res.Warnings)
}

func TestNormalize_DedupBrokersByName(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		{CompanyName: "Coyote Logistics, LLC"},
		{CompanyName: "coyote logistics"},
		{CompanyName: "Echo Global Logistics Inc."},
	})

	require.Len(t, res.Profile.Brokers, 2)
	assert.Equal(t, "name:coyote logistics", res.Profile.Brokers[0].Key)
	assert.Equal(t, "name:echo global logistics", res.Profile.Brokers[1].Key)
	assert.Equal(t, model.SourceManual, res.Profile.Brokers[0].Source)
}

func TestNormalize_SpecificSourceWins(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		booking("L-1", "123456", "Acme", "Miami, FL", "Tampa, FL", "1000", "2024-03-01", model.SourceCSV),
		booking("l-1", "123456", "Acme", "Miami, FL", "Tampa, FL", "$1,200.00", "2024-03-02", model.SourcePDF),
	})

	require.Len(t, res.Profile.Loads, 1)
	l := res.Profile.Loads[0]
	assert.Equal(t, "L-1", l.ID)
	assert.Equal(t, model.SourcePDF, l.Source)
	require.NotNil(t, l.Rate)
	assert.InDelta(t, 1200.0, l.Rate.Amount, 0.001)
	assert.Equal(t, day("2024-03-02"), *l.BookingDate)
	assert.Equal(t, 1, res.Stats.DuplicateLoads)
	assert.Zero(t, res.Stats.Conflicts)
	assert.Empty(t, res.Warnings)
}

func TestNormalize_TieKeepsEarlierAndWarns(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		booking("L-1", "123456", "Acme", "Miami, FL", "Tampa, FL", "1000", "2024-03-01", model.SourceCSV),
		booking("L-1", "123456", "Acme", "Miami, FL", "Tampa, FL", "1100", "2024-03-01", model.SourceCSV),
	})

	require.Len(t, res.Profile.Loads, 1)
	assert.InDelta(t, 1000.0, res.Profile.Loads[0].Rate.Amount, 0.001)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, model.WarnConflict, res.Warnings[0].Kind)
	assert.Equal(t, 1, res.Warnings[0].Record)
	assert.Equal(t, "L-1", res.Warnings[0].Key)
	assert.Equal(t, 1, res.Stats.Conflicts)
}

func TestNormalize_LessSpecificFillsBlanks(t *testing.T) {
	e := newTestEngine(t)
	withEquipment := booking("L-9", "", "Acme", "Miami, FL", "Tampa, FL", "", "", model.SourceCSV)
	withEquipment.Equipment = "reefer"
	res := e.Normalize([]model.RawRecord{
		booking("L-9", "", "Acme", "Miami, FL", "Tampa, FL", "900", "2024-01-05", model.SourceEmail),
		withEquipment,
	})

	require.Len(t, res.Profile.Loads, 1)
	l := res.Profile.Loads[0]
	assert.Equal(t, model.SourceEmail, l.Source)
	assert.Equal(t, "Refrigerated", l.Equipment)
	assert.InDelta(t, 900.0, l.Rate.Amount, 0.001)
}

func TestNormalize_LaneMergePrefersExisting(t *testing.T) {
	e := newTestEngine(t)
	a := booking("L-1", "1", "Acme", "Miami, FL", "Tampa, FL", "1000", "2024-01-01", model.SourceCSV)
	b := booking("L-2", "1", "Acme", "miami fl", "TAMPA, Florida", "1500", "2024-02-01", model.SourceCSV)
	c := booking("L-3", "1", "Acme", "Miami, FL", "Tampa, FL", "", "", model.SourceCSV)
	b.DistanceMiles = model.Float(280)
	c.DistanceMiles = model.Float(300)
	c.TransitHours = model.Float(5)

	res := e.Normalize([]model.RawRecord{a, b, c})

	require.Len(t, res.Profile.Lanes, 1)
	lane := res.Profile.Lanes[0]
	assert.Equal(t, "Miami, FL → Tampa, FL", lane.Key())
	assert.Equal(t, 3, lane.Loads)
	require.NotNil(t, lane.DistanceMiles)
	assert.InDelta(t, 280.0, *lane.DistanceMiles, 0.001)
	require.NotNil(t, lane.TransitHours)
	assert.InDelta(t, 5.0, *lane.TransitHours, 0.001)
	assert.Equal(t, day("2024-02-01"), *lane.LastSeen)
}

func TestNormalize_RatePerMile(t *testing.T) {
	e := newTestEngine(t)
	withDistance := booking("L-1", "1", "Acme", "Miami, FL", "Tampa, FL", "1000", "", model.SourceCSV)
	withDistance.DistanceMiles = model.Float(250)
	zeroDistance := booking("L-2", "1", "Acme", "Dallas, TX", "Houston, TX", "800", "", model.SourceCSV)
	zeroDistance.DistanceMiles = model.Float(0)
	noDistance := booking("L-3", "1", "Acme", "Atlanta, GA", "Macon, GA", "600", "", model.SourceCSV)

	res := e.Normalize([]model.RawRecord{withDistance, zeroDistance, noDistance})

	require.Len(t, res.Profile.Loads, 3)
	require.NotNil(t, res.Profile.Loads[0].Rate.PerMile)
	assert.InDelta(t, 4.0, *res.Profile.Loads[0].Rate.PerMile, 0.0001)
	assert.Nil(t, res.Profile.Loads[1].Rate.PerMile)
	assert.Nil(t, res.Profile.Lanes[1].DistanceMiles)
	assert.Nil(t, res.Profile.Loads[2].Rate.PerMile)
}

func TestNormalize_DistanceFromQuotedRatePerMile(t *testing.T) {
	e := newTestEngine(t)
	r := booking("L-1", "1", "Acme", "Miami, FL", "Tampa, FL", "1000", "", model.SourceEmail)
	r.RatePerMile = model.Float(2.5)

	res := e.Normalize([]model.RawRecord{r})

	require.NotNil(t, res.Profile.Lanes[0].DistanceMiles)
	assert.InDelta(t, 400.0, *res.Profile.Lanes[0].DistanceMiles, 0.0001)
	assert.InDelta(t, 2.5, *res.Profile.Loads[0].Rate.PerMile, 0.0001)
}

func TestNormalize_FallbackLoadIdentity(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		booking("", "123456", "Acme", "Miami, FL", "Tampa, FL", "1000", "03/05/2024", model.SourceCSV),
		booking("", "MC 123456", "Acme LLC", "miami, fl", "tampa, fl", "", "2024-03-05", model.SourceCSV),
		booking("", "123456", "Acme", "Miami, FL", "Tampa, FL", "", "2024-03-06", model.SourceCSV),
	})

	require.Len(t, res.Profile.Loads, 2)
	assert.NotEqual(t, res.Profile.Loads[0].ID, res.Profile.Loads[1].ID)
	assert.Equal(t, 1, res.Stats.DuplicateLoads)
	assert.Empty(t, res.Warnings)
}

func TestNormalize_TripColumn(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		{LoadID: "A1", CompanyName: "Acme", Trip: "Miami, FL to Tampa, FL"},
	})

	require.Len(t, res.Profile.Lanes, 1)
	assert.Equal(t, "Miami, FL", res.Profile.Lanes[0].Origin)
	assert.Equal(t, "Tampa, FL", res.Profile.Lanes[0].Destination)
}

func TestNormalize_InvalidRecordsSkipped(t *testing.T) {
	tests := []struct {
		name  string
		rec   model.RawRecord
		field string
	}{
		{"no identity", model.RawRecord{Notes: "call back", Phone: "555"}, ""},
		{"lane without broker or id", model.RawRecord{Origin: "Miami, FL", Destination: "Tampa, FL"}, ""},
		{"bad date", booking("L-1", "1", "Acme", "", "", "", "yesterday", model.SourceCSV), "booking_date"},
		{"bad rate", booking("L-1", "1", "Acme", "", "", "call for rate", "", model.SourceCSV), "rate"},
		{"negative rate", booking("L-1", "1", "Acme", "", "", "-50", "", model.SourceCSV), "rate"},
		{"bad lane", booking("L-1", "1", "Acme", "Nowhere", "Tampa, FL", "", "", model.SourceCSV), "lane"},
		{"bad trip", model.RawRecord{LoadID: "L-1", Trip: "somewhere south"}, "trip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			good := booking("OK-1", "9", "Good Broker", "Miami, FL", "Tampa, FL", "100", "", model.SourceCSV)
			res := e.Normalize([]model.RawRecord{good, tt.rec})

			assert.Equal(t, 1, res.Stats.Skipped)
			require.Len(t, res.Warnings, 1)
			assert.Equal(t, model.WarnValidation, res.Warnings[0].Kind)
			assert.Equal(t, 1, res.Warnings[0].Record)
			assert.Equal(t, tt.field, res.Warnings[0].Field)
			require.Len(t, res.Profile.Loads, 1, "valid records survive")
			assert.Equal(t, "OK-1", res.Profile.Loads[0].ID)
		})
	}
}

func TestNormalize_UnknownSourceIsManual(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{{Source: "fax", LoadID: "L-1", CompanyName: "Acme"}})

	require.Len(t, res.Profile.Loads, 1)
	assert.Equal(t, model.SourceManual, res.Profile.Loads[0].Source)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "source", res.Warnings[0].Field)
}

func TestNormalize_BlankPlaceholders(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		{LoadID: "L-1", CompanyName: "**Acme**", MCNumber: "N/A", Phone: "N/L", Rate: "N/A", BookingDate: "n/a"},
	})

	require.Len(t, res.Profile.Brokers, 1)
	assert.Equal(t, "name:acme", res.Profile.Brokers[0].Key)
	assert.Equal(t, "Acme", res.Profile.Brokers[0].CompanyName)
	assert.Empty(t, res.Profile.Brokers[0].Phone)
	assert.Nil(t, res.Profile.Loads[0].Rate)
	assert.Empty(t, res.Warnings)
}

func TestNormalize_Preferences(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreferredLanes = 2
	cfg.PreferredBrokers = 2
	e, err := New(cfg)
	require.NoError(t, err)

	recs := []model.RawRecord{
		booking("L1", "100", "X", "Miami, FL", "Tampa, FL", "", "2024-01-01", model.SourceCSV),
		booking("L2", "200", "Y", "Miami, FL", "Tampa, FL", "", "2024-01-02", model.SourceCSV),
		booking("L3", "200", "Y", "Dallas, TX", "Houston, TX", "", "2024-02-01", model.SourceCSV),
		booking("L4", "300", "Z", "Atlanta, GA", "Macon, GA", "", "2024-02-01", model.SourceCSV),
	}
	recs[0].Equipment = "van"
	recs[1].Equipment = "Dry Van"
	recs[2].Equipment = "flatbed"

	res := e.Normalize(recs)
	p := res.Profile

	assert.Equal(t, []string{"Miami, FL → Tampa, FL", "Atlanta, GA → Macon, GA"}, p.PreferredLanes)
	assert.Equal(t, []string{"mc:200", "mc:300"}, p.PreferredBrokers)
	assert.Equal(t, []string{"Dry Van", "Flatbed"}, p.PreferredEquipment)
}

func TestNormalize_LoadBrokerDenormalized(t *testing.T) {
	e := newTestEngine(t)
	res := e.Normalize([]model.RawRecord{
		{MCNumber: "123456", CompanyName: "Acme Logistics"},
		booking("L1", "123456", "ACME", "Miami, FL", "Tampa, FL", "", "", model.SourceCSV),
	})

	require.Len(t, res.Profile.Loads, 1)
	assert.Equal(t, "Acme Logistics", res.Profile.Loads[0].BrokerName)
	assert.Equal(t, "123456", res.Profile.Loads[0].BrokerMC)
}

func TestNormalize_IdempotentOnFlatten(t *testing.T) {
	e := newTestEngine(t)
	recs := []model.RawRecord{
		{Source: model.SourceEmail, BrokerName: "Dana", CompanyName: "Acme Logistics LLC", MCNumber: "MC-123456", Address: "100 Main St, miami, fl 33101", Notes: "quick pay"},
		booking("L1", "123456", "Acme", "Miami, FL", "Tampa, FL", "1000", "2024-01-01", model.SourceCSV),
		booking("L1", "123456", "Acme", "Miami, FL", "Tampa, FL", "1200", "2024-01-02", model.SourcePDF),
		booking("", "", "Echo", "tampa fl", "miami fl", "$850", "1/9/2024", model.SourceExcel),
		booking("L3", "", "", "Dallas, TX", "Houston, TX", "", "", model.SourceManual),
		{BrokerName: "Pat Jones", Phone: "555-0100"},
	}
	recs[1].DistanceMiles = model.Float(280)
	recs[3].RatePerMile = model.Float(2.5)

	first := e.Normalize(recs)
	second := e.Normalize(Flatten(first.Profile))

	assert.Equal(t, first.Profile, second.Profile)
	assert.Empty(t, second.Warnings)
}

func randomRecords(seed int64, n int) []model.RawRecord {
	f := gofakeit.New(seed)
	states := []string{"FL", "TX", "GA", "CA", "IL", "OH"}
	sources := []model.DataSource{model.SourceCSV, model.SourceExcel, model.SourcePDF, model.SourceEmail, model.SourceManual}

	cities := make([]string, 6)
	for i := range cities {
		cities[i] = fmt.Sprintf("%s, %s", f.City(), f.RandomString(states))
	}
	type broker struct{ mc, company, address string }
	brokers := make([]broker, 5)
	for i := range brokers {
		b := broker{company: f.Company()}
		if f.Bool() {
			b.mc = f.Numerify("######")
		}
		if f.Bool() {
			b.address = fmt.Sprintf("%s, %s %s", f.Street(), cities[f.Number(0, len(cities)-1)], f.Zip())
		}
		brokers[i] = b
	}

	recs := make([]model.RawRecord, n)
	for i := range recs {
		b := brokers[f.Number(0, len(brokers)-1)]
		r := model.RawRecord{
			Source:      sources[f.Number(0, len(sources)-1)],
			MCNumber:    b.mc,
			CompanyName: b.company,
			Address:     b.address,
			Origin:      cities[f.Number(0, len(cities)-1)],
			Destination: cities[f.Number(0, len(cities)-1)],
			Equipment:   f.RandomString([]string{"van", "reefer", "flatbed", ""}),
			BookingDate: f.DateRange(day("2023-01-01"), day("2024-12-31")).Format("01/02/2006"),
		}
		if f.Number(0, 3) > 0 {
			r.LoadID = fmt.Sprintf("LD-%d", f.Number(1, n/2))
		}
		if f.Bool() {
			r.Rate = fmt.Sprintf("$%.2f", f.Float64Range(300, 4000))
		}
		if f.Bool() {
			r.DistanceMiles = model.Float(float64(f.Number(40, 1500)))
		}
		recs[i] = r
	}
	return recs
}

func TestNormalize_IdempotentRandomBatches(t *testing.T) {
	e := newTestEngine(t)
	for seed := int64(1); seed <= 10; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			first := e.Normalize(randomRecords(seed, 80))
			second := e.Normalize(Flatten(first.Profile))
			assert.Equal(t, first.Profile, second.Profile)
		})
	}
}

func TestNormalize_InvariantsRandomBatches(t *testing.T) {
	e := newTestEngine(t)
	for seed := int64(100); seed < 110; seed++ {
		res := e.Normalize(randomRecords(seed, 120))
		p := res.Profile

		lanes := map[string]model.Lane{}
		for _, l := range p.Lanes {
			_, dup := lanes[l.Key()]
			assert.False(t, dup, "lane %s duplicated", l.Key())
			lanes[l.Key()] = l
		}
		brokers := map[string]bool{}
		for _, b := range p.Brokers {
			assert.False(t, brokers[b.Key], "broker %s duplicated", b.Key)
			brokers[b.Key] = true
		}
		loads := map[string]bool{}
		for _, l := range p.Loads {
			assert.False(t, loads[l.ID], "load %s duplicated", l.ID)
			loads[l.ID] = true

			if l.Rate == nil || l.Rate.PerMile == nil {
				continue
			}
			lane := lanes[l.LaneKey()]
			require.NotNil(t, lane.DistanceMiles)
			assert.Greater(t, *lane.DistanceMiles, 0.0)
			assert.InDelta(t, l.Rate.Amount / *lane.DistanceMiles, *l.Rate.PerMile, 1e-9)
		}
		assert.LessOrEqual(t, len(p.PreferredLanes), 10)
		assert.LessOrEqual(t, len(p.PreferredBrokers), 10)
		assert.LessOrEqual(t, len(p.PreferredEquipment), 10)
	}
}
