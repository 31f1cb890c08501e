package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/loadmatch/internal/model"
)

// headerSearchRows bounds how far down a sheet the header row may sit.
const headerSearchRows = 10

var numberRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?|-?\.\d+`)

// rowsToRecords maps sheet rows to raw records. The header is the first row
// within headerSearchRows that names at least two known columns; rows above
// it are titles and are skipped. Record.Row is the 1-based sheet row.
func rowsToRecords(rows [][]string, opts Options) []model.RawRecord {
	start, cols := findHeader(rows)
	if cols == nil {
		zap.L().Warn("ingest: no header row found", zap.String("file", opts.File))
		return nil
	}

	var out []model.RawRecord
	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rec := model.RawRecord{Source: opts.Source, File: opts.File, Row: i + 1}
		for j, cell := range row {
			if j >= len(cols) || cell == "" {
				continue
			}
			assign(&rec, cols[j], cell)
		}
		if rec.Rate == "" && rec.Notes != "" {
			rec.Rate = RateFromNotes(rec.Notes)
		}
		out = append(out, rec)
	}
	return out
}

func findHeader(rows [][]string) (int, []column) {
	for i := 0; i < len(rows) && i < headerSearchRows; i++ {
		if cols := mapHeader(rows[i]); recognized(cols) >= 2 {
			return i, cols
		}
	}
	return -1, nil
}

func assign(rec *model.RawRecord, c column, v string) {
	switch c {
	case colBrokerName:
		rec.BrokerName = v
	case colCompanyName:
		rec.CompanyName = v
	case colMCNumber:
		rec.MCNumber = v
	case colPhone:
		rec.Phone = v
	case colEmail:
		rec.Email = v
	case colAddress:
		rec.Address = v
	case colLoadBoard:
		rec.LoadBoard = v
	case colNotes:
		rec.Notes = v
	case colLoadID:
		rec.LoadID = v
	case colOrigin:
		rec.Origin = v
	case colDestination:
		rec.Destination = v
	case colTrip:
		rec.Trip = v
	case colEquipment:
		rec.Equipment = v
	case colRate:
		rec.Rate = v
	case colRatePerMile:
		rec.RatePerMile = parseNumber(v, 1)
	case colCurrency:
		rec.Currency = v
	case colDistance:
		rec.DistanceMiles = parseNumber(v, 1)
	case colTransit:
		scale := 1.0
		if strings.Contains(strings.ToLower(v), "day") {
			scale = 24
		}
		rec.TransitHours = parseNumber(v, scale)
	case colBookingDate:
		rec.BookingDate = v
	case colPickupDate:
		rec.PickupDate = v
	case colDeliveryDate:
		rec.DeliveryDate = v
	}
}

// parseNumber reads the first number in a cell such as "1,204 mi" or
// "$2.15/mi". Cells without a non-negative number yield nil.
func parseNumber(s string, scale float64) *float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v < 0 {
		return nil
	}
	v *= scale
	return &v
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
