package ingest

import (
	"regexp"
	"strings"
)

type column int

const (
	colIgnore column = iota
	colBrokerName
	colCompanyName
	colMCNumber
	colPhone
	colEmail
	colAddress
	colLoadBoard
	colNotes
	colLoadID
	colOrigin
	colDestination
	colTrip
	colEquipment
	colRate
	colRatePerMile
	colCurrency
	colDistance
	colTransit
	colBookingDate
	colPickupDate
	colDeliveryDate
)

// headerAliases maps normalized sheet headers to record fields. "Name" is the
// broker's contact and "Broker" the brokerage.
var headerAliases = map[string]column{
	"name": colBrokerName, "contact": colBrokerName, "contact name": colBrokerName,
	"broker contact": colBrokerName, "agent": colBrokerName,

	"broker": colCompanyName, "broker name": colCompanyName, "company": colCompanyName,
	"company name": colCompanyName, "brokerage": colCompanyName, "broker company": colCompanyName,

	"mc#": colMCNumber, "mc #": colMCNumber, "mc": colMCNumber, "mc number": colMCNumber,
	"mc no": colMCNumber, "mc id": colMCNumber, "docket": colMCNumber,

	"phone": colPhone, "phone number": colPhone, "broker phone": colPhone, "phone #": colPhone,

	"email": colEmail, "e mail": colEmail, "email address": colEmail, "broker email": colEmail,

	"address": colAddress, "company address": colAddress, "broker address": colAddress,

	"load board": colLoadBoard, "loadboard": colLoadBoard, "board": colLoadBoard,

	"notes": colNotes, "note": colNotes, "comments": colNotes, "remarks": colNotes,

	"load #": colLoadID, "load#": colLoadID, "load": colLoadID, "load id": colLoadID,
	"load number": colLoadID, "load no": colLoadID, "reference": colLoadID, "ref #": colLoadID,
	"pro #": colLoadID,

	"origin": colOrigin, "from": colOrigin, "origin city": colOrigin, "pickup city": colOrigin,
	"shipper city": colOrigin, "pick up": colOrigin,

	"destination": colDestination, "to": colDestination, "dest": colDestination,
	"destination city": colDestination, "delivery city": colDestination, "consignee city": colDestination,
	"drop": colDestination,

	"trip": colTrip, "lane": colTrip, "route": colTrip, "source destination": colTrip,

	"equipment": colEquipment, "equipment type": colEquipment, "trailer": colEquipment,
	"trailer type": colEquipment, "truck type": colEquipment, "equip": colEquipment,

	"rate": colRate, "amount": colRate, "total": colRate, "total rate": colRate, "pay": colRate,
	"linehaul": colRate, "line haul": colRate, "rate amount": colRate,

	"rate per mile": colRatePerMile, "rpm": colRatePerMile, "$/mile": colRatePerMile,
	"$/mi": colRatePerMile, "per mile": colRatePerMile,

	"currency": colCurrency,

	"miles": colDistance, "distance": colDistance, "mileage": colDistance, "loaded miles": colDistance,
	"distance miles": colDistance,

	"transit": colTransit, "transit time": colTransit, "transit hours": colTransit, "hours": colTransit,

	"date": colBookingDate, "booking date": colBookingDate, "booked": colBookingDate,
	"date booked": colBookingDate, "date of contract": colBookingDate,

	"pickup date": colPickupDate, "pick up date": colPickupDate, "pu date": colPickupDate,
	"ship date": colPickupDate,

	"delivery date": colDeliveryDate, "del date": colDeliveryDate, "drop date": colDeliveryDate,
	"delivered": colDeliveryDate,
}

var headerSpaceRe = regexp.MustCompile(`[\s_\-]+`)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, ":")
	h = strings.Trim(h, "*")
	return strings.TrimSpace(headerSpaceRe.ReplaceAllString(h, " "))
}

// mapHeader resolves each header cell to a column. Unknown headers are
// ignored; the first of two headers mapping to the same column wins.
func mapHeader(header []string) []column {
	cols := make([]column, len(header))
	seen := map[column]bool{}
	for i, h := range header {
		c := headerAliases[normalizeHeader(h)]
		if c == colIgnore || seen[c] {
			continue
		}
		seen[c] = true
		cols[i] = c
	}
	return cols
}

// recognized counts mapped columns. A row with fewer than two is not a header.
func recognized(cols []column) int {
	n := 0
	for _, c := range cols {
		if c != colIgnore {
			n++
		}
	}
	return n
}
