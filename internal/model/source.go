package model

// DataSource tags where a record came from.
type DataSource string

const (
	SourcePDF      DataSource = "pdf"
	SourceEmail    DataSource = "email"
	SourceExcel    DataSource = "excel"
	SourceCSV      DataSource = "csv"
	SourceManual   DataSource = "manual"
	SourceEnriched DataSource = "enriched"
)

// Specificity ranks a source for load conflict resolution. A booking
// confirmation PDF beats an email, which beats a spreadsheet summary.
// Unknown sources rank lowest.
func (s DataSource) Specificity() int {
	switch s {
	case SourcePDF:
		return 5
	case SourceEmail:
		return 4
	case SourceExcel:
		return 3
	case SourceCSV:
		return 2
	case SourceManual:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known sources.
func (s DataSource) Valid() bool {
	return s.Specificity() > 0 || s == SourceEnriched
}

// RateOrigin distinguishes observed rates from estimates.
type RateOrigin string

const (
	RateRaw      RateOrigin = "raw"
	RateEnriched RateOrigin = "enriched"
)
