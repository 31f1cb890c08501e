package model

import "fmt"

// WarningKind classifies a non-fatal problem found while processing a batch.
type WarningKind string

const (
	WarnValidation WarningKind = "validation"
	WarnConflict   WarningKind = "conflict"
	WarnUnresolved WarningKind = "unresolved_enrichment"
)

// Warning is a per-record issue reported alongside successful results.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Record  int         `json:"record"`
	Field   string      `json:"field,omitempty"`
	Key     string      `json:"key,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("%s: record %d: %s: %s", w.Kind, w.Record, w.Field, w.Message)
	}
	return fmt.Sprintf("%s: record %d: %s", w.Kind, w.Record, w.Message)
}
