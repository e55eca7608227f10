package ecs

import "time"

// Event is one normalized log record. All fields are set during
// normalization and never mutated afterwards.
type Event struct {
	// ID is the 1-based line number of the record, stable within a batch.
	ID int `json:"id"`

	// Timestamp keeps the original string form, TimestampValue its parsed
	// UTC instant.
	Timestamp      string    `json:"timestamp"`
	TimestampValue time.Time `json:"timestamp_value"`

	Message string `json:"message"`

	// Fields holds the canonical extracted fields plus every flattened leaf
	// of the document keyed by dot-joined path. Canonical entries always win
	// over same-named flattened ones.
	Fields map[string]*Value `json:"fields"`

	// Raw is the original document tree, kept for nested lookups.
	Raw *Value `json:"raw"`

	// FullText is the space-joined concatenation of all non-null flattened
	// values, used for free-text matching.
	FullText string `json:"-"`
}

// Field returns the named canonical or flattened field, nil when unset.
func (e *Event) Field(name string) *Value {
	if e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}

// NormalizationError records a line that produced no event.
type NormalizationError struct {
	Line    int    `json:"line"`
	Message string `json:"error"`
}

// IngestError records a line that could not be parsed as a document at all.
type IngestError struct {
	Line    int    `json:"line"`
	Message string `json:"error"`
}

// Warning records a soft issue on a line whose event was still produced.
type Warning struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}
