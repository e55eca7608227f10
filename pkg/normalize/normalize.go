package normalize

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/kumarabd/triage-plane/pkg/ecs"
)

// Config contains configuration for batch ingestion
type Config struct {
	MaxLineBytes  int `json:"max_line_bytes" yaml:"max_line_bytes" default:"1048576"` // 1MB per input line
	DiagnosticCap int `json:"diagnostic_cap" yaml:"diagnostic_cap" default:"200"`     // errors/warnings kept for display
}

// requiredFields lists the fields every record must carry. event.category is
// nested under the top-level "event" grouping.
var requiredFields = []string{"@timestamp", "event.category"}

// canonicalFields maps each canonical event field to the member chain it is
// extracted from. severity has a secondary source handled in Row.
var canonicalFields = []struct {
	name string
	path []string
}{
	{"event.category", []string{"event", "category"}},
	{"event.action", []string{"event", "action"}},
	{"severity", []string{"event", "severity"}},
	{"outcome", []string{"event", "outcome"}},
	{"user.name", []string{"user", "name"}},
	{"host.name", []string{"host", "name"}},
	{"process.name", []string{"process", "name"}},
	{"process.pid", []string{"process", "pid"}},
	{"process.command_line", []string{"process", "command_line"}},
}

// Row normalizes one parsed document into an Event. A missing required field
// or unparsable timestamp yields a NormalizationError and no event. Invalid
// source/destination IP literals yield a warning and a nulled field while the
// event is still produced.
func Row(doc *ecs.Value, line int) (*ecs.Event, []ecs.Warning, *ecs.NormalizationError) {
	var warnings []ecs.Warning

	for _, f := range requiredFields {
		if doc.LookupPath(f) == nil {
			return nil, warnings, &ecs.NormalizationError{
				Line:    line,
				Message: fmt.Sprintf("missing required field: %s", f),
			}
		}
	}

	tsRaw := doc.Member("@timestamp")
	tsValue, ok := parseTimestamp(tsRaw)
	if !ok {
		return nil, warnings, &ecs.NormalizationError{
			Line:    line,
			Message: "invalid @timestamp",
		}
	}

	fields := make(map[string]*ecs.Value)
	fields["timestamp"] = tsRaw

	for _, cf := range canonicalFields {
		fields[cf.name] = doc.Lookup(cf.path...)
	}
	if fields["severity"].IsNull() {
		fields["severity"] = doc.Lookup("log", "level")
	}

	for _, ipField := range []string{"source.ip", "destination.ip"} {
		v := doc.LookupPath(ipField)
		if !v.IsNull() && !isValidIP(v) {
			warnings = append(warnings, ecs.Warning{
				Line:    line,
				Message: fmt.Sprintf("line %d: invalid %s", line, ipField),
			})
			v = nil
		}
		fields[ipField] = v
	}

	message := ""
	if m := doc.Member("message"); !m.IsNull() {
		message = m.Render()
	}
	fields["message"] = &ecs.Value{Kind: ecs.KindString, Str: message}

	// Flattening fills only the paths the canonical pass has not claimed.
	flat := doc.Flatten()
	var fullText []string
	for _, f := range flat {
		if _, taken := fields[f.Path]; !taken {
			fields[f.Path] = f.Value
		}
		if !f.Value.IsNull() {
			fullText = append(fullText, f.Value.Render())
		}
	}

	return &ecs.Event{
		ID:             line,
		Timestamp:      tsRaw.Render(),
		TimestampValue: tsValue,
		Message:        message,
		Fields:         fields,
		Raw:            doc,
		FullText:       norm.NFC.String(strings.Join(fullText, " ")),
	}, warnings, nil
}

// parseTimestamp accepts an ISO-8601-like string with a trailing Z or an
// explicit offset. A bare local form without offset is treated as UTC.
func parseTimestamp(v *ecs.Value) (time.Time, bool) {
	if v == nil || v.Kind != ecs.KindString {
		return time.Time{}, false
	}
	s := v.Str
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func isValidIP(v *ecs.Value) bool {
	if v == nil || v.Kind != ecs.KindString {
		return false
	}
	_, err := netip.ParseAddr(v.Str)
	return err == nil
}
