package query

import (
	"reflect"
	"testing"

	"github.com/kumarabd/triage-plane/pkg/ecs"
	"github.com/kumarabd/triage-plane/pkg/normalize"
)

func makeEvent(t *testing.T, line int, raw string) *ecs.Event {
	t.Helper()
	doc, err := ecs.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	event, _, normErr := normalize.Row(doc, line)
	if normErr != nil {
		t.Fatalf("Row failed: %v", normErr)
	}
	return event
}

func testEvents(t *testing.T) []*ecs.Event {
	t.Helper()
	return []*ecs.Event{
		makeEvent(t, 1, `{"@timestamp":"2025-01-01T00:00:00.00Z","event":{"category":["authentication"],"outcome":"failure"},"source":{"ip":"203.0.113.5"},"user":{"name":"alice"},"message":"user login failed login"}`),
		makeEvent(t, 2, `{"@timestamp":"2025-01-01T00:00:05.00Z","event":{"category":["process"],"outcome":"success"},"host":{"name":"host-01"},"message":"process started"}`),
		makeEvent(t, 3, `{"@timestamp":"2025-01-01T00:00:09.00Z","event":{"category":["network"]},"destination":{"ip":"10.0.0.9"},"message":"port scan detected"}`),
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			"quoted value is one token",
			`event.category:"process start" and severity:high`,
			[]string{`event.category:"process start"`, "and", "severity:high"},
		},
		{
			"bareword free text",
			"failed login",
			[]string{"failed", "login"},
		},
		{
			"empty",
			"",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.query); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	q := Parse(Tokenize(`event.category:authentication OR message:"failed login"`))
	if len(q.Conditions) != 2 {
		t.Fatalf("Expected 2 conditions, got %d", len(q.Conditions))
	}
	if q.Conditions[0] != (Condition{Field: "event.category", Value: "authentication"}) {
		t.Errorf("Unexpected first condition %+v", q.Conditions[0])
	}
	if q.Conditions[1] != (Condition{Field: "message", Value: "failed login"}) {
		t.Errorf("Quotes should be stripped, got %+v", q.Conditions[1])
	}
	if len(q.Operators) != 1 || q.Operators[0] != OpOr {
		t.Errorf("Expected a single or operator, got %v", q.Operators)
	}
}

func TestParseBarewordBecomesFreeText(t *testing.T) {
	q := Parse(Tokenize("sudo"))
	if len(q.Conditions) != 1 || q.Conditions[0].Field != "_all" || q.Conditions[0].Value != "sudo" {
		t.Errorf("Expected an _all condition, got %+v", q.Conditions)
	}
}

func TestParseOperatorMismatchRepair(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"consecutive operators", "a:1 and or b:2"},
		{"leading operator", "and a:1 or b:2 or"},
		{"trailing operator", "a:1 b:2 and"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(Tokenize(tt.query))
			if len(q.Operators) != len(q.Conditions)-1 {
				t.Fatalf("Expected repaired operator count, got %d for %d conditions", len(q.Operators), len(q.Conditions))
			}
			for _, op := range q.Operators {
				if op != OpAnd {
					t.Errorf("Repair must join with and, got %v", q.Operators)
				}
			}
		})
	}
}

func TestFilterIdentity(t *testing.T) {
	events := testEvents(t)

	for _, blank := range []string{"", "   "} {
		got := Filter(events, blank)
		if !reflect.DeepEqual(got, events) {
			t.Errorf("Filter(%q) must return the input unchanged", blank)
		}
	}

	// A query of only operators parses to zero conditions.
	if got := Filter(events, "and or"); len(got) != len(events) {
		t.Errorf("Zero-condition query must be identity, got %d events", len(got))
	}
}

func TestFilterFieldCondition(t *testing.T) {
	events := testEvents(t)

	got := Filter(events, "event.category:authentication")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("Expected only the authentication event, got %+v", got)
	}
}

func TestFilterScenario(t *testing.T) {
	events := testEvents(t)

	got := Filter(events, `event.category:authentication AND message:"failed login"`)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("Expected exactly the authentication event, got %d events", len(got))
	}
}

func TestFilterOrFold(t *testing.T) {
	events := testEvents(t)

	got := Filter(events, "event.category:process or event.category:network")
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("Expected events 2 and 3 in order, got %+v", got)
	}
}

func TestFilterFreeText(t *testing.T) {
	events := testEvents(t)

	got := Filter(events, "alice")
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("Expected the alice event, got %d events", len(got))
	}

	// Matching is case-insensitive.
	got = Filter(events, "PORT")
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("Expected the network event, got %d events", len(got))
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	events := testEvents(t)

	got := Filter(events, "message:e")
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("Filter must be stable, got ids out of order: %d before %d", got[i-1].ID, got[i].ID)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	event := makeEvent(t, 1, `{"@timestamp":"2025-01-01T00:00:00.00Z","event":{"category":["network"]},"source_ip":"172.16.0.4","labels":{"env":"prod"}}`)

	// Canonical/flattened name first.
	if v := Resolve(event, "event.category"); v == nil || v.Render() != `["network"]` {
		t.Errorf("Expected canonical hit, got %v", v)
	}
	// Dot replaced by underscore when the exact name is unset.
	if v := Resolve(event, "source.ip"); v == nil || v.Render() != "172.16.0.4" {
		t.Errorf("Expected underscore alias hit, got %v", v)
	}
	// Flattened leaf path.
	if v := Resolve(event, "labels.env"); v == nil || v.Render() != "prod" {
		t.Errorf("Expected flattened hit, got %v", v)
	}
	// An intermediate object is only reachable through the raw document.
	if v := Resolve(event, "labels"); v == nil || v.Render() != `{"env":"prod"}` {
		t.Errorf("Expected raw document hit, got %v", v)
	}
	if v := Resolve(event, "no.such.field"); v != nil {
		t.Errorf("Expected nil for unresolvable field, got %v", v)
	}
}
