package normalize

import (
	"strings"
	"testing"
)

func newTestHandler() *Handler {
	return New(&Config{MaxLineBytes: 1 << 20, DiagnosticCap: 200}, nil, nil)
}

func TestReadBatchScenario(t *testing.T) {
	input := `{"@timestamp":"2025-01-01T00:00:00.00Z","event":{"category":["authentication"]},"message":"user login failed login"}
{"@timestamp":"2025-01-01T00:00:01.00Z","message":"no category here"}
`

	batch, err := newTestHandler().ReadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}

	if len(batch.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(batch.Events))
	}
	if batch.Events[0].ID != 1 {
		t.Errorf("Expected event id 1, got %d", batch.Events[0].ID)
	}
	if len(batch.Errors) != 1 {
		t.Fatalf("Expected 1 normalization error, got %d", len(batch.Errors))
	}
	if batch.Errors[0].Line != 2 || batch.Errors[0].Message != "missing required field: event.category" {
		t.Errorf("Unexpected error %+v", batch.Errors[0])
	}
	if len(batch.IngestErrors) != 0 {
		t.Errorf("Expected no ingest errors, got %v", batch.IngestErrors)
	}
}

func TestReadBatchUnparsableLine(t *testing.T) {
	input := `{"@timestamp":"2025-01-01T00:00:00.00Z","event":{"category":["network"]}}
this is not json
{"@timestamp":"2025-01-01T00:00:02.00Z","event":{"category":["network"]}}`

	batch, err := newTestHandler().ReadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}

	if len(batch.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(batch.Events))
	}
	// The bad line produces exactly one ingest error and no event, but the
	// batch continues.
	if len(batch.IngestErrors) != 1 || batch.IngestErrors[0].Line != 2 {
		t.Errorf("Expected one ingest error on line 2, got %v", batch.IngestErrors)
	}
	if batch.Events[0].ID != 1 || batch.Events[1].ID != 3 {
		t.Errorf("Expected event ids 1 and 3, got %d and %d", batch.Events[0].ID, batch.Events[1].ID)
	}
}

func TestReadBatchBlankLinesKeepNumbering(t *testing.T) {
	input := "\n\n{\"@timestamp\":\"2025-01-01T00:00:00.00Z\",\"event\":{\"category\":[\"process\"]}}\n"

	batch, err := newTestHandler().ReadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}
	if len(batch.Events) != 1 || batch.Events[0].ID != 3 {
		t.Fatalf("Expected a single event with id 3, got %+v", batch.Events)
	}
}

func TestReadBatchOverlongLine(t *testing.T) {
	handler := New(&Config{MaxLineBytes: 128 * 1024, DiagnosticCap: 200}, nil, nil)

	input := `{"@timestamp":"2025-01-01T00:00:00.00Z","event":{"category":["network"]}}` + "\n" +
		`{"@timestamp":"2025-01-01T00:00:01.00Z","event":{"category":["network"]},"message":"` +
		strings.Repeat("x", 256*1024) + `"}` + "\n" +
		`{"@timestamp":"2025-01-01T00:00:02.00Z","event":{"category":["network"]}}` + "\n"

	batch, err := handler.ReadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}

	// The oversized line is rejected on its own; lines before and after it
	// still normalize.
	if len(batch.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(batch.Events))
	}
	if batch.Events[0].ID != 1 || batch.Events[1].ID != 3 {
		t.Errorf("Expected event ids 1 and 3, got %d and %d", batch.Events[0].ID, batch.Events[1].ID)
	}
	if len(batch.IngestErrors) != 1 || batch.IngestErrors[0].Line != 2 {
		t.Fatalf("Expected one ingest error on line 2, got %v", batch.IngestErrors)
	}
	if !strings.Contains(batch.IngestErrors[0].Message, "maximum length") {
		t.Errorf("Unexpected ingest error message %q", batch.IngestErrors[0].Message)
	}
}

func TestReadBatchSmallLineLimit(t *testing.T) {
	handler := New(&Config{MaxLineBytes: 1024, DiagnosticCap: 200}, nil, nil)

	input := `{"@timestamp":"2025-01-01T00:00:00.00Z","event":{"category":["process"]},"message":"` +
		strings.Repeat("y", 4096) + `"}` + "\n" +
		`{"@timestamp":"2025-01-01T00:00:01.00Z","event":{"category":["process"]}}` + "\n"

	batch, err := handler.ReadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}

	// A cap smaller than the default read buffer must still be enforced.
	if len(batch.IngestErrors) != 1 || batch.IngestErrors[0].Line != 1 {
		t.Fatalf("Expected one ingest error on line 1, got %v", batch.IngestErrors)
	}
	if len(batch.Events) != 1 || batch.Events[0].ID != 2 {
		t.Fatalf("Expected a single event with id 2, got %+v", batch.Events)
	}
}

func TestReadBatchEmptyInput(t *testing.T) {
	batch, err := newTestHandler().ReadBatch(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}
	if len(batch.Events) != 0 || len(batch.Errors) != 0 || len(batch.IngestErrors) != 0 {
		t.Errorf("Expected an empty batch, got %+v", batch)
	}
}
