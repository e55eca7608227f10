package normalize

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kumarabd/gokit/logger"

	"github.com/kumarabd/triage-plane/internal/metrics"
	"github.com/kumarabd/triage-plane/pkg/ecs"
)

// Batch is the outcome of ingesting one NDJSON payload. Entries in every
// list follow input line order.
type Batch struct {
	Events       []*ecs.Event
	Errors       []ecs.NormalizationError
	IngestErrors []ecs.IngestError
	Warnings     []ecs.Warning
}

// Handler ingests NDJSON payloads line by line
type Handler struct {
	config *Config
	log    *logger.Handler
	metric *metrics.Handler
}

// New creates a new normalization handler
func New(config *Config, log *logger.Handler, metric *metrics.Handler) *Handler {
	return &Handler{
		config: config,
		log:    log,
		metric: metric,
	}
}

// GetConfig returns the handler configuration
func (h *Handler) GetConfig() *Config {
	return h.config
}

// ReadBatch consumes the input as a stream of lines, one document per line.
// Blank lines are skipped but still counted, so event IDs stay aligned with
// the source file. No single bad line aborts the batch: a line over the
// configured byte cap is recorded as an ingest error and the stream
// continues with the next line.
func (h *Handler) ReadBatch(r io.Reader) (*Batch, error) {
	batch := &Batch{}

	reader := bufio.NewReader(r)

	line := 0
	for {
		text, overLong, err := readLine(reader, h.config.MaxLineBytes)
		if err != nil && err != io.EOF {
			return batch, fmt.Errorf("failed to read input stream: %w", err)
		}
		atEOF := err == io.EOF
		if atEOF && text == "" && !overLong {
			break
		}
		line++

		if overLong {
			batch.IngestErrors = append(batch.IngestErrors, ecs.IngestError{
				Line:    line,
				Message: fmt.Sprintf("line exceeds maximum length of %d bytes", h.config.MaxLineBytes),
			})
			if h.metric != nil {
				h.metric.IncIngestLinesTotal("too_long")
			}
			if atEOF {
				break
			}
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			if atEOF {
				break
			}
			continue
		}

		doc, err := ecs.Parse([]byte(text))
		if err != nil {
			batch.IngestErrors = append(batch.IngestErrors, ecs.IngestError{
				Line:    line,
				Message: err.Error(),
			})
			if h.metric != nil {
				h.metric.IncIngestLinesTotal("parse_error")
			}
			continue
		}

		event, warnings, normErr := Row(doc, line)
		batch.Warnings = append(batch.Warnings, warnings...)
		if normErr != nil {
			batch.Errors = append(batch.Errors, *normErr)
			if h.metric != nil {
				h.metric.IncIngestLinesTotal("normalize_error")
				h.metric.IncNormalizeFailuresTotal(failureReason(normErr.Message))
			}
			continue
		}

		batch.Events = append(batch.Events, event)
		if h.metric != nil {
			h.metric.IncIngestLinesTotal("normalized")
		}
	}

	if h.log != nil {
		h.log.Debug().
			Int("events", len(batch.Events)).
			Int("errors", len(batch.Errors)+len(batch.IngestErrors)).
			Int("warnings", len(batch.Warnings)).
			Msg("Ingested batch")
	}

	return batch, nil
}

// readLine reads one newline-terminated line, accumulating at most max
// bytes. Once a line grows past the cap the remainder is drained and
// discarded so the caller can resume at the next line.
func readLine(r *bufio.Reader, max int) (string, bool, error) {
	var buf []byte
	overLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !overLong {
			n := len(chunk)
			if n > 0 && chunk[n-1] == '\n' {
				n--
			}
			if len(buf)+n > max {
				overLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return string(buf), overLong, err
	}
}

func failureReason(message string) string {
	if strings.HasPrefix(message, "missing required field") {
		return "missing_field"
	}
	return "invalid_timestamp"
}
