package service

import (
	"fmt"
	"io"
	"time"

	"github.com/kumarabd/gokit/logger"

	"github.com/kumarabd/triage-plane/internal/metrics"
	"github.com/kumarabd/triage-plane/pkg/ecs"
	"github.com/kumarabd/triage-plane/pkg/histogram"
	"github.com/kumarabd/triage-plane/pkg/normalize"
	"github.com/kumarabd/triage-plane/pkg/query"
	"github.com/kumarabd/triage-plane/pkg/rules"
	"github.com/kumarabd/triage-plane/pkg/store"
	"github.com/kumarabd/triage-plane/pkg/translate"
)

type Config struct {
	Analysis  *normalize.Config `json:"analysis" yaml:"analysis"`
	Translate *translate.Config `json:"translate" yaml:"translate"`
}

// Handler runs the analysis pipeline and owns the dataset reference.
type Handler struct {
	log        *logger.Handler
	config     *Config
	metric     *metrics.Handler
	normalizer *normalize.Handler
	datastore  *store.Handler
	translator translate.Translator
}

func New(l *logger.Handler, m *metrics.Handler, sConfig *Config) (*Handler, error) {
	datastore, err := store.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dataset store: %w", err)
	}

	return &Handler{
		log:        l,
		config:     sConfig,
		metric:     m,
		normalizer: normalize.New(sConfig.Analysis, l, m),
		datastore:  datastore,
		translator: translate.New(sConfig.Translate, l, m),
	}, nil
}

// GetTranslator returns the natural language translator
func (h *Handler) GetTranslator() translate.Translator {
	return h.translator
}

// GetStore returns the dataset store
func (h *Handler) GetStore() *store.Handler {
	return h.datastore
}

// Upload ingests one NDJSON payload and replaces the currently loaded
// dataset with the result.
func (h *Handler) Upload(r io.Reader, filename string) (*store.Dataset, error) {
	batch, err := h.normalizer.ReadBatch(r)
	if err != nil {
		if h.metric != nil {
			h.metric.IncUploadsTotal("failed")
		}
		return nil, err
	}

	dataset := &store.Dataset{
		Filename:   filename,
		Batch:      batch,
		UploadedAt: time.Now().UTC(),
	}
	h.datastore.Put(dataset)

	if h.metric != nil {
		h.metric.IncUploadsTotal("ok")
	}
	h.log.Info().
		Str("filename", filename).
		Int("events", len(batch.Events)).
		Int("errors", len(batch.Errors)+len(batch.IngestErrors)).
		Msg("Dataset replaced")

	return dataset, nil
}

// Current returns the currently loaded dataset, if any.
func (h *Handler) Current() (*store.Dataset, bool) {
	return h.datastore.Current()
}

// LineError is one ingest or normalization failure prepared for display.
type LineError struct {
	Line    int    `json:"line"`
	Message string `json:"error"`
}

// View is the presentation-ready outcome of one query over a dataset.
type View struct {
	Events     []*ecs.Event             `json:"events"`
	Detections []rules.DetectionWarning `json:"detections"`
	Histogram  histogram.Result         `json:"histogram"`
	Errors     []LineError              `json:"errors"`
	Warnings   []ecs.Warning            `json:"warnings"`
}

// BuildView filters the dataset with the query, then runs rule detection and
// the time histogram independently over the same visible set. Diagnostics
// are capped for display.
func (h *Handler) BuildView(dataset *store.Dataset, queryString string) *View {
	start := time.Now()
	visible := query.Filter(dataset.Batch.Events, queryString)
	if h.metric != nil {
		h.metric.ObserveQueryFilterLatency(time.Since(start), true)
	}

	detections := rules.Detect(visible)
	if h.metric != nil {
		for _, d := range detections {
			h.metric.IncDetectionsTotal(d.RuleID)
		}
	}

	limit := h.config.Analysis.DiagnosticCap
	return &View{
		Events:     visible,
		Detections: detections,
		Histogram:  histogram.Build(visible),
		Errors:     capErrors(mergeErrors(dataset.Batch), limit),
		Warnings:   capWarnings(dataset.Batch.Warnings, limit),
	}
}

// mergeErrors interleaves ingest and normalization errors back into line
// order for display.
func mergeErrors(batch *normalize.Batch) []LineError {
	merged := make([]LineError, 0, len(batch.IngestErrors)+len(batch.Errors))
	i, j := 0, 0
	for i < len(batch.IngestErrors) || j < len(batch.Errors) {
		if j >= len(batch.Errors) ||
			(i < len(batch.IngestErrors) && batch.IngestErrors[i].Line < batch.Errors[j].Line) {
			merged = append(merged, LineError{Line: batch.IngestErrors[i].Line, Message: batch.IngestErrors[i].Message})
			i++
		} else {
			merged = append(merged, LineError{Line: batch.Errors[j].Line, Message: batch.Errors[j].Message})
			j++
		}
	}
	return merged
}

func capErrors(errors []LineError, limit int) []LineError {
	if limit > 0 && len(errors) > limit {
		return errors[:limit]
	}
	return errors
}

func capWarnings(warnings []ecs.Warning, limit int) []ecs.Warning {
	if limit > 0 && len(warnings) > limit {
		return warnings[:limit]
	}
	return warnings
}
