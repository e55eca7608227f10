package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Handler struct {
	RequestsReceived       *prometheus.CounterVec
	UploadsTotal           *prometheus.CounterVec
	IngestLinesTotal       *prometheus.CounterVec
	NormalizeFailuresTotal *prometheus.CounterVec
	QueryFilterLatency     *prometheus.HistogramVec
	DetectionsTotal        *prometheus.CounterVec
	TranslateRequestsTotal *prometheus.CounterVec
}

type Options struct {
	// Additional labels necessary
}

func New(name string) (*Handler, error) {
	return &Handler{
		RequestsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_received",
			Help: "The total number of http requests received",
		}, []string{"status"}),
		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "The total number of log files uploaded",
		}, []string{"result"}),
		IngestLinesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_lines_total",
			Help: "The total number of input lines processed",
		}, []string{"result"}),
		NormalizeFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "normalize_failures_total",
			Help: "The total number of lines that failed normalization",
		}, []string{"reason"}),
		QueryFilterLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "query_filter_latency_seconds",
			Help:    "The latency of query filtering over a dataset",
			Buckets: prometheus.DefBuckets,
		}, []string{"success"}),
		DetectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "detections_total",
			Help: "The total number of rule detections emitted",
		}, []string{"rule"}),
		TranslateRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "translate_requests_total",
			Help: "The total number of natural language translation requests",
		}, []string{"result"}),
	}, nil
}

// IncUploadsTotal increments the uploads counter
func (h *Handler) IncUploadsTotal(result string) {
	h.UploadsTotal.WithLabelValues(result).Inc()
}

// IncIngestLinesTotal increments the processed lines counter
func (h *Handler) IncIngestLinesTotal(result string) {
	h.IngestLinesTotal.WithLabelValues(result).Inc()
}

// IncNormalizeFailuresTotal increments the normalization failure counter
func (h *Handler) IncNormalizeFailuresTotal(reason string) {
	h.NormalizeFailuresTotal.WithLabelValues(reason).Inc()
}

// ObserveQueryFilterLatency records the latency of one filter run
func (h *Handler) ObserveQueryFilterLatency(duration time.Duration, success bool) {
	successStr := "true"
	if !success {
		successStr = "false"
	}
	h.QueryFilterLatency.WithLabelValues(successStr).Observe(duration.Seconds())
}

// IncDetectionsTotal increments the detection counter for a rule
func (h *Handler) IncDetectionsTotal(rule string) {
	h.DetectionsTotal.WithLabelValues(rule).Inc()
}

// IncTranslateRequestsTotal increments the translation request counter
func (h *Handler) IncTranslateRequestsTotal(result string) {
	h.TranslateRequestsTotal.WithLabelValues(result).Inc()
}
