package server

import (
	"github.com/kumarabd/gokit/logger"

	"github.com/kumarabd/triage-plane/internal/metrics"
	"github.com/kumarabd/triage-plane/pkg/service"
)

// Config contains configuration for the server
type Config struct {
	HTTP *HTTPConfig `json:"http" yaml:"http"`
}

// Handler wraps the HTTP server
type Handler struct {
	HTTP   *HTTP
	config *Config
	log    *logger.Handler
}

// New creates a new server handler
func New(l *logger.Handler, m *metrics.Handler, serverConfig *Config, svc *service.Handler) (*Handler, error) {
	var httpServer *HTTP
	if serverConfig.HTTP != nil {
		httpServer = NewHTTP(serverConfig.HTTP, svc, l, m)
	}

	return &Handler{
		HTTP:   httpServer,
		config: serverConfig,
		log:    l,
	}, nil
}

// Start starts the server
func (h *Handler) Start(ch chan struct{}) {
	if h.HTTP != nil {
		go func() {
			if err := h.HTTP.Start(); err != nil {
				h.log.Error().Err(err).Msg("HTTP server failed")
			}
			ch <- struct{}{}
		}()
	}
}
