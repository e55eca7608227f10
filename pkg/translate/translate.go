package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kumarabd/gokit/logger"

	"github.com/kumarabd/triage-plane/internal/metrics"
)

// Config contains configuration for the translation provider
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" default:"http://localhost:11434/api/generate"`
	Model    string        `json:"model" yaml:"model" default:"tinyllama"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" default:"10s"`
}

// Result is the provider's answer to one natural language request.
type Result struct {
	Query       string `json:"kql"`
	Explanation string `json:"explanation"`
	Warning     string `json:"warnings"`
}

// Translator converts free text into a simplified query string.
type Translator interface {
	Translate(ctx context.Context, text string) (Result, error)
}

// Client talks to a single-shot text generation endpoint.
type Client struct {
	config *Config
	client *http.Client
	log    *logger.Handler
	metric *metrics.Handler
}

// New creates a translation client
func New(config *Config, log *logger.Handler, metric *metrics.Handler) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: timeout},
		log:    log,
		metric: metric,
	}
}

// generateRequest is the payload for the provider
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the provider's raw answer
type generateResponse struct {
	Response string `json:"response"`
}

// Translate asks the provider for a query. A transport or status failure is
// returned as an error. Unparsable provider output is not an error: the
// result falls back to an empty query carrying the raw text as explanation
// plus a generic validity warning. That fallback is the only recovery path
// at this boundary.
func (c *Client) Translate(ctx context.Context, text string) (Result, error) {
	reqBody := generateRequest{
		Model:  c.config.Model,
		Prompt: buildPrompt(text),
		Stream: false,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if c.metric != nil {
			c.metric.IncTranslateRequestsTotal("transport_error")
		}
		return Result{}, fmt.Errorf("provider connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.metric != nil {
			c.metric.IncTranslateRequestsTotal("bad_status")
		}
		return Result{}, fmt.Errorf("provider returned status: %s", resp.Status)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return Result{}, fmt.Errorf("failed to decode provider response: %w", err)
	}

	raw := strings.TrimSpace(genResp.Response)

	var result Result
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		if c.log != nil {
			c.log.Warn().Err(err).Msg("Provider output was not valid JSON, falling back")
		}
		if c.metric != nil {
			c.metric.IncTranslateRequestsTotal("invalid_output")
		}
		return Result{
			Query:       "",
			Explanation: fmt.Sprintf("Parsing failed, the original response is as follows:\n%s", raw),
			Warning:     "Please check whether the LLM output format is valid.",
		}, nil
	}

	if c.metric != nil {
		c.metric.IncTranslateRequestsTotal("ok")
	}
	return result, nil
}

// extractJSON cuts the text down to the outermost JSON object, tolerating
// providers that wrap their answer in prose.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

const promptTemplate = `You are a security log query assistant.
Convert the user's natural language search request into the simplified query format.

The simplified format:
- Syntax is field:value or field:"value with spaces".
- Logical operators AND and OR are supported; NOT and parentheses are not.
- If no field name applies, use _all for a fuzzy search across all fields.
- Matching is case-insensitive substring inclusion.

Available fields (names must match exactly):
event.category, severity, outcome, source.ip, destination.ip, user.name, message (also reachable via _all).

Map event type phrases ("process events", "network activity", "authentication failures") to event.category with the core category word as the value. Time ranges and sorting are unsupported: ignore them and mention that in warnings.

You must output only one JSON object, strictly in this format, with no extra text and no Markdown fences:
{"kql": "single-line query string", "explanation": "brief explanation of the interpretation", "warnings": "ignored parts, or an empty string"}

The user's request:
""" %s """`

func buildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
