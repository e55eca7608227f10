package rules

import (
	"strings"

	"github.com/kumarabd/triage-plane/pkg/ecs"
)

// Rule is one static keyword detection. The table order is significant.
type Rule struct {
	ID          string `json:"id"`
	Keyword     string `json:"keyword"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Table is the ordered, immutable rule set scanned for every event.
var Table = []Rule{
	{
		ID:          "BRUTE_FORCE_LOGIN",
		Keyword:     "failed login",
		Severity:    "high",
		Description: "Possible brute-force login attempts detected.",
	},
	{
		ID:          "PORT_SCAN",
		Keyword:     "port scan",
		Severity:    "medium",
		Description: "Potential port scan or reconnaissance activity.",
	},
	{
		ID:          "PRIV_ESC",
		Keyword:     "privilege escalation",
		Severity:    "high",
		Description: "Privilege escalation attempt detected.",
	},
	{
		ID:          "SUSPICIOUS_PROCESS",
		Keyword:     "suspicious process",
		Severity:    "medium",
		Description: "Suspicious process execution detected.",
	},
	{
		ID:          "CREDENTIAL_COMPROMISE",
		Keyword:     "credential compromise",
		Severity:    "high",
		Description: "Possible credential compromise.",
	},
}

// DetectionWarning is one rule hit on one event.
type DetectionWarning struct {
	RowIndex       int    `json:"row_index"`
	RuleID         string `json:"rule_id"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	MatchedKeyword string `json:"matched_keyword"`
	Message        string `json:"message"`
	Category       string `json:"event_category"`
	Timestamp      string `json:"timestamp"`
}

// Detect scans each event's message against the rule table in order and
// records at most one warning per event: the first rule whose keyword is a
// case-insensitive substring of the message wins and the scan stops there.
// Only the message field is inspected, never the free-text buffer. RowIndex
// is the event's 1-based position in the scanned set.
func Detect(events []*ecs.Event) []DetectionWarning {
	var hits []DetectionWarning

	for i, event := range events {
		lowerMsg := strings.ToLower(event.Message)

		for _, rule := range Table {
			if !strings.Contains(lowerMsg, strings.ToLower(rule.Keyword)) {
				continue
			}
			hits = append(hits, DetectionWarning{
				RowIndex:       i + 1,
				RuleID:         rule.ID,
				Severity:       rule.Severity,
				Description:    rule.Description,
				MatchedKeyword: rule.Keyword,
				Message:        event.Message,
				Category:       event.Field("event.category").Render(),
				Timestamp:      event.Timestamp,
			})
			break
		}
	}

	return hits
}
