package query

import (
	"regexp"
	"strings"

	"github.com/kumarabd/triage-plane/pkg/ecs"
)

// Operator joins two adjacent conditions
type Operator string

const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"
)

// Condition is one field:value term. Field "_all" means free-text search.
type Condition struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Query is an ordered condition list joined by len(Conditions)-1 operators.
type Query struct {
	Conditions []Condition `json:"conditions"`
	Operators  []Operator  `json:"operators"`
}

// tokenPattern keeps a quoted field:"value with spaces" together as one
// token; everything else splits on whitespace.
var tokenPattern = regexp.MustCompile(`([\w.-]+:"[^"]*")|(\S+)`)

// Tokenize splits a query string into terms and operators.
func Tokenize(queryString string) []string {
	var tokens []string
	for _, m := range tokenPattern.FindAllStringSubmatch(queryString, -1) {
		if m[1] != "" {
			tokens = append(tokens, m[1])
		} else {
			tokens = append(tokens, m[2])
		}
	}
	return tokens
}

// Parse classifies each token as an operator or condition. A token without a
// colon becomes a free-text condition on _all. When the operator count does
// not line up with the conditions, all parsed operators are discarded and
// every pair of conditions is joined with AND. That repair is deliberate and
// silent; a malformed query is never an error.
func Parse(tokens []string) Query {
	var q Query

	for _, token := range tokens {
		switch strings.ToLower(token) {
		case string(OpAnd):
			q.Operators = append(q.Operators, OpAnd)
			continue
		case string(OpOr):
			q.Operators = append(q.Operators, OpOr)
			continue
		}

		if idx := strings.Index(token, ":"); idx >= 0 {
			field := strings.TrimSpace(token[:idx])
			value := strings.TrimSpace(token[idx+1:])
			if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2 {
				value = value[1 : len(value)-1]
			}
			q.Conditions = append(q.Conditions, Condition{Field: field, Value: value})
		} else {
			q.Conditions = append(q.Conditions, Condition{Field: "_all", Value: token})
		}
	}

	want := len(q.Conditions) - 1
	if want < 0 {
		want = 0
	}
	if len(q.Operators) != want {
		q.Operators = make([]Operator, want)
		for i := range q.Operators {
			q.Operators[i] = OpAnd
		}
	}

	return q
}

// Matches evaluates the query against one event, folding left to right with
// no operator precedence.
func (q Query) Matches(event *ecs.Event) bool {
	if len(q.Conditions) == 0 {
		return true
	}

	result := matchCondition(event, q.Conditions[0])
	for i, op := range q.Operators {
		if op == OpAnd {
			result = result && matchCondition(event, q.Conditions[i+1])
		} else {
			result = result || matchCondition(event, q.Conditions[i+1])
		}
	}
	return result
}

// Filter returns the events matching the query string, preserving input
// order. A blank query, or one that parses to zero conditions, returns the
// input unchanged.
func Filter(events []*ecs.Event, queryString string) []*ecs.Event {
	queryString = strings.TrimSpace(queryString)
	if queryString == "" {
		return events
	}

	tokens := Tokenize(queryString)
	if len(tokens) == 0 {
		return events
	}

	q := Parse(tokens)
	if len(q.Conditions) == 0 {
		return events
	}

	var filtered []*ecs.Event
	for _, event := range events {
		if q.Matches(event) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
