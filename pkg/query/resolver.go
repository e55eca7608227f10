package query

import (
	"strings"

	"github.com/kumarabd/triage-plane/pkg/ecs"
)

// Resolve finds the value for a field on one event. The precedence chain is
// fixed: the canonical/flattened field of that exact name, then the same name
// with dots replaced by underscores, then a dotted-path lookup inside the raw
// document. The first non-null hit wins; nil means the field is unresolvable
// on this event.
func Resolve(event *ecs.Event, field string) *ecs.Value {
	if v := event.Field(field); !v.IsNull() {
		return v
	}
	if strings.Contains(field, ".") {
		if v := event.Field(strings.ReplaceAll(field, ".", "_")); !v.IsNull() {
			return v
		}
	}
	if v := event.Raw.LookupPath(field); !v.IsNull() {
		return v
	}
	return nil
}

// matchCondition tests one condition against one event. All matching is a
// case-insensitive substring test.
func matchCondition(event *ecs.Event, cond Condition) bool {
	needle := strings.ToLower(cond.Value)

	if cond.Field == "_all" {
		if strings.Contains(strings.ToLower(event.FullText), needle) {
			return true
		}
		// Flattening can lose values on degenerate shapes; fall back to the
		// scalar leaves of the original document.
		matched := false
		event.Raw.WalkScalars(func(v *ecs.Value) bool {
			if strings.Contains(strings.ToLower(v.Render()), needle) {
				matched = true
				return false
			}
			return true
		})
		return matched
	}

	v := Resolve(event, cond.Field)
	if v == nil {
		return false
	}
	return strings.Contains(strings.ToLower(v.Render()), needle)
}
