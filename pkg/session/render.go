package session

import (
	"strings"

	"github.com/gitrdm/sys2/pkg/rule"
)

// renderCondition renders a condition tree to its DSL-like textual
// shape for dump()/inspect() output. This is a one-way rendering: the
// wire format never needs to reconstruct a *rule.Rule from text, since
// dump() only serves external inspection/persistence, not session
// rehydration of rules themselves (facts are rehydrated by replaying
// learn(), rules included).
func renderCondition(c rule.Condition) string {
	switch n := c.(type) {
	case *rule.Fact:
		return n.Operator + "(" + strings.Join(n.Args, ", ") + ")"
	case *rule.And:
		return "And(" + renderCondition(n.A) + ", " + renderCondition(n.B) + ")"
	case *rule.Or:
		return "Or(" + renderCondition(n.A) + ", " + renderCondition(n.B) + ")"
	case *rule.Not:
		return "Not(" + renderCondition(n.Inner) + ")"
	default:
		return "?"
	}
}
