// Package diag separates the two error kinds of the engine: internal
// consistency violations (a bug in the front-end contract or in a
// builder, fatal, dumped with full context) and plain execution errors
// (configuration mistakes, reported to the user as-is).
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Violation is an internal-consistency violation: an id missing from
// every store collection, a referenced block that does not exist, an AST
// variant no builder handles. It indicates a grammar/IR mismatch, never
// user error.
type Violation struct {
	Msg     string
	Context map[string]any
}

func (v *Violation) Error() string {
	if len(v.Context) == 0 {
		return "internal: " + v.Msg
	}
	keys := make([]string, 0, len(v.Context))
	for k := range v.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("internal: ")
	b.WriteString(v.Msg)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, v.Context[k])
	}
	b.WriteString(")")
	return b.String()
}

// Violationf builds a Violation with a formatted message.
func Violationf(format string, args ...any) *Violation {
	return &Violation{Msg: fmt.Sprintf(format, args...)}
}

// With attaches a context pair and returns the violation for chaining.
func (v *Violation) With(key string, value any) *Violation {
	if v.Context == nil {
		v.Context = make(map[string]any)
	}
	v.Context[key] = value
	return v
}

// AsViolation reports whether err is, or wraps, a Violation.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
