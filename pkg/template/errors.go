package template

import (
	"fmt"
	"strings"
)

// Kind classifies a template or generation failure.
type Kind int

const (
	// Malformed is a structural tag with a missing or unparseable label, count or argument.
	Malformed Kind = iota + 1
	// Unbalanced is EOF or an unexpected tag while looking for a start or end tag.
	Unbalanced
	// Unresolvable is a Dependent section whose master has not chosen, or chose out of range.
	Unresolvable
	// Conflict is a pair of mutually exclusive modifiers on one Random tag.
	Conflict
	// Exhausted is a selection policy left without any legal choice.
	Exhausted
	// Misplaced is a range or next placeholder outside a repeating Random section.
	Misplaced
	// Unresolved is a next placeholder whose section never repeated.
	Unresolved
)

func (k Kind) String() (s string) {
	switch k {
	case Malformed:
		s = "malformed tag"
	case Unbalanced:
		s = "unbalanced template"
	case Unresolvable:
		s = "unresolvable reference"
	case Conflict:
		s = "constraint conflict"
	case Exhausted:
		s = "constraint exhausted"
	case Misplaced:
		s = "misplaced placeholder"
	case Unresolved:
		s = "unresolved deferred write"
	default:
		s = "unknown"
	}
	return s
}

// Error describes why a template could not be read or a document could not be generated.
// Code is a distinct negative number per failure site.
type Error struct {
	Kind        Kind
	Code        int
	Label       string
	VariableKey string
	Document    int
	LineNo      int
	Line        string
	Msg         string
}

func (e *Error) Error() (msg string) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (code %d): %s", e.Kind, e.Code, e.Msg)
	var where []string
	if e.Label != "" {
		where = append(where, "section "+e.Label)
	}
	if e.VariableKey != "" && e.VariableKey != e.Label {
		where = append(where, "key "+e.VariableKey)
	}
	if e.Document > 0 {
		where = append(where, fmt.Sprintf("document %d", e.Document))
	}
	if len(where) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(where, ", "))
	}
	if e.LineNo > 0 {
		fmt.Fprintf(&b, " at line %d: %s", e.LineNo, strings.TrimRight(e.Line, "\n"))
	}
	msg = b.String()
	return msg
}

// Errorf builds an *Error positioned at a template line.
func Errorf(kind Kind, code, lineNo int, line, format string, args ...interface{}) (err *Error) {
	err = &Error{
		Kind:   kind,
		Code:   code,
		LineNo: lineNo,
		Line:   line,
		Msg:    fmt.Sprintf(format, args...),
	}
	return err
}
