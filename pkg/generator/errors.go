package generator

import (
	"fmt"

	"github.com/nikogura/resume-randomizer/pkg/template"
)

// Error is the failure type for every template and generation error.
type Error = template.Error

func newError(kind template.Kind, code int, tag template.Tag, key, format string, args ...interface{}) (err *Error) {
	err = &Error{
		Kind:        kind,
		Code:        code,
		Label:       tag.Label,
		VariableKey: key,
		LineNo:      tag.LineNo,
		Line:        tag.Line,
		Msg:         fmt.Sprintf(format, args...),
	}
	return err
}
