package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders toolkit errors for terminal output.
type Reporter struct{}

// FormatError renders err with a colored severity header, in the style
// error[E0100]: message; Diagnostic errors use warning[E0017]: message.
func (Reporter) FormatError(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return color.RedString("error") + ": " + err.Error()
	}

	level := color.New(color.FgRed, color.Bold).SprintFunc()
	word := "error"
	if e.Kind == Diagnostic {
		level = color.New(color.FgYellow, color.Bold).SprintFunc()
		word = "warning"
	}

	var b strings.Builder
	if e.Code != "" {
		b.WriteString(fmt.Sprintf("%s[%s]: ", level(word), e.Code))
	} else {
		b.WriteString(level(word) + ": ")
	}
	b.WriteString(e.Message)
	return b.String()
}
