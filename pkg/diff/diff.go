package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// DiffExportedOnly renders a line diff between the exported fields of want
// and got. The result is empty when the two values match, so callers can
// treat any non-empty string as a failure message.
func DiffExportedOnly[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)

	out := diff.Diff(printer.Sprint(got), printer.Sprint(want))
	if out == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nmismatch, lines marked - are actual and + are expected:\n\n")
	sb.WriteString(out)
	sb.WriteString("\n")
	return sb.String()
}

// Strings is DiffExportedOnly for plain text, line by line.
func Strings(want string, got string) string {
	out := diff.Diff(got, want)
	if out == "" {
		return ""
	}
	return "\n\nmismatch, lines marked - are actual and + are expected:\n\n" + out + "\n"
}
