package diagnostic

import (
	"fmt"

	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/parser"
)

// WarningKind classifies a finding so surfaces can filter or style it
// without string matching.
type WarningKind string

const (
	WarnTooManyArgs      WarningKind = "too-many-args"
	WarnNoArgsAccepted   WarningKind = "no-args-accepted"
	WarnSpaceSyntaxLimit WarningKind = "space-syntax-limit"
	WarnUnterminated     WarningKind = "unterminated"
	WarnUnknownMacro     WarningKind = "unknown-macro"
	WarnUnclosedScope    WarningKind = "unclosed-scope"
)

// Warning is one arity finding for a partially typed macro token. Warnings
// are advisory, never fatal, and a warning suppresses the argument hint for
// the same slot so the user sees a correction instead of a misleading hint.
type Warning struct {
	Kind    WarningKind
	Message string
}

// ArityWarning evaluates a typed token against a macro's arity contract.
// At most one warning is produced; the checks run in a fixed order and the
// first match wins. Nil means the token is fine so far.
func ArityWarning(def *macro.Definition, ctx *parser.ParseContext) *Warning {
	switch {
	case !def.HasList() && len(ctx.Args) > def.MaxArgs:
		return &Warning{
			Kind: WarnTooManyArgs,
			Message: fmt.Sprintf("too many arguments, %s accepts up to %d %s",
				def.Name, def.MaxArgs, plural(def.MaxArgs, "argument")),
		}

	case ctx.HasSpaceArgContent && def.MaxArgs == 0:
		return &Warning{
			Kind:    WarnNoArgsAccepted,
			Message: fmt.Sprintf("%s accepts no arguments", def.Name),
		}

	case ctx.HasSpaceArgContent && !def.HasList() && def.MaxArgs > 2:
		return &Warning{
			Kind:    WarnSpaceSyntaxLimit,
			Message: `space syntax is only valid for macros with up to 2 arguments, use "::" to separate arguments instead`,
		}

	case ctx.SeparatorCount > 0 && def.MaxArgs == 0:
		return &Warning{
			Kind:    WarnNoArgsAccepted,
			Message: fmt.Sprintf("%s accepts no arguments", def.Name),
		}
	}

	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
