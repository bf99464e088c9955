package completion

import (
	"fmt"

	"github.com/tavernworks/macrols/pkg/diagnostic"
	"github.com/tavernworks/macrols/pkg/macro"
	"github.com/tavernworks/macrols/pkg/parser"
	"github.com/tavernworks/macrols/pkg/render"
)

// MacroStyle controls presentation details for macro options built outside
// a live typing session, such as the ones listed by tooling.
type MacroStyle struct {
	// NoBraces drops the surrounding braces from the rendered signature.
	NoBraces bool

	// PaddingAfter is inserted between the name and the closing delimiter
	// when the option auto closes.
	PaddingAfter string

	// CloseWithBraces makes committing the option emit the closing
	// delimiter even for macros that take arguments.
	CloseWithBraces bool
}

// MacroOption suggests a single macro definition. Build it with
// NewMacroOption when the caret sits inside a macro token, or with
// NewStaticMacroOption when there is no typing context at all.
type MacroOption struct {
	def   *macro.Definition
	pctx  *parser.ParseContext
	style MacroStyle
}

// NewMacroOption builds an option bound to a live parse context. The
// closing padding mirrors the padding the user already typed after the
// opening delimiter.
func NewMacroOption(def *macro.Definition, pctx *parser.ParseContext) *MacroOption {
	style := MacroStyle{}
	if pctx != nil {
		style.PaddingAfter = pctx.PaddingBefore
	}
	return &MacroOption{def: def, pctx: pctx, style: style}
}

// NewStaticMacroOption builds an option with fixed presentation and no
// parse context. Context dependent banners and argument highlighting stay
// off for such options.
func NewStaticMacroOption(def *macro.Definition, style MacroStyle) *MacroOption {
	return &MacroOption{def: def, style: style}
}

// Definition exposes the suggested macro.
func (o *MacroOption) Definition() *macro.Definition { return o.def }

func (o *MacroOption) Name() string { return o.def.Name }

func (o *MacroOption) SortPriority() int { return DefaultPriority }

func (o *MacroOption) Selectable() bool { return true }

// autoCloses reports whether committing the option should also emit the
// closing delimiter. Macros that accept neither arguments nor a list have
// nothing left to type, so they always auto close.
func (o *MacroOption) autoCloses() bool {
	if o.style.CloseWithBraces {
		return true
	}
	return o.def.MaxArgs == 0 && !o.def.HasList()
}

func (o *MacroOption) Value() (string, bool) {
	if !o.autoCloses() {
		return "", false
	}
	return o.def.Name + o.style.PaddingAfter + "}}", true
}

// displaySignature is the signature text shown in the list row.
func (o *MacroOption) displaySignature() string {
	sig := render.FormatSignature(o.def)
	if o.style.NoBraces {
		return sig
	}
	return "{{" + sig + "}}"
}

func (o *MacroOption) RenderItem() render.Node {
	cells := []render.Node{render.Badge(render.ClassGlyph, macroGlyph)}
	cells = append(cells, render.Chars(o.displaySignature())...)
	cells = append(cells, render.Spacer())
	if o.def.Description != "" {
		cells = append(cells, render.Span(render.ClassMuted, o.def.Description))
	}
	if badge, ok := render.AliasIndicator(o.def); ok {
		cells = append(cells, badge)
	}
	cells = append(cells, render.SourceIndicator(o.def))
	return render.Row(cells...)
}

func (o *MacroOption) RenderDetails() render.Node {
	var children []render.Node

	activeArg := -1
	if o.pctx != nil {
		activeArg = o.pctx.CurrentArgIndex
	}

	if o.pctx != nil {
		if warning := diagnostic.ArityWarning(o.def, o.pctx); warning != nil {
			children = append(children, render.Banner(render.ClassWarning,
				render.Row(render.Span(render.ClassWarning, "warning: "+warning.Message))))
			// a warning replaces the argument hint and highlighting
			activeArg = -1
		}
	}

	if o.pctx != nil && o.pctx.IsInScopedContent {
		msg := "the caret is inside scoped macro content"
		if o.pctx.ScopedMacroName != "" {
			msg = fmt.Sprintf("this text sits inside {{%s}} and becomes its final argument", o.pctx.ScopedMacroName)
		}
		children = append(children, render.Banner(render.ClassInfo,
			render.Row(render.Span(render.ClassInfo, msg))))
	}

	if activeArg >= 0 {
		if hint, ok := o.argumentHint(activeArg); ok {
			children = append(children, hint)
		}
	}

	children = append(children, render.DetailPanel(o.def, activeArg))
	return render.Panel(children...)
}

// argumentHint builds the banner describing the argument slot under the
// caret. Slots past the declared arguments fall through to the list
// descriptor when the macro has one.
func (o *MacroOption) argumentHint(index int) (render.Node, bool) {
	if arg := o.def.ArgAt(index); arg != nil {
		rows := []render.Node{render.Row(
			render.Span(render.ClassActive, arg.Name),
			render.Span(render.ClassMuted, "("+render.ArgAnnotation(arg)+")"),
		)}
		if arg.Description != "" {
			rows = append(rows, render.Row(render.Span(render.ClassNone, arg.Description)))
		}
		if arg.Sample != "" {
			rows = append(rows, render.Row(render.Span(render.ClassMuted, "e.g. "+arg.Sample)))
		}
		return render.Banner(render.ClassInfo, rows...), true
	}

	if o.def.HasList() && index >= len(o.def.Args) {
		rows := []render.Node{render.Row(
			render.Span(render.ClassActive, o.def.List.Name+"…"),
			render.Span(render.ClassMuted, "(repeatable)"),
		)}
		if o.def.List.Description != "" {
			rows = append(rows, render.Row(render.Span(render.ClassNone, o.def.List.Description)))
		}
		return render.Banner(render.ClassInfo, rows...), true
	}

	return render.Node{}, false
}

func (o *MacroOption) isOption() {}
