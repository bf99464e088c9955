package macro

// Source identifies where a macro definition came from.
type Source string

const (
	SourceBuiltin   Source = "builtin"
	SourceExtension Source = "extension"
	SourceUser      Source = "user"
)

// ArgDef describes one positional argument of a macro.
type ArgDef struct {
	Name        string   `hcl:"name,label" yaml:"name"`
	Types       []string `hcl:"types,optional" yaml:"types,omitempty"`
	Optional    bool     `hcl:"optional,optional" yaml:"optional,omitempty"`
	Default     string   `hcl:"default,optional" yaml:"default,omitempty"`
	Description string   `hcl:"description,optional" yaml:"description,omitempty"`
	Sample      string   `hcl:"sample,optional" yaml:"sample,omitempty"`
}

// ListDescriptor is present on macros that accept an open-ended trailing
// list of values beyond their named arguments.
type ListDescriptor struct {
	Name        string `hcl:"name,optional" yaml:"name,omitempty"`
	Description string `hcl:"description,optional" yaml:"description,omitempty"`
}

// Definition describes a macro: its names, arity contract and
// documentation. Definitions are treated as read-only once registered.
type Definition struct {
	Name        string          `hcl:"name,label" yaml:"name"`
	Aliases     []string        `hcl:"aliases,optional" yaml:"aliases,omitempty"`
	MinArgs     int             `hcl:"min_args,optional" yaml:"min_args,omitempty"`
	MaxArgs     int             `hcl:"max_args,optional" yaml:"max_args,omitempty"`
	List        *ListDescriptor `hcl:"list,block" yaml:"list,omitempty"`
	Args        []ArgDef        `hcl:"arg,block" yaml:"args,omitempty"`
	Description string          `hcl:"description,optional" yaml:"description,omitempty"`
	Scoped      bool            `hcl:"scoped,optional" yaml:"scoped,omitempty"`
	Source      Source          `hcl:"source,optional" yaml:"source,omitempty"`
}

// HasList reports whether the macro accepts an open-ended trailing list.
func (d *Definition) HasList() bool {
	return d.List != nil
}

// AcceptsArguments reports whether the macro takes any arguments at all.
func (d *Definition) AcceptsArguments() bool {
	return d.MaxArgs > 0 || d.List != nil
}

// ArgAt returns the declared argument for slot idx, or nil when the slot
// has no declaration (list tail or out of range).
func (d *Definition) ArgAt(idx int) *ArgDef {
	if idx < 0 || idx >= len(d.Args) {
		return nil
	}
	return &d.Args[idx]
}

// HasAliases reports whether the macro is reachable under alternate names.
func (d *Definition) HasAliases() bool {
	return len(d.Aliases) > 0
}
