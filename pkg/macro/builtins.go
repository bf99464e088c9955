package macro

// Builtins returns the macro catalog that ships with the language itself.
// Workspace packs may shadow any of these by name.
func Builtins() []Definition {
	return []Definition{
		{
			Name:        "user",
			Description: "the current user's display name",
			Source:      SourceBuiltin,
		},
		{
			Name:        "char",
			Aliases:     []string{"charname"},
			Description: "the active character's name",
			Source:      SourceBuiltin,
		},
		{
			Name:        "input",
			Description: "the text currently in the input box",
			Source:      SourceBuiltin,
		},
		{
			Name:        "lastmessage",
			Aliases:     []string{"last"},
			Description: "the most recent message in the chat",
			Source:      SourceBuiltin,
		},
		{
			Name:        "time",
			MaxArgs:     1,
			Args: []ArgDef{
				{
					Name:        "format",
					Types:       []string{"string"},
					Optional:    true,
					Default:     "HH:mm",
					Description: "time format pattern",
					Sample:      "HH:mm:ss",
				},
			},
			Description: "the current time, optionally formatted",
			Source:      SourceBuiltin,
		},
		{
			Name:        "date",
			MaxArgs:     1,
			Args: []ArgDef{
				{
					Name:        "format",
					Types:       []string{"string"},
					Optional:    true,
					Default:     "YYYY-MM-DD",
					Description: "date format pattern",
					Sample:      "MMMM Do",
				},
			},
			Description: "the current date, optionally formatted",
			Source:      SourceBuiltin,
		},
		{
			Name:        "weekday",
			Description: "the current day of the week",
			Source:      SourceBuiltin,
		},
		{
			Name:        "isotime",
			Description: "the current time in ISO 8601 form",
			Source:      SourceBuiltin,
		},
		{
			Name:        "isodate",
			Description: "the current date in ISO 8601 form",
			Source:      SourceBuiltin,
		},
		{
			Name:        "newline",
			Description: "a literal line break",
			Source:      SourceBuiltin,
		},
		{
			Name:        "trim",
			Description: "trims surrounding newlines at this position",
			Source:      SourceBuiltin,
		},
		{
			Name:        "noop",
			Description: "expands to nothing",
			Source:      SourceBuiltin,
		},
		{
			Name:    "roll",
			Aliases: []string{"dice"},
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "formula",
					Types:       []string{"string"},
					Description: "dice formula in dN or XdN notation",
					Sample:      "1d20",
				},
			},
			Description: "rolls dice and expands to the total",
			Source:      SourceBuiltin,
		},
		{
			Name:    "random",
			Aliases: []string{"rnd"},
			MinArgs: 1,
			MaxArgs: 1,
			List: &ListDescriptor{
				Name:        "items",
				Description: "any number of further items to choose from",
			},
			Args: []ArgDef{
				{
					Name:        "item",
					Types:       []string{"string"},
					Description: "first candidate item",
					Sample:      "red",
				},
			},
			Description: "expands to one random item from the list",
			Source:      SourceBuiltin,
		},
		{
			Name:    "pick",
			MinArgs: 1,
			MaxArgs: 1,
			List: &ListDescriptor{
				Name:        "items",
				Description: "any number of further items to choose from",
			},
			Args: []ArgDef{
				{
					Name:        "item",
					Types:       []string{"string"},
					Description: "first candidate item",
					Sample:      "left",
				},
			},
			Description: "like random, but stable for the same message",
			Source:      SourceBuiltin,
		},
		{
			Name:    "getvar",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "local variable name",
					Sample:      "myvar",
				},
			},
			Description: "the value of a local variable",
			Source:      SourceBuiltin,
		},
		{
			Name:    "setvar",
			MinArgs: 2,
			MaxArgs: 2,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "local variable name",
					Sample:      "myvar",
				},
				{
					Name:        "value",
					Types:       []string{"string", "number"},
					Description: "value to store",
					Sample:      "42",
				},
			},
			Description: "sets a local variable, expands to nothing",
			Source:      SourceBuiltin,
		},
		{
			Name:    "addvar",
			MinArgs: 2,
			MaxArgs: 2,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "local variable name",
					Sample:      "score",
				},
				{
					Name:        "increment",
					Types:       []string{"number"},
					Description: "amount to add",
					Sample:      "5",
				},
			},
			Description: "adds to a numeric local variable",
			Source:      SourceBuiltin,
		},
		{
			Name:    "incvar",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "local variable name",
					Sample:      "score",
				},
			},
			Description: "increments a numeric local variable by one",
			Source:      SourceBuiltin,
		},
		{
			Name:    "decvar",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "local variable name",
					Sample:      "score",
				},
			},
			Description: "decrements a numeric local variable by one",
			Source:      SourceBuiltin,
		},
		{
			Name:    "getglobalvar",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "global variable name",
					Sample:      "theme",
				},
			},
			Description: "the value of a global variable",
			Source:      SourceBuiltin,
		},
		{
			Name:    "setglobalvar",
			MinArgs: 2,
			MaxArgs: 2,
			Args: []ArgDef{
				{
					Name:        "name",
					Types:       []string{"string"},
					Description: "global variable name",
					Sample:      "theme",
				},
				{
					Name:        "value",
					Types:       []string{"string", "number"},
					Description: "value to store",
					Sample:      "dark",
				},
			},
			Description: "sets a global variable, expands to nothing",
			Source:      SourceBuiltin,
		},
		{
			Name:    "comment",
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "text",
					Types:       []string{"string"},
					Optional:    true,
					Description: "ignored content",
				},
			},
			Description: "content is dropped from the output entirely",
			Scoped:      true,
			Source:      SourceBuiltin,
		},
		{
			Name:    "upper",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "text",
					Types:       []string{"string"},
					Description: "text to uppercase",
				},
			},
			Description: "uppercases its content",
			Scoped:      true,
			Source:      SourceBuiltin,
		},
		{
			Name:    "lower",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "text",
					Types:       []string{"string"},
					Description: "text to lowercase",
				},
			},
			Description: "lowercases its content",
			Scoped:      true,
			Source:      SourceBuiltin,
		},
		{
			Name:    "reverse",
			MinArgs: 1,
			MaxArgs: 1,
			Args: []ArgDef{
				{
					Name:        "text",
					Types:       []string{"string"},
					Description: "text to reverse",
				},
			},
			Description: "reverses its content character by character",
			Scoped:      true,
			Source:      SourceBuiltin,
		},
	}
}
