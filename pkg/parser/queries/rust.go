package queries

// rustQueries is the query set for Rust sources.
var rustQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "function", Query: `
(function_item
	(visibility_modifier)? @vis
	name: (identifier) @name
) @def
`},
		{Kind: "struct", Query: `
(struct_item
	(visibility_modifier)? @vis
	name: (type_identifier) @name
) @def
`},
		{Kind: "enum", Query: `
(enum_item
	(visibility_modifier)? @vis
	name: (type_identifier) @name
) @def
`},
		{Kind: "trait", Query: `
(trait_item
	(visibility_modifier)? @vis
	name: (type_identifier) @name
) @def
`},
		{Kind: "constant", Query: `
(const_item
	(visibility_modifier)? @vis
	name: (identifier) @name
) @def
`},
		{Kind: "variable", Query: `
(let_declaration
	pattern: (identifier) @name
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(function_item name: (identifier) @name) @def`,
		DefVariables: `(let_declaration pattern: (identifier) @name) @def`,
		// The use clause has no single wrapper node; capture the trailing
		// segment (or alias) so usage search matches plain identifiers.
		DefImports: `
(use_declaration argument: (identifier) @name) @def
(use_declaration argument: (scoped_identifier name: (identifier) @name)) @def
(use_declaration argument: (use_as_clause alias: (identifier) @name)) @def
`,
		DefTypes: `
(struct_item name: (type_identifier) @name) @def
(enum_item name: (type_identifier) @name) @def
`,
		DefConstants: `(const_item name: (identifier) @name) @def`,
	},

	Symbols: `
(function_item name: (identifier) @name) @def
(struct_item name: (type_identifier) @name) @def
(enum_item name: (type_identifier) @name) @def
(const_item name: (identifier) @name) @def
(static_item name: (identifier) @name) @def
(trait_item name: (type_identifier) @name) @def
(type_item name: (type_identifier) @name) @def
(let_declaration pattern: (identifier) @name) @def
`,

	Declaration: `
(let_declaration
	pattern: (identifier) @name
	value: (_) @value
) @decl
`,

	Function: `
(function_item
	name: (identifier) @name
	parameters: (parameters) @params
	return_type: (type_identifier)? @return
) @func
`,

	FunctionBody: `
(function_item
	name: (identifier) @name
	parameters: (parameters) @params
	body: (block) @body
) @func
`,

	Calls: `(call_expression function: (identifier) @name arguments: (arguments) @args) @call`,

	Blocks:   `(block) @block`,
	Comments: `[(line_comment) (block_comment)] @comment`,
}
