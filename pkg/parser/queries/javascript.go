package queries

// javascriptQueries is the query set for JavaScript sources. Same shape as
// the TypeScript set minus the type-only node kinds the JS grammar lacks.
var javascriptQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "function", Query: `
(export_statement
	declaration: (function_declaration
		name: (identifier) @name
	)
) @def
`},
		{Kind: "class", Query: `
(export_statement
	declaration: (class_declaration
		name: (identifier) @name
	)
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(function_declaration name: (identifier) @name) @def`,
		DefVariables: `(variable_declarator name: (identifier) @name) @def`,
		DefImports:   `(import_specifier name: (identifier) @name) @def`,
		DefTypes:     `(class_declaration name: (identifier) @name) @def`,
		DefConstants: `(lexical_declaration (variable_declarator name: (identifier) @name)) @def`,
	},

	Symbols: `
(function_declaration name: (identifier) @name) @def
(class_declaration name: (identifier) @name) @def
(variable_declarator name: (identifier) @name) @def
`,

	Declaration: `
(variable_declarator
	name: (identifier) @name
	value: (_) @value
) @decl
`,

	Function: `
(function_declaration
	name: (identifier) @name
	parameters: (formal_parameters) @params
) @func
`,

	FunctionBody: `
(function_declaration
	name: (identifier) @name
	parameters: (formal_parameters) @params
	body: (statement_block) @body
) @func
`,

	Calls: `(call_expression function: (identifier) @name arguments: (arguments) @args) @call`,

	Blocks:   `(statement_block) @block`,
	Comments: `(comment) @comment`,
}
