package queries

// goQueries is the query table for Go sources. No grammar is bundled;
// running these requires a caller-supplied grammar. Visibility follows the
// initial-capital convention.
var goQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "function", Query: `
(function_declaration
	name: (identifier) @name
) @def
`},
		{Kind: "struct", Query: `
(type_declaration
	(type_spec
		name: (type_identifier) @name
		type: (struct_type)
	)
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(function_declaration name: (identifier) @name) @def`,
		DefVariables: `(short_var_declaration left: (expression_list (identifier) @name)) @def`,
		DefImports:   `(import_spec path: (interpreted_string_literal) @name) @def`,
		DefTypes:     `(type_declaration (type_spec name: (type_identifier) @name)) @def`,
		DefConstants: `(const_declaration (const_spec name: (identifier) @name)) @def`,
	},

	Symbols: `
(function_declaration name: (identifier) @name) @def
(method_declaration name: (field_identifier) @name) @def
(type_declaration (type_spec name: (type_identifier) @name)) @def
(var_declaration (var_spec name: (identifier) @name)) @def
`,

	Declaration: `
(short_var_declaration
	left: (expression_list (identifier) @name)
	right: (expression_list (_) @value)
) @decl
`,

	Function: `
(function_declaration
	name: (identifier) @name
	parameters: (parameter_list) @params
	result: (_)? @return
) @func
`,

	FunctionBody: `
(function_declaration
	name: (identifier) @name
	parameters: (parameter_list) @params
	body: (block) @body
) @func
`,

	Calls: `(call_expression function: (identifier) @name arguments: (argument_list) @args) @call`,

	Blocks:   `(block) @block`,
	Comments: `(comment) @comment`,
}
