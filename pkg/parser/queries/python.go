package queries

// pythonQueries is the query set for Python sources. Visibility is inferred
// from the leading-underscore convention, so binding queries carry no @vis
// capture.
var pythonQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "function", Query: `
(function_definition
	name: (identifier) @name
) @def
`},
		{Kind: "class", Query: `
(class_definition
	name: (identifier) @name
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(function_definition name: (identifier) @name) @def`,
		DefVariables: `(assignment left: (identifier) @name) @def`,
		DefImports:   `(import_from_statement name: (dotted_name) @name) @def`,
		DefTypes:     `(class_definition name: (identifier) @name) @def`,
	},

	Symbols: `
(function_definition name: (identifier) @name) @def
(class_definition name: (identifier) @name) @def
(assignment left: (identifier) @name) @def
`,

	Declaration: `
(assignment
	left: (identifier) @name
	right: (_) @value
) @decl
`,

	Function: `
(function_definition
	name: (identifier) @name
	parameters: (parameters) @params
	return_type: (type)? @return
) @func
`,

	FunctionBody: `
(function_definition
	name: (identifier) @name
	parameters: (parameters) @params
	body: (block) @body
) @func
`,

	Calls: `(call function: (identifier) @name arguments: (argument_list) @args) @call`,

	Blocks:   `(block) @block`,
	Comments: `(comment) @comment`,
}
