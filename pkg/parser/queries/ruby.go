package queries

// rubyQueries is the query table for Ruby sources. No grammar is bundled;
// visibility follows the leading-underscore convention for methods.
var rubyQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "method", Query: `
(method
	name: (identifier) @name
) @def
`},
		{Kind: "class", Query: `
(class
	name: (constant) @name
) @def
`},
		{Kind: "module", Query: `
(module
	name: (constant) @name
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(method name: (identifier) @name) @def`,
		DefVariables: `(assignment left: (identifier) @name) @def`,
		DefTypes:     `(class name: (constant) @name) @def`,
	},

	Symbols: `
(method name: (identifier) @name) @def
(class name: (constant) @name) @def
(module name: (constant) @name) @def
`,

	Declaration: `
(assignment
	left: (identifier) @name
	right: (_) @value
) @decl
`,

	Function: `
(method
	name: (identifier) @name
	parameters: (method_parameters)? @params
) @func
`,

	Calls: `(call method: (identifier) @name arguments: (argument_list)? @args) @call`,

	Comments: `(comment) @comment`,
}
