package queries

// csharpQueries is the query table for C# sources. No grammar is bundled;
// visibility comes from the modifier list on the definition node.
var csharpQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "class", Query: `
(class_declaration
	(modifier)? @vis
	name: (identifier) @name
) @def
`},
		{Kind: "method", Query: `
(method_declaration
	(modifier)? @vis
	name: (identifier) @name
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(method_declaration name: (identifier) @name) @def`,
		DefTypes: `
(class_declaration name: (identifier) @name) @def
(interface_declaration name: (identifier) @name) @def
`,
	},

	Symbols: `
(class_declaration name: (identifier) @name) @def
(interface_declaration name: (identifier) @name) @def
(method_declaration name: (identifier) @name) @def
`,

	Declaration: `
(variable_declarator
	name: (identifier) @name
	value: (_) @value
) @decl
`,

	Function: `
(method_declaration
	type: (_) @return
	name: (identifier) @name
	parameters: (parameter_list) @params
) @func
`,

	Calls: `(invocation_expression function: (identifier) @name arguments: (argument_list) @args) @call`,

	Comments: `(comment) @comment`,
}
