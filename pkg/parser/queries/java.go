package queries

// javaQueries is the query table for Java sources. No grammar is bundled;
// visibility comes from the modifier list on the definition node.
var javaQueries = QuerySet{
	Bindings: []BindingQuery{
		{Kind: "class", Query: `
(class_declaration
	(modifiers)? @vis
	name: (identifier) @name
) @def
`},
		{Kind: "method", Query: `
(method_declaration
	(modifiers)? @vis
	name: (identifier) @name
) @def
`},
	},

	Identifiers: `(identifier) @id`,

	Definitions: map[DefKind]string{
		DefFunctions: `(method_declaration name: (identifier) @name) @def`,
		DefImports:   `(import_declaration (scoped_identifier) @name) @def`,
		DefTypes: `
(class_declaration name: (identifier) @name) @def
(interface_declaration name: (identifier) @name) @def
`,
		DefConstants: `(field_declaration (variable_declarator name: (identifier) @name)) @def`,
	},

	Symbols: `
(class_declaration name: (identifier) @name) @def
(interface_declaration name: (identifier) @name) @def
(method_declaration name: (identifier) @name) @def
(field_declaration (variable_declarator name: (identifier) @name)) @def
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
	parameters: (formal_parameters) @params
) @func
`,

	Calls: `(method_invocation name: (identifier) @name arguments: (argument_list) @args) @call`,

	Comments: `(comment) @comment`,
}
