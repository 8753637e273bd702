package parse

import (
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// languageSpec names one supported language: the extensions it owns and
// the query Parse runs to pull symbols into Result; the normalizer
// (internal/gast) does not use this query. The grammar itself is resolved by name through newLanguage,
// since each binding package exposes a differently named accessor.
type languageSpec struct {
	name       string
	extensions []string
	query      string
}

func languageSpecs() []languageSpec {
	return []languageSpec{
		{
			name:       "go",
			extensions: []string{".go"},
			query: `
				(function_declaration name: (identifier) @function.name) @function
				(method_declaration
					receiver: (parameter_list) @method.receiver
					name: (field_identifier) @method.name) @method
				(type_declaration (type_spec name: (type_identifier) @type.name)) @type
				(func_literal) @function
				(import_spec path: (interpreted_string_literal) @import.path) @import
				(call_expression) @call
			`,
		},
		{
			name:       "javascript",
			extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
			query: `
				(function_declaration name: (identifier) @function.name) @function
				(generator_function_declaration name: (identifier) @function.name) @function
				(variable_declarator
					name: (identifier) @function.name
					value: [(arrow_function) (function_expression) (generator_function)]) @function
				(method_definition name: (property_identifier) @method.name) @method
				(class_declaration name: (identifier) @class.name) @class
				(export_statement declaration: (_) @export)
				(import_statement source: (string) @import.source) @import
				(call_expression) @call
			`,
		},
		{
			name:       "typescript",
			extensions: []string{".ts", ".tsx"},
			query: `
				(function_declaration name: (identifier) @function.name) @function
				(method_definition name: (property_identifier) @method.name) @method
				(class_declaration name: (type_identifier) @class.name) @class
				(interface_declaration name: (type_identifier) @interface.name) @interface
				(type_alias_declaration name: (type_identifier) @type.name) @type
				(enum_declaration name: (identifier) @enum.name) @enum
				(export_statement declaration: (_) @export)
				(import_statement source: (string) @import.source) @import
				(call_expression) @call
			`,
		},
		{
			name:       "python",
			extensions: []string{".py", ".pyi"},
			query: `
				(class_definition
					body: (block
						(function_definition name: (identifier) @method.name))) @method
				(function_definition name: (identifier) @function.name) @function
				(class_definition name: (identifier) @class.name) @class
				(import_statement) @import
				(import_from_statement) @import
				(call) @call
			`,
		},
		{
			name:       "rust",
			extensions: []string{".rs"},
			query: `
				(impl_item body: (declaration_list (function_item name: (identifier) @method.name))) @method
				(trait_item body: (declaration_list (function_item name: (identifier) @method.name))) @method
				(function_item name: (identifier) @function.name) @function
				(struct_item name: (type_identifier) @struct.name) @struct
				(enum_item name: (type_identifier) @enum.name) @enum
				(trait_item name: (type_identifier) @interface.name) @interface
				(use_declaration) @import
				(mod_item name: (identifier) @module.name) @module
				(call_expression) @call
			`,
		},
		{
			name:       "cpp",
			extensions: []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
			query: `
				(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
				(class_specifier name: (type_identifier) @class.name) @class
				(struct_specifier name: (type_identifier) @struct.name) @struct
				(enum_specifier name: (type_identifier) @enum.name) @enum
				(namespace_definition) @namespace
				(preproc_include) @import
				(using_declaration) @import
				(call_expression) @call
			`,
		},
		{
			name:       "java",
			extensions: []string{".java"},
			query: `
				(method_declaration name: (identifier) @method.name) @method
				(constructor_declaration name: (identifier) @constructor.name) @constructor
				(class_declaration name: (identifier) @class.name) @class
				(interface_declaration name: (identifier) @interface.name) @interface
				(enum_declaration name: (identifier) @enum.name) @enum
				(import_declaration) @import
				(package_declaration) @package
				(method_invocation) @call
			`,
		},
		{
			name:       "csharp",
			extensions: []string{".cs"},
			query: `
				(method_declaration name: (identifier) @method.name) @method
				(constructor_declaration name: (identifier) @constructor.name) @constructor
				(class_declaration name: (identifier) @class.name) @class
				(interface_declaration name: (identifier) @interface.name) @interface
				(struct_declaration name: (identifier) @struct.name) @struct
				(enum_declaration name: (identifier) @enum.name) @enum
				(using_directive (qualified_name) @using.name) @using
				(using_directive (identifier) @using.name) @using
				(namespace_declaration name: (qualified_name) @namespace.name) @namespace
				(namespace_declaration name: (identifier) @namespace.name) @namespace
				(invocation_expression) @call
			`,
		},
		{
			name:       "zig",
			extensions: []string{".zig"},
			query: `
				(function_declaration (identifier) @function.name) @function
				(variable_declaration (identifier) @struct.name (struct_declaration) @struct)
				(variable_declaration (identifier) @struct.name (union_declaration) @struct)
			`,
		},
		{
			name:       "php",
			extensions: []string{".php", ".phtml"},
			query: `
				(class_declaration name: (name) @class.name) @class
				(interface_declaration name: (name) @interface.name) @interface
				(trait_declaration name: (name) @trait.name) @trait
				(enum_declaration name: (name) @enum.name) @enum
				(function_definition name: (name) @function.name) @function
				(method_declaration name: (name) @method.name) @method
				(namespace_definition name: (namespace_name) @namespace.name) @namespace
				(namespace_use_declaration) @import
				(function_call_expression) @call
				(member_call_expression) @call
			`,
		},
	}
}

// newLanguage builds the tree_sitter.Language for one spec name. Kept as a
// switch rather than a func field on languageSpec because each grammar
// package exposes a differently-named accessor (Language vs LanguageTypescript
// vs LanguagePHP).
func newLanguage(name string) *tree_sitter.Language {
	switch name {
	case "go":
		return tree_sitter.NewLanguage(tree_sitter_go.Language())
	case "javascript":
		return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
	case "typescript":
		return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case "python":
		return tree_sitter.NewLanguage(tree_sitter_python.Language())
	case "rust":
		return tree_sitter.NewLanguage(tree_sitter_rust.Language())
	case "cpp":
		return tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	case "java":
		return tree_sitter.NewLanguage(tree_sitter_java.Language())
	case "csharp":
		return tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	case "zig":
		return tree_sitter.NewLanguage(tree_sitter_zig.Language())
	case "php":
		return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	default:
		return nil
	}
}
