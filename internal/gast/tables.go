package gast

// tableFor returns the native-type → Kind mapping for one language. Every
// table is deliberately partial: native node types with no entry fall
// back to KindUnknown and are still walked (structure is preserved even
// where the kind vocabulary can't name them).
func tableFor(language string) map[string]Kind {
	switch language {
	case "go":
		return goTable
	case "javascript":
		return jsTable
	case "typescript":
		return tsTable
	case "python":
		return pyTable
	case "rust":
		return rustTable
	case "cpp":
		return cppTable
	case "java":
		return javaTable
	case "csharp":
		return csharpTable
	case "zig":
		return zigTable
	case "php":
		return phpTable
	default:
		return map[string]Kind{}
	}
}

var goTable = map[string]Kind{
	"source_file":         KindFile,
	"function_declaration": KindFunction,
	"func_literal":         KindLambda,
	"method_declaration":   KindMethod,
	"type_declaration":     KindTypeRef,
	"type_spec":            KindStruct,
	"import_spec":          KindImport,
	"import_declaration":   KindImport,
	"call_expression":      KindCall,
	"if_statement":         KindIf,
	"for_statement":        KindFor,
	"switch_statement":     KindSwitch,
	"return_statement":     KindReturn,
	"block":                KindBlock,
	"binary_expression":    KindBinaryOp,
	"unary_expression":     KindUnaryOp,
	"identifier":           KindIdentifier,
	"comment":              KindComment,
	"var_declaration":      KindVariable,
	"const_declaration":    KindConstant,
}

var jsTable = map[string]Kind{
	"program":                     KindFile,
	"function_declaration":        KindFunction,
	"generator_function_declaration": KindFunction,
	"arrow_function":              KindLambda,
	"function_expression":         KindLambda,
	"method_definition":           KindMethod,
	"class_declaration":           KindClass,
	"import_statement":            KindImport,
	"export_statement":            KindExport,
	"call_expression":             KindCall,
	"if_statement":                KindIf,
	"for_statement":               KindFor,
	"for_in_statement":            KindFor,
	"while_statement":             KindWhile,
	"switch_statement":            KindSwitch,
	"try_statement":               KindTry,
	"catch_clause":                KindCatch,
	"return_statement":            KindReturn,
	"throw_statement":             KindThrow,
	"statement_block":             KindBlock,
	"binary_expression":           KindBinaryOp,
	"unary_expression":            KindUnaryOp,
	"variable_declarator":         KindVariable,
	"identifier":                  KindIdentifier,
	"comment":                     KindComment,
	"decorator":                   KindDecorator,
}

var tsTable = func() map[string]Kind {
	t := map[string]Kind{}
	for k, v := range jsTable {
		t[k] = v
	}
	t["interface_declaration"] = KindInterface
	t["type_alias_declaration"] = KindTypeRef
	t["enum_declaration"] = KindEnum
	return t
}()

var pyTable = map[string]Kind{
	"module":              KindFile,
	"function_definition": KindFunction,
	"class_definition":    KindClass,
	"lambda":              KindLambda,
	"import_statement":    KindImport,
	"import_from_statement": KindImport,
	"call":                KindCall,
	"if_statement":        KindIf,
	"for_statement":       KindFor,
	"while_statement":     KindWhile,
	"try_statement":       KindTry,
	"except_clause":       KindCatch,
	"return_statement":    KindReturn,
	"raise_statement":     KindThrow,
	"block":               KindBlock,
	"binary_operator":     KindBinaryOp,
	"unary_operator":      KindUnaryOp,
	"assignment":          KindAssignment,
	"identifier":          KindIdentifier,
	"comment":             KindComment,
	"decorator":           KindDecorator,
}

var rustTable = map[string]Kind{
	"source_file":    KindFile,
	"function_item":  KindFunction,
	"impl_item":      KindClass,
	"trait_item":     KindInterface,
	"struct_item":    KindStruct,
	"enum_item":      KindEnum,
	"mod_item":       KindModule,
	"use_declaration": KindImport,
	"call_expression": KindCall,
	"if_expression":   KindIf,
	"for_expression":  KindFor,
	"while_expression": KindWhile,
	"match_expression": KindSwitch,
	"return_expression": KindReturn,
	"block":            KindBlock,
	"binary_expression": KindBinaryOp,
	"unary_expression":  KindUnaryOp,
	"let_declaration":   KindVariable,
	"identifier":        KindIdentifier,
	"line_comment":      KindComment,
	"block_comment":     KindComment,
}

var cppTable = map[string]Kind{
	"translation_unit":   KindFile,
	"function_definition": KindFunction,
	"class_specifier":    KindClass,
	"struct_specifier":   KindStruct,
	"enum_specifier":     KindEnum,
	"namespace_definition": KindNamespace,
	"preproc_include":    KindImport,
	"using_declaration":  KindUsing,
	"call_expression":    KindCall,
	"if_statement":       KindIf,
	"for_statement":      KindFor,
	"while_statement":    KindWhile,
	"switch_statement":   KindSwitch,
	"try_statement":      KindTry,
	"catch_clause":       KindCatch,
	"return_statement":   KindReturn,
	"throw_statement":    KindThrow,
	"compound_statement": KindBlock,
	"binary_expression":  KindBinaryOp,
	"unary_expression":   KindUnaryOp,
	"declaration":        KindVariable,
	"identifier":         KindIdentifier,
	"comment":            KindComment,
}

var javaTable = map[string]Kind{
	"program":                KindFile,
	"method_declaration":     KindMethod,
	"constructor_declaration": KindConstructor,
	"class_declaration":      KindClass,
	"record_declaration":     KindClass,
	"interface_declaration":  KindInterface,
	"enum_declaration":       KindEnum,
	"field_declaration":      KindField,
	"import_declaration":     KindImport,
	"package_declaration":    KindPackage,
	"annotation_type_declaration": KindAnnotation,
	"method_invocation":      KindCall,
	"if_statement":           KindIf,
	"for_statement":          KindFor,
	"while_statement":        KindWhile,
	"switch_expression":      KindSwitch,
	"try_statement":          KindTry,
	"catch_clause":           KindCatch,
	"return_statement":       KindReturn,
	"throw_statement":        KindThrow,
	"block":                  KindBlock,
	"binary_expression":      KindBinaryOp,
	"identifier":             KindIdentifier,
	"line_comment":           KindComment,
	"block_comment":          KindComment,
}

var csharpTable = map[string]Kind{
	"compilation_unit":       KindFile,
	"method_declaration":     KindMethod,
	"constructor_declaration": KindConstructor,
	"class_declaration":      KindClass,
	"interface_declaration":  KindInterface,
	"struct_declaration":     KindStruct,
	"record_declaration":     KindClass,
	"enum_declaration":       KindEnum,
	"property_declaration":   KindProperty,
	"field_declaration":      KindField,
	"using_directive":        KindUsing,
	"namespace_declaration":  KindNamespace,
	"delegate_declaration":   KindDelegate,
	"event_field_declaration": KindEvent,
	"invocation_expression":  KindCall,
	"if_statement":           KindIf,
	"for_statement":          KindFor,
	"while_statement":        KindWhile,
	"switch_statement":       KindSwitch,
	"try_statement":          KindTry,
	"catch_clause":           KindCatch,
	"return_statement":       KindReturn,
	"throw_statement":        KindThrow,
	"block":                  KindBlock,
	"binary_expression":      KindBinaryOp,
	"identifier":             KindIdentifier,
	"comment":                KindComment,
}

var zigTable = map[string]Kind{
	"source_file":         KindFile,
	"function_declaration": KindFunction,
	"struct_declaration":  KindStruct,
	"union_declaration":   KindStruct,
	"variable_declaration": KindVariable,
	"if_statement":        KindIf,
	"for_statement":       KindFor,
	"while_statement":     KindWhile,
	"identifier":          KindIdentifier,
	"comment":             KindComment,
}

var phpTable = map[string]Kind{
	"program":                KindFile,
	"class_declaration":      KindClass,
	"interface_declaration":  KindInterface,
	"trait_declaration":      KindTrait,
	"enum_declaration":       KindEnum,
	"function_definition":    KindFunction,
	"method_declaration":     KindMethod,
	"namespace_definition":   KindNamespace,
	"namespace_use_declaration": KindImport,
	"property_declaration":   KindProperty,
	"const_declaration":      KindConstant,
	"function_call_expression": KindCall,
	"member_call_expression": KindCall,
	"if_statement":           KindIf,
	"for_statement":          KindFor,
	"while_statement":        KindWhile,
	"switch_statement":       KindSwitch,
	"try_statement":          KindTry,
	"catch_clause":           KindCatch,
	"return_statement":       KindReturn,
	"throw_expression":       KindThrow,
	"compound_statement":     KindBlock,
	"binary_expression":      KindBinaryOp,
	"unary_op_expression":    KindUnaryOp,
	"name":                   KindIdentifier,
	"comment":                KindComment,
}
