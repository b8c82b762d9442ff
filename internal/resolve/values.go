package resolve

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/graphfeed/graphfeed/internal/language"
	"github.com/graphfeed/graphfeed/internal/store"
)

// coerceVariableValues coerces the request's variable map against the
// operation's variable definitions. Malformed values, including malformed
// UUID and MemberTypeId scalars, fail here before any resolution starts.
func coerceVariableValues(schema *language.Schema, op *language.OperationDefinition, variables map[string]any) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, def := range op.VariableDefinitions {
		name := trimVariablePrefix(def.Variable)
		val, ok := variables[name]
		if !ok {
			if def.DefaultValue != nil {
				val = astValueToGo(def.DefaultValue)
			} else if def.Type.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, def.Type.String())
			} else {
				continue
			}
		}
		cv, err := coerceValue(schema, val, def.Type)
		if err != nil {
			return nil, fmt.Errorf("variable $%s: %v", name, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArguments coerces a field's arguments against its definition.
func coerceArguments(schema *language.Schema, fieldDef *language.FieldDefinition, args language.ArgumentList, vars map[string]any) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, arg := range args {
		argDef := fieldDef.Arguments.ForName(arg.Name)
		if argDef == nil {
			return nil, fmt.Errorf("unknown argument '%s' on field '%s'", arg.Name, fieldDef.Name)
		}
		val := valueFromAST(arg.Value, vars)
		cv, err := coerceValue(schema, val, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("argument '%s': %v", arg.Name, err)
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok {
			continue
		}
		if argDef.DefaultValue != nil {
			coerced[argDef.Name] = astValueToGo(argDef.DefaultValue)
		} else if argDef.Type.NonNull {
			return nil, fmt.Errorf("argument '%s' of required type %s was not provided", argDef.Name, argDef.Type.String())
		}
	}
	return coerced, nil
}

// valueFromAST converts an AST value to a Go value, substituting variables
// at any nesting depth.
func valueFromAST(value *language.Value, vars map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		if v, ok := vars[trimVariablePrefix(value.Raw)]; ok {
			return v
		}
		return nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, vars)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = valueFromAST(f.Value, vars)
		}
		return m
	}
	return astValueToGo(value)
}

// astValueToGo converts a constant AST value to a Go value.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}

// coerceValue coerces a Go value to the given schema type.
func coerceValue(schema *language.Schema, value any, t *language.Type) (any, error) {
	if t.NonNull {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", t.String())
		}
		return coerceValue(schema, value, &language.Type{NamedType: t.NamedType, Elem: t.Elem})
	}
	if value == nil {
		return nil, nil
	}
	if t.NamedType == "" && t.Elem != nil {
		return coerceListValue(schema, value, t.Elem)
	}

	switch t.NamedType {
	case "Int":
		return coerceToInt(value)
	case "Float":
		return coerceToFloat(value)
	case "String":
		return coerceToString(value)
	case "Boolean":
		return coerceToBoolean(value)
	case "UUID":
		return coerceToUUID(value)
	case "MemberTypeId":
		return coerceToMemberTypeID(value)
	}

	def := schema.Types[t.NamedType]
	if def != nil && def.Kind == language.InputObject {
		return coerceInputObject(schema, value, def)
	}
	return value, nil
}

func coerceListValue(schema *language.Schema, value any, elem *language.Type) (any, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}
	out := make([]any, len(items))
	for i, item := range items {
		cv, err := coerceValue(schema, item, elem)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func coerceInputObject(schema *language.Schema, value any, def *language.Definition) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T to input object %s", value, def.Name)
	}
	coerced := make(map[string]any, len(m))
	for name, fv := range m {
		fd := def.Fields.ForName(name)
		if fd == nil {
			return nil, fmt.Errorf("unknown field '%s' on input object %s", name, def.Name)
		}
		cv, err := coerceValue(schema, fv, fd.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s': %v", name, err)
		}
		coerced[name] = cv
	}
	for _, fd := range def.Fields {
		if _, ok := coerced[fd.Name]; ok {
			continue
		}
		if fd.DefaultValue != nil {
			coerced[fd.Name] = astValueToGo(fd.DefaultValue)
		} else if fd.Type.NonNull {
			return nil, fmt.Errorf("required field '%s' of input object %s was not provided", fd.Name, def.Name)
		}
	}
	return coerced, nil
}

func coerceToInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("cannot coerce non-integral %v to Int", v)
		}
		return int(v), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Int", value, value)
}

func coerceToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Float", value, value)
}

func coerceToString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to String", value, value)
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", value, value)
}

// coerceToUUID accepts only well-formed UUID strings: a malformed
// identifier is a validation error, never a not-found result.
func coerceToUUID(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to UUID", value, value)
	}
	if _, err := uuid.Parse(s); err != nil {
		return nil, fmt.Errorf("invalid UUID %q", s)
	}
	return s, nil
}

func coerceToMemberTypeID(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to MemberTypeId", value, value)
	}
	if s != store.MemberTypeBasic && s != store.MemberTypeBusiness {
		return nil, fmt.Errorf("invalid MemberTypeId %q", s)
	}
	return s, nil
}
