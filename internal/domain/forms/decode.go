package forms

import (
	"fmt"
	"reflect"
	"strconv"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

// decodeRecord copies sanitized input into record. Object keys must match
// the json tag names exactly; keys that differ only in case are treated as
// unknown and dropped. Every leaf whose JSON type does not match its field
// is reported with its indexed path and left at the zero value, so the
// whole input is always visited.
func decodeRecord(input map[string]any, record Record) (FieldErrors, error) {
	var typeErrs FieldErrors
	cleaned := checkTypes(input, reflect.TypeOf(record).Elem(), "", &typeErrs)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    record,
		TagName:   "json",
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(cleaned); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}

	return typeErrs, nil
}

// checkTypes returns a copy of input holding only the keys of t and only
// values of the expected JSON type. Mismatches are appended to errs.
func checkTypes(input any, t reflect.Type, path string, errs *FieldErrors) any {
	if input == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := input.(map[string]any)
		if !ok {
			break
		}
		out := make(map[string]any, len(obj))
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			name := jsonName(field)
			if name == "-" || !field.IsExported() {
				continue
			}
			value, ok := obj[name]
			if !ok {
				continue
			}
			if v := checkTypes(value, field.Type, joinPath(path, name), errs); v != nil {
				out[name] = v
			}
		}
		return out

	case reflect.Slice:
		items, ok := input.([]any)
		if !ok {
			break
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = checkTypes(item, t.Elem(), path+"["+strconv.Itoa(i)+"]", errs)
		}
		return out

	case reflect.String:
		if _, ok := input.(string); ok {
			return input
		}

	case reflect.Bool:
		if _, ok := input.(bool); ok {
			return input
		}
	}

	*errs = append(*errs, FieldError{
		Field:   path,
		Message: fmt.Sprintf("Expected %s, received %s", kindName(t), jsonKind(input)),
		Code:    "invalid_type",
	})
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "number"
	}
}
