package forms

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// FieldSpec is the published form of one constrained field.
type FieldSpec struct {
	Path        string            `json:"path"`
	Type        string            `json:"type"`
	Required    bool              `json:"required"`
	MinLength   *int              `json:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"`
	ExactLength *int              `json:"exactLength,omitempty"`
	MinItems    *int              `json:"minItems,omitempty"`
	MaxItems    *int              `json:"maxItems,omitempty"`
	Format      string            `json:"format,omitempty"`
	Messages    map[string]string `json:"messages,omitempty"`
}

// Schema is the published description of a form.
type Schema struct {
	ID     SchemaID    `json:"id"`
	Fields []FieldSpec `json:"fields"`
}

type definition struct {
	id        SchemaID
	newRecord func() Record
	schema    Schema
	// messages maps a normalized path to tag-specific messages.
	messages map[string]map[string]string
}

var definitions = map[SchemaID]*definition{}

func register(id SchemaID, newRecord func() Record) {
	def := &definition{
		id:        id,
		newRecord: newRecord,
		schema:    Schema{ID: id},
		messages:  make(map[string]map[string]string),
	}
	walk(reflect.TypeOf(newRecord()).Elem(), "", def)
	definitions[id] = def
}

func init() {
	register(SchemaBrief, func() Record { return &BriefSubmission{} })
	register(SchemaConsultation, func() Record { return &ConsultationSubmission{} })
}

// Schemas lists the known schema ids.
func Schemas() []SchemaID {
	return []SchemaID{SchemaBrief, SchemaConsultation}
}

// Describe returns the published description of a schema.
func Describe(id SchemaID) (Schema, error) {
	def, ok := definitions[id]
	if !ok {
		return Schema{}, fmt.Errorf("unknown form schema %q", id)
	}
	out := def.schema
	out.Fields = append([]FieldSpec(nil), def.schema.Fields...)
	return out, nil
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return name
}

func walk(t reflect.Type, prefix string, def *definition) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := jsonName(field)
		if name == "-" {
			continue
		}
		path := prefix + name

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		spec := FieldSpec{Path: path, Type: kindName(ft)}
		applyRules(&spec, ft, field.Tag.Get("binding"))

		if msgs := parseMessages(field.Tag.Get("msg")); len(msgs) > 0 {
			spec.Messages = msgs
			def.messages[path] = msgs
		}
		def.schema.Fields = append(def.schema.Fields, spec)

		switch {
		case ft.Kind() == reflect.Struct:
			walk(ft, path+".", def)
		case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.Struct:
			walk(ft.Elem(), path+"[].", def)
		}
	}
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct:
		return "object"
	case reflect.Bool:
		return "boolean"
	default:
		return "number"
	}
}

// applyRules reads the rules that apply to the field itself, stopping at dive.
func applyRules(spec *FieldSpec, t reflect.Type, binding string) {
	isSlice := t.Kind() == reflect.Slice
	for _, rule := range strings.Split(binding, ",") {
		tag, param, _ := strings.Cut(rule, "=")
		if tag == "dive" {
			return
		}
		n, err := strconv.Atoi(param)
		hasN := err == nil

		switch {
		case tag == "required":
			spec.Required = true
		case tag == "email":
			spec.Format = "email"
		case tag == "len" && hasN:
			spec.ExactLength = &n
		case tag == "min" && hasN && isSlice:
			spec.MinItems = &n
		case tag == "max" && hasN && isSlice:
			spec.MaxItems = &n
		case tag == "min" && hasN:
			spec.MinLength = &n
		case tag == "max" && hasN:
			spec.MaxLength = &n
		}
	}

	if spec.Required && t.Kind() == reflect.String && spec.MinLength == nil && spec.ExactLength == nil {
		one := 1
		spec.MinLength = &one
	}
}

func parseMessages(tag string) map[string]string {
	if tag == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(tag, ";") {
		rule, message, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(rule)] = message
	}
	return out
}
