package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// FieldErrors is the ordered list of violations for one submission.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + ": " + e.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether any violation concerns field.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// covers reports whether field or one of its parents has a violation.
func (fe FieldErrors) covers(field string) bool {
	for _, e := range fe {
		if field == e.Field || strings.HasPrefix(field, e.Field+".") || strings.HasPrefix(field, e.Field+"[") {
			return true
		}
	}
	return false
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// Validator checks sanitized input against a form schema.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator reading `binding` tags and reporting JSON
// field names.
func NewValidator() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := jsonName(fld)
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate decodes input into the schema's record type and checks every
// constraint. Unknown fields are dropped and keys must match exactly. Type
// mismatches and constraint failures are returned together as FieldErrors;
// any other error is internal.
func (v *Validator) Validate(id SchemaID, input any) (Record, error) {
	def, ok := definitions[id]
	if !ok {
		return nil, fmt.Errorf("unknown form schema %q", id)
	}

	fields, ok := input.(map[string]any)
	if !ok {
		return nil, FieldErrors{{Field: "", Message: "Expected object, received " + jsonKind(input), Code: "invalid_type"}}
	}

	record := def.newRecord()
	typeErrs, err := decodeRecord(fields, record)
	if err != nil {
		return nil, err
	}

	var out FieldErrors
	if err := v.validate.Struct(record); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		for _, fe := range def.translate(verrs) {
			// A mistyped field was left empty; report the type, not the emptiness.
			if !typeErrs.covers(fe.Field) {
				out = append(out, fe)
			}
		}
	}
	out = append(out, typeErrs...)

	if len(out) > 0 {
		return nil, out
	}
	return record, nil
}

func (def *definition) translate(verrs validator.ValidationErrors) FieldErrors {
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		// Namespace is "BriefSubmission.products[0].brand"; drop the root.
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		out = append(out, FieldError{
			Field:   field,
			Message: def.message(field, fe.Tag(), fe.Param()),
			Code:    fe.Tag(),
		})
	}
	return out
}

func (def *definition) message(field, tag, param string) string {
	if msgs, ok := def.messages[indexPattern.ReplaceAllString(field, "[]")]; ok {
		if msg, ok := msgs[tag]; ok {
			return msg
		}
	}
	switch tag {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "max":
		return "Must be at most " + param
	case "min":
		return "Must be at least " + param
	case "len":
		return "Must have length " + param
	}
	return "Invalid value"
}
