package forms

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct(i int) map[string]any {
	return map[string]any{
		"brand":       "Brand",
		"collection":  "Spring",
		"productName": fmt.Sprintf("Cream %d", i),
	}
}

func validBrief(products int) map[string]any {
	items := make([]any, products)
	for i := range items {
		items[i] = validProduct(i)
	}
	return map[string]any{
		"name":      "Анна",
		"email":     "anna@example.com",
		"csrfToken": "token",
		"honeypot":  "",
		"products":  items,
	}
}

func validConsultation() map[string]any {
	return map[string]any{
		"fullName":  "Иванов Иван",
		"email":     "ivan@example.com",
		"phone":     "+7 900 000-00-00",
		"question":  "Сколько стоит пробная партия?",
		"csrfToken": "token",
		"honeypot":  "",
	}
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var fe FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestBriefWithTenProductsValidates(t *testing.T) {
	v := NewValidator()

	record, err := v.Validate(SchemaBrief, validBrief(10))
	require.NoError(t, err)

	brief, ok := record.(*BriefSubmission)
	require.True(t, ok)
	assert.Len(t, brief.Products, 10)
	assert.Equal(t, "Анна", brief.ContactName())
	assert.Equal(t, SchemaBrief, brief.Schema())
}

func TestBriefWithElevenProductsFails(t *testing.T) {
	v := NewValidator()

	_, err := v.Validate(SchemaBrief, validBrief(11))
	fe := fieldErrors(t, err)

	require.Len(t, fe, 1)
	assert.Equal(t, FieldError{Field: "products", Message: "Максимум 10 продуктов", Code: "max"}, fe[0])
}

func TestBriefWithoutProductsFails(t *testing.T) {
	v := NewValidator()

	input := validBrief(0)
	_, err := v.Validate(SchemaBrief, input)
	fe := fieldErrors(t, err)
	assert.Equal(t, "Добавьте хотя бы один продукт", fe[0].Message)

	delete(input, "products")
	_, err = v.Validate(SchemaBrief, input)
	fe = fieldErrors(t, err)
	assert.True(t, fe.Has("products"))
}

func TestProductMissingBrandNamesIndexedPath(t *testing.T) {
	v := NewValidator()

	input := validBrief(3)
	delete(input["products"].([]any)[2].(map[string]any), "brand")

	_, err := v.Validate(SchemaBrief, input)
	fe := fieldErrors(t, err)

	require.Len(t, fe, 1)
	assert.Equal(t, "products[2].brand", fe[0].Field)
	assert.Equal(t, "Название бренда обязательно", fe[0].Message)
	assert.Equal(t, "required", fe[0].Code)
}

func TestHoneypotMustBeEmpty(t *testing.T) {
	v := NewValidator()

	for _, schema := range []struct {
		id    SchemaID
		input map[string]any
	}{
		{SchemaBrief, validBrief(1)},
		{SchemaConsultation, validConsultation()},
	} {
		schema.input["honeypot"] = "http://spam.example"
		_, err := v.Validate(schema.id, schema.input)
		fe := fieldErrors(t, err)

		require.Len(t, fe, 1, schema.id)
		assert.Equal(t, "honeypot", fe[0].Field)
		assert.Equal(t, "Bot detected", fe[0].Message)

		delete(schema.input, "honeypot")
		_, err = v.Validate(schema.id, schema.input)
		assert.True(t, fieldErrors(t, err).Has("honeypot"), "honeypot must be present")
	}
}

func TestBriefFieldConstraints(t *testing.T) {
	v := NewValidator()

	input := validBrief(1)
	input["name"] = ""
	input["email"] = "not-an-email"
	input["phone"] = strings.Repeat("1", 31)
	input["company"] = strings.Repeat("я", 200)
	input["products"].([]any)[0].(map[string]any)["fragrance"] = strings.Repeat("x", 501)

	_, err := v.Validate(SchemaBrief, input)
	fe := fieldErrors(t, err)

	assert.Equal(t, FieldErrors{
		{Field: "name", Message: "Имя обязательно", Code: "required"},
		{Field: "email", Message: "Некорректный email", Code: "email"},
		{Field: "phone", Message: "Телефон слишком длинный", Code: "max"},
		{Field: "products[0].fragrance", Message: "Отдушка слишком длинная", Code: "max"},
	}, fe)
}

func TestConsultationRequiresAllContactFields(t *testing.T) {
	v := NewValidator()

	record, err := v.Validate(SchemaConsultation, validConsultation())
	require.NoError(t, err)
	assert.Equal(t, "ivan@example.com", record.ContactEmail())

	_, err = v.Validate(SchemaConsultation, map[string]any{"honeypot": ""})
	fe := fieldErrors(t, err)

	var fields []string
	for _, e := range fe {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"fullName", "email", "phone", "question", "csrfToken"}, fields)
}

func TestUnknownFieldsAreDropped(t *testing.T) {
	v := NewValidator()

	input := validConsultation()
	input["admin"] = true

	record, err := v.Validate(SchemaConsultation, input)
	require.NoError(t, err)
	assert.IsType(t, &ConsultationSubmission{}, record)
}

func TestTypeMismatchIsFieldError(t *testing.T) {
	v := NewValidator()

	input := validConsultation()
	input["phone"] = float64(79000000000)

	_, err := v.Validate(SchemaConsultation, input)
	fe := fieldErrors(t, err)
	require.Len(t, fe, 1)
	assert.Equal(t, "phone", fe[0].Field)
	assert.Equal(t, "invalid_type", fe[0].Code)
	assert.Equal(t, "Expected string, received number", fe[0].Message)

	_, err = v.Validate(SchemaBrief, []any{"not", "an", "object"})
	fe = fieldErrors(t, err)
	assert.Equal(t, "invalid_type", fe[0].Code)
}

func TestNestedTypeMismatchKeepsIndexAndOtherErrors(t *testing.T) {
	v := NewValidator()

	input := validBrief(2)
	input["name"] = ""
	input["email"] = "bad"
	input["products"].([]any)[1].(map[string]any)["brand"] = float64(5)

	_, err := v.Validate(SchemaBrief, input)
	fe := fieldErrors(t, err)

	byField := make(map[string]FieldError)
	for _, e := range fe {
		byField[e.Field] = e
	}
	require.Len(t, byField, 3, "got %v", fe)
	assert.Equal(t, "required", byField["name"].Code)
	assert.Equal(t, "email", byField["email"].Code)
	assert.Equal(t, "invalid_type", byField["products[1].brand"].Code)
	assert.Equal(t, "Expected string, received number", byField["products[1].brand"].Message)
}

func TestKeysMatchCaseSensitively(t *testing.T) {
	v := NewValidator()

	input := map[string]any{
		"NAME":      "Анна",
		"Email":     "anna@example.com",
		"CSRFTOKEN": "token",
		"HoneyPot":  "",
		"PRODUCTS": []any{map[string]any{
			"BRAND":       "Brand",
			"COLLECTION":  "Spring",
			"PRODUCTNAME": "Cream",
		}},
	}

	record, err := v.Validate(SchemaBrief, input)
	assert.Nil(t, record)
	fe := fieldErrors(t, err)
	for _, field := range []string{"name", "email", "csrfToken", "honeypot", "products"} {
		assert.True(t, fe.Has(field), "expected an error for %s", field)
	}

	product := validProduct(0)
	product["Brand"] = product["brand"]
	delete(product, "brand")
	input = validBrief(1)
	input["products"] = []any{product}

	_, err = v.Validate(SchemaBrief, input)
	fe = fieldErrors(t, err)
	assert.True(t, fe.Has("products[0].brand"))
}

func TestUnknownSchema(t *testing.T) {
	_, err := NewValidator().Validate("newsletter", map[string]any{})
	require.Error(t, err)
	var fe FieldErrors
	assert.False(t, errors.As(err, &fe))

	_, err = Describe("newsletter")
	assert.Error(t, err)
}

func TestDescribeBrief(t *testing.T) {
	schema, err := Describe(SchemaBrief)
	require.NoError(t, err)

	byPath := make(map[string]FieldSpec)
	for _, f := range schema.Fields {
		byPath[f.Path] = f
	}

	products := byPath["products"]
	assert.Equal(t, "array", products.Type)
	require.NotNil(t, products.MinItems)
	require.NotNil(t, products.MaxItems)
	assert.Equal(t, 1, *products.MinItems)
	assert.Equal(t, MaxProducts, *products.MaxItems)

	brand := byPath["products[].brand"]
	assert.True(t, brand.Required)
	assert.Equal(t, 100, *brand.MaxLength)
	assert.Equal(t, 1, *brand.MinLength)
	assert.Equal(t, "Название бренда обязательно", brand.Messages["required"])

	honeypot := byPath["honeypot"]
	require.NotNil(t, honeypot.ExactLength)
	assert.Equal(t, 0, *honeypot.ExactLength)
	assert.Nil(t, honeypot.MinLength)

	email := byPath["email"]
	assert.Equal(t, "email", email.Format)

	company := byPath["company"]
	assert.False(t, company.Required)
	assert.Equal(t, 200, *company.MaxLength)

	assert.Len(t, schema.Fields, 7+18)
}

func TestDescribeConsultation(t *testing.T) {
	schema, err := Describe(SchemaConsultation)
	require.NoError(t, err)

	assert.Equal(t, SchemaConsultation, schema.ID)
	require.Len(t, schema.Fields, 6)
	assert.Equal(t, "question", schema.Fields[3].Path)
	assert.Equal(t, 2000, *schema.Fields[3].MaxLength)
}
