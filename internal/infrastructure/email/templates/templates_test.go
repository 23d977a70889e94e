package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
)

var testTime = time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)

func TestBriefText(t *testing.T) {
	brief := &forms.BriefSubmission{
		Name:  "Анна",
		Email: "anna@example.com",
		Phone: "+7 900 000-00-00",
		Products: []forms.ProductSpec{
			{Brand: "Aurora", Collection: "Spring", ProductName: "Крем", Fragrance: "роза"},
			{Brand: "Aurora", Collection: "Spring", ProductName: "Тоник"},
		},
	}

	lead := Brief(brief, "BRIEF-1-ABCDEF", testTime)

	assert.Equal(t, "🎯 Новый бриф от Анна - BRIEF-1-ABCDEF", lead.Subject)
	assert.Contains(t, lead.Text, "📄 ID заявки: BRIEF-1-ABCDEF\n")
	assert.Contains(t, lead.Text, "📅 Дата: 01.05.2024, 15:04:05\n")
	assert.Contains(t, lead.Text, "📦 ПРОДУКТЫ (2):\n\n1. Крем\n   🏷️ Бренд: Aurora\n   📚 Коллекция: Spring\n   🌸 Отдушка: роза\n\n2. Тоник\n")
	assert.NotContains(t, lead.Text, "Компания")
	assert.True(t, strings.HasSuffix(lead.Text, "📞 Позвоните клиенту: +7 900 000-00-00\n"))
}

func TestConsultationText(t *testing.T) {
	c := &forms.ConsultationSubmission{
		FullName: "Иванов Иван",
		Email:    "ivan@example.com",
		Phone:    "+79000000000",
		Question: "Сроки?",
	}

	lead := Consultation(c, "CONSULT-1-ABCDEF", testTime)

	assert.Equal(t, "📞 Новая заявка на консультацию от Иванов Иван - CONSULT-1-ABCDEF", lead.Subject)
	assert.Contains(t, lead.Text, "❓ ВОПРОС КЛИЕНТА:\nСроки?\n\n")
	assert.Contains(t, lead.HTML, `href="tel:+79000000000"`)
	assert.Contains(t, lead.HTML, "Сроки?")
}

func TestHTMLEscapesValues(t *testing.T) {
	c := &forms.ConsultationSubmission{
		FullName: `"Quote" & Co`,
		Email:    "x@example.com",
		Phone:    "call me",
		Question: "a & b",
	}

	lead := Consultation(c, "CONSULT-1-ABCDEF", testTime)

	assert.Contains(t, lead.HTML, "&#34;Quote&#34; &amp; Co")
	assert.Contains(t, lead.HTML, "a &amp; b")
	assert.NotContains(t, lead.HTML, `href="tel:"`)
}

func TestRenderDispatchesOnRecordType(t *testing.T) {
	lead, err := Render(&forms.ConsultationSubmission{FullName: "A"}, "CONSULT-1-AAAAAA", testTime)
	require.NoError(t, err)
	assert.Contains(t, lead.Subject, "консультацию")

	lead, err = Render(&forms.BriefSubmission{Name: "B"}, "BRIEF-1-AAAAAA", testTime)
	require.NoError(t, err)
	assert.Contains(t, lead.Subject, "бриф")
}
