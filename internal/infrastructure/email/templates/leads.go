package templates

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
)

// DateLayout matches the ru-RU locale rendering of a timestamp.
const DateLayout = "02.01.2006, 15:04:05"

// Lead is a rendered notification.
type Lead struct {
	Subject string
	Text    string
	HTML    string
}

type productField struct {
	icon  string
	label string
	value func(p forms.ProductSpec) string
}

var productFields = []productField{
	{"🎯", "Маркетинговые клеймы", func(p forms.ProductSpec) string { return p.MarketingClaims }},
	{"✨", "Свойства", func(p forms.ProductSpec) string { return p.MarketingClaimsProperties }},
	{"🔄", "Аналоги", func(p forms.ProductSpec) string { return p.Analogues }},
	{"📦", "Первичная упаковка", func(p forms.ProductSpec) string { return p.PrimaryPackaging }},
	{"📦", "Аналоги упаковки", func(p forms.ProductSpec) string { return p.PackagingAnalogues }},
	{"📐", "Объем упаковки", func(p forms.ProductSpec) string { return p.PackagingVolume }},
	{"🎨", "Идеи дизайнов", func(p forms.ProductSpec) string { return p.DesignIdeas }},
	{"🖐️", "Описание текстуры", func(p forms.ProductSpec) string { return p.TextureDescription }},
	{"🧪", "Компоненты", func(p forms.ProductSpec) string { return p.Components }},
	{"🌸", "Отдушка", func(p forms.ProductSpec) string { return p.Fragrance }},
	{"🔬", "Бенч", func(p forms.ProductSpec) string { return p.TextureBench }},
	{"🎨", "Количество тонов", func(p forms.ProductSpec) string { return p.TonesCount }},
	{"📊", "Объемы закупки", func(p forms.ProductSpec) string { return p.PurchaseVolumes }},
	{"💰", "Целевая стоимость", func(p forms.ProductSpec) string { return p.TargetCost }},
	{"📅", "Планируемая дата доставки", func(p forms.ProductSpec) string { return p.PlannedDeliveryDate }},
}

// Render formats a validated record. at is rendered in its own location.
func Render(record forms.Record, submissionID string, at time.Time) (Lead, error) {
	switch r := record.(type) {
	case *forms.BriefSubmission:
		return Brief(r, submissionID, at), nil
	case *forms.ConsultationSubmission:
		return Consultation(r, submissionID, at), nil
	default:
		return Lead{}, fmt.Errorf("no email template for %T", record)
	}
}

// Brief renders a brief notification.
func Brief(b *forms.BriefSubmission, submissionID string, at time.Time) Lead {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 НОВЫЙ БРИФ ОТ КЛИЕНТА\n")
	fmt.Fprintf(&sb, "📄 ID заявки: %s\n", submissionID)
	fmt.Fprintf(&sb, "📅 Дата: %s\n\n", at.Format(DateLayout))

	sb.WriteString("👤 ИНФОРМАЦИЯ О КЛИЕНТЕ:\n")
	fmt.Fprintf(&sb, "• Имя: %s\n", b.Name)
	if b.Company != "" {
		fmt.Fprintf(&sb, "• Компания: %s\n", b.Company)
	}
	fmt.Fprintf(&sb, "• Email: %s\n", b.Email)
	if b.Phone != "" {
		fmt.Fprintf(&sb, "• Телефон: %s\n", b.Phone)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "📦 ПРОДУКТЫ (%d):\n\n", len(b.Products))
	for i, p := range b.Products {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p.ProductName)
		fmt.Fprintf(&sb, "   🏷️ Бренд: %s\n", p.Brand)
		fmt.Fprintf(&sb, "   📚 Коллекция: %s\n", p.Collection)
		for _, f := range productFields {
			if v := f.value(p); v != "" {
				fmt.Fprintf(&sb, "   %s %s: %s\n", f.icon, f.label, v)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n📧 Ответьте клиенту: %s\n", b.Email)
	if b.Phone != "" {
		fmt.Fprintf(&sb, "📞 Позвоните клиенту: %s\n", b.Phone)
	}

	client := []Row{{Label: "Имя", Value: b.Name}}
	if b.Company != "" {
		client = append(client, Row{Label: "Компания", Value: b.Company})
	}
	client = append(client, Row{Label: "Email", Value: b.Email, Href: mailto(b.Email)})
	if b.Phone != "" {
		client = append(client, Row{Label: "Телефон", Value: b.Phone, Href: tel(b.Phone)})
	}

	sections := []Section{
		{Heading: "Заявка", Rows: []Row{{Label: "ID заявки", Value: submissionID}, {Label: "Дата", Value: at.Format(DateLayout)}}},
		{Heading: "Информация о клиенте", Rows: client},
	}
	for i, p := range b.Products {
		rows := []Row{{Label: "Бренд", Value: p.Brand}, {Label: "Коллекция", Value: p.Collection}}
		for _, f := range productFields {
			if v := f.value(p); v != "" {
				rows = append(rows, Row{Label: f.label, Value: v})
			}
		}
		sections = append(sections, Section{Heading: fmt.Sprintf("%d. %s", i+1, p.ProductName), Rows: rows})
	}

	title := "Новый бриф от клиента"
	return Lead{
		Subject: fmt.Sprintf("🎯 Новый бриф от %s - %s", b.Name, submissionID),
		Text:    sb.String(),
		HTML: GetEmailLayout(EmailLayoutProps{
			Preheader: fmt.Sprintf("%s, продуктов: %d", b.Name, len(b.Products)),
			Title:     title,
			Content:   RenderSections(sections),
		}),
	}
}

// Consultation renders a consultation request notification.
func Consultation(c *forms.ConsultationSubmission, submissionID string, at time.Time) Lead {
	var sb strings.Builder
	sb.WriteString("📞 НОВАЯ ЗАЯВКА НА КОНСУЛЬТАЦИЮ\n")
	fmt.Fprintf(&sb, "📄 ID заявки: %s\n", submissionID)
	fmt.Fprintf(&sb, "📅 Дата: %s\n\n", at.Format(DateLayout))

	sb.WriteString("👤 ИНФОРМАЦИЯ О КЛИЕНТЕ:\n")
	fmt.Fprintf(&sb, "• ФИО: %s\n", c.FullName)
	fmt.Fprintf(&sb, "• Email: %s\n", c.Email)
	fmt.Fprintf(&sb, "• Телефон: %s\n\n", c.Phone)

	sb.WriteString("❓ ВОПРОС КЛИЕНТА:\n")
	fmt.Fprintf(&sb, "%s\n\n", c.Question)

	fmt.Fprintf(&sb, "\n📧 Ответьте клиенту: %s\n", c.Email)
	fmt.Fprintf(&sb, "📞 Позвоните клиенту: %s\n", c.Phone)

	sections := []Section{
		{Heading: "Заявка", Rows: []Row{{Label: "ID заявки", Value: submissionID}, {Label: "Дата", Value: at.Format(DateLayout)}}},
		{Heading: "Информация о клиенте", Rows: []Row{
			{Label: "ФИО", Value: c.FullName},
			{Label: "Email", Value: c.Email, Href: mailto(c.Email)},
			{Label: "Телефон", Value: c.Phone, Href: tel(c.Phone)},
		}},
		{Heading: "Вопрос клиента", Paragraph: c.Question},
	}

	return Lead{
		Subject: fmt.Sprintf("📞 Новая заявка на консультацию от %s - %s", c.FullName, submissionID),
		Text:    sb.String(),
		HTML: GetEmailLayout(EmailLayoutProps{
			Preheader: c.FullName,
			Title:     "Новая заявка на консультацию",
			Content:   RenderSections(sections),
		}),
	}
}

func mailto(address string) template.URL {
	return template.URL("mailto:" + url.PathEscape(address))
}

// tel keeps only characters valid in a dial string.
func tel(phone string) template.URL {
	var sb strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return template.URL("tel:" + sb.String())
}
