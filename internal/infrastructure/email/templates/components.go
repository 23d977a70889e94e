package templates

import (
	"bytes"
	"html/template"
	"log"
)

// Row is one labelled value in a detail table.
type Row struct {
	Label string
	Value string
	// Href turns the value into a mailto: or tel: link.
	Href template.URL
}

// Section groups rows under a heading.
type Section struct {
	Heading string
	Rows    []Row
	// Paragraph is rendered below the rows, keeping line breaks.
	Paragraph string
}

var sectionTemplate = template.Must(template.New("emailSection").Parse(`
<h2 style="font-family: Helvetica, sans-serif; font-size: 18px; margin: 24px 0 8px;">{{.Heading}}</h2>
{{- if .Rows}}
<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: collapse; width: 100%;" width="100%">
  {{- range .Rows}}
  <tr>
    <td style="font-family: Helvetica, sans-serif; font-size: 15px; color: #6e7681; padding: 4px 12px 4px 0; vertical-align: top; white-space: nowrap;" valign="top">{{.Label}}</td>
    <td style="font-family: Helvetica, sans-serif; font-size: 15px; padding: 4px 0; vertical-align: top;" valign="top">{{if .Href}}<a href="{{.Href}}" style="color: #0867ec;">{{.Value}}</a>{{else}}{{.Value}}{{end}}</td>
  </tr>
  {{- end}}
</table>
{{- end}}
{{- if .Paragraph}}
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px; white-space: pre-wrap;">{{.Paragraph}}</p>
{{- end}}`))

// RenderSections renders sections with every value escaped.
func RenderSections(sections []Section) template.HTML {
	var buf bytes.Buffer
	for _, section := range sections {
		if err := sectionTemplate.Execute(&buf, section); err != nil {
			log.Printf("Error executing email section template: %v", err)
			continue
		}
	}
	return template.HTML(buf.String())
}
