package notify

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

// OfferDetails is everything the offer email needs.
type OfferDetails struct {
	OfferID           int64
	ProfessionalName  string
	ProfessionalEmail string
	CompanyName       string
	ContactEmail      string
	ContactPhone      string
	Position          string
	MinSalary         int64
	MaxSalary         int64
	Location          string
}

const offerSubject = `New job offer from {{.CompanyName}}: {{.Position}}`

const offerText = `Hello {{.ProfessionalName}},

{{.CompanyName}} is offering you the position "{{.Position}}".

Salary: {{.MinSalary}} - {{.MaxSalary}}
{{- if .Location}}
Location: {{.Location}}
{{- end}}

Contact:
{{- if .ContactEmail}}
  email: {{.ContactEmail}}
{{- end}}
{{- if .ContactPhone}}
  phone: {{.ContactPhone}}
{{- end}}

Accept or decline offer #{{.OfferID}} from your dashboard.
`

const offerHTML = `<p>Hello {{.ProfessionalName}},</p>
<p><strong>{{.CompanyName}}</strong> is offering you the position <strong>{{.Position}}</strong>.</p>
<ul>
<li>Salary: {{.MinSalary}} - {{.MaxSalary}}</li>
{{- if .Location}}
<li>Location: {{.Location}}</li>
{{- end}}
{{- if .ContactEmail}}
<li>Contact email: <a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a></li>
{{- end}}
{{- if .ContactPhone}}
<li>Contact phone: {{.ContactPhone}}</li>
{{- end}}
</ul>
<p>Accept or decline offer #{{.OfferID}} from your dashboard.</p>
`

var (
	offerSubjectTpl = template.Must(template.New("offer_subject").Parse(offerSubject))
	offerTextTpl    = template.Must(template.New("offer_text").Parse(offerText))
	offerHTMLTpl    = htmltemplate.Must(htmltemplate.New("offer_html").Parse(offerHTML))
)

// NewOfferMessage renders the notification sent to a professional when a
// company extends an offer.
func NewOfferMessage(d OfferDetails) (Message, error) {
	var subject, text, html bytes.Buffer
	if err := offerSubjectTpl.Execute(&subject, d); err != nil {
		return Message{}, err
	}
	if err := offerTextTpl.Execute(&text, d); err != nil {
		return Message{}, err
	}
	if err := offerHTMLTpl.Execute(&html, d); err != nil {
		return Message{}, err
	}

	msg := Message{
		ToAddress: d.ProfessionalEmail,
		ToName:    d.ProfessionalName,
		Subject:   subject.String(),
		TextBody:  text.String(),
		HTMLBody:  html.String(),
	}
	return msg, msg.Validate()
}
