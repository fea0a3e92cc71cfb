package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/rpupo63/portfolio-intake-backend/models"
)

const notSpecified = "Not specified"

type emailTemplate struct {
	subject string
	body    *template.Template
}

type emailData struct {
	Submission models.Submission
	ReceivedAt string
}

var templateFuncs = template.FuncMap{
	"opt": func(v *string) string {
		return models.StringOr(v, notSpecified)
	},
	"nameLabel": func(p models.ProjectRequest) string {
		if models.StringOr(p.ClientType, "") == models.ClientTypeCompany {
			return "Company Name"
		}
		return "Client Name"
	},
	"displayName": func(p models.ProjectRequest) string {
		return models.StringOr(p.CompanyName, models.StringOr(p.ClientName, notSpecified))
	},
}

// emailTemplates has one entry per models.Kind.
var emailTemplates = map[models.Kind]emailTemplate{
	models.KindProject: {
		subject: "New Project Request",
		body: mustTemplate("project", `<h3>New Project Request</h3>
<p><strong>Client Type:</strong> {{opt .Submission.ClientType}}</p>
<p><strong>{{nameLabel .Submission}}:</strong> {{displayName .Submission}}</p>
<p><strong>Project Type:</strong> {{opt .Submission.ProjectType}}</p>
<p><strong>Budget:</strong> {{opt .Submission.Budget}}</p>
<p><strong>Timeline:</strong> {{opt .Submission.Timeline}}</p>
<p><strong>Requirements:</strong> {{opt .Submission.Requirements}}</p>
<p><strong>Contact Email:</strong> {{.Submission.ContactEmail}}</p>
<p><strong>Received At:</strong> {{.ReceivedAt}} UTC</p>`),
	},
	models.KindHiring: {
		subject: "New Hiring Request",
		body: mustTemplate("hiring", `<h3>New Hiring Request</h3>
<p><strong>Client Type:</strong> {{.Submission.ClientType}}</p>
<p><strong>Company Name:</strong> {{.Submission.CompanyName}}</p>
<p><strong>Position Title:</strong> {{.Submission.PositionTitle}}</p>
<p><strong>Budget:</strong> {{.Submission.Budget}}</p>
<p><strong>Timeline:</strong> {{.Submission.Timeline}}</p>
<p><strong>Requirements:</strong> {{.Submission.Requirements}}</p>
<p><strong>Contact Email:</strong> {{.Submission.ContactEmail}}</p>
<p><strong>Received At:</strong> {{.ReceivedAt}} UTC</p>`),
	},
	models.KindContact: {
		subject: "New Contact Form Submission",
		body: mustTemplate("contact", `<h3>New Contact Form Submission</h3>
<p><strong>Name:</strong> {{.Submission.Name}}</p>
<p><strong>Email:</strong> {{.Submission.Email}}</p>
<p><strong>Message:</strong> {{.Submission.Message}}</p>
<p><strong>Received At:</strong> {{.ReceivedAt}} UTC</p>`),
	},
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(body))
}

// renderEmail picks the template by the submission's kind tag and fills it in.
func renderEmail(sub models.Submission, receivedAt time.Time) (subject string, html string, err error) {
	tmpl, ok := emailTemplates[sub.Kind()]
	if !ok {
		return "", "", fmt.Errorf("no email template for %q", sub.Kind())
	}

	var buf bytes.Buffer
	data := emailData{
		Submission: sub,
		ReceivedAt: receivedAt.UTC().Format("2006-01-02 15:04:05"),
	}
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s email: %w", sub.Kind(), err)
	}
	return tmpl.subject, buf.String(), nil
}
