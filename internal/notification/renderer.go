// Package notification turns urgent-project facts into email content.
package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/timepolicy"
)

const (
	accentOverdue  = "#dc2626"
	accentUpcoming = "#f59e0b"
)

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("alert.html").Parse(alertHTML))
	textTemplate = texttemplate.Must(texttemplate.New("alert.txt").Parse(alertText))
)

type view struct {
	Test        bool
	Recipient   string
	Accent      string
	Heading     string
	TextHeading string
	ProjectName string
	ClientName  string
	DueDate     string
	Status      string
	ProjectsURL string
	GeneratedAt string
}

type Renderer struct {
	appURL string
}

func NewRenderer(appURL string) *Renderer {
	appURL = strings.TrimRight(strings.TrimSpace(appURL), "/")
	if appURL == "" {
		appURL = DefaultAppURL
	}
	return &Renderer{appURL: appURL}
}

func (r *Renderer) ProjectsURL() string {
	return r.appURL + "/projects"
}

// Render builds subject, HTML and plain text bodies for a single urgent project.
func (r *Renderer) Render(fact Fact) (*Content, error) {
	v := r.viewFor(fact)
	return r.render(Subject(fact.ProjectName, fact.DaysUntil), v)
}

// RenderTest builds the "[PRUEBA]" email used to verify delivery settings. It describes
// a sample project due two days after now.
func (r *Renderer) RenderTest(recipient string, now time.Time) (*Content, error) {
	fact := Fact{
		ProjectName: sampleProjectName,
		ClientName:  sampleClientName,
		DueDate:     now.AddDate(0, 0, sampleDaysAhead),
		DaysUntil:   sampleDaysAhead,
		GeneratedAt: now,
	}

	v := r.viewFor(fact)
	v.Test = true
	v.Recipient = recipient

	return r.render(testSubjectPrefix+Subject(fact.ProjectName, fact.DaysUntil), v)
}

func (r *Renderer) viewFor(fact Fact) view {
	v := view{
		Accent:      accentUpcoming,
		Heading:     "⚠️ Alerta de Vencimiento",
		TextHeading: "⚠️ ALERTA DE VENCIMIENTO",
		ProjectName: fact.ProjectName,
		ClientName:  fact.ClientName,
		DueDate:     timepolicy.FormatLongDate(fact.DueDate),
		Status:      StatusLine(fact.DaysUntil),
		ProjectsURL: r.ProjectsURL(),
		GeneratedAt: timepolicy.FormatDateTime(fact.GeneratedAt),
	}
	if fact.IsOverdue() {
		v.Accent = accentOverdue
		v.Heading = "🚨 Proyecto Vencido"
		v.TextHeading = "🚨 PROYECTO VENCIDO"
	}
	if v.ClientName == "" {
		v.ClientName = "Sin cliente"
	}
	return v
}

func (r *Renderer) render(subject string, v view) (*Content, error) {
	var html bytes.Buffer
	if err := htmlTemplate.Execute(&html, v); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	tv := v
	tv.Recipient = plain(v.Recipient)
	tv.ProjectName = plain(v.ProjectName)
	tv.ClientName = plain(v.ClientName)
	tv.ProjectsURL = plain(v.ProjectsURL)

	var text bytes.Buffer
	if err := textTemplate.Execute(&text, tv); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	return &Content{
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
