package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/KasumiMercury/freelance-deadline-alerts/internal/timepolicy"
)

const (
	DefaultAppURL = "http://localhost:3000"

	testSubjectPrefix = "[PRUEBA] "
	sampleProjectName = "Proyecto de Prueba"
	sampleClientName  = "Cliente de Prueba"
	sampleDaysAhead   = 2
)

// Fact is everything the renderer needs to describe one urgent project.
type Fact struct {
	ProjectName string
	ClientName  string
	DueDate     time.Time
	DaysUntil   int
	GeneratedAt time.Time
}

func (f Fact) IsOverdue() bool {
	return f.DaysUntil < 0
}

type Content struct {
	Subject string
	HTML    string
	Text    string
}

func Subject(projectName string, daysUntil int) string {
	if daysUntil < 0 {
		return "🚨 Proyecto Vencido: " + projectName
	}
	return "⚠️ Proyecto Próximo a Vencer: " + projectName
}

// StatusLine renders "Vencido hace N días" or "Vence en N días".
func StatusLine(daysUntil int) string {
	if daysUntil < 0 {
		return "Vencido hace " + timepolicy.FormatDays(daysUntil)
	}
	return "Vence en " + timepolicy.FormatDays(daysUntil)
}

// AlertMessage builds the message stored on the alert record.
func AlertMessage(projectName string, daysUntil int) string {
	if daysUntil < 0 {
		return fmt.Sprintf(`El proyecto "%s" está vencido desde hace %s`, projectName, timepolicy.FormatDays(daysUntil))
	}
	return fmt.Sprintf(`El proyecto "%s" vence en %s`, projectName, timepolicy.FormatDays(daysUntil))
}

var angleStripper = strings.NewReplacer("<", "", ">", "")

func plain(s string) string {
	return angleStripper.Replace(s)
}
