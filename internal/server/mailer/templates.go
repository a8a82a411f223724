package mailer

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ReminderTodo is one line of the reminder list.
type ReminderTodo struct {
	Marker string
	Text   string
}

type welcomeData struct {
	Name    string
	SiteURL string
}

type reminderData struct {
	ActiveCount int
	Todos       []ReminderTodo
	More        int
	SiteURL     string
}

// SummaryStats feeds the weekly summary email.
type SummaryStats struct {
	Created   int
	Completed int
	Active    int
}

type summaryData struct {
	SummaryStats
	SiteURL string
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func priorityMarker(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityMedium:
		return "🟡"
	}
	return ""
}

func RenderWelcome(name, siteURL string) (string, error) {
	return render("welcome.html", welcomeData{Name: name, SiteURL: siteURL})
}

// RenderReminder lists at most five of the active todos and mentions how
// many were left out.
func RenderReminder(active []*models.Todo, siteURL string) (string, error) {
	shown := active
	if len(shown) > common.ReminderEmailTodoLimit {
		shown = shown[:common.ReminderEmailTodoLimit]
	}

	data := reminderData{
		ActiveCount: len(active),
		Todos:       make([]ReminderTodo, 0, len(shown)),
		More:        len(active) - len(shown),
		SiteURL:     siteURL,
	}
	for _, t := range shown {
		data.Todos = append(data.Todos, ReminderTodo{Marker: priorityMarker(t.Priority), Text: t.Text})
	}
	return render("reminder.html", data)
}

func RenderWeeklySummary(stats SummaryStats, siteURL string) (string, error) {
	return render("weekly_summary.html", summaryData{SummaryStats: stats, SiteURL: siteURL})
}
