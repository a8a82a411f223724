package services

import (
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/validation"
)

const (
	msgInvalidTodoText     = "Invalid todo text. Must be non-empty and under 500 characters."
	msgInvalidPriority     = "Invalid priority. Must be 'low', 'medium', or 'high'."
	msgInvalidDueDate      = "Invalid due date. Must be in the future."
	msgInvalidTags         = "Invalid tags. Maximum 10 tags, each under 30 characters."
	msgInvalidThreadTitle  = "Invalid thread title. Must be under 200 characters."
	msgInvalidMessage      = "Invalid message content. Must be non-empty and under 5000 characters."
	msgInvalidReminderTime = "Invalid reminder time. Must be in HH:MM format."
	msgInvalidTheme        = "Invalid theme. Must be 'light', 'dark', or 'system'."
	msgInvalidDefaultView  = "Invalid default view. Must be 'all', 'active', or 'completed'."
	msgInvalidEmail        = "Invalid email address."
	msgInvalidPassword     = "Invalid password. Must be between 8 and 128 characters."
	msgAssistantDisabled   = "AI assistant is disabled in your preferences"
)

// checkTodoText sanitizes text and returns it when valid.
func checkTodoText(text string) (string, error) {
	text = validation.SanitizeText(text)
	if !validation.IsValidTodoText(text) {
		return "", common.NewValidationError("text", msgInvalidTodoText)
	}
	return text, nil
}

func checkPriority(p models.Priority) error {
	if !validation.IsValidPriority(p) {
		return common.NewValidationError("priority", msgInvalidPriority)
	}
	return nil
}

func checkDueDate(due *time.Time, now time.Time) error {
	if !validation.IsValidDueDate(due, now) {
		return common.NewValidationError("dueDate", msgInvalidDueDate)
	}
	return nil
}

// checkTags sanitizes tags and returns them when valid. Absent input
// yields nil.
func checkTags(tags []string) ([]string, error) {
	tags = validation.SanitizeTags(tags)
	if !validation.IsValidTags(tags) {
		return nil, common.NewValidationError("tags", msgInvalidTags)
	}
	return tags, nil
}

func checkThreadTitle(title string) (string, error) {
	title = validation.SanitizeText(title)
	if !validation.IsValidThreadTitle(title) {
		return "", common.NewValidationError("title", msgInvalidThreadTitle)
	}
	return title, nil
}

func checkMessage(content string) (string, error) {
	content = validation.SanitizeText(content)
	if !validation.IsValidMessageContent(content) {
		return "", common.NewValidationError("content", msgInvalidMessage)
	}
	return content, nil
}

func checkPreferencesPatch(p models.PreferencesPatch) error {
	if p.ReminderTime != nil && !validation.IsValidReminderTime(*p.ReminderTime) {
		return common.NewValidationError("reminderTime", msgInvalidReminderTime)
	}
	if p.Theme != nil && !validation.IsValidTheme(*p.Theme) {
		return common.NewValidationError("theme", msgInvalidTheme)
	}
	if p.DefaultView != nil && !validation.IsValidDefaultView(*p.DefaultView) {
		return common.NewValidationError("defaultView", msgInvalidDefaultView)
	}
	return nil
}
