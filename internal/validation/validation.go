// Package validation holds the pure input checks and normalisers applied by
// the service layer before anything reaches a repository. Nothing here does
// I/O and nothing returns an error: callers decide how to report a rejection.
//
// Optional string inputs follow one convention: the empty string means
// "not provided" and is always valid.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

var (
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reminderTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// SanitizeText trims s and collapses every whitespace run to a single space.
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPassword(password string) bool {
	n := length(password)
	return n >= minPasswordLength && n <= maxPasswordLength
}

// IsValidTodoText requires non-blank text of at most 500 characters.
func IsValidTodoText(text string) bool {
	return strings.TrimSpace(text) != "" && length(text) <= common.MaxTodoTextLength
}

func IsValidThreadTitle(title string) bool {
	if title == "" {
		return true
	}
	return length(title) <= common.MaxThreadTitleLength
}

// IsValidMessageContent requires non-blank content of at most 5000 characters.
func IsValidMessageContent(content string) bool {
	return strings.TrimSpace(content) != "" && length(content) <= common.MaxMessageLength
}

// IsValidReminderTime accepts zero-padded 24h "HH:MM".
func IsValidReminderTime(t string) bool {
	if t == "" {
		return true
	}
	return reminderTimePattern.MatchString(t)
}

func IsValidPriority(p models.Priority) bool {
	switch p {
	case models.PriorityNone, models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}

// IsValidDueDate requires a provided due date to be strictly after now.
func IsValidDueDate(due *time.Time, now time.Time) bool {
	if due == nil {
		return true
	}
	return due.After(now)
}

func IsValidTheme(theme models.Theme) bool {
	switch theme {
	case models.ThemeLight, models.ThemeDark, models.ThemeSystem:
		return true
	}
	return false
}

func IsValidDefaultView(view models.View) bool {
	switch view {
	case models.ViewAll, models.ViewActive, models.ViewCompleted:
		return true
	}
	return false
}

// SanitizeTags trims and lowercases every tag, drops empty ones and removes
// duplicates. It returns nil when tags is nil or empty.
func SanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// IsValidTags allows at most 10 tags of 1..30 characters each.
func IsValidTags(tags []string) bool {
	if tags == nil {
		return true
	}
	if len(tags) > common.MaxTags {
		return false
	}
	for _, tag := range tags {
		if n := length(tag); n == 0 || n > common.MaxTagLength {
			return false
		}
	}
	return true
}
