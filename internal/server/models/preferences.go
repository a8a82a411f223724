package models

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type View string

const (
	ViewAll       View = "all"
	ViewActive    View = "active"
	ViewCompleted View = "completed"
)

type UserPreferences struct {
	ID                        string    `json:"id"`
	UserID                    string    `json:"userId"`
	EmailNotificationsEnabled bool      `json:"emailNotificationsEnabled"`
	AIAssistantEnabled        bool      `json:"aiAssistantEnabled"`
	ReminderTime              string    `json:"reminderTime,omitempty"`
	Theme                     Theme     `json:"theme"`
	DefaultView               View      `json:"defaultView"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

// DefaultPreferences returns the record created for a user on first access.
func DefaultPreferences(id, userID string, now time.Time) *UserPreferences {
	return &UserPreferences{
		ID:                        id,
		UserID:                    userID,
		EmailNotificationsEnabled: true,
		AIAssistantEnabled:        true,
		Theme:                     ThemeSystem,
		DefaultView:               ViewAll,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
}

// PreferencesPatch lists the fields to change; nil fields are left alone.
type PreferencesPatch struct {
	EmailNotificationsEnabled *bool   `json:"emailNotificationsEnabled,omitempty"`
	AIAssistantEnabled        *bool   `json:"aiAssistantEnabled,omitempty"`
	ReminderTime              *string `json:"reminderTime,omitempty"`
	Theme                     *Theme  `json:"theme,omitempty"`
	DefaultView               *View   `json:"defaultView,omitempty"`
}

// Apply copies the set fields of p onto prefs.
func (p PreferencesPatch) Apply(prefs *UserPreferences) {
	if p.EmailNotificationsEnabled != nil {
		prefs.EmailNotificationsEnabled = *p.EmailNotificationsEnabled
	}
	if p.AIAssistantEnabled != nil {
		prefs.AIAssistantEnabled = *p.AIAssistantEnabled
	}
	if p.ReminderTime != nil {
		prefs.ReminderTime = *p.ReminderTime
	}
	if p.Theme != nil {
		prefs.Theme = *p.Theme
	}
	if p.DefaultView != nil {
		prefs.DefaultView = *p.DefaultView
	}
}
