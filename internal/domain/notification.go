package domain

import "time"

type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// Notification is a transient toast shown by the UI.
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Variant     NotificationVariant `json:"variant"`
	CreatedAt   time.Time           `json:"created_at"`
}

func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault, CreatedAt: time.Now()}
}

func Failure(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive, CreatedAt: time.Now()}
}
