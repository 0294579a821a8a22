package model

import "time"

// Severity classifies notifications and toasts.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is a server-owned alert. The client holds a read-only
// snapshot refreshed by polling; mark-read is a request to the backend
// followed by a full re-fetch, never a local mutation.
type Notification struct {
	// ID is the backend-assigned identifier.
	ID int64 `json:"id"`

	// Title is the short heading.
	Title string `json:"title"`

	// Message is the notification body.
	Message string `json:"message"`

	// Type is one of success, error, warning, info.
	Type Severity `json:"type"`

	// IsRead indicates whether the user has seen this notification.
	IsRead bool `json:"is_read"`

	// CreatedAt is when the backend generated the notification.
	CreatedAt time.Time `json:"created_at"`

	// Link is an optional URL to open when the notification is activated.
	Link string `json:"link,omitempty"`
}
