package notification

import (
	"context"

	"github.com/google/uuid"
)

// Priority of a user-facing notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is a user-facing alert handed to the notification service.
type Notification struct {
	UserID    uuid.UUID              `json:"user_id"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Priority  Priority               `json:"priority"`
	ActionURL string                 `json:"action_url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Dispatcher delivers notifications to users. Delivery is fire-and-forget:
// callers log errors and never let them affect financial state.
type Dispatcher interface {
	Send(ctx context.Context, n Notification) error
}
