package model

import (
	"database/sql/driver"
	"time"
)

// EventStatus represents the processing status of a gateway event
type EventStatus string

const (
	EventStatusProcessing EventStatus = "processing"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusFailed     EventStatus = "failed"
)

// Scan implements sql.Scanner interface
func (s *EventStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = EventStatus(v)
	case []byte:
		*s = EventStatus(v)
	default:
		*s = EventStatusProcessing
	}
	return nil
}

// Value implements driver.Valuer interface
func (s EventStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// PaymentEvent is the idempotency ledger row for one inbound gateway
// notification. The unique stripe_event_id makes the row itself the lock:
// the worker that inserts it owns the event.
type PaymentEvent struct {
	ID                  int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	StripeEventID       string      `gorm:"unique;not null;size:255;index" json:"stripe_event_id"`
	EventType           string      `gorm:"not null;size:100;index" json:"event_type"`
	Status              EventStatus `gorm:"type:varchar(20);default:'processing';index" json:"status"`
	Data                JSONB       `gorm:"type:jsonb;not null" json:"data"`
	ProcessingAttempts  int         `gorm:"default:0" json:"processing_attempts"`
	LastError           *string     `json:"last_error,omitempty"`
	ReceivedAt          time.Time   `gorm:"default:now()" json:"received_at"`
	ProcessingStartedAt *time.Time  `json:"processing_started_at,omitempty"`
	ProcessedAt         *time.Time  `json:"processed_at,omitempty"`
	StripeCreatedAt     *time.Time  `json:"stripe_created_at,omitempty"`
}

// Processed reports whether the event reached a terminal processed state.
func (e *PaymentEvent) Processed() bool {
	return e.Status == EventStatusCompleted
}

// TableName specifies the table name for GORM
func (PaymentEvent) TableName() string {
	return "payment_events"
}
