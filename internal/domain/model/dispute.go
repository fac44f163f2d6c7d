package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// DisputeStatus represents the state of a chargeback
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

// Scan implements sql.Scanner interface
func (s *DisputeStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = DisputeStatus(v)
	case []byte:
		*s = DisputeStatus(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (s DisputeStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Dispute records a chargeback raised at the gateway against an order's
// charge. At most one row exists per external dispute id.
type Dispute struct {
	ID              int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	StripeDisputeID string        `gorm:"unique;not null;size:100" json:"stripe_dispute_id"`
	OrderID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"order_id"`
	Reason          string        `gorm:"size:100" json:"reason"`
	Status          DisputeStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	AmountMinor     int64         `gorm:"not null" json:"amount_minor"`
	Currency        string        `gorm:"size:3;not null" json:"currency"`
	RaisedBy        string        `gorm:"size:50;default:'gateway'" json:"raised_by"`
	CreatedAt       time.Time     `gorm:"default:now()" json:"created_at"`
	ResolvedAt      *time.Time    `json:"resolved_at,omitempty"`
}

// TableName specifies the table name for GORM
func (Dispute) TableName() string {
	return "disputes"
}
