package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimesheetStatus represents the payment status of a retainer timesheet
type TimesheetStatus string

const (
	TimesheetStatusApproved TimesheetStatus = "approved"
	TimesheetStatusPaid     TimesheetStatus = "paid"
)

// Scan implements sql.Scanner interface
func (s *TimesheetStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = TimesheetStatus(v)
	case []byte:
		*s = TimesheetStatus(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (s TimesheetStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// TimesheetEntry is a unit of billable retainer work awaiting payment.
// It transitions to paid exactly once, gated on a payment-reference match.
type TimesheetEntry struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RetainerID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"retainer_id"`
	BuyerID          uuid.UUID       `gorm:"type:uuid;not null" json:"buyer_id"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null" json:"seller_id"`
	Hours            decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hours"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	Status           TimesheetStatus `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	PaymentReference *string         `gorm:"size:100;index" json:"payment_reference,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (TimesheetEntry) TableName() string {
	return "timesheet_entries"
}
