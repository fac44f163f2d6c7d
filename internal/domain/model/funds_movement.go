package model

import (
	"time"

	"github.com/google/uuid"
)

// TransferLogEntry is an audit-only record of a seller-bound fund transfer
// reported by the gateway. Upserts are keyed by the external transfer id so
// redelivered events are safe to record twice.
type TransferLogEntry struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StripeTransferID     string     `gorm:"unique;not null;size:100" json:"stripe_transfer_id"`
	OrderID              *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	DestinationAccountID *string    `gorm:"size:100" json:"destination_account_id,omitempty"`
	AmountMinor          int64      `gorm:"not null" json:"amount_minor"`
	Currency             string     `gorm:"size:3;not null" json:"currency"`
	CreatedAt            time.Time  `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (TransferLogEntry) TableName() string {
	return "transfer_log_entries"
}

// PayoutLogEntry is an audit-only record of a gateway payout to a seller's
// bank account.
type PayoutLogEntry struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StripePayoutID string     `gorm:"unique;not null;size:100" json:"stripe_payout_id"`
	AmountMinor    int64      `gorm:"not null" json:"amount_minor"`
	Currency       string     `gorm:"size:3;not null" json:"currency"`
	Status         string     `gorm:"size:30" json:"status"`
	ArrivalDate    *time.Time `json:"arrival_date,omitempty"`
	CreatedAt      time.Time  `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PayoutLogEntry) TableName() string {
	return "payout_log_entries"
}
