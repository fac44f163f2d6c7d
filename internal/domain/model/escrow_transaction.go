package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// EscrowTransactionKind is the kind of funds movement recorded in the
// escrow ledger
type EscrowTransactionKind string

const (
	EscrowTransactionHold    EscrowTransactionKind = "hold"
	EscrowTransactionRelease EscrowTransactionKind = "release"
	EscrowTransactionRefund  EscrowTransactionKind = "refund"
)

// Scan implements sql.Scanner interface
func (k *EscrowTransactionKind) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*k = EscrowTransactionKind(v)
	case []byte:
		*k = EscrowTransactionKind(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (k EscrowTransactionKind) Value() (driver.Value, error) {
	return string(k), nil
}

// EscrowTransaction is an append-only escrow ledger entry. Amounts are in
// minor currency units, matching what the gateway reports. Rows are never
// updated or deleted; the sum per order reconciles against the order total
// at completion.
type EscrowTransaction struct {
	ID               int64                 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          uuid.UUID             `gorm:"type:uuid;not null;index" json:"order_id"`
	Kind             EscrowTransactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	AmountMinor      int64                 `gorm:"not null" json:"amount_minor"`
	Currency         string                `gorm:"size:3;not null" json:"currency"`
	PaymentReference *string               `gorm:"size:100" json:"payment_reference,omitempty"`
	CreatedAt        time.Time             `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (EscrowTransaction) TableName() string {
	return "escrow_transactions"
}
