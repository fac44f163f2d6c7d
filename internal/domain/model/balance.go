package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceTransactionType represents the type of balance movement
type BalanceTransactionType string

const (
	BalanceTransactionTopUp      BalanceTransactionType = "top_up"
	BalanceTransactionSpend      BalanceTransactionType = "spend"
	BalanceTransactionAdjustment BalanceTransactionType = "adjustment"
)

// Scan implements sql.Scanner interface
func (t *BalanceTransactionType) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*t = BalanceTransactionType(v)
	case []byte:
		*t = BalanceTransactionType(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (t BalanceTransactionType) Value() (driver.Value, error) {
	return string(t), nil
}

// UserBalance holds a user's current platform balance. Updated only under a
// row lock together with an appended BalanceTransaction.
type UserBalance struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CurrentBalance    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_balance"`
	Currency          string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	LastTransactionAt time.Time       `json:"last_transaction_at"`
	CreatedAt         time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserBalance) TableName() string {
	return "user_balances"
}

// BalanceTransaction is an append-only record of a balance movement. The
// reference_id (gateway payment intent id) is unique per top-up so a
// redelivered event cannot credit twice.
type BalanceTransaction struct {
	ID              int64                  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uuid.UUID              `gorm:"type:uuid;not null;index:idx_balance_tx_user_created" json:"user_id"`
	TransactionType BalanceTransactionType `gorm:"type:varchar(20);not null" json:"transaction_type"`
	Amount          decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceAfter    decimal.Decimal        `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	Description     string                 `gorm:"not null" json:"description"`
	ReferenceID     *string                `gorm:"size:200;uniqueIndex" json:"reference_id,omitempty"`
	CreatedAt       time.Time              `gorm:"default:now();index:idx_balance_tx_user_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
