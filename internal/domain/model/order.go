package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of a marketplace order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDisputed   OrderStatus = "disputed"
	OrderStatusCompleted  OrderStatus = "completed"
)

// Scan implements sql.Scanner interface
func (s *OrderStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		*s = OrderStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// EscrowStatus represents where the buyer's funds sit for an order
type EscrowStatus string

const (
	EscrowStatusPending  EscrowStatus = "pending"
	EscrowStatusHeld     EscrowStatus = "held"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
)

// Scan implements sql.Scanner interface
func (s *EscrowStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = EscrowStatus(v)
	case []byte:
		*s = EscrowStatus(v)
	default:
		*s = EscrowStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s EscrowStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Order represents a marketplace transaction between a buyer and a seller.
// It is created by the order-placement flow; this service only moves its
// escrow_status and dispute state.
type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	Currency         string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	Status           OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	EscrowStatus     EscrowStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"escrow_status"`
	PaymentReference *string         `gorm:"size:100;index" json:"payment_reference,omitempty"`
	CreatedAt        time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}
