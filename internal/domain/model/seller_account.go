package model

import (
	"time"

	"github.com/google/uuid"
)

// SellerAccount tracks a seller's connected gateway account and its
// onboarding/capability flags, kept in sync from account.updated events.
type SellerAccount struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	StripeAccountID  string     `gorm:"unique;not null;size:100" json:"stripe_account_id"`
	ChargesEnabled   bool       `gorm:"default:false" json:"charges_enabled"`
	PayoutsEnabled   bool       `gorm:"default:false" json:"payouts_enabled"`
	DetailsSubmitted bool       `gorm:"default:false" json:"details_submitted"`
	OnboardedAt      *time.Time `json:"onboarded_at,omitempty"`
	CreatedAt        time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"default:now()" json:"updated_at"`
}

// Onboarded reports whether the account can both take charges and receive
// payouts.
func (a *SellerAccount) Onboarded() bool {
	return a.ChargesEnabled && a.PayoutsEnabled && a.DetailsSubmitted
}

// TableName specifies the table name for GORM
func (SellerAccount) TableName() string {
	return "seller_accounts"
}
