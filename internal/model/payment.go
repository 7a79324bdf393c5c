package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enum constants
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodMobileMoney  = "MOBILE_MONEY"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCard         = "CARD"
	PaymentMethodWallet       = "WALLET"
)

// Payment is a ledger entry applied against a Purchase. It counts toward
// the purchase's amount_paid if and only if is_confirmed is true and
// rejected_at is null. UNCONFIRMED -> {CONFIRMED | REJECTED}, both terminal.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Purchase   *Purchase       `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method     string          `gorm:"type:varchar(20);not null" json:"method"` // CASH, MOBILE_MONEY, BANK_TRANSFER, CARD, WALLET
	Reference  string          `gorm:"type:varchar(100)" json:"reference"`
	Note       string          `gorm:"type:text" json:"note"`

	// Who recorded the payment, as structured fields rather than text
	// embedded in the note.
	RecordedByUserID *uuid.UUID `gorm:"type:uuid;index" json:"recorded_by_user_id"`
	RecordedBy       *User      `gorm:"foreignKey:RecordedByUserID" json:"recorded_by,omitempty"`
	RecordedByRole   string     `gorm:"type:varchar(30);not null" json:"recorded_by_role"`

	// Confirmation lifecycle
	IsConfirmed     bool       `gorm:"not null;default:false;index" json:"is_confirmed"`
	ConfirmedBy     *uuid.UUID `gorm:"type:uuid" json:"confirmed_by"`
	Confirmer       *User      `gorm:"foreignKey:ConfirmedBy" json:"confirmer,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at"`
	RejectedBy      *uuid.UUID `gorm:"type:uuid" json:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Counts reports whether the payment contributes to amount_paid.
func (p *Payment) Counts() bool {
	return p.IsConfirmed && p.RejectedAt == nil
}

// Terminal reports whether the payment has reached a terminal state.
func (p *Payment) Terminal() bool {
	return p.IsConfirmed || p.RejectedAt != nil
}
