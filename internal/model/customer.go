package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletTxType enum constants
const (
	WalletTxDeposit         = "DEPOSIT"
	WalletTxPayment         = "PAYMENT"
	WalletTxRefundCredit    = "REFUND_CREDIT"
	WalletTxPaymentReversal = "PAYMENT_REVERSAL"
)

// Customer buys on hire purchase. The phone number is the stable key used
// by spreadsheet imports, unique within a business.
type Customer struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID    uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_customers_business_phone" json:"business_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customers_business_phone" json:"phone"`
	Email         string          `gorm:"type:varchar(255)" json:"email"`
	Address       string          `gorm:"type:text" json:"address"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"wallet_balance"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// WalletTransaction records every wallet movement strictly, with the
// balance snapshot after the movement.
type WalletTransaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer     *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Type         string          `gorm:"type:varchar(20);not null" json:"type"` // DEPOSIT, PAYMENT, REFUND_CREDIT, PAYMENT_REVERSAL
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	Reference    string          `gorm:"type:varchar(100)" json:"reference"` // payment id, refund number, deposit slip...
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}
