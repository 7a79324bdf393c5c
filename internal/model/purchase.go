package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseType enum constants
const (
	PurchaseTypeCash    = "CASH"
	PurchaseTypeLayaway = "LAYAWAY"
	PurchaseTypeCredit  = "CREDIT"
)

// PurchaseStatus enum constants
const (
	PurchaseStatusPending   = "PENDING"
	PurchaseStatusActive    = "ACTIVE"
	PurchaseStatusCompleted = "COMPLETED"
	PurchaseStatusOverdue   = "OVERDUE"
)

// DeliveryStatus enum constants (CASH and LAYAWAY purchases only)
const (
	DeliveryStatusPending   = "PENDING"
	DeliveryStatusScheduled = "SCHEDULED"
	DeliveryStatusInTransit = "IN_TRANSIT"
	DeliveryStatusDelivered = "DELIVERED"
	DeliveryStatusFailed    = "FAILED"
)

// Purchase represents one hire-purchase sale. The derived columns
// (amount_paid, refunded_amount, outstanding_balance, status) are only
// ever written by the reconciliation path, inside a transaction that
// holds a row lock on the purchase. Purchases are never hard-deleted.
type Purchase struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Number     string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"` // e.g. HP-ACME-000042
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ShopID     uuid.UUID `gorm:"type:uuid;not null;index" json:"shop_id"`
	Shop       *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Type       string    `gorm:"type:varchar(20);not null;index" json:"type"` // CASH, LAYAWAY, CREDIT

	Items          []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	InterestAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"interest_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"` // subtotal + interest_amount
	DownPayment    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"down_payment"`
	Installments   int             `gorm:"type:int;not null;default:1" json:"installments"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	DueDate        time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Note           string          `gorm:"type:text" json:"note"`

	// Derived ledger state
	AmountPaid         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	RefundedAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"refunded_amount"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"outstanding_balance"`
	Status             string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	// Delivery (CASH/LAYAWAY only). A waybill may be generated once
	// WaybillEligible is set by reconciliation.
	DeliveryStatus  *string `gorm:"type:varchar(20)" json:"delivery_status"`
	WaybillEligible bool    `gorm:"default:false" json:"waybill_eligible"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PurchaseItem is a line item within a Purchase.
type PurchaseItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total"` // quantity * unit_price
}

// HasDelivery reports whether the purchase type carries a delivery leg.
func (p *Purchase) HasDelivery() bool {
	return p.Type == PurchaseTypeCash || p.Type == PurchaseTypeLayaway
}
