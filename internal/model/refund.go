package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundReason enum constants
const (
	RefundReasonProductDefect     = "PRODUCT_DEFECT"
	RefundReasonWrongItem         = "WRONG_ITEM"
	RefundReasonDuplicatePayment  = "DUPLICATE_PAYMENT"
	RefundReasonContractCancelled = "CONTRACT_CANCELLED"
	RefundReasonCustomerRequest   = "CUSTOMER_REQUEST"
	RefundReasonOvercharge        = "OVERCHARGE"
	RefundReasonOther             = "OTHER"
)

// RefundStatus enum constants
const (
	RefundStatusPending   = "PENDING"
	RefundStatusApproved  = "APPROVED"
	RefundStatusProcessed = "PROCESSED"
	RefundStatusRejected  = "REJECTED"
)

// RefundChannelWallet is the sentinel transaction reference meaning the
// refund was settled as a customer wallet credit instead of an external
// funds transfer.
const RefundChannelWallet = "wallet"

// Refund reverses part of a purchase's value back to the customer.
// PENDING -> APPROVED -> PROCESSED, or PENDING -> REJECTED.
// Only PROCESSED refunds move funds and count against the purchase ledger.
type Refund struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"business_id"`
	Number       string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"` // e.g. RF-ACME-000007
	PurchaseID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Purchase     *Purchase       `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer     *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Reason       string          `gorm:"type:varchar(30);not null" json:"reason"`
	CustomReason string          `gorm:"type:text" json:"custom_reason"` // free text when reason = OTHER
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method       string          `gorm:"type:varchar(20);not null" json:"method"` // payout channel requested
	Note         string          `gorm:"type:text" json:"note"`
	Items        []RefundItem    `gorm:"foreignKey:RefundID" json:"items"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy     *uuid.UUID `gorm:"type:uuid;index" json:"requested_by"`
	Requester       *User      `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver        *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ProcessedBy     *uuid.UUID `gorm:"type:uuid" json:"processed_by"`
	ProcessedAt     *time.Time `json:"processed_at"`
	TransactionRef  string     `gorm:"type:varchar(100)" json:"transaction_ref"` // external disbursement ref, or "wallet"
	RejectedBy      *uuid.UUID `gorm:"type:uuid" json:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefundItem optionally itemizes which line items a refund covers.
type RefundItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RefundID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"refund_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"type:int;not null" json:"quantity"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
}
