package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreatePurchase       = "CREATE_PURCHASE"
	ActionMarkPurchaseOverdue  = "MARK_PURCHASE_OVERDUE"
	ActionRecordPayment        = "RECORD_PAYMENT"
	ActionConfirmPayment       = "CONFIRM_PAYMENT"
	ActionRejectPayment        = "REJECT_PAYMENT"
	ActionCreateRefundRequest  = "CREATE_REFUND_REQUEST"
	ActionApproveRefund        = "APPROVE_REFUND"
	ActionProcessRefund        = "PROCESS_REFUND"
	ActionRejectRefund         = "REJECT_REFUND"
	ActionGenerateWaybill      = "GENERATE_WAYBILL"
	ActionUpdateDeliveryStatus = "UPDATE_DELIVERY_STATUS"
	ActionWalletDeposit        = "WALLET_DEPOSIT"
	ActionUpdateBusinessPolicy = "UPDATE_BUSINESS_POLICY"
	ActionImportPurchases      = "IMPORT_PURCHASES"
	ActionImportProducts       = "IMPORT_PRODUCTS"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
