package model

import (
	"time"

	"github.com/google/uuid"
)

// Waybill authorizes dispatch of a fully paid CASH or LAYAWAY purchase.
// One waybill per purchase; its delivery status mirrors onto the purchase.
type Waybill struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Number     string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"` // e.g. WB-ACME-000003
	PurchaseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"purchase_id"`
	Purchase   *Purchase `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`

	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"` // PENDING, SCHEDULED, IN_TRANSIT, DELIVERED, FAILED
	ScheduledAt *time.Time `json:"scheduled_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	DriverName  string     `gorm:"type:varchar(255)" json:"driver_name"`
	Note        string     `gorm:"type:text" json:"note"`

	GeneratedBy *uuid.UUID `gorm:"type:uuid" json:"generated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
