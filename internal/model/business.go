package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InterestType enum constants
const (
	InterestTypeFlat    = "FLAT"
	InterestTypeMonthly = "MONTHLY"
)

// Business is the tenant root. Its code prefixes every document number
// (purchases, refunds, waybills) issued under it, and it carries the
// hire-purchase pricing policy applied to new credit sales.
type Business struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(255);not null" json:"name"`
	Code string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"` // e.g. "ACME"

	// Hire-purchase policy
	InterestType        string          `gorm:"type:varchar(20);not null;default:'FLAT'" json:"interest_type"` // FLAT, MONTHLY
	InterestRate        decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"interest_rate"`    // e.g. 0.10 = 10%
	DefaultInstallments int             `gorm:"type:int;not null;default:1" json:"default_installments"`
	DefaultTenorDays    int             `gorm:"type:int;not null;default:30" json:"default_tenor_days"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Shop is a retail outlet under a business. The slug is the stable key
// used by spreadsheet imports.
type Shop struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID      `gorm:"type:uuid;not null;index" json:"business_id"`
	Slug       string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Address    string         `gorm:"type:text" json:"address"`
	Phone      string         `gorm:"type:varchar(50)" json:"phone"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
