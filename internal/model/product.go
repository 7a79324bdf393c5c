package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item, business-scoped by SKU.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_products_business_sku" json:"business_id"`
	SKU        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_business_sku" json:"sku"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ShopStock assigns a product to a shop with its on-hand quantity.
// Bulk product imports feed this table through the per-shop
// "<Shop Name> Assigned" / "<Shop Name> Stock" columns.
type ShopStock struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShopID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_shop_stocks_shop_product" json:"shop_id"`
	Shop      *Shop     `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_shop_stocks_shop_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Assigned  bool      `gorm:"default:true" json:"assigned"`
	Quantity  int       `gorm:"type:int;not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
