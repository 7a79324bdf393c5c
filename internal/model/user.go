package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleBusinessAdmin = "business_admin"
	RoleShopAdmin     = "shop_admin"
	RoleAccountant    = "accountant"
	RoleCollector     = "collector"
)

// ValidRole reports whether role is one of the four staff roles.
func ValidRole(role string) bool {
	switch role {
	case RoleBusinessAdmin, RoleShopAdmin, RoleAccountant, RoleCollector:
		return true
	}
	return false
}

// CanConfirmPayments reports whether a role carries confirm authority:
// payments it records are confirmed immediately, and it may confirm or
// reject payments and approve refunds recorded by others.
func CanConfirmPayments(role string) bool {
	return role == RoleBusinessAdmin || role == RoleAccountant
}

// User represents a staff account scoped to one business.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID      `gorm:"type:uuid;not null;index" json:"business_id"`
	ShopID     *uuid.UUID     `gorm:"type:uuid;index" json:"shop_id"` // set for shop_admin and collector
	Username   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone      string         `gorm:"type:varchar(20);not null" json:"phone"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role       string         `gorm:"type:varchar(30);not null" json:"role"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
