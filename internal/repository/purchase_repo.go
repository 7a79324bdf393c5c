package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
)

// PurchaseListFilter narrows purchase listings.
type PurchaseListFilter struct {
	BusinessID uuid.UUID
	Status     string
	Type       string
	ShopID     *uuid.UUID
	CustomerID *uuid.UUID
	Number     string // partial match
	Page       int
	Limit      int
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	// FindByIDForUpdate row-locks the purchase for the duration of the
	// surrounding transaction; every reconciliation goes through it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByNumber(ctx context.Context, businessID uuid.UUID, number string) (*model.Purchase, error)
	List(ctx context.Context, filter PurchaseListFilter) ([]model.Purchase, int64, error)
	ListPastDue(ctx context.Context, businessID uuid.UUID, asOf time.Time) ([]model.Purchase, error)
	Save(ctx context.Context, purchase *model.Purchase) error
	AllocateNumber(ctx context.Context, prefix string) (string, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Product").
		Preload("Customer").
		Preload("Shop").
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByNumber(ctx context.Context, businessID uuid.UUID, number string) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).
		First(&purchase, "business_id = ? AND number = ?", businessID, number).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter PurchaseListFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("business_id = ?", filter.BusinessID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.ShopID != nil {
			q = q.Where("shop_id = ?", *filter.ShopID)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Number != "" {
			q = q.Where("number LIKE ?", "%"+filter.Number+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Purchase{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(filter.Page, filter.Limit)
	if err := apply(db.Preload("Items").Preload("Items.Product").Preload("Customer").Preload("Shop")).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&purchases).Error; err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *purchaseRepository) ListPastDue(ctx context.Context, businessID uuid.UUID, asOf time.Time) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := GetDB(ctx, r.db).
		Where("business_id = ? AND due_date < ? AND outstanding_balance > 0 AND status IN ?",
			businessID, asOf, []string{model.PurchaseStatusPending, model.PurchaseStatusActive}).
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) Save(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(purchase).Error
}

// AllocateNumber hands out the next business-scoped sequential number under
// an advisory lock so concurrent creations never collide. Must be called
// inside the transaction that also persists the document.
func (r *purchaseRepository) AllocateNumber(ctx context.Context, prefix string) (string, error) {
	db := GetDB(ctx, r.db)
	if err := lockPrefix(db, prefix); err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&model.Purchase{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, count+1), nil
}
