package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
)

// RefundListFilter narrows refund listings.
type RefundListFilter struct {
	BusinessID uuid.UUID
	Status     string
	PurchaseID *uuid.UUID
	CustomerID *uuid.UUID
	Page       int
	Limit      int
}

type RefundRepository interface {
	Create(ctx context.Context, refund *model.Refund) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Refund, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Refund, error)
	ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Refund, error)
	List(ctx context.Context, filter RefundListFilter) ([]model.Refund, int64, error)
	Save(ctx context.Context, refund *model.Refund) error
	AllocateNumber(ctx context.Context, prefix string) (string, error)
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, refund *model.Refund) error {
	return GetDB(ctx, r.db).Create(refund).Error
}

func (r *refundRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Refund, error) {
	var refund model.Refund
	if err := GetDB(ctx, r.db).First(&refund, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Refund, error) {
	var refund model.Refund
	if err := GetDB(ctx, r.db).
		Preload("Purchase").
		Preload("Customer").
		Preload("Items").
		Preload("Requester").
		Preload("Approver").
		First(&refund, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *refundRepository) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Refund, error) {
	var refunds []model.Refund
	if err := GetDB(ctx, r.db).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC").
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *refundRepository) List(ctx context.Context, filter RefundListFilter) ([]model.Refund, int64, error) {
	var refunds []model.Refund
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("business_id = ?", filter.BusinessID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.PurchaseID != nil {
			q = q.Where("purchase_id = ?", *filter.PurchaseID)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		return q
	}

	if err := apply(db.Model(&model.Refund{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(filter.Page, filter.Limit)
	if err := apply(db.Preload("Purchase").Preload("Customer")).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&refunds).Error; err != nil {
		return nil, 0, err
	}

	return refunds, total, nil
}

func (r *refundRepository) Save(ctx context.Context, refund *model.Refund) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(refund).Error
}

func (r *refundRepository) AllocateNumber(ctx context.Context, prefix string) (string, error) {
	db := GetDB(ctx, r.db)
	if err := lockPrefix(db, prefix); err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&model.Refund{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, count+1), nil
}
