package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
)

// PaymentListFilter narrows payment listings.
type PaymentListFilter struct {
	BusinessID  uuid.UUID
	PurchaseID  *uuid.UUID
	Method      string
	Unconfirmed bool // only payments still awaiting review
	Page        int
	Limit       int
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, filter PaymentListFilter) ([]model.Payment, int64, error)
	Save(ctx context.Context, payment *model.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).
		Preload("Purchase").
		Preload("Purchase.Customer").
		Preload("Purchase.Shop").
		Preload("RecordedBy").
		Preload("Confirmer").
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentListFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Joins("JOIN purchases ON purchases.id = payments.purchase_id").
			Where("purchases.business_id = ?", filter.BusinessID)
		if filter.PurchaseID != nil {
			q = q.Where("payments.purchase_id = ?", *filter.PurchaseID)
		}
		if filter.Method != "" {
			q = q.Where("payments.method = ?", filter.Method)
		}
		if filter.Unconfirmed {
			q = q.Where("payments.is_confirmed = false AND payments.rejected_at IS NULL")
		}
		return q
	}

	if err := apply(db.Model(&model.Payment{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(filter.Page, filter.Limit)
	if err := apply(db.Model(&model.Payment{})).
		Preload("Purchase").
		Preload("RecordedBy").
		Order("payments.created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) Save(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(payment).Error
}
