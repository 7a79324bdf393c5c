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

type WaybillRepository interface {
	Create(ctx context.Context, waybill *model.Waybill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Waybill, error)
	FindByPurchase(ctx context.Context, purchaseID uuid.UUID) (*model.Waybill, error)
	List(ctx context.Context, businessID uuid.UUID, status string, page, limit int) ([]model.Waybill, int64, error)
	Save(ctx context.Context, waybill *model.Waybill) error
	AllocateNumber(ctx context.Context, prefix string) (string, error)
}

type waybillRepository struct {
	db *gorm.DB
}

func NewWaybillRepository(db *gorm.DB) WaybillRepository {
	return &waybillRepository{db: db}
}

func (r *waybillRepository) Create(ctx context.Context, waybill *model.Waybill) error {
	return GetDB(ctx, r.db).Create(waybill).Error
}

func (r *waybillRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Waybill, error) {
	var waybill model.Waybill
	if err := GetDB(ctx, r.db).
		Preload("Purchase").
		Preload("Purchase.Customer").
		First(&waybill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &waybill, nil
}

func (r *waybillRepository) FindByPurchase(ctx context.Context, purchaseID uuid.UUID) (*model.Waybill, error) {
	var waybill model.Waybill
	if err := GetDB(ctx, r.db).First(&waybill, "purchase_id = ?", purchaseID).Error; err != nil {
		return nil, err
	}
	return &waybill, nil
}

func (r *waybillRepository) List(ctx context.Context, businessID uuid.UUID, status string, page, limit int) ([]model.Waybill, int64, error) {
	var waybills []model.Waybill
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Waybill{}).Where("business_id = ?", businessID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	fetch := db.Preload("Purchase").Preload("Purchase.Customer").Where("business_id = ?", businessID)
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&waybills).Error; err != nil {
		return nil, 0, err
	}

	return waybills, total, nil
}

func (r *waybillRepository) Save(ctx context.Context, waybill *model.Waybill) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(waybill).Error
}

func (r *waybillRepository) AllocateNumber(ctx context.Context, prefix string) (string, error) {
	db := GetDB(ctx, r.db)
	if err := lockPrefix(db, prefix); err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&model.Waybill{}).
		Where("number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, count+1), nil
}
