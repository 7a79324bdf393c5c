package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *model.Business) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Business, error)
	FindByCode(ctx context.Context, code string) (*model.Business, error)
	Save(ctx context.Context, business *model.Business) error
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(ctx context.Context, business *model.Business) error {
	return GetDB(ctx, r.db).Create(business).Error
}

func (r *businessRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := GetDB(ctx, r.db).First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByCode(ctx context.Context, code string) (*model.Business, error) {
	var business model.Business
	if err := GetDB(ctx, r.db).First(&business, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) Save(ctx context.Context, business *model.Business) error {
	return GetDB(ctx, r.db).Save(business).Error
}
