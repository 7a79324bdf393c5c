package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	FindBySlug(ctx context.Context, businessID uuid.UUID, slug string) (*model.Shop, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Shop, error)
	Save(ctx context.Context, shop *model.Shop) error
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, shop *model.Shop) error {
	return GetDB(ctx, r.db).Create(shop).Error
}

func (r *shopRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := GetDB(ctx, r.db).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) FindBySlug(ctx context.Context, businessID uuid.UUID, slug string) (*model.Shop, error) {
	var shop model.Shop
	if err := GetDB(ctx, r.db).
		First(&shop, "business_id = ? AND slug = ?", businessID, slug).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *shopRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Shop, error) {
	var shops []model.Shop
	if err := GetDB(ctx, r.db).
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *shopRepository) Save(ctx context.Context, shop *model.Shop) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(shop).Error
}
