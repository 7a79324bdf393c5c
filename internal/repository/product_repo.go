package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*model.Product, error)
	List(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]model.Product, int64, error)
	Save(ctx context.Context, product *model.Product) error
	UpsertShopStock(ctx context.Context, stock *model.ShopStock) error
	ListShopStock(ctx context.Context, shopID uuid.UUID) ([]model.ShopStock, error)
	ListStockByProduct(ctx context.Context, productID uuid.UUID) ([]model.ShopStock, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).
		First(&product, "business_id = ? AND sku = ?", businessID, sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("business_id = ?", businessID)
		if search != "" {
			q = q.Where("name ILIKE ? OR sku ILIKE ?", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Product{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := apply(db).Order("sku ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) Save(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(product).Error
}

// UpsertShopStock writes the per-shop assignment row, keyed on
// (shop_id, product_id).
func (r *productRepository) UpsertShopStock(ctx context.Context, stock *model.ShopStock) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"assigned", "quantity", "updated_at"}),
	}).Create(stock).Error
}

func (r *productRepository) ListShopStock(ctx context.Context, shopID uuid.UUID) ([]model.ShopStock, error) {
	var stocks []model.ShopStock
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Where("shop_id = ?", shopID).
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *productRepository) ListStockByProduct(ctx context.Context, productID uuid.UUID) ([]model.ShopStock, error) {
	var stocks []model.ShopStock
	if err := GetDB(ctx, r.db).
		Preload("Shop").
		Where("product_id = ?", productID).
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
