package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

type CreateProductRequest struct {
	SKU       string `json:"sku" binding:"required"`
	Name      string `json:"name" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type UpdateProductRequest struct {
	Name      *string `json:"name"`
	UnitPrice *string `json:"unit_price"`
	IsActive  *bool   `json:"is_active"`
}

type AssignStockRequest struct {
	ShopID   string `json:"shop_id" binding:"required"`
	Assigned bool   `json:"assigned"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

type ProductResponse struct {
	ID        string `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type ShopStockResponse struct {
	ShopID    string `json:"shop_id"`
	ShopName  string `json:"shop_name,omitempty"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Assigned  bool   `json:"assigned"`
	Quantity  int    `json:"quantity"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, businessID uuid.UUID, req CreateProductRequest) (ProductResponse, error)
	GetProduct(ctx context.Context, businessID uuid.UUID, id string) (ProductResponse, error)
	ListProducts(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]ProductResponse, int64, error)
	UpdateProduct(ctx context.Context, businessID uuid.UUID, id string, req UpdateProductRequest) (ProductResponse, error)
	// AssignStock writes the per-shop assignment row, the same row the
	// spreadsheet import feeds.
	AssignStock(ctx context.Context, businessID uuid.UUID, productID string, req AssignStockRequest) error
	ListShopStock(ctx context.Context, businessID uuid.UUID, shopID string) ([]ShopStockResponse, error)
}

type productService struct {
	productRepo repository.ProductRepository
	shopRepo    repository.ShopRepository
}

func NewProductService(productRepo repository.ProductRepository, shopRepo repository.ShopRepository) ProductService {
	return &productService{productRepo: productRepo, shopRepo: shopRepo}
}

func (s *productService) CreateProduct(ctx context.Context, businessID uuid.UUID, req CreateProductRequest) (ProductResponse, error) {
	if _, err := s.productRepo.FindBySKU(ctx, businessID, req.SKU); err == nil {
		return ProductResponse{}, &ledger.ValidationError{Field: "sku", Message: "already exists"}
	}
	unitPrice, err := parseAmount("unit_price", req.UnitPrice)
	if err != nil {
		return ProductResponse{}, err
	}
	if unitPrice.IsNegative() {
		return ProductResponse{}, &ledger.ValidationError{Field: "unit_price", Message: "must not be negative"}
	}

	product := &model.Product{
		BusinessID: businessID,
		SKU:        req.SKU,
		Name:       req.Name,
		UnitPrice:  unitPrice,
		IsActive:   true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) GetProduct(ctx context.Context, businessID uuid.UUID, id string) (ProductResponse, error) {
	product, err := s.findScoped(ctx, businessID, id)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) ListProducts(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, businessID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}
	return responses, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, businessID uuid.UUID, id string, req UpdateProductRequest) (ProductResponse, error) {
	product, err := s.findScoped(ctx, businessID, id)
	if err != nil {
		return ProductResponse{}, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.UnitPrice != nil {
		unitPrice, err := parseAmount("unit_price", *req.UnitPrice)
		if err != nil {
			return ProductResponse{}, err
		}
		if unitPrice.IsNegative() {
			return ProductResponse{}, &ledger.ValidationError{Field: "unit_price", Message: "must not be negative"}
		}
		product.UnitPrice = unitPrice
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) AssignStock(ctx context.Context, businessID uuid.UUID, productID string, req AssignStockRequest) error {
	product, err := s.findScoped(ctx, businessID, productID)
	if err != nil {
		return err
	}
	shopID, err := parseUUID("shop_id", req.ShopID)
	if err != nil {
		return err
	}
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return notFound(err, "shop", req.ShopID)
	}
	if shop.BusinessID != businessID {
		return &ledger.NotFoundError{Entity: "shop", Key: req.ShopID}
	}

	return s.productRepo.UpsertShopStock(ctx, &model.ShopStock{
		ShopID:    shop.ID,
		ProductID: product.ID,
		Assigned:  req.Assigned,
		Quantity:  req.Quantity,
	})
}

func (s *productService) ListShopStock(ctx context.Context, businessID uuid.UUID, shopID string) ([]ShopStockResponse, error) {
	sid, err := parseUUID("shop_id", shopID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.FindByID(ctx, sid)
	if err != nil {
		return nil, notFound(err, "shop", shopID)
	}
	if shop.BusinessID != businessID {
		return nil, &ledger.NotFoundError{Entity: "shop", Key: shopID}
	}

	stocks, err := s.productRepo.ListShopStock(ctx, sid)
	if err != nil {
		return nil, err
	}

	responses := make([]ShopStockResponse, 0, len(stocks))
	for _, stock := range stocks {
		sr := ShopStockResponse{
			ShopID:    stock.ShopID.String(),
			ShopName:  shop.Name,
			ProductID: stock.ProductID.String(),
			Assigned:  stock.Assigned,
			Quantity:  stock.Quantity,
		}
		if stock.Product != nil {
			sr.SKU = stock.Product.SKU
			sr.Name = stock.Product.Name
		}
		responses = append(responses, sr)
	}
	return responses, nil
}

func (s *productService) findScoped(ctx context.Context, businessID uuid.UUID, id string) (*model.Product, error) {
	pid, err := parseUUID("id", id)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	if product.BusinessID != businessID {
		return nil, &ledger.NotFoundError{Entity: "product", Key: id}
	}
	return product, nil
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.UnitPrice.StringFixed(2),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
