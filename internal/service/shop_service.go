package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

type CreateShopRequest struct {
	Slug    string `json:"slug" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type UpdateShopRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

type ShopResponse struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type ShopService interface {
	CreateShop(ctx context.Context, businessID uuid.UUID, req CreateShopRequest) (ShopResponse, error)
	GetShop(ctx context.Context, businessID uuid.UUID, id string) (ShopResponse, error)
	ListShops(ctx context.Context, businessID uuid.UUID) ([]ShopResponse, error)
	UpdateShop(ctx context.Context, businessID uuid.UUID, id string, req UpdateShopRequest) (ShopResponse, error)
}

type shopService struct {
	repo repository.ShopRepository
}

func NewShopService(repo repository.ShopRepository) ShopService {
	return &shopService{repo: repo}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func (s *shopService) CreateShop(ctx context.Context, businessID uuid.UUID, req CreateShopRequest) (ShopResponse, error) {
	// The slug is the import key; keep it stable and machine-friendly.
	if !slugPattern.MatchString(req.Slug) {
		return ShopResponse{}, &ledger.ValidationError{Field: "slug", Message: "must be lowercase letters, digits, and hyphens"}
	}
	if _, err := s.repo.FindBySlug(ctx, businessID, req.Slug); err == nil {
		return ShopResponse{}, &ledger.ValidationError{Field: "slug", Message: "already exists"}
	}

	shop := &model.Shop{
		BusinessID: businessID,
		Slug:       req.Slug,
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return ShopResponse{}, err
	}
	return toShopResponse(shop), nil
}

func (s *shopService) GetShop(ctx context.Context, businessID uuid.UUID, id string) (ShopResponse, error) {
	shop, err := s.findScoped(ctx, businessID, id)
	if err != nil {
		return ShopResponse{}, err
	}
	return toShopResponse(shop), nil
}

func (s *shopService) ListShops(ctx context.Context, businessID uuid.UUID) ([]ShopResponse, error) {
	shops, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	responses := make([]ShopResponse, 0, len(shops))
	for i := range shops {
		responses = append(responses, toShopResponse(&shops[i]))
	}
	return responses, nil
}

func (s *shopService) UpdateShop(ctx context.Context, businessID uuid.UUID, id string, req UpdateShopRequest) (ShopResponse, error) {
	shop, err := s.findScoped(ctx, businessID, id)
	if err != nil {
		return ShopResponse{}, err
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}
	if err := s.repo.Save(ctx, shop); err != nil {
		return ShopResponse{}, err
	}
	return toShopResponse(shop), nil
}

func (s *shopService) findScoped(ctx context.Context, businessID uuid.UUID, id string) (*model.Shop, error) {
	sid, err := parseUUID("id", id)
	if err != nil {
		return nil, err
	}
	shop, err := s.repo.FindByID(ctx, sid)
	if err != nil {
		return nil, notFound(err, "shop", id)
	}
	if shop.BusinessID != businessID {
		return nil, &ledger.NotFoundError{Entity: "shop", Key: id}
	}
	return shop, nil
}

func toShopResponse(shop *model.Shop) ShopResponse {
	return ShopResponse{
		ID:        shop.ID.String(),
		Slug:      shop.Slug,
		Name:      shop.Name,
		Address:   shop.Address,
		Phone:     shop.Phone,
		IsActive:  shop.IsActive,
		CreatedAt: shop.CreatedAt.Format(time.RFC3339),
	}
}
