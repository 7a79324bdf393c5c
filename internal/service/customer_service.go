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

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

type CustomerResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Address       string `json:"address,omitempty"`
	WalletBalance string `json:"wallet_balance"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, businessID uuid.UUID, req CreateCustomerRequest) (CustomerResponse, error)
	GetCustomer(ctx context.Context, businessID uuid.UUID, id string) (CustomerResponse, error)
	ListCustomers(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]CustomerResponse, int64, error)
	UpdateCustomer(ctx context.Context, businessID uuid.UUID, id string, req UpdateCustomerRequest) (CustomerResponse, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) CreateCustomer(ctx context.Context, businessID uuid.UUID, req CreateCustomerRequest) (CustomerResponse, error) {
	// Phone is the import key, unique within the business.
	if _, err := s.repo.FindByPhone(ctx, businessID, req.Phone); err == nil {
		return CustomerResponse{}, &ledger.ValidationError{Field: "phone", Message: "already registered"}
	}

	customer := &model.Customer{
		BusinessID: businessID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) GetCustomer(ctx context.Context, businessID uuid.UUID, id string) (CustomerResponse, error) {
	customer, err := s.findScoped(ctx, businessID, id)
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]CustomerResponse, int64, error) {
	customers, total, err := s.repo.List(ctx, businessID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, toCustomerResponse(&customers[i]))
	}
	return responses, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, businessID uuid.UUID, id string, req UpdateCustomerRequest) (CustomerResponse, error) {
	customer, err := s.findScoped(ctx, businessID, id)
	if err != nil {
		return CustomerResponse{}, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}
	if err := s.repo.Save(ctx, customer); err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(customer), nil
}

func (s *customerService) findScoped(ctx context.Context, businessID uuid.UUID, id string) (*model.Customer, error) {
	cid, err := parseUUID("id", id)
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.FindByID(ctx, cid)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	if customer.BusinessID != businessID {
		return nil, &ledger.NotFoundError{Entity: "customer", Key: id}
	}
	return customer, nil
}

func toCustomerResponse(c *model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		WalletBalance: c.WalletBalance.StringFixed(2),
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
}
