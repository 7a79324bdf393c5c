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

// UpdateBusinessPolicyRequest changes the hire-purchase pricing policy.
// Omitted fields keep their current value; the change applies to new
// purchases only, never to already-priced ledgers.
type UpdateBusinessPolicyRequest struct {
	InterestType        *string `json:"interest_type" binding:"omitempty,oneof=FLAT MONTHLY"`
	InterestRate        *string `json:"interest_rate"`
	DefaultInstallments *int    `json:"default_installments" binding:"omitempty,min=1"`
	DefaultTenorDays    *int    `json:"default_tenor_days" binding:"omitempty,min=1"`
}

type BusinessResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Code                string `json:"code"`
	InterestType        string `json:"interest_type"`
	InterestRate        string `json:"interest_rate"`
	DefaultInstallments int    `json:"default_installments"`
	DefaultTenorDays    int    `json:"default_tenor_days"`
	CreatedAt           string `json:"created_at"`
}

// --- Interface ---

type BusinessService interface {
	GetBusiness(ctx context.Context, businessID uuid.UUID) (BusinessResponse, error)
	UpdatePolicy(ctx context.Context, businessID uuid.UUID, req UpdateBusinessPolicyRequest, actor Actor) (BusinessResponse, error)
}

type businessService struct {
	repo      repository.BusinessRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewBusinessService(
	repo repository.BusinessRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) BusinessService {
	return &businessService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *businessService) GetBusiness(ctx context.Context, businessID uuid.UUID) (BusinessResponse, error) {
	business, err := s.repo.FindByID(ctx, businessID)
	if err != nil {
		return BusinessResponse{}, notFound(err, "business", businessID.String())
	}
	return toBusinessResponse(business), nil
}

func (s *businessService) UpdatePolicy(ctx context.Context, businessID uuid.UUID, req UpdateBusinessPolicyRequest, actor Actor) (BusinessResponse, error) {
	var business *model.Business
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		business, err = s.repo.FindByID(txCtx, businessID)
		if err != nil {
			return notFound(err, "business", businessID.String())
		}

		if req.InterestType != nil {
			business.InterestType = *req.InterestType
		}
		if req.InterestRate != nil {
			rate, err := parseAmount("interest_rate", *req.InterestRate)
			if err != nil {
				return err
			}
			if rate.IsNegative() {
				return &ledger.ValidationError{Field: "interest_rate", Message: "must not be negative"}
			}
			business.InterestRate = rate
		}
		if req.DefaultInstallments != nil {
			business.DefaultInstallments = *req.DefaultInstallments
		}
		if req.DefaultTenorDays != nil {
			business.DefaultTenorDays = *req.DefaultTenorDays
		}

		if err := s.repo.Save(txCtx, business); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateBusinessPolicy,
			business.ID.String(), business.Code, map[string]interface{}{
				"interest_type":        business.InterestType,
				"interest_rate":        business.InterestRate.String(),
				"default_installments": business.DefaultInstallments,
				"default_tenor_days":   business.DefaultTenorDays,
			})
	})
	if err != nil {
		return BusinessResponse{}, err
	}
	return toBusinessResponse(business), nil
}

func toBusinessResponse(business *model.Business) BusinessResponse {
	return BusinessResponse{
		ID:                  business.ID.String(),
		Name:                business.Name,
		Code:                business.Code,
		InterestType:        business.InterestType,
		InterestRate:        business.InterestRate.String(),
		DefaultInstallments: business.DefaultInstallments,
		DefaultTenorDays:    business.DefaultTenorDays,
		CreatedAt:           business.CreatedAt.Format(time.RFC3339),
	}
}
