package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/safo-124/high-purchase-sub010/internal/events"
	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// --- DTOs ---

type GenerateWaybillRequest struct {
	PurchaseID string `json:"purchase_id" binding:"required"`
	DriverName string `json:"driver_name"`
	Note       string `json:"note"`
}

type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SCHEDULED IN_TRANSIT DELIVERED FAILED"`
}

type WaybillResponse struct {
	ID             string  `json:"id"`
	Number         string  `json:"number"`
	PurchaseID     string  `json:"purchase_id"`
	PurchaseNumber string  `json:"purchase_number,omitempty"`
	CustomerName   string  `json:"customer_name,omitempty"`
	Status         string  `json:"status"`
	ScheduledAt    *string `json:"scheduled_at"`
	DeliveredAt    *string `json:"delivered_at"`
	DriverName     string  `json:"driver_name,omitempty"`
	Note           string  `json:"note,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// --- Interface ---

type WaybillService interface {
	// GenerateWaybill issues the dispatch document for a fully paid CASH
	// or LAYAWAY purchase. One waybill per purchase, ever.
	GenerateWaybill(ctx context.Context, businessID uuid.UUID, req GenerateWaybillRequest, actor Actor) (WaybillResponse, error)
	UpdateDeliveryStatus(ctx context.Context, businessID uuid.UUID, waybillID string, req UpdateDeliveryStatusRequest, actor Actor) (WaybillResponse, error)
	GetWaybill(ctx context.Context, businessID uuid.UUID, waybillID string) (WaybillResponse, error)
	ListWaybills(ctx context.Context, businessID uuid.UUID, status string, page, limit int) ([]WaybillResponse, int64, error)
}

type waybillService struct {
	waybillRepo  repository.WaybillRepository
	purchaseRepo repository.PurchaseRepository
	businessRepo repository.BusinessRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	publisher    events.Publisher
}

func NewWaybillService(
	waybillRepo repository.WaybillRepository,
	purchaseRepo repository.PurchaseRepository,
	businessRepo repository.BusinessRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher events.Publisher,
) WaybillService {
	return &waybillService{
		waybillRepo:  waybillRepo,
		purchaseRepo: purchaseRepo,
		businessRepo: businessRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		publisher:    publisher,
	}
}

func (s *waybillService) GenerateWaybill(ctx context.Context, businessID uuid.UUID, req GenerateWaybillRequest, actor Actor) (WaybillResponse, error) {
	pid, err := parseUUID("purchase_id", req.PurchaseID)
	if err != nil {
		return WaybillResponse{}, err
	}

	business, err := s.businessRepo.FindByID(ctx, businessID)
	if err != nil {
		return WaybillResponse{}, notFound(err, "business", businessID.String())
	}

	var waybill *model.Waybill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, pid)
		if err != nil {
			return notFound(err, "purchase", req.PurchaseID)
		}
		if purchase.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "purchase", Key: req.PurchaseID}
		}
		if !purchase.HasDelivery() {
			return &ledger.ValidationError{Field: "purchase_id", Message: "purchase type carries no delivery"}
		}
		if !purchase.WaybillEligible {
			return &ledger.ValidationError{Field: "purchase_id", Message: "purchase is not fully paid"}
		}
		if _, err := s.waybillRepo.FindByPurchase(txCtx, purchase.ID); err == nil {
			return &ledger.AlreadyProcessedError{Entity: "waybill", Status: "GENERATED"}
		}

		number, err := s.waybillRepo.AllocateNumber(txCtx, "WB-"+business.Code+"-")
		if err != nil {
			return err
		}

		userID := actor.UserID
		waybill = &model.Waybill{
			BusinessID:  businessID,
			Number:      number,
			PurchaseID:  purchase.ID,
			Status:      model.DeliveryStatusPending,
			DriverName:  req.DriverName,
			Note:        req.Note,
			GeneratedBy: &userID,
		}
		if err := s.waybillRepo.Create(txCtx, waybill); err != nil {
			return err
		}

		pending := model.DeliveryStatusPending
		purchase.DeliveryStatus = &pending
		if err := s.purchaseRepo.Save(txCtx, purchase); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionGenerateWaybill,
			waybill.ID.String(), waybill.Number, map[string]interface{}{
				"purchase_id": purchase.ID.String(),
			})
	})
	if err != nil {
		return WaybillResponse{}, err
	}

	if s.publisher != nil {
		s.publisher.Publish(events.TypeWaybillGenerated, map[string]string{
			"waybill_id": waybill.ID.String(),
			"number":     waybill.Number,
		})
	}
	return s.GetWaybill(ctx, businessID, waybill.ID.String())
}

func (s *waybillService) UpdateDeliveryStatus(ctx context.Context, businessID uuid.UUID, waybillID string, req UpdateDeliveryStatusRequest, actor Actor) (WaybillResponse, error) {
	id, err := parseUUID("waybill_id", waybillID)
	if err != nil {
		return WaybillResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		waybill, err := s.waybillRepo.FindByID(txCtx, id)
		if err != nil {
			return notFound(err, "waybill", waybillID)
		}
		if waybill.BusinessID != businessID {
			return &ledger.NotFoundError{Entity: "waybill", Key: waybillID}
		}

		if err := ledger.AdvanceDelivery(waybill, req.Status, time.Now()); err != nil {
			return err
		}
		if err := s.waybillRepo.Save(txCtx, waybill); err != nil {
			return err
		}

		// Mirror onto the purchase so listings read one table.
		purchase, err := s.purchaseRepo.FindByIDForUpdate(txCtx, waybill.PurchaseID)
		if err != nil {
			return err
		}
		status := waybill.Status
		purchase.DeliveryStatus = &status
		if err := s.purchaseRepo.Save(txCtx, purchase); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateDeliveryStatus,
			waybill.ID.String(), waybill.Number, map[string]interface{}{
				"status": waybill.Status,
			})
	})
	if err != nil {
		return WaybillResponse{}, err
	}
	return s.GetWaybill(ctx, businessID, waybillID)
}

func (s *waybillService) GetWaybill(ctx context.Context, businessID uuid.UUID, waybillID string) (WaybillResponse, error) {
	id, err := parseUUID("waybill_id", waybillID)
	if err != nil {
		return WaybillResponse{}, err
	}
	waybill, err := s.waybillRepo.FindByID(ctx, id)
	if err != nil {
		return WaybillResponse{}, notFound(err, "waybill", waybillID)
	}
	if waybill.BusinessID != businessID {
		return WaybillResponse{}, &ledger.NotFoundError{Entity: "waybill", Key: waybillID}
	}
	return toWaybillResponse(waybill), nil
}

func (s *waybillService) ListWaybills(ctx context.Context, businessID uuid.UUID, status string, page, limit int) ([]WaybillResponse, int64, error) {
	waybills, total, err := s.waybillRepo.List(ctx, businessID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]WaybillResponse, 0, len(waybills))
	for i := range waybills {
		responses = append(responses, toWaybillResponse(&waybills[i]))
	}
	return responses, total, nil
}

func toWaybillResponse(w *model.Waybill) WaybillResponse {
	resp := WaybillResponse{
		ID:         w.ID.String(),
		Number:     w.Number,
		PurchaseID: w.PurchaseID.String(),
		Status:     w.Status,
		DriverName: w.DriverName,
		Note:       w.Note,
		CreatedAt:  w.CreatedAt.Format(time.RFC3339),
	}
	if w.Purchase != nil {
		resp.PurchaseNumber = w.Purchase.Number
		if w.Purchase.Customer != nil {
			resp.CustomerName = w.Purchase.Customer.Name
		}
	}
	if w.ScheduledAt != nil {
		at := w.ScheduledAt.Format(time.RFC3339)
		resp.ScheduledAt = &at
	}
	if w.DeliveredAt != nil {
		at := w.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &at
	}
	return resp
}
