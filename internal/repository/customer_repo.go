package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/pkg/pagination"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	// FindByIDForUpdate row-locks the customer; wallet movements go
	// through it so two concurrent debits cannot both pass the balance
	// check.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*model.Customer, error)
	List(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error)
	Save(ctx context.Context, customer *model.Customer) error
	CreateWalletTransaction(ctx context.Context, tx *model.WalletTransaction) error
	FindWalletTransactionByID(ctx context.Context, id uuid.UUID) (*model.WalletTransaction, error)
	ListWalletTransactions(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).
		First(&customer, "business_id = ? AND phone = ?", businessID, phone).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, businessID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("business_id = ?", businessID)
		if search != "" {
			q = q.Where("name ILIKE ? OR phone LIKE ?", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Customer{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := apply(db).Order("name ASC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *customerRepository) Save(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(customer).Error
}

func (r *customerRepository) CreateWalletTransaction(ctx context.Context, tx *model.WalletTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *customerRepository) FindWalletTransactionByID(ctx context.Context, id uuid.UUID) (*model.WalletTransaction, error) {
	var walletTx model.WalletTransaction
	if err := GetDB(ctx, r.db).
		Preload("Customer").
		First(&walletTx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &walletTx, nil
}

func (r *customerRepository) ListWalletTransactions(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.WalletTransaction, int64, error) {
	var txs []model.WalletTransaction
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.WalletTransaction{}).
		Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := pagination.Offset(page, limit)
	if err := db.Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}
