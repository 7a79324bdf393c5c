package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/safo-124/high-purchase-sub010/internal/model"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
)

// In-memory repository fakes backing the service tests. Lookups hand out
// copies so a mutation only lands in the store through Save, mirroring how
// the real repositories behave against rows.

type memTxManager struct{}

func (memTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

var _ repository.TransactionManager = memTxManager{}

// --- business ---

type memBusinessRepo struct {
	businesses map[uuid.UUID]*model.Business
	saves      int
}

var _ repository.BusinessRepository = (*memBusinessRepo)(nil)

func newMemBusinessRepo() *memBusinessRepo {
	return &memBusinessRepo{businesses: make(map[uuid.UUID]*model.Business)}
}

func (r *memBusinessRepo) Create(_ context.Context, b *model.Business) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	stored := *b
	r.businesses[b.ID] = &stored
	return nil
}

func (r *memBusinessRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Business, error) {
	b, ok := r.businesses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *b
	return &found, nil
}

func (r *memBusinessRepo) FindByCode(_ context.Context, code string) (*model.Business, error) {
	for _, b := range r.businesses {
		if b.Code == code {
			found := *b
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBusinessRepo) Save(_ context.Context, b *model.Business) error {
	r.saves++
	stored := *b
	r.businesses[b.ID] = &stored
	return nil
}

// --- shop ---

type memShopRepo struct {
	shops map[uuid.UUID]*model.Shop
}

var _ repository.ShopRepository = (*memShopRepo)(nil)

func newMemShopRepo() *memShopRepo {
	return &memShopRepo{shops: make(map[uuid.UUID]*model.Shop)}
}

func (r *memShopRepo) Create(_ context.Context, shop *model.Shop) error {
	if shop.ID == uuid.Nil {
		shop.ID = uuid.New()
	}
	stored := *shop
	r.shops[shop.ID] = &stored
	return nil
}

func (r *memShopRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	shop, ok := r.shops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *shop
	return &found, nil
}

func (r *memShopRepo) FindBySlug(_ context.Context, businessID uuid.UUID, slug string) (*model.Shop, error) {
	for _, shop := range r.shops {
		if shop.BusinessID == businessID && shop.Slug == slug {
			found := *shop
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memShopRepo) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]model.Shop, error) {
	var shops []model.Shop
	for _, shop := range r.shops {
		if shop.BusinessID == businessID {
			shops = append(shops, *shop)
		}
	}
	return shops, nil
}

func (r *memShopRepo) Save(_ context.Context, shop *model.Shop) error {
	stored := *shop
	r.shops[shop.ID] = &stored
	return nil
}

// --- customer and wallet ---

type memCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
	walletTxs []model.WalletTransaction
}

var _ repository.CustomerRepository = (*memCustomerRepo)(nil)

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *memCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	stored := *customer
	r.customers[customer.ID] = &stored
	return nil
}

func (r *memCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *customer
	return &found, nil
}

func (r *memCustomerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *memCustomerRepo) FindByPhone(_ context.Context, businessID uuid.UUID, phone string) (*model.Customer, error) {
	for _, customer := range r.customers {
		if customer.BusinessID == businessID && customer.Phone == phone {
			found := *customer
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) List(_ context.Context, businessID uuid.UUID, _ string, _, _ int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	for _, customer := range r.customers {
		if customer.BusinessID == businessID {
			customers = append(customers, *customer)
		}
	}
	return customers, int64(len(customers)), nil
}

func (r *memCustomerRepo) Save(_ context.Context, customer *model.Customer) error {
	stored := *customer
	r.customers[customer.ID] = &stored
	return nil
}

func (r *memCustomerRepo) CreateWalletTransaction(_ context.Context, tx *model.WalletTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	r.walletTxs = append(r.walletTxs, *tx)
	return nil
}

func (r *memCustomerRepo) FindWalletTransactionByID(_ context.Context, id uuid.UUID) (*model.WalletTransaction, error) {
	for i := range r.walletTxs {
		if r.walletTxs[i].ID == id {
			found := r.walletTxs[i]
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCustomerRepo) ListWalletTransactions(_ context.Context, customerID uuid.UUID, _, _ int) ([]model.WalletTransaction, int64, error) {
	var txs []model.WalletTransaction
	for _, tx := range r.walletTxs {
		if tx.CustomerID == customerID {
			txs = append(txs, tx)
		}
	}
	return txs, int64(len(txs)), nil
}

// --- product ---

type memProductRepo struct {
	products map[uuid.UUID]*model.Product
	stocks   []model.ShopStock
}

var _ repository.ProductRepository = (*memProductRepo)(nil)

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *memProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *product
	return &found, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, businessID uuid.UUID, sku string) (*model.Product, error) {
	for _, product := range r.products {
		if product.BusinessID == businessID && product.SKU == sku {
			found := *product
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProductRepo) List(_ context.Context, businessID uuid.UUID, _ string, _, _ int) ([]model.Product, int64, error) {
	var products []model.Product
	for _, product := range r.products {
		if product.BusinessID == businessID {
			products = append(products, *product)
		}
	}
	return products, int64(len(products)), nil
}

func (r *memProductRepo) Save(_ context.Context, product *model.Product) error {
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *memProductRepo) UpsertShopStock(_ context.Context, stock *model.ShopStock) error {
	for i := range r.stocks {
		if r.stocks[i].ShopID == stock.ShopID && r.stocks[i].ProductID == stock.ProductID {
			r.stocks[i] = *stock
			return nil
		}
	}
	r.stocks = append(r.stocks, *stock)
	return nil
}

func (r *memProductRepo) ListShopStock(_ context.Context, shopID uuid.UUID) ([]model.ShopStock, error) {
	var stocks []model.ShopStock
	for _, stock := range r.stocks {
		if stock.ShopID == shopID {
			stocks = append(stocks, stock)
		}
	}
	return stocks, nil
}

func (r *memProductRepo) ListStockByProduct(_ context.Context, productID uuid.UUID) ([]model.ShopStock, error) {
	var stocks []model.ShopStock
	for _, stock := range r.stocks {
		if stock.ProductID == productID {
			stocks = append(stocks, stock)
		}
	}
	return stocks, nil
}

// --- purchase ---

type memPurchaseRepo struct {
	purchases map[uuid.UUID]*model.Purchase
	allocated int
}

var _ repository.PurchaseRepository = (*memPurchaseRepo)(nil)

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{purchases: make(map[uuid.UUID]*model.Purchase)}
}

func (r *memPurchaseRepo) Create(_ context.Context, purchase *model.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	for i := range purchase.Items {
		if purchase.Items[i].ID == uuid.Nil {
			purchase.Items[i].ID = uuid.New()
		}
		purchase.Items[i].PurchaseID = purchase.ID
	}
	stored := *purchase
	r.purchases[purchase.ID] = &stored
	return nil
}

func (r *memPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	purchase, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *purchase
	return &found, nil
}

func (r *memPurchaseRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return r.FindByID(ctx, id)
}

func (r *memPurchaseRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return r.FindByID(ctx, id)
}

func (r *memPurchaseRepo) FindByNumber(_ context.Context, businessID uuid.UUID, number string) (*model.Purchase, error) {
	for _, purchase := range r.purchases {
		if purchase.BusinessID == businessID && purchase.Number == number {
			found := *purchase
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPurchaseRepo) List(_ context.Context, filter repository.PurchaseListFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	for _, purchase := range r.purchases {
		if purchase.BusinessID == filter.BusinessID {
			purchases = append(purchases, *purchase)
		}
	}
	return purchases, int64(len(purchases)), nil
}

func (r *memPurchaseRepo) ListPastDue(_ context.Context, businessID uuid.UUID, asOf time.Time) ([]model.Purchase, error) {
	var purchases []model.Purchase
	for _, purchase := range r.purchases {
		if purchase.BusinessID == businessID &&
			purchase.DueDate.Before(asOf) &&
			purchase.OutstandingBalance.IsPositive() &&
			(purchase.Status == model.PurchaseStatusPending || purchase.Status == model.PurchaseStatusActive) {
			purchases = append(purchases, *purchase)
		}
	}
	return purchases, nil
}

func (r *memPurchaseRepo) Save(_ context.Context, purchase *model.Purchase) error {
	stored := *purchase
	r.purchases[purchase.ID] = &stored
	return nil
}

func (r *memPurchaseRepo) AllocateNumber(_ context.Context, prefix string) (string, error) {
	r.allocated++
	return fmt.Sprintf("%s%06d", prefix, r.allocated), nil
}

// --- payment ---

type memPaymentRepo struct {
	payments  map[uuid.UUID]*model.Payment
	order     []uuid.UUID
	purchases *memPurchaseRepo
}

var _ repository.PaymentRepository = (*memPaymentRepo)(nil)

func newMemPaymentRepo(purchases *memPurchaseRepo) *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*model.Payment), purchases: purchases}
}

func (r *memPaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	stored := *payment
	r.payments[payment.ID] = &stored
	r.order = append(r.order, payment.ID)
	return nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *payment
	return &found, nil
}

func (r *memPaymentRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase, ok := r.purchases.purchases[payment.PurchaseID]; ok {
		related := *purchase
		payment.Purchase = &related
	}
	return payment, nil
}

func (r *memPaymentRepo) ListByPurchase(_ context.Context, purchaseID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	for _, id := range r.order {
		if r.payments[id].PurchaseID == purchaseID {
			payments = append(payments, *r.payments[id])
		}
	}
	return payments, nil
}

func (r *memPaymentRepo) List(_ context.Context, filter repository.PaymentListFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	for _, id := range r.order {
		payment := r.payments[id]
		if filter.PurchaseID != nil && payment.PurchaseID != *filter.PurchaseID {
			continue
		}
		payments = append(payments, *payment)
	}
	return payments, int64(len(payments)), nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *model.Payment) error {
	stored := *payment
	r.payments[payment.ID] = &stored
	return nil
}

// --- refund ---

type memRefundRepo struct {
	refunds   map[uuid.UUID]*model.Refund
	order     []uuid.UUID
	allocated int
}

var _ repository.RefundRepository = (*memRefundRepo)(nil)

func newMemRefundRepo() *memRefundRepo {
	return &memRefundRepo{refunds: make(map[uuid.UUID]*model.Refund)}
}

func (r *memRefundRepo) Create(_ context.Context, refund *model.Refund) error {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	stored := *refund
	r.refunds[refund.ID] = &stored
	r.order = append(r.order, refund.ID)
	return nil
}

func (r *memRefundRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Refund, error) {
	refund, ok := r.refunds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *refund
	return &found, nil
}

func (r *memRefundRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Refund, error) {
	return r.FindByID(ctx, id)
}

func (r *memRefundRepo) ListByPurchase(_ context.Context, purchaseID uuid.UUID) ([]model.Refund, error) {
	var refunds []model.Refund
	for _, id := range r.order {
		if r.refunds[id].PurchaseID == purchaseID {
			refunds = append(refunds, *r.refunds[id])
		}
	}
	return refunds, nil
}

func (r *memRefundRepo) List(_ context.Context, filter repository.RefundListFilter) ([]model.Refund, int64, error) {
	var refunds []model.Refund
	for _, id := range r.order {
		if r.refunds[id].BusinessID == filter.BusinessID {
			refunds = append(refunds, *r.refunds[id])
		}
	}
	return refunds, int64(len(refunds)), nil
}

func (r *memRefundRepo) Save(_ context.Context, refund *model.Refund) error {
	stored := *refund
	r.refunds[refund.ID] = &stored
	return nil
}

func (r *memRefundRepo) AllocateNumber(_ context.Context, prefix string) (string, error) {
	r.allocated++
	return fmt.Sprintf("%s%06d", prefix, r.allocated), nil
}

// --- audit ---

type memAuditRepo struct {
	entries []model.AuditLog
}

var _ repository.AuditRepository = (*memAuditRepo)(nil)

func (r *memAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, action string, _, _ int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	for _, entry := range r.entries {
		if action == "" || entry.Action == action {
			logs = append(logs, entry)
		}
	}
	return logs, int64(len(logs)), nil
}

// --- shared test fixture ---

// testEnv wires the fakes behind the real services, seeded with one
// business, shop, customer, and product.
type testEnv struct {
	businessRepo *memBusinessRepo
	shopRepo     *memShopRepo
	customerRepo *memCustomerRepo
	productRepo  *memProductRepo
	purchaseRepo *memPurchaseRepo
	paymentRepo  *memPaymentRepo
	refundRepo   *memRefundRepo
	auditRepo    *memAuditRepo
	txManager    memTxManager

	business *model.Business
	shop     *model.Shop
	customer *model.Customer
	product  *model.Product
}

func newTestEnv() *testEnv {
	env := &testEnv{
		businessRepo: newMemBusinessRepo(),
		shopRepo:     newMemShopRepo(),
		customerRepo: newMemCustomerRepo(),
		productRepo:  newMemProductRepo(),
		purchaseRepo: newMemPurchaseRepo(),
		refundRepo:   newMemRefundRepo(),
		auditRepo:    &memAuditRepo{},
	}
	env.paymentRepo = newMemPaymentRepo(env.purchaseRepo)

	ctx := context.Background()
	env.business = &model.Business{
		ID:                  uuid.New(),
		Name:                "Acme Traders",
		Code:                "ACME",
		InterestType:        model.InterestTypeFlat,
		InterestRate:        decimal.Zero,
		DefaultInstallments: 1,
		DefaultTenorDays:    30,
	}
	_ = env.businessRepo.Create(ctx, env.business)

	env.shop = &model.Shop{
		ID:         uuid.New(),
		BusinessID: env.business.ID,
		Slug:       "main-street",
		Name:       "Main Street",
		IsActive:   true,
	}
	_ = env.shopRepo.Create(ctx, env.shop)

	env.customer = &model.Customer{
		ID:         uuid.New(),
		BusinessID: env.business.ID,
		Name:       "Ama Mensah",
		Phone:      "+233200000001",
	}
	_ = env.customerRepo.Create(ctx, env.customer)

	env.product = &model.Product{
		ID:         uuid.New(),
		BusinessID: env.business.ID,
		SKU:        "TV-55",
		Name:       "55in LED TV",
		UnitPrice:  decimal.RequireFromString("500.00"),
		IsActive:   true,
	}
	_ = env.productRepo.Create(ctx, env.product)

	return env
}

func (e *testEnv) purchaseService() PurchaseService {
	return NewPurchaseService(
		e.purchaseRepo, e.paymentRepo, e.refundRepo,
		e.customerRepo, e.shopRepo, e.productRepo, e.businessRepo,
		e.auditRepo, e.txManager, nil,
	)
}

func (e *testEnv) paymentService() PaymentService {
	return NewPaymentService(
		e.paymentRepo, e.purchaseRepo, e.refundRepo, e.customerRepo,
		e.auditRepo, e.txManager, nil,
	)
}

func (e *testEnv) businessService() BusinessService {
	return NewBusinessService(e.businessRepo, e.auditRepo, e.txManager)
}

func (e *testEnv) admin() Actor {
	return Actor{UserID: uuid.New(), Role: model.RoleBusinessAdmin}
}

func (e *testEnv) collector() Actor {
	return Actor{UserID: uuid.New(), Role: model.RoleCollector}
}
