package database

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/safo-124/high-purchase-sub010/internal/model"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Business{},
		&model.Shop{},
		&model.User{},
		&model.RefreshToken{},
		&model.Customer{},
		&model.WalletTransaction{},
		&model.Product{},
		&model.ShopStock{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.Payment{},
		&model.Refund{},
		&model.RefundItem{},
		&model.Waybill{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Bootstrap creates the initial business and its admin account from the
// BOOTSTRAP_* environment variables on first start. It is a no-op when
// the variables are unset or the business code already exists, so it is
// safe to run on every boot.
func Bootstrap(db *gorm.DB) error {
	code := os.Getenv("BOOTSTRAP_BUSINESS_CODE")
	if code == "" {
		return nil
	}

	var existing model.Business
	err := db.Where("code = ?", code).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	name := os.Getenv("BOOTSTRAP_BUSINESS_NAME")
	if name == "" {
		name = code
	}
	adminEmail := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	adminPassword := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD are required to bootstrap a business")
	}

	installments := 1
	if v := os.Getenv("BOOTSTRAP_DEFAULT_INSTALLMENTS"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			installments = n
		}
	}

	interestType := model.InterestTypeFlat
	if v := os.Getenv("BOOTSTRAP_INTEREST_TYPE"); v != "" {
		if v != model.InterestTypeFlat && v != model.InterestTypeMonthly {
			return errors.New("BOOTSTRAP_INTEREST_TYPE must be FLAT or MONTHLY")
		}
		interestType = v
	}
	interestRate := decimal.Zero
	if v := os.Getenv("BOOTSTRAP_INTEREST_RATE"); v != "" {
		rate, convErr := decimal.NewFromString(v)
		if convErr != nil || rate.IsNegative() {
			return errors.New("BOOTSTRAP_INTEREST_RATE must be a non-negative decimal")
		}
		interestRate = rate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		business := model.Business{
			Name:                name,
			Code:                code,
			InterestType:        interestType,
			InterestRate:        interestRate,
			DefaultInstallments: installments,
			DefaultTenorDays:    30,
		}
		if err := tx.Create(&business).Error; err != nil {
			return err
		}

		admin := model.User{
			BusinessID: business.ID,
			Username:   adminEmail,
			Email:      adminEmail,
			Phone:      os.Getenv("BOOTSTRAP_ADMIN_PHONE"),
			Password:   string(hash),
			Role:       model.RoleBusinessAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		log.Printf("Bootstrapped business %s with admin %s", code, adminEmail)
		return nil
	})
}
