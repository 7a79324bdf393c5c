package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// brokenConnector fails every connection attempt, standing in for a
// database that went away mid-request.
type brokenConnector struct{}

func (brokenConnector) Connect(context.Context) (driver.Conn, error) {
	return nil, errors.New("connection refused")
}

func (brokenConnector) Driver() driver.Driver { return nil }

func newBrokenDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB := sql.OpenDB(brokenConnector{})
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return db
}

// A failed advisory lock must abort number allocation instead of letting
// the count proceed unguarded.
func TestAllocateNumberFailsWhenAdvisoryLockFails(t *testing.T) {
	db := newBrokenDB(t)

	number, err := NewPurchaseRepository(db).AllocateNumber(context.Background(), "HP-ACME-")
	require.Error(t, err)
	assert.Empty(t, number)
}

func TestRefundAllocateNumberFailsWhenAdvisoryLockFails(t *testing.T) {
	db := newBrokenDB(t)

	number, err := NewRefundRepository(db).AllocateNumber(context.Background(), "RF-ACME-")
	require.Error(t, err)
	assert.Empty(t, number)
}
