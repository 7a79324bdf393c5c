package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safo-124/high-purchase-sub010/internal/ledger"
	"github.com/safo-124/high-purchase-sub010/internal/model"
)

func TestUpdatePolicyPersistsAndAudits(t *testing.T) {
	env := newTestEnv()
	svc := env.businessService()

	monthly := model.InterestTypeMonthly
	rate := "0.05"
	installments := 6
	resp, err := svc.UpdatePolicy(context.Background(), env.business.ID, UpdateBusinessPolicyRequest{
		InterestType:        &monthly,
		InterestRate:        &rate,
		DefaultInstallments: &installments,
	}, env.admin())
	require.NoError(t, err)

	assert.Equal(t, model.InterestTypeMonthly, resp.InterestType)
	assert.Equal(t, "0.05", resp.InterestRate)
	assert.Equal(t, 6, resp.DefaultInstallments)
	assert.Equal(t, 30, resp.DefaultTenorDays) // untouched field keeps its value

	stored := env.businessRepo.businesses[env.business.ID]
	assert.Equal(t, model.InterestTypeMonthly, stored.InterestType)
	assert.Equal(t, "0.05", stored.InterestRate.String())
	assert.Equal(t, 1, env.businessRepo.saves)

	require.Len(t, env.auditRepo.entries, 1)
	assert.Equal(t, model.ActionUpdateBusinessPolicy, env.auditRepo.entries[0].Action)
	assert.Equal(t, env.business.Code, env.auditRepo.entries[0].EntityName)
}

func TestUpdatePolicyRejectsNegativeRate(t *testing.T) {
	env := newTestEnv()
	svc := env.businessService()

	rate := "-0.01"
	_, err := svc.UpdatePolicy(context.Background(), env.business.ID, UpdateBusinessPolicyRequest{
		InterestRate: &rate,
	}, env.admin())
	require.Error(t, err)
	var validation *ledger.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Zero(t, env.businessRepo.saves)
}

func TestGetBusinessUnknownID(t *testing.T) {
	env := newTestEnv()

	_, err := env.businessService().GetBusiness(context.Background(), uuid.New())
	require.Error(t, err)
	var missing *ledger.NotFoundError
	assert.ErrorAs(t, err, &missing)
}
