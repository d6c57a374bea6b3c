package shippingrules

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/money"
)

func setupRulesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS return_shipping_rules (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  scope TEXT NOT NULL,
  variant_id TEXT,
  category_id TEXT,
  payer TEXT NOT NULL,
  charge_type TEXT NOT NULL,
  charge_value INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func createRule(t *testing.T, repo Repository, storeID uuid.UUID, scope enums.RuleScope, variantID, categoryID *uuid.UUID, chargeType enums.ChargeType, chargeValue int64) *models.ReturnShippingRule {
	t.Helper()

	rule := &models.ReturnShippingRule{
		StoreID:     storeID,
		Scope:       scope,
		VariantID:   variantID,
		CategoryID:  categoryID,
		Payer:       enums.ShippingPayerCustomer,
		ChargeType:  chargeType,
		ChargeValue: chargeValue,
		Active:      true,
	}
	require.NoError(t, repo.Create(context.Background(), rule))
	return rule
}

func TestResolverPrecedence(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	resolver, err := NewResolver(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	variantID := uuid.New()
	categoryID := uuid.New()

	createRule(t, repo, storeID, enums.RuleScopeGlobal, nil, nil, enums.ChargeTypeFlat, 500)
	createRule(t, repo, storeID, enums.RuleScopeCategory, nil, &categoryID, enums.ChargeTypeFlat, 300)
	skuRule := createRule(t, repo, storeID, enums.RuleScopeSKU, &variantID, nil, enums.ChargeTypeFlat, 150)

	ctx := context.Background()

	// SKU rule wins when the variant matches.
	shipping, err := resolver.Resolve(ctx, storeID, variantID, &categoryID, 5000)
	require.NoError(t, err)
	require.NotNil(t, shipping)
	assert.Equal(t, skuRule.ID, shipping.RuleSnapshot.RuleID)
	assert.Equal(t, money.Cents(150), shipping.AmountCents)

	// Category rule applies to other variants in the category.
	shipping, err = resolver.Resolve(ctx, storeID, uuid.New(), &categoryID, 5000)
	require.NoError(t, err)
	require.NotNil(t, shipping)
	assert.Equal(t, enums.RuleScopeCategory, shipping.RuleSnapshot.Scope)
	assert.Equal(t, money.Cents(300), shipping.AmountCents)

	// Global rule is the fallback.
	shipping, err = resolver.Resolve(ctx, storeID, uuid.New(), nil, 5000)
	require.NoError(t, err)
	require.NotNil(t, shipping)
	assert.Equal(t, enums.RuleScopeGlobal, shipping.RuleSnapshot.Scope)
	assert.Equal(t, money.Cents(500), shipping.AmountCents)

	// Other stores never see these rules.
	shipping, err = resolver.Resolve(ctx, uuid.New(), variantID, &categoryID, 5000)
	require.NoError(t, err)
	assert.Nil(t, shipping)
}

func TestResolverPercentCharge(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	resolver, err := NewResolver(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	createRule(t, repo, storeID, enums.RuleScopeGlobal, nil, nil, enums.ChargeTypePercent, 10)

	shipping, err := resolver.Resolve(context.Background(), storeID, uuid.New(), nil, 8050)
	require.NoError(t, err)
	require.NotNil(t, shipping)
	assert.Equal(t, money.Cents(805), shipping.AmountCents)
}

func TestRepositoryDeactivate(t *testing.T) {
	db := setupRulesTestDB(t)
	repo := NewRepository(db)
	resolver, err := NewResolver(repo)
	require.NoError(t, err)

	storeID := uuid.New()
	rule := createRule(t, repo, storeID, enums.RuleScopeGlobal, nil, nil, enums.ChargeTypeFlat, 500)

	ctx := context.Background()
	require.NoError(t, repo.Deactivate(ctx, storeID, rule.ID))

	shipping, err := resolver.Resolve(ctx, storeID, uuid.New(), nil, 5000)
	require.NoError(t, err)
	assert.Nil(t, shipping)

	err = repo.Deactivate(ctx, storeID, rule.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
