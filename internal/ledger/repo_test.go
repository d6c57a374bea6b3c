package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/vendaro/payout-core/pkg/db"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payout_entries (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  source_ref TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payout_run_id TEXT,
  eligible_at DATETIME,
  paid_at DATETIME,
  created_at DATETIME,
  CONSTRAINT ux_payout_entries_source UNIQUE (store_id, entity_type, entity_id, source_ref)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newEntry(storeID, entityID uuid.UUID, sourceRef string, amount money.Cents) *models.PayoutEntry {
	return &models.PayoutEntry{
		StoreID:     storeID,
		EntityType:  enums.PayoutEntityTypeSupplier,
		EntityID:    entityID,
		OrderID:     uuid.New(),
		SourceRef:   sourceRef,
		AmountCents: amount,
		Status:      enums.PayoutStatusPending,
	}
}

func TestRepositoryCreate_duplicateSourceRejected(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	entityID := uuid.New()

	require.NoError(t, repo.Create(ctx, newEntry(storeID, entityID, "order:42", 10000)))

	err := repo.Create(ctx, newEntry(storeID, entityID, "order:42", 10000))
	require.Error(t, err)
	assert.True(t, dbpkg.IsUniqueViolation(err, ""))

	// Same ref for a different entity is a distinct earning.
	require.NoError(t, repo.Create(ctx, newEntry(storeID, uuid.New(), "order:42", 2500)))
}

func TestRepositoryTransitions(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	entry := newEntry(uuid.New(), uuid.New(), "order:7", 5000)
	require.NoError(t, repo.Create(ctx, entry))

	// Paid straight from pending must not apply.
	won, err := repo.TransitionToPaid(ctx, entry.ID, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	won, err = repo.TransitionToEligible(ctx, entry.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	// Second eligibility sweep loses the conditional update.
	won, err = repo.TransitionToEligible(ctx, entry.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	runID := uuid.New()
	won, err = repo.TransitionToPaid(ctx, entry.ID, runID, time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	var reloaded models.PayoutEntry
	require.NoError(t, db.First(&reloaded, "id = ?", entry.ID).Error)
	assert.Equal(t, enums.PayoutStatusPaid, reloaded.Status)
	require.NotNil(t, reloaded.PayoutRunID)
	assert.Equal(t, runID, *reloaded.PayoutRunID)
	assert.NotNil(t, reloaded.EligibleAt)
	assert.NotNil(t, reloaded.PaidAt)
}

func TestRepositoryList_filtersAndPaginates(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	supplierID := uuid.New()
	resellerID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		entry := newEntry(storeID, supplierID, uuid.NewString(), money.Cents(1000*(i+1)))
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, entry))
	}
	reseller := newEntry(storeID, resellerID, uuid.NewString(), 9999)
	reseller.EntityType = enums.PayoutEntityTypeReseller
	reseller.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, reseller))

	entries, total, err := repo.List(ctx, Filters{
		StoreID:    storeID,
		EntityType: enums.PayoutEntityTypeSupplier,
		EntityID:   supplierID,
	}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, money.Cents(3000), entries[0].AmountCents)
	assert.Equal(t, money.Cents(2000), entries[1].AmountCents)

	entries, total, err = repo.List(ctx, Filters{
		StoreID:    storeID,
		EntityType: enums.PayoutEntityTypeSupplier,
		EntityID:   supplierID,
	}, pagination.Params{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 1)
	assert.Equal(t, money.Cents(1000), entries[0].AmountCents)

	// Cross-store reads are structurally impossible.
	entries, total, err = repo.List(ctx, Filters{StoreID: uuid.New()}, pagination.Params{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)
}

func TestRepositorySumByStatus_netsAdjustments(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	supplierID := uuid.New()

	earning := newEntry(storeID, supplierID, "order:1", 10000)
	require.NoError(t, repo.Create(ctx, earning))

	clawback := newEntry(storeID, supplierID, "rma:1", -3000)
	require.NoError(t, repo.Create(ctx, clawback))

	paid := newEntry(storeID, supplierID, "order:2", 7000)
	paid.Status = enums.PayoutStatusPaid
	require.NoError(t, repo.Create(ctx, paid))

	totals, err := repo.SumByStatus(ctx, storeID, enums.PayoutEntityTypeSupplier, supplierID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(7000), totals.PendingCents)
	assert.Equal(t, money.Cents(0), totals.EligibleCents)
	assert.Equal(t, money.Cents(7000), totals.PaidCents)
}
