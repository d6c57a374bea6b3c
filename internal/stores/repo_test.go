package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryCodeFor(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	store := &models.Store{Code: "acme", Name: "Acme Outlet"}
	require.NoError(t, repo.Create(ctx, store))

	code, err := repo.CodeFor(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME", code)

	_, err = repo.CodeFor(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryCreate_requiresCode(t *testing.T) {
	db := setupStoresTestDB(t)
	repo := NewRepository(db)

	err := repo.Create(context.Background(), &models.Store{Name: "No Code"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
