package stores

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

// Repository exposes the slice of store data this core needs: the tenant row
// and its short code used in document numbers. Profile management lives in
// the platform's store service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	CodeFor(ctx context.Context, id uuid.UUID) (string, error)
	Create(ctx context.Context, store *models.Store) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a store repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return &store, nil
}

// CodeFor returns the store's short code, normalized to upper case.
func (r *repository) CodeFor(ctx context.Context, id uuid.UUID) (string, error) {
	store, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(store.Code), nil
}

func (r *repository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	store.Code = strings.ToUpper(strings.TrimSpace(store.Code))
	if store.Code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store code required")
	}
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return nil
}
