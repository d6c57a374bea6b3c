package rma

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/pagination"
)

// Repository manages persistence for RMAs and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rma *models.RMA) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.RMA, error)
	// Transition applies from→to only if the row is still in one of the
	// from states. A false return means the caller lost the race or the
	// RMA is in the wrong state.
	Transition(ctx context.Context, storeID, id uuid.UUID, from []enums.RMAStatus, to enums.RMAStatus, stamps map[string]any) (bool, error)
	SaveItem(ctx context.Context, item *models.RMAItem) error
	CreateCreditNote(ctx context.Context, note *models.CreditNote) error
	List(ctx context.Context, input ListInput, params pagination.Params) ([]models.RMA, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an RMA repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rma *models.RMA) error {
	if rma.ID == uuid.Nil {
		rma.ID = uuid.New()
	}
	for i := range rma.Items {
		if rma.Items[i].ID == uuid.Nil {
			rma.Items[i].ID = uuid.New()
		}
		rma.Items[i].RMAID = rma.ID
	}
	return r.db.WithContext(ctx).Create(rma).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.RMA, error) {
	var rma models.RMA
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ? AND id = ?", storeID, id).
		First(&rma).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rma not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rma")
	}
	return &rma, nil
}

func (r *repository) Transition(ctx context.Context, storeID, id uuid.UUID, from []enums.RMAStatus, to enums.RMAStatus, stamps map[string]any) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for column, value := range stamps {
		updates[column] = value
	}

	result := r.db.WithContext(ctx).
		Model(&models.RMA{}).
		Where("store_id = ? AND id = ? AND status IN ?", storeID, id, from).
		Updates(updates)
	if result.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "transition rma")
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) SaveItem(ctx context.Context, item *models.RMAItem) error {
	return r.db.WithContext(ctx).
		Model(&models.RMAItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"refund_cents":    item.RefundCents,
			"return_shipping": item.ReturnShipping,
		}).Error
}

func (r *repository) CreateCreditNote(ctx context.Context, note *models.CreditNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *repository) List(ctx context.Context, input ListInput, params pagination.Params) ([]models.RMA, int64, error) {
	if input.StoreID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.RMA{}).
		Where("store_id = ?", input.StoreID)
	if input.Status != "" {
		query = query.Where("status = ?", input.Status)
	}
	if input.OrderID != uuid.Nil {
		query = query.Where("order_id = ?", input.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count rmas")
	}

	var rmas []models.RMA
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rmas).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rmas")
	}
	return rmas, total, nil
}
