package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/pagination"
)

// Filters narrow ledger listings. Zero values mean "no filter" except for
// StoreID, which is always required: every read is tenant-scoped.
type Filters struct {
	StoreID    uuid.UUID
	EntityType enums.PayoutEntityType
	EntityID   uuid.UUID
	Status     enums.PayoutStatus
}

// StatusTotals is the summary fold: net cents per lifecycle status.
type StatusTotals struct {
	PendingCents  money.Cents `json:"pending_cents"`
	EligibleCents money.Cents `json:"eligible_cents"`
	PaidCents     money.Cents `json:"paid_cents"`
}

// Repository manages persistence for payout ledger entries. Entries are
// append-only: amounts never change after insert, only status moves.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.PayoutEntry) error
	FindBySource(ctx context.Context, storeID uuid.UUID, entityType enums.PayoutEntityType, entityID uuid.UUID, sourceRef string) (*models.PayoutEntry, error)
	ListEligibleCandidates(ctx context.Context, before time.Time, limit int) ([]models.PayoutEntry, error)
	TransitionToEligible(ctx context.Context, entryID uuid.UUID, at time.Time) (bool, error)
	TransitionToPaid(ctx context.Context, entryID, payoutRunID uuid.UUID, at time.Time) (bool, error)
	FindByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.PayoutEntry, error)
	List(ctx context.Context, filters Filters, params pagination.Params) ([]models.PayoutEntry, int64, error)
	SumByStatus(ctx context.Context, storeID uuid.UUID, entityType enums.PayoutEntityType, entityID uuid.UUID) (StatusTotals, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.PayoutEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindBySource(ctx context.Context, storeID uuid.UUID, entityType enums.PayoutEntityType, entityID uuid.UUID, sourceRef string) (*models.PayoutEntry, error) {
	var entry models.PayoutEntry
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND entity_type = ? AND entity_id = ? AND source_ref = ?",
			storeID, entityType, entityID, sourceRef).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entry")
	}
	return &entry, nil
}

// ListEligibleCandidates returns pending entries old enough to leave the
// holding window, oldest first.
func (r *repository) ListEligibleCandidates(ctx context.Context, before time.Time, limit int) ([]models.PayoutEntry, error) {
	var entries []models.PayoutEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at <= ?", enums.PayoutStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list eligibility candidates")
	}
	return entries, nil
}

// TransitionToEligible applies pending→eligible only if the entry is still
// pending. A false return means another sweeper won the race.
func (r *repository) TransitionToEligible(ctx context.Context, entryID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutEntry{}).
		Where("id = ? AND status = ?", entryID, enums.PayoutStatusPending).
		Updates(map[string]any{
			"status":      enums.PayoutStatusEligible,
			"eligible_at": at,
		})
	if result.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark entry eligible")
	}
	return result.RowsAffected == 1, nil
}

// TransitionToPaid applies eligible→paid keyed to the payout run. A false
// return means the entry was not eligible.
func (r *repository) TransitionToPaid(ctx context.Context, entryID, payoutRunID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutEntry{}).
		Where("id = ? AND status = ?", entryID, enums.PayoutStatusEligible).
		Updates(map[string]any{
			"status":        enums.PayoutStatusPaid,
			"payout_run_id": payoutRunID,
			"paid_at":       at,
		})
	if result.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "mark entry paid")
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) FindByIDs(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) ([]models.PayoutEntry, error) {
	var entries []models.PayoutEntry
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND id IN ?", storeID, ids).
		Find(&entries).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entries")
	}
	return entries, nil
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params) ([]models.PayoutEntry, int64, error) {
	if filters.StoreID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.PayoutEntry{}).
		Where("store_id = ?", filters.StoreID)
	if filters.EntityType != "" {
		query = query.Where("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != uuid.Nil {
		query = query.Where("entity_id = ?", filters.EntityID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ledger entries")
	}

	var entries []models.PayoutEntry
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, total, nil
}

// SumByStatus folds the entity's entries into per-status totals in SQL.
// Negative adjustments net against earnings inside each bucket.
func (r *repository) SumByStatus(ctx context.Context, storeID uuid.UUID, entityType enums.PayoutEntityType, entityID uuid.UUID) (StatusTotals, error) {
	rows := []struct {
		Status enums.PayoutStatus
		Total  int64
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.PayoutEntry{}).
		Select("status, COALESCE(SUM(amount_cents), 0) AS total").
		Where("store_id = ? AND entity_type = ? AND entity_id = ?", storeID, entityType, entityID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusTotals{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum ledger entries")
	}

	var totals StatusTotals
	for _, row := range rows {
		switch row.Status {
		case enums.PayoutStatusPending:
			totals.PendingCents = money.Cents(row.Total)
		case enums.PayoutStatusEligible:
			totals.EligibleCents = money.Cents(row.Total)
		case enums.PayoutStatusPaid:
			totals.PaidCents = money.Cents(row.Total)
		}
	}
	return totals, nil
}
