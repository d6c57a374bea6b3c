package numbering

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

// Repository owns the per-store-per-year counter rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextSequence(ctx context.Context, storeID uuid.UUID, kind enums.NumberKind, year int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a counter repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextSequence increments and returns the counter in one statement, so
// concurrent issuance never gaps or repeats without taking a lock.
func (r *repository) NextSequence(ctx context.Context, storeID uuid.UUID, kind enums.NumberKind, year int) (int64, error) {
	const stmt = `
INSERT INTO number_counters (store_id, kind, year, sequence, updated_at)
VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT (store_id, kind, year)
DO UPDATE SET sequence = number_counters.sequence + 1, updated_at = CURRENT_TIMESTAMP
RETURNING sequence`

	var sequence int64
	err := r.db.WithContext(ctx).
		Raw(stmt, storeID, kind, year).
		Scan(&sequence).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment number counter")
	}
	return sequence, nil
}
