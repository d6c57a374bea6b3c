package shippingrules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

// Repository manages persistence for return-shipping rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rule *models.ReturnShippingRule) error
	Deactivate(ctx context.Context, storeID, ruleID uuid.UUID) error
	ListActive(ctx context.Context, storeID uuid.UUID) ([]models.ReturnShippingRule, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipping rule repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rule *models.ReturnShippingRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping rule")
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, storeID, ruleID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReturnShippingRule{}).
		Where("store_id = ? AND id = ? AND active", storeID, ruleID).
		Update("active", false)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "deactivate shipping rule")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "active shipping rule not found")
	}
	return nil
}

func (r *repository) ListActive(ctx context.Context, storeID uuid.UUID) ([]models.ReturnShippingRule, error) {
	var rules []models.ReturnShippingRule
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND active", storeID).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping rules")
	}
	return rules, nil
}
