package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/vendaro/payout-core/pkg/db"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/metrics"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/outbox"
	"github.com/vendaro/payout-core/pkg/outbox/payloads"
	"github.com/vendaro/payout-core/pkg/pagination"
	"github.com/vendaro/payout-core/pkg/validate"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the payout ledger operations.
type Service interface {
	RecordEarning(ctx context.Context, input RecordEarningInput) (*models.PayoutEntry, error)
	RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*models.PayoutEntry, error)
	RecordAdjustmentInTx(ctx context.Context, tx *gorm.DB, input RecordAdjustmentInput) (*models.PayoutEntry, error)
	MarkEligible(ctx context.Context, input MarkEligibleInput) ([]models.PayoutEntry, error)
	MarkPaid(ctx context.Context, input MarkPaidInput) error
	List(ctx context.Context, input ListInput) ([]models.PayoutEntry, pagination.Page, error)
	Summary(ctx context.Context, input SummaryInput) (*StatusTotals, error)
}

// RecordEarningInput captures one earning event from an order settlement.
// SourceRef is the idempotency key together with the entity identity:
// redelivered triggers with the same ref reuse the existing entry.
type RecordEarningInput struct {
	StoreID     uuid.UUID              `json:"store_id" validate:"required"`
	EntityType  enums.PayoutEntityType `json:"entity_type" validate:"required,oneof=supplier reseller"`
	EntityID    uuid.UUID              `json:"entity_id" validate:"required"`
	OrderID     uuid.UUID              `json:"order_id" validate:"required"`
	SourceRef   string                 `json:"source_ref" validate:"required"`
	AmountCents money.Cents            `json:"amount_cents" validate:"min=0"`
}

// RecordAdjustmentInput captures a correction entry; amount may be negative.
type RecordAdjustmentInput struct {
	StoreID     uuid.UUID              `json:"store_id" validate:"required"`
	EntityType  enums.PayoutEntityType `json:"entity_type" validate:"required,oneof=supplier reseller"`
	EntityID    uuid.UUID              `json:"entity_id" validate:"required"`
	OrderID     uuid.UUID              `json:"order_id" validate:"required"`
	SourceRef   string                 `json:"source_ref" validate:"required"`
	AmountCents money.Cents            `json:"amount_cents"`
	Reason      string                 `json:"reason"`
}

// MarkEligibleInput bounds one eligibility sweep.
type MarkEligibleInput struct {
	Before    time.Time `json:"before" validate:"required"`
	BatchSize int       `json:"batch_size" validate:"min=1"`
}

// MarkPaidInput settles a set of eligible entries under one payout run.
type MarkPaidInput struct {
	StoreID     uuid.UUID   `json:"store_id" validate:"required"`
	PayoutRunID uuid.UUID   `json:"payout_run_id" validate:"required"`
	EntryIDs    []uuid.UUID `json:"entry_ids" validate:"required,min=1"`
}

// ListInput is a filtered, paginated ledger query.
type ListInput struct {
	Filters Filters
	Page    pagination.Params
}

// SummaryInput scopes the summary fold to one entity within one store.
type SummaryInput struct {
	StoreID    uuid.UUID              `json:"store_id" validate:"required"`
	EntityType enums.PayoutEntityType `json:"entity_type" validate:"required,oneof=supplier reseller"`
	EntityID   uuid.UUID              `json:"entity_id" validate:"required"`
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.LedgerMetrics
	now     func() time.Time
}

// NewService wires a ledger service with the required dependencies. Metrics
// may be nil in tests.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, m *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, metrics: m, now: time.Now}, nil
}

func (s *service) RecordEarning(ctx context.Context, input RecordEarningInput) (*models.PayoutEntry, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	entry := &models.PayoutEntry{
		StoreID:     input.StoreID,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		OrderID:     input.OrderID,
		SourceRef:   input.SourceRef,
		AmountCents: input.AmountCents,
		Status:      enums.PayoutStatusPending,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, entry); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventEarningRecorded,
			AggregateType: enums.OutboxAggregatePayoutEntry,
			AggregateID:   entry.ID,
			Version:       1,
			Data: payloads.EarningRecordedEvent{
				EntryID:     entry.ID,
				StoreID:     entry.StoreID,
				EntityType:  entry.EntityType,
				EntityID:    entry.EntityID,
				OrderID:     entry.OrderID,
				SourceRef:   entry.SourceRef,
				AmountCents: int64(entry.AmountCents),
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_payout_entries_source") {
			return s.repo.FindBySource(ctx, input.StoreID, input.EntityType, input.EntityID, input.SourceRef)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record earning")
	}

	s.metrics.IncEntry("earning", input.EntityType.String())
	return entry, nil
}

func (s *service) RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*models.PayoutEntry, error) {
	var entry *models.PayoutEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.RecordAdjustmentInTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordAdjustmentInTx writes the correction inside the caller's
// transaction, so an RMA refund and its clawbacks commit atomically.
func (s *service) RecordAdjustmentInTx(ctx context.Context, tx *gorm.DB, input RecordAdjustmentInput) (*models.PayoutEntry, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}

	entry := &models.PayoutEntry{
		StoreID:     input.StoreID,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		OrderID:     input.OrderID,
		SourceRef:   input.SourceRef,
		AmountCents: input.AmountCents,
		Status:      enums.PayoutStatusPending,
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, entry); err != nil {
		// A redelivered refund trigger re-sends the same source ref; the
		// first adjustment stands.
		if dbpkg.IsUniqueViolation(err, "ux_payout_entries_source") {
			return repo.FindBySource(ctx, input.StoreID, input.EntityType, input.EntityID, input.SourceRef)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record adjustment")
	}

	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.OutboxEventAdjustmentRecorded,
		AggregateType: enums.OutboxAggregatePayoutEntry,
		AggregateID:   entry.ID,
		Version:       1,
		Data: payloads.AdjustmentRecordedEvent{
			EntryID:     entry.ID,
			StoreID:     entry.StoreID,
			EntityType:  entry.EntityType,
			EntityID:    entry.EntityID,
			SourceRef:   entry.SourceRef,
			AmountCents: int64(entry.AmountCents),
			Reason:      input.Reason,
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record adjustment")
	}

	s.metrics.IncEntry("adjustment", input.EntityType.String())
	return entry, nil
}

// MarkEligible sweeps pending entries that aged out of the holding window.
// Each transition is conditional on the entry still being pending, so
// concurrent sweeps never double-transition; losers of a race are simply
// dropped from the returned set.
func (s *service) MarkEligible(ctx context.Context, input MarkEligibleInput) ([]models.PayoutEntry, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListEligibleCandidates(ctx, input.Before, input.BatchSize)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	transitioned := make([]models.PayoutEntry, 0, len(candidates))
	for _, entry := range candidates {
		won, err := s.repo.TransitionToEligible(ctx, entry.ID, now)
		if err != nil {
			return transitioned, err
		}
		if !won {
			continue
		}
		entry.Status = enums.PayoutStatusEligible
		entry.EligibleAt = &now
		transitioned = append(transitioned, entry)
		s.metrics.IncTransition(enums.PayoutStatusEligible.String())
	}
	return transitioned, nil
}

// MarkPaid settles the run's entries in one transaction. Any entry not
// currently eligible fails the whole run with a state conflict so a payout
// is never partially recorded.
func (s *service) MarkPaid(ctx context.Context, input MarkPaidInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}

	// Duplicate IDs would collapse in the lookup and read as missing
	// entries, so each entry is settled exactly once.
	entryIDs := make([]uuid.UUID, 0, len(input.EntryIDs))
	seen := make(map[uuid.UUID]struct{}, len(input.EntryIDs))
	for _, id := range input.EntryIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		entryIDs = append(entryIDs, id)
	}

	now := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entries, err := repo.FindByIDs(ctx, input.StoreID, entryIDs)
		if err != nil {
			return err
		}
		if len(entries) != len(entryIDs) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "one or more ledger entries not found")
		}

		var total int64
		for _, entry := range entries {
			won, err := repo.TransitionToPaid(ctx, entry.ID, input.PayoutRunID, now)
			if err != nil {
				return err
			}
			if !won {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("entry %s is not eligible for payout", entry.ID))
			}
			total += int64(entry.AmountCents)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventEntriesPaid,
			AggregateType: enums.OutboxAggregatePayoutRun,
			AggregateID:   input.PayoutRunID,
			Version:       1,
			Data: payloads.EntriesPaidEvent{
				PayoutRunID: input.PayoutRunID,
				StoreID:     input.StoreID,
				EntryIDs:    entryIDs,
				TotalCents:  total,
				PaidAt:      now,
			},
		})
	})
	if err != nil {
		return err
	}

	for range entryIDs {
		s.metrics.IncTransition(enums.PayoutStatusPaid.String())
	}
	return nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.PayoutEntry, pagination.Page, error) {
	params := input.Page.Normalize()
	entries, total, err := s.repo.List(ctx, input.Filters, params)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return entries, pagination.NewPage(params, total), nil
}

func (s *service) Summary(ctx context.Context, input SummaryInput) (*StatusTotals, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	totals, err := s.repo.SumByStatus(ctx, input.StoreID, input.EntityType, input.EntityID)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
