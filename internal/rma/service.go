package rma

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/internal/audit"
	"github.com/vendaro/payout-core/internal/ledger"
	dbpkg "github.com/vendaro/payout-core/pkg/db"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/logger"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/outbox"
	"github.com/vendaro/payout-core/pkg/outbox/payloads"
	"github.com/vendaro/payout-core/pkg/pagination"
	"github.com/vendaro/payout-core/pkg/types"
	"github.com/vendaro/payout-core/pkg/validate"
)

// Service drives a return authorization through its lifecycle:
// requested → approved → pickup_scheduled → picked_up → received →
// refunded → closed, with rejected as the short-circuit terminal.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.RMA, error)
	Approve(ctx context.Context, input ApproveInput) (*models.RMA, error)
	Reject(ctx context.Context, input RejectInput) error
	SchedulePickup(ctx context.Context, input TransitionInput) error
	MarkPickedUp(ctx context.Context, input TransitionInput) error
	Receive(ctx context.Context, input TransitionInput) error
	Refund(ctx context.Context, input RefundInput) (*models.RMA, error)
	Close(ctx context.Context, input TransitionInput) error
	Get(ctx context.Context, storeID, id uuid.UUID) (*models.RMA, error)
	List(ctx context.Context, input ListInput, params pagination.Params) ([]models.RMA, pagination.Page, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	numbers numberIssuer
	rules   ruleResolver
	policy  refundPolicy
	ledger  adjustmentRecorder
	orders  OrderReader
	catalog CatalogReader
	audit   auditTrail
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires an RMA service with the required collaborators.
func NewService(
	repo Repository,
	tx txRunner,
	ob outboxPublisher,
	numbers numberIssuer,
	rules ruleResolver,
	policy refundPolicy,
	ledgerSvc adjustmentRecorder,
	orders OrderReader,
	catalog CatalogReader,
	trail auditTrail,
	logg *logger.Logger,
) (Service, error) {
	switch {
	case repo == nil:
		return nil, fmt.Errorf("rma repository required")
	case tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case ob == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case numbers == nil:
		return nil, fmt.Errorf("number issuer required")
	case rules == nil:
		return nil, fmt.Errorf("shipping rule resolver required")
	case policy == nil:
		return nil, fmt.Errorf("refund policy required")
	case ledgerSvc == nil:
		return nil, fmt.Errorf("ledger service required")
	case orders == nil:
		return nil, fmt.Errorf("order reader required")
	case catalog == nil:
		return nil, fmt.Errorf("catalog reader required")
	case trail == nil:
		return nil, fmt.Errorf("audit trail required")
	case logg == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  ob,
		numbers: numbers,
		rules:   rules,
		policy:  policy,
		ledger:  ledgerSvc,
		orders:  orders,
		catalog: catalog,
		audit:   trail,
		logg:    logg,
		now:     time.Now,
	}, nil
}

type lineKey struct {
	variant uuid.UUID
	origin  uuid.UUID
}

func (s *service) Request(ctx context.Context, input RequestInput) (*models.RMA, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	// Quantities are checked in aggregate per variant and origin so split
	// lines cannot jointly exceed what the order allows.
	requested := make(map[lineKey]int, len(input.Items))
	for _, item := range input.Items {
		requested[lineKey{variant: item.VariantID, origin: item.OriginID}] += item.Quantity
	}

	items := make([]models.RMAItem, 0, len(input.Items))
	for _, item := range input.Items {
		returnable, err := s.orders.ReturnableQuantity(ctx, input.StoreID, input.OrderID, item.VariantID, item.OriginID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check returnable quantity")
		}
		if total := requested[lineKey{variant: item.VariantID, origin: item.OriginID}]; total > returnable {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %d exceeds returnable %d for variant %s", total, returnable, item.VariantID))
		}

		price, err := s.catalog.OriginalUnitPrice(ctx, input.StoreID, input.OrderID, item.VariantID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load original price")
		}

		items = append(items, models.RMAItem{
			VariantID:          item.VariantID,
			OriginID:           item.OriginID,
			ShipmentID:         item.ShipmentID,
			Quantity:           item.Quantity,
			Reason:             item.Reason,
			Condition:          item.Condition,
			OriginalPriceCents: price,
		})
	}

	var rma *models.RMA
	err := dbpkg.WithConflictRetry(ctx, func(ctx context.Context) error {
		number, err := s.numbers.Next(ctx, input.StoreID, enums.NumberKindRMA)
		if err != nil {
			return err
		}
		rma = &models.RMA{
			StoreID:      input.StoreID,
			OrderID:      input.OrderID,
			RMANumber:    number,
			CustomerID:   input.CustomerID,
			Status:       enums.RMAStatusRequested,
			RefundMethod: input.RefundMethod,
			Metadata:     input.Metadata,
			Items:        append([]models.RMAItem(nil), items...),
		}
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).Create(ctx, rma); err != nil {
				if dbpkg.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "rma number collision")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rma")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, input.StoreID, input.Actor, "rma.request", rma.ID, nil, statusPtr(enums.RMAStatusRequested), types.JSONMap{
		"rma_number": rma.RMANumber,
		"order_id":   rma.OrderID.String(),
	})
	logCtx := s.logg.WithRMANumber(s.logg.WithStoreID(ctx, input.StoreID.String()), rma.RMANumber)
	s.logg.Info(logCtx, "rma requested")
	return rma, nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.RMA, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var approved *models.RMA
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rma, err := repo.FindByID(ctx, input.StoreID, input.RMAID)
		if err != nil {
			return err
		}
		if rma.Status != enums.RMAStatusRequested {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot approve rma in state %s", rma.Status))
		}

		var gross, total money.Cents
		var payer enums.ShippingPayer
		for i := range rma.Items {
			item := &rma.Items[i]

			refund, err := s.policy.RefundFor(item.Condition, item.OriginalPriceCents, item.Quantity)
			if err != nil {
				return err
			}

			categoryID, err := s.catalog.CategoryFor(ctx, input.StoreID, item.VariantID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve variant category")
			}
			shipping, err := s.rules.Resolve(ctx, input.StoreID, item.VariantID, categoryID, refund)
			if err != nil {
				return err
			}

			item.RefundCents = refund
			item.ReturnShipping = shipping
			if shipping != nil && payer == "" {
				payer = shipping.Payer
			}
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save item refund")
			}

			gross += money.Cents(int64(item.OriginalPriceCents) * int64(item.Quantity))
			total += refund
		}
		if total > gross {
			return pkgerrors.New(pkgerrors.CodeInvariant,
				fmt.Sprintf("computed refund %s exceeds paid amount %s", total, gross))
		}

		now := s.now().UTC()
		won, err := repo.Transition(ctx, input.StoreID, rma.ID,
			[]enums.RMAStatus{enums.RMAStatusRequested}, enums.RMAStatusApproved,
			map[string]any{
				"approved_by": input.Actor.ID,
				"approved_at": now,
			})
		if err != nil {
			return err
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rma was decided concurrently")
		}
		rma.Status = enums.RMAStatusApproved
		rma.ApprovedBy = &input.Actor.ID
		rma.ApprovedAt = &now

		approved = rma
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventRMAApproved,
			AggregateType: enums.OutboxAggregateRMA,
			AggregateID:   rma.ID,
			Actor:         actorRef(input.Actor),
			Version:       1,
			Data: payloads.RMAApprovedEvent{
				RMAID:         rma.ID,
				RMANumber:     rma.RMANumber,
				StoreID:       rma.StoreID,
				OrderID:       rma.OrderID,
				RefundMethod:  rma.RefundMethod,
				ShippingPayer: payer,
				ApprovedBy:    input.Actor.ID,
				ApprovedAt:    now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, input.StoreID, input.Actor, "rma.approve", approved.ID,
		statusPtr(enums.RMAStatusRequested), statusPtr(enums.RMAStatusApproved),
		types.JSONMap{"rma_number": approved.RMANumber})
	logCtx := s.logg.WithRMANumber(s.logg.WithStoreID(ctx, input.StoreID.String()), approved.RMANumber)
	s.logg.Info(logCtx, "rma approved")
	return approved, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection reason must not be blank")
	}

	var rejected *models.RMA
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rma, err := repo.FindByID(ctx, input.StoreID, input.RMAID)
		if err != nil {
			return err
		}
		if rma.Status != enums.RMAStatusRequested {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot reject rma in state %s", rma.Status))
		}

		now := s.now().UTC()
		won, err := repo.Transition(ctx, input.StoreID, rma.ID,
			[]enums.RMAStatus{enums.RMAStatusRequested}, enums.RMAStatusRejected,
			map[string]any{
				"rejected_by":      input.Actor.ID,
				"rejected_at":      now,
				"rejection_reason": reason,
			})
		if err != nil {
			return err
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rma was decided concurrently")
		}

		rejected = rma
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventRMARejected,
			AggregateType: enums.OutboxAggregateRMA,
			AggregateID:   rma.ID,
			Actor:         actorRef(input.Actor),
			Version:       1,
			Data: payloads.RMARejectedEvent{
				RMAID:      rma.ID,
				RMANumber:  rma.RMANumber,
				StoreID:    rma.StoreID,
				OrderID:    rma.OrderID,
				Reason:     reason,
				RejectedBy: input.Actor.ID,
				RejectedAt: now,
			},
		})
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, input.StoreID, input.Actor, "rma.reject", rejected.ID,
		statusPtr(enums.RMAStatusRequested), statusPtr(enums.RMAStatusRejected),
		types.JSONMap{"rma_number": rejected.RMANumber, "reason": reason})
	return nil
}

func (s *service) SchedulePickup(ctx context.Context, input TransitionInput) error {
	return s.step(ctx, input, "rma.schedule_pickup",
		[]enums.RMAStatus{enums.RMAStatusApproved}, enums.RMAStatusPickupScheduled, nil)
}

func (s *service) MarkPickedUp(ctx context.Context, input TransitionInput) error {
	return s.step(ctx, input, "rma.mark_picked_up",
		[]enums.RMAStatus{enums.RMAStatusPickupScheduled}, enums.RMAStatusPickedUp, nil)
}

// Receive accepts the goods back. Pickup tracking is optional, so receipt is
// allowed from any post-approval pre-receipt state.
func (s *service) Receive(ctx context.Context, input TransitionInput) error {
	return s.step(ctx, input, "rma.receive",
		[]enums.RMAStatus{enums.RMAStatusApproved, enums.RMAStatusPickupScheduled, enums.RMAStatusPickedUp},
		enums.RMAStatusReceived,
		func(now time.Time) map[string]any {
			return map[string]any{"received_at": now}
		})
}

func (s *service) Close(ctx context.Context, input TransitionInput) error {
	return s.step(ctx, input, "rma.close",
		[]enums.RMAStatus{enums.RMAStatusRefunded}, enums.RMAStatusClosed, nil)
}

func (s *service) step(ctx context.Context, input TransitionInput, action string, from []enums.RMAStatus, to enums.RMAStatus, stamps func(time.Time) map[string]any) error {
	if err := validate.Struct(input); err != nil {
		return err
	}

	var before enums.RMAStatus
	var number string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rma, err := repo.FindByID(ctx, input.StoreID, input.RMAID)
		if err != nil {
			return err
		}
		before = rma.Status
		number = rma.RMANumber
		if !statusIn(rma.Status, from) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot apply %s to rma in state %s", action, rma.Status))
		}

		now := s.now().UTC()
		var extra map[string]any
		if stamps != nil {
			extra = stamps(now)
		}
		won, err := repo.Transition(ctx, input.StoreID, rma.ID, from, to, extra)
		if err != nil {
			return err
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rma state changed concurrently")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, input.StoreID, input.Actor, action, input.RMAID,
		statusPtr(before), statusPtr(to), types.JSONMap{"rma_number": number})
	return nil
}

// Refund settles the return: computes the final amount, issues the credit
// note, claws earnings back through the ledger, and hands the disbursement
// to the payment gateway via the outbox.
func (s *service) Refund(ctx context.Context, input RefundInput) (*models.RMA, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	var refunded *models.RMA
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rma, err := repo.FindByID(ctx, input.StoreID, input.RMAID)
		if err != nil {
			return err
		}
		if rma.Status != enums.RMAStatusReceived {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot refund rma in state %s", rma.Status))
		}

		var gross, itemTotal, customerShipping money.Cents
		for _, item := range rma.Items {
			gross += money.Cents(int64(item.OriginalPriceCents) * int64(item.Quantity))
			itemTotal += item.RefundCents
			if item.ReturnShipping != nil && item.ReturnShipping.Payer == enums.ShippingPayerCustomer {
				customerShipping += item.ReturnShipping.AmountCents
			}
		}

		refund := itemTotal - customerShipping
		if refund.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeInvariant,
				fmt.Sprintf("shipping charge %s exceeds refund %s", customerShipping, itemTotal))
		}
		if refund > gross {
			return pkgerrors.New(pkgerrors.CodeInvariant,
				fmt.Sprintf("refund %s exceeds paid amount %s", refund, gross))
		}

		noteNumber, err := s.numbers.Next(ctx, input.StoreID, enums.NumberKindCreditNote)
		if err != nil {
			return err
		}
		note := &models.CreditNote{
			StoreID:     input.StoreID,
			RMAID:       rma.ID,
			Number:      noteNumber,
			AmountCents: refund,
		}
		if err := repo.CreateCreditNote(ctx, note); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create credit note")
		}

		if err := s.recordClawbacks(ctx, tx, rma); err != nil {
			return err
		}

		now := s.now().UTC()
		refundStatus := enums.RefundStatusPending
		won, err := repo.Transition(ctx, input.StoreID, rma.ID,
			[]enums.RMAStatus{enums.RMAStatusReceived}, enums.RMAStatusRefunded,
			map[string]any{
				"refund_cents":   refund,
				"refund_status":  refundStatus,
				"refunded_at":    now,
				"credit_note_id": note.ID,
			})
		if err != nil {
			return err
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rma state changed concurrently")
		}
		rma.Status = enums.RMAStatusRefunded
		rma.RefundCents = refund
		rma.RefundStatus = &refundStatus
		rma.RefundedAt = &now
		rma.CreditNoteID = &note.ID

		refunded = rma
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventRMARefunded,
			AggregateType: enums.OutboxAggregateRMA,
			AggregateID:   rma.ID,
			Actor:         actorRef(input.Actor),
			Version:       1,
			Data: payloads.RMARefundedEvent{
				RMAID:        rma.ID,
				RMANumber:    rma.RMANumber,
				StoreID:      rma.StoreID,
				OrderID:      rma.OrderID,
				RefundMethod: rma.RefundMethod,
				RefundCents:  int64(refund),
				CreditNoteID: &note.ID,
				RefundedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, input.StoreID, input.Actor, "rma.refund", refunded.ID,
		statusPtr(enums.RMAStatusReceived), statusPtr(enums.RMAStatusRefunded),
		types.JSONMap{
			"rma_number":   refunded.RMANumber,
			"refund_cents": int64(refunded.RefundCents),
		})
	logCtx := s.logg.WithRMANumber(s.logg.WithStoreID(ctx, input.StoreID.String()), refunded.RMANumber)
	s.logg.Info(logCtx, "rma refunded")
	return refunded, nil
}

// recordClawbacks writes one negative ledger adjustment per entity whose
// earnings included the returned items.
func (s *service) recordClawbacks(ctx context.Context, tx *gorm.DB, rma *models.RMA) error {
	type entityKey struct {
		entityType enums.PayoutEntityType
		entityID   uuid.UUID
	}
	clawbacks := map[entityKey]money.Cents{}
	order := []entityKey{}
	for _, item := range rma.Items {
		if item.RefundCents == 0 {
			continue
		}
		entityType, entityID, err := s.orders.LineAttribution(ctx, rma.StoreID, rma.OrderID, item.VariantID, item.OriginID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve line attribution")
		}
		key := entityKey{entityType: entityType, entityID: entityID}
		if _, seen := clawbacks[key]; !seen {
			order = append(order, key)
		}
		clawbacks[key] += item.RefundCents
	}

	for _, key := range order {
		_, err := s.ledger.RecordAdjustmentInTx(ctx, tx, ledger.RecordAdjustmentInput{
			StoreID:     rma.StoreID,
			EntityType:  key.entityType,
			EntityID:    key.entityID,
			OrderID:     rma.OrderID,
			SourceRef:   fmt.Sprintf("rma:%s", rma.ID),
			AmountCents: -clawbacks[key],
			Reason:      fmt.Sprintf("return %s", rma.RMANumber),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*models.RMA, error) {
	if storeID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and rma id required")
	}
	return s.repo.FindByID(ctx, storeID, id)
}

func (s *service) List(ctx context.Context, input ListInput, params pagination.Params) ([]models.RMA, pagination.Page, error) {
	if err := validate.Struct(input); err != nil {
		return nil, pagination.Page{}, err
	}
	params = params.Normalize()
	rmas, total, err := s.repo.List(ctx, input, params)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	return rmas, pagination.NewPage(params, total), nil
}

func (s *service) recordAudit(ctx context.Context, storeID uuid.UUID, actor Actor, action string, subjectID uuid.UUID, before, after *string, details types.JSONMap) {
	s.audit.Record(ctx, nil, audit.Entry{
		StoreID:      storeID,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Action:       action,
		SubjectType:  "rma",
		SubjectID:    subjectID,
		BeforeStatus: before,
		AfterStatus:  after,
		Context:      details,
	})
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.ID, Role: actor.Role}
}

func statusPtr(status enums.RMAStatus) *string {
	s := string(status)
	return &s
}

func statusIn(status enums.RMAStatus, set []enums.RMAStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}
