package rma

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/internal/audit"
	"github.com/vendaro/payout-core/internal/ledger"
	"github.com/vendaro/payout-core/internal/policy"
	"github.com/vendaro/payout-core/pkg/config"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/logger"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/outbox"
	"github.com/vendaro/payout-core/pkg/pagination"
	"github.com/vendaro/payout-core/pkg/types"
)

type fakeRMARepo struct {
	rmas  map[uuid.UUID]*models.RMA
	notes []*models.CreditNote
}

func newFakeRMARepo() *fakeRMARepo {
	return &fakeRMARepo{rmas: map[uuid.UUID]*models.RMA{}}
}

func (f *fakeRMARepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRMARepo) Create(_ context.Context, rma *models.RMA) error {
	if rma.ID == uuid.Nil {
		rma.ID = uuid.New()
	}
	for i := range rma.Items {
		if rma.Items[i].ID == uuid.Nil {
			rma.Items[i].ID = uuid.New()
		}
		rma.Items[i].RMAID = rma.ID
	}
	copied := *rma
	copied.Items = append([]models.RMAItem(nil), rma.Items...)
	f.rmas[rma.ID] = &copied
	return nil
}

func (f *fakeRMARepo) FindByID(_ context.Context, storeID, id uuid.UUID) (*models.RMA, error) {
	rma, ok := f.rmas[id]
	if !ok || rma.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rma not found")
	}
	copied := *rma
	copied.Items = append([]models.RMAItem(nil), rma.Items...)
	return &copied, nil
}

func (f *fakeRMARepo) Transition(_ context.Context, storeID, id uuid.UUID, from []enums.RMAStatus, to enums.RMAStatus, stamps map[string]any) (bool, error) {
	rma, ok := f.rmas[id]
	if !ok || rma.StoreID != storeID {
		return false, nil
	}
	if !statusIn(rma.Status, from) {
		return false, nil
	}
	rma.Status = to
	return true, nil
}

func (f *fakeRMARepo) SaveItem(_ context.Context, item *models.RMAItem) error {
	rma, ok := f.rmas[item.RMAID]
	if !ok {
		return fmt.Errorf("unknown rma %s", item.RMAID)
	}
	for i := range rma.Items {
		if rma.Items[i].ID == item.ID {
			rma.Items[i].RefundCents = item.RefundCents
			rma.Items[i].ReturnShipping = item.ReturnShipping
			return nil
		}
	}
	return fmt.Errorf("unknown item %s", item.ID)
}

func (f *fakeRMARepo) CreateCreditNote(_ context.Context, note *models.CreditNote) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeRMARepo) List(context.Context, ListInput, pagination.Params) ([]models.RMA, int64, error) {
	return nil, 0, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeNumbers struct {
	sequence int
}

func (f *fakeNumbers) Next(_ context.Context, _ uuid.UUID, kind enums.NumberKind) (string, error) {
	f.sequence++
	return fmt.Sprintf("%s-ACME-2026-%04d", kind.Prefix(), f.sequence), nil
}

type fakeRules struct {
	shipping *types.ReturnShipping
}

func (f *fakeRules) Resolve(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID, money.Cents) (*types.ReturnShipping, error) {
	return f.shipping, nil
}

type fakeLedger struct {
	adjustments []ledger.RecordAdjustmentInput
}

func (f *fakeLedger) RecordAdjustmentInTx(_ context.Context, _ *gorm.DB, input ledger.RecordAdjustmentInput) (*models.PayoutEntry, error) {
	f.adjustments = append(f.adjustments, input)
	return &models.PayoutEntry{ID: uuid.New(), AmountCents: input.AmountCents}, nil
}

type fakeOrders struct {
	returnable map[uuid.UUID]int
	entityType enums.PayoutEntityType
	entityID   uuid.UUID
}

func (f *fakeOrders) ReturnableQuantity(_ context.Context, _, _, variantID, _ uuid.UUID) (int, error) {
	return f.returnable[variantID], nil
}

func (f *fakeOrders) LineAttribution(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, uuid.UUID) (enums.PayoutEntityType, uuid.UUID, error) {
	return f.entityType, f.entityID, nil
}

type fakeCatalog struct {
	prices map[uuid.UUID]money.Cents
}

func (f *fakeCatalog) CategoryFor(context.Context, uuid.UUID, uuid.UUID) (*uuid.UUID, error) {
	return nil, nil
}

func (f *fakeCatalog) OriginalUnitPrice(_ context.Context, _, _, variantID uuid.UUID) (money.Cents, error) {
	return f.prices[variantID], nil
}

type fakeAudit struct {
	entries []audit.Entry
}

func (f *fakeAudit) Record(_ context.Context, _ *gorm.DB, entry audit.Entry) {
	f.entries = append(f.entries, entry)
}

type fixture struct {
	svc     Service
	repo    *fakeRMARepo
	outbox  *fakeOutbox
	ledger  *fakeLedger
	orders  *fakeOrders
	catalog *fakeCatalog
	audit   *fakeAudit
	rules   *fakeRules
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	pol, err := policy.New(config.PolicyConfig{OpenedDeductionPct: 10, DamagedDeductionPct: 25})
	if err != nil {
		t.Fatalf("policy.New failed: %v", err)
	}

	f := &fixture{
		repo:    newFakeRMARepo(),
		outbox:  &fakeOutbox{},
		ledger:  &fakeLedger{},
		orders:  &fakeOrders{returnable: map[uuid.UUID]int{}, entityType: enums.PayoutEntityTypeSupplier, entityID: uuid.New()},
		catalog: &fakeCatalog{prices: map[uuid.UUID]money.Cents{}},
		audit:   &fakeAudit{},
		rules:   &fakeRules{},
	}
	logg := logger.New(logger.Options{ServiceName: "rma-test", Output: io.Discard})
	svc, err := NewService(f.repo, fakeTxRunner{}, f.outbox, &fakeNumbers{}, f.rules, pol, f.ledger, f.orders, f.catalog, f.audit, logg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	f.svc = svc
	return f
}

func testActor() Actor {
	return Actor{ID: uuid.New(), Role: "admin"}
}

// requestTwoItemRMA opens a return with one sealed item at $50 and one
// damaged item at $30.
func requestTwoItemRMA(t *testing.T, f *fixture) *models.RMA {
	t.Helper()

	sealed := uuid.New()
	damaged := uuid.New()
	f.orders.returnable[sealed] = 1
	f.orders.returnable[damaged] = 1
	f.catalog.prices[sealed] = 5000
	f.catalog.prices[damaged] = 3000

	rma, err := f.svc.Request(context.Background(), RequestInput{
		StoreID:      uuid.New(),
		OrderID:      uuid.New(),
		RefundMethod: enums.RefundMethodOriginal,
		Items: []RequestItemInput{
			{VariantID: sealed, OriginID: uuid.New(), Quantity: 1, Reason: "wrong size", Condition: enums.ItemConditionSealed},
			{VariantID: damaged, OriginID: uuid.New(), Quantity: 1, Reason: "arrived broken", Condition: enums.ItemConditionDamaged},
		},
		Actor: testActor(),
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return rma
}

func TestRequest(t *testing.T) {
	f := newFixture(t)
	rma := requestTwoItemRMA(t, f)

	if rma.Status != enums.RMAStatusRequested {
		t.Fatalf("expected requested status, got %s", rma.Status)
	}
	if rma.RMANumber != "RMA-ACME-2026-0001" {
		t.Fatalf("unexpected rma number %q", rma.RMANumber)
	}
	if len(rma.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(rma.Items))
	}
	if rma.Items[0].OriginalPriceCents != 5000 {
		t.Fatalf("expected price snapshot 5000, got %d", rma.Items[0].OriginalPriceCents)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "rma.request" {
		t.Fatalf("expected a request audit entry, got %+v", f.audit.entries)
	}
}

func TestRequest_validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Request(context.Background(), RequestInput{
		StoreID:      uuid.New(),
		OrderID:      uuid.New(),
		RefundMethod: enums.RefundMethodOriginal,
		Items:        []RequestItemInput{},
		Actor:        testActor(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty items, got %v", err)
	}

	variantID := uuid.New()
	f.orders.returnable[variantID] = 1
	_, err = f.svc.Request(context.Background(), RequestInput{
		StoreID:      uuid.New(),
		OrderID:      uuid.New(),
		RefundMethod: enums.RefundMethodOriginal,
		Items: []RequestItemInput{
			{VariantID: variantID, OriginID: uuid.New(), Quantity: 2, Reason: "changed mind", Condition: enums.ItemConditionSealed},
		},
		Actor: testActor(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for excess quantity, got %v", err)
	}
}

func TestRequest_splitLinesCannotExceedReturnable(t *testing.T) {
	f := newFixture(t)

	variantID := uuid.New()
	originID := uuid.New()
	f.orders.returnable[variantID] = 1
	f.catalog.prices[variantID] = 5000

	_, err := f.svc.Request(context.Background(), RequestInput{
		StoreID:      uuid.New(),
		OrderID:      uuid.New(),
		RefundMethod: enums.RefundMethodOriginal,
		Items: []RequestItemInput{
			{VariantID: variantID, OriginID: originID, Quantity: 1, Reason: "changed mind", Condition: enums.ItemConditionSealed},
			{VariantID: variantID, OriginID: originID, Quantity: 1, Reason: "changed mind", Condition: enums.ItemConditionOpened},
		},
		Actor: testActor(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for split lines exceeding returnable, got %v", err)
	}
	if len(f.repo.rmas) != 0 {
		t.Fatalf("expected no rma created, got %d", len(f.repo.rmas))
	}
}

func TestApprove_computesRefundsAndFreezesSnapshot(t *testing.T) {
	f := newFixture(t)
	f.rules.shipping = &types.ReturnShipping{
		Payer:       enums.ShippingPayerSupplier,
		AmountCents: 500,
		RuleSnapshot: types.RuleSnapshot{
			RuleID:      uuid.New(),
			Scope:       enums.RuleScopeGlobal,
			Payer:       enums.ShippingPayerSupplier,
			ChargeType:  enums.ChargeTypeFlat,
			ChargeValue: 500,
		},
	}
	rma := requestTwoItemRMA(t, f)

	approved, err := f.svc.Approve(context.Background(), ApproveInput{
		StoreID: rma.StoreID,
		RMAID:   rma.ID,
		Actor:   testActor(),
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Sealed $50 refunds in full; damaged $30 loses 25%.
	var total, gross money.Cents
	for _, item := range approved.Items {
		total += item.RefundCents
		gross += money.Cents(int64(item.OriginalPriceCents) * int64(item.Quantity))
		if item.ReturnShipping == nil {
			t.Fatalf("expected frozen shipping snapshot on item %s", item.ID)
		}
	}
	if total != 5000+2250 {
		t.Fatalf("expected total refund 7250, got %d", total)
	}
	if total > gross {
		t.Fatalf("refund %d exceeds paid %d", total, gross)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.OutboxEventRMAApproved {
		t.Fatalf("expected approved event, got %+v", f.outbox.events)
	}
}

func TestApprove_twiceFailsWithStateConflict(t *testing.T) {
	f := newFixture(t)
	rma := requestTwoItemRMA(t, f)
	actor := testActor()

	if _, err := f.svc.Approve(context.Background(), ApproveInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err := f.svc.Approve(context.Background(), ApproveInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on second approve, got %v", err)
	}

	stored := f.repo.rmas[rma.ID]
	if stored.Status != enums.RMAStatusApproved {
		t.Fatalf("state must be unchanged by failed approve, got %s", stored.Status)
	}
}

func TestReject_isTerminal(t *testing.T) {
	f := newFixture(t)
	rma := requestTwoItemRMA(t, f)
	actor := testActor()
	ctx := context.Background()

	err := f.svc.Reject(ctx, RejectInput{StoreID: rma.StoreID, RMAID: rma.ID, Reason: "outside window", Actor: actor})
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.OutboxEventRMARejected {
		t.Fatalf("expected rejected event, got %+v", f.outbox.events)
	}

	if _, err := f.svc.Approve(ctx, ApproveInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict approving rejected rma, got %v", err)
	}
	if err := f.svc.Receive(ctx, TransitionInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict receiving rejected rma, got %v", err)
	}
	if _, err := f.svc.Refund(ctx, RefundInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict refunding rejected rma, got %v", err)
	}
}

func TestReject_requiresReason(t *testing.T) {
	f := newFixture(t)
	rma := requestTwoItemRMA(t, f)

	err := f.svc.Reject(context.Background(), RejectInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: testActor()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing reason, got %v", err)
	}

	err = f.svc.Reject(context.Background(), RejectInput{StoreID: rma.StoreID, RMAID: rma.ID, Reason: "  \t ", Actor: testActor()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank reason, got %v", err)
	}

	got, err := f.svc.Get(context.Background(), rma.StoreID, rma.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != enums.RMAStatusRequested {
		t.Fatalf("expected rma to stay requested, got %s", got.Status)
	}
}

func TestLifecycle_refundClawsBackEarnings(t *testing.T) {
	f := newFixture(t)
	rma := requestTwoItemRMA(t, f)
	actor := testActor()
	ctx := context.Background()

	if _, err := f.svc.Approve(ctx, ApproveInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := f.svc.SchedulePickup(ctx, TransitionInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("SchedulePickup failed: %v", err)
	}
	if err := f.svc.MarkPickedUp(ctx, TransitionInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("MarkPickedUp failed: %v", err)
	}
	if err := f.svc.Receive(ctx, TransitionInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	refunded, err := f.svc.Refund(ctx, RefundInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor})
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if refunded.Status != enums.RMAStatusRefunded {
		t.Fatalf("expected refunded status, got %s", refunded.Status)
	}
	if refunded.RefundCents != 7250 {
		t.Fatalf("expected refund 7250, got %d", refunded.RefundCents)
	}
	if refunded.CreditNoteID == nil {
		t.Fatal("expected credit note link")
	}
	if len(f.repo.notes) != 1 || f.repo.notes[0].AmountCents != 7250 {
		t.Fatalf("expected one credit note of 7250, got %+v", f.repo.notes)
	}

	if len(f.ledger.adjustments) != 1 {
		t.Fatalf("expected one clawback, got %+v", f.ledger.adjustments)
	}
	clawback := f.ledger.adjustments[0]
	if clawback.AmountCents != -7250 {
		t.Fatalf("expected clawback -7250, got %d", clawback.AmountCents)
	}
	if clawback.AmountCents.Abs() > 8000 {
		t.Fatalf("clawback magnitude %d exceeds paid amount", clawback.AmountCents.Abs())
	}
	if clawback.EntityType != enums.PayoutEntityTypeSupplier {
		t.Fatalf("expected supplier clawback, got %s", clawback.EntityType)
	}

	if err := f.svc.Close(ctx, TransitionInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if f.repo.rmas[rma.ID].Status != enums.RMAStatusClosed {
		t.Fatalf("expected closed status, got %s", f.repo.rmas[rma.ID].Status)
	}
}

func TestRefund_customerShippingReducesRefund(t *testing.T) {
	f := newFixture(t)
	f.rules.shipping = &types.ReturnShipping{
		Payer:       enums.ShippingPayerCustomer,
		AmountCents: 500,
		RuleSnapshot: types.RuleSnapshot{
			RuleID:      uuid.New(),
			Scope:       enums.RuleScopeGlobal,
			Payer:       enums.ShippingPayerCustomer,
			ChargeType:  enums.ChargeTypeFlat,
			ChargeValue: 500,
		},
	}
	rma := requestTwoItemRMA(t, f)
	actor := testActor()
	ctx := context.Background()

	if _, err := f.svc.Approve(ctx, ApproveInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := f.svc.Receive(ctx, TransitionInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor}); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	refunded, err := f.svc.Refund(ctx, RefundInput{StoreID: rma.StoreID, RMAID: rma.ID, Actor: actor})
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	// 7250 in item refunds, minus two flat $5 customer charges.
	if refunded.RefundCents != 6250 {
		t.Fatalf("expected refund 6250, got %d", refunded.RefundCents)
	}
}
