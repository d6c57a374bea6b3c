package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/internal/ledger"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/logger"
)

type fakeSweeper struct {
	batches [][]models.PayoutEntry
	inputs  []ledger.MarkEligibleInput
	err     error
}

func (f *fakeSweeper) MarkEligible(_ context.Context, input ledger.MarkEligibleInput) ([]models.PayoutEntry, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func entriesOf(n int) []models.PayoutEntry {
	entries := make([]models.PayoutEntry, n)
	for i := range entries {
		entries[i].ID = uuid.New()
	}
	return entries
}

func newEligibilityJob(t *testing.T, sweeper *fakeSweeper, batchSize int) *eligibilityJob {
	t.Helper()
	jobIface, err := NewEligibilityJob(EligibilityJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Ledger:    sweeper,
		Window:    7 * 24 * time.Hour,
		BatchSize: batchSize,
	})
	if err != nil {
		t.Fatalf("NewEligibilityJob: %v", err)
	}
	return jobIface.(*eligibilityJob)
}

func TestEligibilityJobSweepsUntilShortBatch(t *testing.T) {
	sweeper := &fakeSweeper{batches: [][]models.PayoutEntry{
		entriesOf(2),
		entriesOf(2),
		entriesOf(1),
	}}
	job := newEligibilityJob(t, sweeper, 2)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sweeper.inputs) != 3 {
		t.Fatalf("expected 3 sweep calls, got %d", len(sweeper.inputs))
	}
	for _, input := range sweeper.inputs {
		if input.BatchSize != 2 {
			t.Fatalf("expected batch size 2, got %d", input.BatchSize)
		}
	}
}

func TestEligibilityJobCutoffUsesWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{}
	job := newEligibilityJob(t, sweeper, 10)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sweeper.inputs) != 1 {
		t.Fatalf("expected 1 sweep call, got %d", len(sweeper.inputs))
	}
	expected := now.Add(-7 * 24 * time.Hour)
	if !sweeper.inputs[0].Before.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, sweeper.inputs[0].Before)
	}
}

func TestEligibilityJobPropagatesError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	job := newEligibilityJob(t, sweeper, 10)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
