package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vendaro/payout-core/internal/ledger"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/logger"
)

const (
	defaultEligibilityWindow = 7 * 24 * time.Hour
	defaultSweepBatchSize    = 500
	// Stop after this many full batches in one run; leftovers age into
	// the next cycle.
	maxSweepBatches = 20
)

// EligibilityJobParams configure the pending-to-eligible sweep.
type EligibilityJobParams struct {
	Logger    *logger.Logger
	Ledger    eligibilitySweeper
	Window    time.Duration
	BatchSize int
}

type eligibilitySweeper interface {
	MarkEligible(ctx context.Context, input ledger.MarkEligibleInput) ([]models.PayoutEntry, error)
}

// NewEligibilityJob builds the job that ages pending payout entries into
// the eligible state once the holding window has elapsed.
func NewEligibilityJob(params EligibilityJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultEligibilityWindow
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &eligibilityJob{
		logg:      params.Logger,
		ledger:    params.Ledger,
		window:    window,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type eligibilityJob struct {
	logg      *logger.Logger
	ledger    eligibilitySweeper
	window    time.Duration
	batchSize int
	now       func() time.Time
}

func (j *eligibilityJob) Name() string { return "payout-eligibility" }

func (j *eligibilityJob) Run(ctx context.Context) error {
	before := j.now().UTC().Add(-j.window)

	var transitioned int
	for batch := 0; batch < maxSweepBatches; batch++ {
		entries, err := j.ledger.MarkEligible(ctx, ledger.MarkEligibleInput{
			Before:    before,
			BatchSize: j.batchSize,
		})
		if err != nil {
			return fmt.Errorf("eligibility sweep: %w", err)
		}
		transitioned += len(entries)
		if len(entries) < j.batchSize {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"before":       before,
		"batch_size":   j.batchSize,
		"transitioned": transitioned,
	})
	j.logg.Info(logCtx, "payout eligibility sweep complete")
	return nil
}
