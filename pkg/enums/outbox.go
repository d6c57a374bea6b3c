package enums

import "fmt"

// OutboxEventType names the domain events published through the outbox.
type OutboxEventType string

const (
	OutboxEventRMAApproved        OutboxEventType = "rma.approved"
	OutboxEventRMARejected        OutboxEventType = "rma.rejected"
	OutboxEventRMARefunded        OutboxEventType = "rma.refunded"
	OutboxEventEarningRecorded    OutboxEventType = "payout.earning_recorded"
	OutboxEventAdjustmentRecorded OutboxEventType = "payout.adjustment_recorded"
	OutboxEventEntriesPaid        OutboxEventType = "payout.entries_paid"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventRMAApproved,
	OutboxEventRMARejected,
	OutboxEventRMARefunded,
	OutboxEventEarningRecorded,
	OutboxEventAdjustmentRecorded,
	OutboxEventEntriesPaid,
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateRMA         OutboxAggregateType = "rma"
	OutboxAggregatePayoutEntry OutboxAggregateType = "payout_entry"
	OutboxAggregatePayoutRun   OutboxAggregateType = "payout_run"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateRMA,
	OutboxAggregatePayoutEntry,
	OutboxAggregatePayoutRun,
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (t OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}
