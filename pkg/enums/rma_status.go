package enums

import "fmt"

// RMAStatus tracks a return authorization through its lifecycle.
type RMAStatus string

const (
	RMAStatusRequested       RMAStatus = "requested"
	RMAStatusApproved        RMAStatus = "approved"
	RMAStatusRejected        RMAStatus = "rejected"
	RMAStatusPickupScheduled RMAStatus = "pickup_scheduled"
	RMAStatusPickedUp        RMAStatus = "picked_up"
	RMAStatusReceived        RMAStatus = "received"
	RMAStatusRefunded        RMAStatus = "refunded"
	RMAStatusClosed          RMAStatus = "closed"
)

var validRMAStatuses = []RMAStatus{
	RMAStatusRequested,
	RMAStatusApproved,
	RMAStatusRejected,
	RMAStatusPickupScheduled,
	RMAStatusPickedUp,
	RMAStatusReceived,
	RMAStatusRefunded,
	RMAStatusClosed,
}

// String implements fmt.Stringer.
func (s RMAStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RMAStatus.
func (s RMAStatus) IsValid() bool {
	for _, candidate := range validRMAStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s RMAStatus) IsTerminal() bool {
	return s == RMAStatusRejected || s == RMAStatusClosed
}

// ParseRMAStatus converts raw input into an RMAStatus.
func ParseRMAStatus(value string) (RMAStatus, error) {
	for _, candidate := range validRMAStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rma status %q", value)
}
