package enums

import "fmt"

// PayoutEntityType identifies which side of the marketplace is owed money.
type PayoutEntityType string

const (
	PayoutEntityTypeSupplier PayoutEntityType = "supplier"
	PayoutEntityTypeReseller PayoutEntityType = "reseller"
)

var validPayoutEntityTypes = []PayoutEntityType{
	PayoutEntityTypeSupplier,
	PayoutEntityTypeReseller,
}

// String implements fmt.Stringer.
func (t PayoutEntityType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PayoutEntityType.
func (t PayoutEntityType) IsValid() bool {
	for _, candidate := range validPayoutEntityTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePayoutEntityType converts raw input into a PayoutEntityType.
func ParsePayoutEntityType(value string) (PayoutEntityType, error) {
	for _, candidate := range validPayoutEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout entity type %q", value)
}
