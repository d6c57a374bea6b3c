package enums

import "fmt"

// ChargeType is how a return-shipping rule prices the charge.
type ChargeType string

const (
	ChargeTypeFlat    ChargeType = "flat"
	ChargeTypePercent ChargeType = "percent"
)

var validChargeTypes = []ChargeType{
	ChargeTypeFlat,
	ChargeTypePercent,
}

// IsValid reports whether the value is a known ChargeType.
func (c ChargeType) IsValid() bool {
	for _, candidate := range validChargeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChargeType converts raw input into a ChargeType.
func ParseChargeType(value string) (ChargeType, error) {
	for _, candidate := range validChargeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid charge type %q", value)
}
