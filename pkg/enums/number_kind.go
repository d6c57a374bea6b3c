package enums

import "fmt"

// NumberKind selects which per-store-per-year sequence a document draws from.
type NumberKind string

const (
	NumberKindRMA        NumberKind = "rma"
	NumberKindCreditNote NumberKind = "credit_note"
	NumberKindLabel      NumberKind = "label"
)

var validNumberKinds = []NumberKind{
	NumberKindRMA,
	NumberKindCreditNote,
	NumberKindLabel,
}

// Prefix returns the document prefix used in formatted numbers.
func (k NumberKind) Prefix() string {
	switch k {
	case NumberKindRMA:
		return "RMA"
	case NumberKindCreditNote:
		return "CN"
	case NumberKindLabel:
		return "LBL"
	default:
		return ""
	}
}

// IsValid reports whether the value is a known NumberKind.
func (k NumberKind) IsValid() bool {
	for _, candidate := range validNumberKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNumberKind converts raw input into a NumberKind.
func ParseNumberKind(value string) (NumberKind, error) {
	for _, candidate := range validNumberKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid number kind %q", value)
}
