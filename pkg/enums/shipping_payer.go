package enums

import "fmt"

// ShippingPayer identifies who is liable for return-shipping cost.
type ShippingPayer string

const (
	ShippingPayerCustomer ShippingPayer = "customer"
	ShippingPayerSupplier ShippingPayer = "supplier"
	ShippingPayerReseller ShippingPayer = "reseller"
	ShippingPayerPlatform ShippingPayer = "platform"
)

var validShippingPayers = []ShippingPayer{
	ShippingPayerCustomer,
	ShippingPayerSupplier,
	ShippingPayerReseller,
	ShippingPayerPlatform,
}

// IsValid reports whether the value is a known ShippingPayer.
func (p ShippingPayer) IsValid() bool {
	for _, candidate := range validShippingPayers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseShippingPayer converts raw input into a ShippingPayer.
func ParseShippingPayer(value string) (ShippingPayer, error) {
	for _, candidate := range validShippingPayers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping payer %q", value)
}
