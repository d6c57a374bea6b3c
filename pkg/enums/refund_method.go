package enums

import "fmt"

// RefundMethod is how the customer receives their money back.
type RefundMethod string

const (
	RefundMethodOriginal      RefundMethod = "original"
	RefundMethodWallet        RefundMethod = "wallet"
	RefundMethodCODAdjustment RefundMethod = "cod_adjustment"
)

var validRefundMethods = []RefundMethod{
	RefundMethodOriginal,
	RefundMethodWallet,
	RefundMethodCODAdjustment,
}

// IsValid reports whether the value is a known RefundMethod.
func (m RefundMethod) IsValid() bool {
	for _, candidate := range validRefundMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseRefundMethod converts raw input into a RefundMethod.
func ParseRefundMethod(value string) (RefundMethod, error) {
	for _, candidate := range validRefundMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund method %q", value)
}
