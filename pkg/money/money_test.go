package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromDecimal(t *testing.T) {
	c, err := FromDecimal(decimal.RequireFromString("80.00"))
	if err != nil {
		t.Fatalf("FromDecimal error: %v", err)
	}
	if c != 8000 {
		t.Fatalf("expected 8000 cents, got %d", c)
	}

	if _, err := FromDecimal(decimal.RequireFromString("10.005")); err == nil {
		t.Fatal("sub-cent precision should be rejected")
	}
}

func TestString(t *testing.T) {
	if got := Cents(5000).String(); got != "50.00" {
		t.Fatalf("unexpected rendering %q", got)
	}
	if got := Cents(-305).String(); got != "-3.05" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestPercentOf(t *testing.T) {
	if got := Cents(3000).PercentOf(25); got != 750 {
		t.Fatalf("expected 750, got %d", got)
	}
	// truncation toward zero, never rounding refunds up
	if got := Cents(99).PercentOf(10); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
}

func TestAbs(t *testing.T) {
	if Cents(-8000).Abs() != 8000 {
		t.Fatal("Abs should flip negative amounts")
	}
	if Cents(10).Abs() != 10 {
		t.Fatal("Abs should keep positive amounts")
	}
}
