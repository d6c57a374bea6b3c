package enums

import "fmt"

// ItemCondition records the reported physical state of a returned item.
type ItemCondition string

const (
	ItemConditionSealed  ItemCondition = "sealed"
	ItemConditionOpened  ItemCondition = "opened"
	ItemConditionDamaged ItemCondition = "damaged"
)

var validItemConditions = []ItemCondition{
	ItemConditionSealed,
	ItemConditionOpened,
	ItemConditionDamaged,
}

// IsValid reports whether the value is a known ItemCondition.
func (c ItemCondition) IsValid() bool {
	for _, candidate := range validItemConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCondition converts raw input into an ItemCondition.
func ParseItemCondition(value string) (ItemCondition, error) {
	for _, candidate := range validItemConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item condition %q", value)
}
