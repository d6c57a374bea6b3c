package enums

import "fmt"

// RuleScope is the specificity of a return-shipping rule. Narrower scopes win
// during resolution: sku beats category beats global.
type RuleScope string

const (
	RuleScopeSKU      RuleScope = "sku"
	RuleScopeCategory RuleScope = "category"
	RuleScopeGlobal   RuleScope = "global"
)

var validRuleScopes = []RuleScope{
	RuleScopeSKU,
	RuleScopeCategory,
	RuleScopeGlobal,
}

// IsValid reports whether the value is a known RuleScope.
func (s RuleScope) IsValid() bool {
	for _, candidate := range validRuleScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// Precedence orders scopes for resolution; lower wins.
func (s RuleScope) Precedence() int {
	switch s {
	case RuleScopeSKU:
		return 0
	case RuleScopeCategory:
		return 1
	default:
		return 2
	}
}

// ParseRuleScope converts raw input into a RuleScope.
func ParseRuleScope(value string) (RuleScope, error) {
	for _, candidate := range validRuleScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule scope %q", value)
}
