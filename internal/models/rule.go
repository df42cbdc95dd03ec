package models

import "github.com/shopspring/decimal"

// CategorizationRule is one entry of the externally supplied rule table.
// Rules are read-only for the duration of a categorization pass; lower
// Priority numbers take precedence on score ties.
type CategorizationRule struct {
	Priority   int
	CategoryID string
	Type       RuleType
	Pattern    string
	Field      RuleField
	MinAmount  decimal.NullDecimal
	MaxAmount  decimal.NullDecimal
}

// FieldText returns the transaction text the rule should be matched against.
func (r *CategorizationRule) FieldText(remarks, merchant string) string {
	if r.Field == RuleFieldMerchant {
		return merchant
	}
	return remarks
}

// AmountInRange reports whether the transaction magnitude passes the rule's
// optional inclusive amount bounds. This gate applies to every rule type.
func (r *CategorizationRule) AmountInRange(amount decimal.Decimal) bool {
	if r.MinAmount.Valid && amount.LessThan(r.MinAmount.Decimal) {
		return false
	}
	if r.MaxAmount.Valid && amount.GreaterThan(r.MaxAmount.Decimal) {
		return false
	}
	return true
}
