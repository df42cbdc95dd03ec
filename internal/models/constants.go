package models

// StatementType identifies the kind of statement a file was parsed as.
type StatementType string

// Statement types
const (
	StatementTypeDebit  StatementType = "debit"
	StatementTypeCredit StatementType = "credit"
)

// PaymentMethod is the transfer channel inferred from a narration string.
type PaymentMethod string

// Payment channels
const (
	MethodUPI    PaymentMethod = "UPI"
	MethodNEFT   PaymentMethod = "NEFT"
	MethodIMPS   PaymentMethod = "IMPS"
	MethodCard   PaymentMethod = "CARD"
	MethodATM    PaymentMethod = "ATM"
	MethodCheque PaymentMethod = "CHEQUE"
	MethodOther  PaymentMethod = "OTHER"
)

// Well-known category ids used by the engine's fallback chain. The full
// taxonomy is supplied by the caller; these are the ids the engine itself
// may assign when no rule or hint resolves.
const (
	CategoryUncategorized = "uncategorized"
	CategoryTransfers     = "transfers"
	CategorySalary        = "salary"
	CategoryRefunds       = "refunds"
	CategoryIncome        = "income"
)

// RuleType selects the matching strategy of a categorization rule.
type RuleType string

// Rule types
const (
	RuleTypeKeyword  RuleType = "keyword"
	RuleTypeRegex    RuleType = "regex"
	RuleTypeMerchant RuleType = "merchant"
	RuleTypeDeposit  RuleType = "deposit"
	RuleTypeAmount   RuleType = "amount"
)

// RuleField selects which transaction field a rule pattern is matched against.
type RuleField string

// Rule fields
const (
	RuleFieldRemarks  RuleField = "remarks"
	RuleFieldMerchant RuleField = "merchant"
)
