package categorizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finsight/bankstmt/internal/models"
)

func withdrawal(remarks string, amount int64) models.RawTransaction {
	return models.RawTransaction{
		SerialNo:   1,
		Remarks:    remarks,
		Withdrawal: decimal.NewFromInt(amount),
	}
}

func deposit(remarks string, amount int64) models.RawTransaction {
	return models.RawTransaction{
		SerialNo: 1,
		Remarks:  remarks,
		Deposit:  decimal.NewFromInt(amount),
	}
}

func keywordRule(priority int, category, pattern string) models.CategorizationRule {
	return models.CategorizationRule{
		Priority:   priority,
		CategoryID: category,
		Type:       models.RuleTypeKeyword,
		Pattern:    pattern,
		Field:      models.RuleFieldRemarks,
	}
}

func TestCategorizeKeywordBoundaryVsSubstring(t *testing.T) {
	rules := []models.CategorizationRule{keywordRule(25, "food", "SWIGGY")}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("UPI/SWIGGY/40291/LUNCH", 349)
	info := models.MerchantInfo{Merchant: "SWIGGY", Method: models.MethodUPI}
	assert.Equal(t, "food", engine.Categorize(&tx, info),
		"word-boundary keyword hit clears the threshold")

	// Substring-only hit scores 48 + 7.2, below the threshold.
	tx = withdrawal("XSWIGGYX PAYMENT", 349)
	info = models.MerchantInfo{Merchant: "XSWIGGYX PAYMENT", Method: models.MethodOther}
	assert.Equal(t, models.CategoryUncategorized, engine.Categorize(&tx, info))
}

func TestCategorizePriorityBoostLiftsSubstringHit(t *testing.T) {
	// The same substring-only hit crosses the threshold once the rule is
	// ranked at priority 0.
	rules := []models.CategorizationRule{keywordRule(0, "food", "SWIGGY")}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("XSWIGGYX PAYMENT", 349)
	info := models.MerchantInfo{Merchant: "XSWIGGYX PAYMENT", Method: models.MethodOther}
	assert.Equal(t, "food", engine.Categorize(&tx, info))
}

func TestCategorizeThresholdBoundary(t *testing.T) {
	// Substring-only hit at priority 25: score = 20 + 28 + 1.2*compactLen.
	// A ten-character keyword lands exactly on 60; nine characters land on
	// 58.8 and must fall through.
	at := func(pattern string) string {
		engine := NewEngine([]models.CategorizationRule{keywordRule(25, "groceries", pattern)}, nil, nil)
		tx := withdrawal("POS X"+pattern+"X STORE", 100)
		info := models.MerchantInfo{Merchant: "STORE", Method: models.MethodOther}
		return engine.Categorize(&tx, info)
	}

	assert.Equal(t, "groceries", at("SUPERMARKT"), "a score of exactly 60 sets the category")
	assert.Equal(t, models.CategoryUncategorized, at("SUPERMARK"), "58.8 falls through")
}

func TestCategorizeScoreTieBreaksOnPriority(t *testing.T) {
	merchantRule := func(priority int, category string) models.CategorizationRule {
		return models.CategorizationRule{
			Priority:   priority,
			CategoryID: category,
			Type:       models.RuleTypeMerchant,
			Pattern:    "ZOMATO",
		}
	}
	// Both priorities sit beyond the boost cap, so the scores tie exactly.
	rules := []models.CategorizationRule{merchantRule(40, "late"), merchantRule(30, "early")}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("UPI/ZOMATO/40291", 500)
	info := models.MerchantInfo{Merchant: "ZOMATO", Method: models.MethodUPI}
	assert.Equal(t, "early", engine.Categorize(&tx, info))
}

func TestCategorizeMerchantRuleNormalizes(t *testing.T) {
	rules := []models.CategorizationRule{{
		Priority:   10,
		CategoryID: "food",
		Type:       models.RuleTypeMerchant,
		Pattern:    "zomato",
	}}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("UPI/ZOMATO/40291", 500)
	info := models.MerchantInfo{Merchant: "ZOMATO", Method: models.MethodUPI}
	assert.Equal(t, "food", engine.Categorize(&tx, info))
}

func TestCategorizeRegexRule(t *testing.T) {
	rules := []models.CategorizationRule{{
		Priority:   10,
		CategoryID: "food",
		Type:       models.RuleTypeRegex,
		Pattern:    "swiggy|zomato",
		Field:      models.RuleFieldRemarks,
	}}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("UPI/Zomato/40291", 500)
	info := models.MerchantInfo{Merchant: "ZOMATO", Method: models.MethodUPI}
	assert.Equal(t, "food", engine.Categorize(&tx, info), "regex matching is case-insensitive")
}

func TestCategorizeInvalidRegexNeverMatches(t *testing.T) {
	rules := []models.CategorizationRule{{
		Priority:   0,
		CategoryID: "broken",
		Type:       models.RuleTypeRegex,
		Pattern:    "(unclosed",
		Field:      models.RuleFieldRemarks,
	}}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("(unclosed literal text", 500)
	info := models.MerchantInfo{Merchant: "UNKNOWN", Method: models.MethodOther}
	assert.Equal(t, models.CategoryUncategorized, engine.Categorize(&tx, info),
		"a rule that does not compile must score zero, not fail the run")
}

func TestCategorizeDepositRules(t *testing.T) {
	bare := models.CategorizationRule{
		Priority:   10,
		CategoryID: "incoming",
		Type:       models.RuleTypeDeposit,
	}
	engine := NewEngine([]models.CategorizationRule{bare}, nil, nil)

	tx := deposit("SOME CREDIT", 1000)
	info := models.MerchantInfo{Merchant: "SOME CREDIT", Method: models.MethodOther}
	assert.Equal(t, "incoming", engine.Categorize(&tx, info), "bare deposit rule matches any deposit")

	tx = withdrawal("SOME DEBIT", 1000)
	info = models.MerchantInfo{Merchant: "SOME DEBIT", Method: models.MethodOther}
	assert.Equal(t, models.CategoryUncategorized, engine.Categorize(&tx, info),
		"deposit rules never match withdrawals")

	patterned := models.CategorizationRule{
		Priority:   10,
		CategoryID: "salary",
		Type:       models.RuleTypeDeposit,
		Pattern:    "SALARY",
		Field:      models.RuleFieldRemarks,
	}
	engine = NewEngine([]models.CategorizationRule{patterned}, nil, nil)

	tx = deposit("NEFT SALARY CREDIT FEB", 55000)
	info = models.MerchantInfo{Merchant: "NEFT", Method: models.MethodNEFT}
	assert.Equal(t, "salary", engine.Categorize(&tx, info))

	tx = deposit("INTEREST CREDIT", 120)
	info = models.MerchantInfo{Merchant: "INTEREST CREDIT", Method: models.MethodOther}
	assert.Equal(t, models.CategoryIncome, engine.Categorize(&tx, info),
		"patterned deposit rule without a keyword hit scores zero")
}

func TestCategorizeAmountRule(t *testing.T) {
	inRange := func(v int64) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
	}
	rules := []models.CategorizationRule{{
		Priority:   0,
		CategoryID: "rent",
		Type:       models.RuleTypeAmount,
		MinAmount:  inRange(14000),
		MaxAmount:  inRange(16000),
	}}
	engine := NewEngine(rules, nil, nil)

	tx := withdrawal("TRANSFER TO LANDLORD", 15000)
	info := models.MerchantInfo{Merchant: "LANDLORD", Method: models.MethodOther}
	assert.Equal(t, "rent", engine.Categorize(&tx, info))

	tx = withdrawal("TRANSFER TO LANDLORD", 20000)
	assert.Equal(t, models.CategoryUncategorized, engine.Categorize(&tx, info),
		"amount gate excludes out-of-range transactions")
}

func TestCategorizeAmountGateAppliesToKeywordRules(t *testing.T) {
	rule := keywordRule(0, "food", "SWIGGY")
	rule.MaxAmount = decimal.NullDecimal{Decimal: decimal.NewFromInt(100), Valid: true}
	engine := NewEngine([]models.CategorizationRule{rule}, nil, nil)

	tx := withdrawal("UPI/SWIGGY/40291", 349)
	info := models.MerchantInfo{Merchant: "SWIGGY", Method: models.MethodUPI}
	assert.Equal(t, models.CategoryUncategorized, engine.Categorize(&tx, info))
}

func TestCategorizeMerchantFieldRule(t *testing.T) {
	rules := []models.CategorizationRule{{
		Priority:   10,
		CategoryID: "food",
		Type:       models.RuleTypeKeyword,
		Pattern:    "ZOMATO",
		Field:      models.RuleFieldMerchant,
	}}
	engine := NewEngine(rules, nil, nil)

	// The keyword appears only in the merchant name, not the narration.
	tx := withdrawal("UPI/402912345/DINNER", 500)
	info := models.MerchantInfo{Merchant: "ZOMATO", Method: models.MethodUPI}
	assert.Equal(t, "food", engine.Categorize(&tx, info))
}

func TestCategorizeHintAppliedBelowThreshold(t *testing.T) {
	history := []models.HistoricalTransaction{
		{MerchantName: "ZOMATO", CategoryID: "food"},
		{MerchantName: "ZOMATO", CategoryID: "food"},
	}
	engine := NewEngine(nil, history, nil)

	tx := withdrawal("UPI/ZOMATO/40291", 500)
	info := models.MerchantInfo{Merchant: "ZOMATO", Method: models.MethodUPI}
	assert.Equal(t, "food", engine.Categorize(&tx, info))
}

func TestCategorizeFallbackChain(t *testing.T) {
	engine := NewEngine(nil, nil, nil)

	tests := []struct {
		name     string
		tx       models.RawTransaction
		expected string
	}{
		{"ATM withdrawal", withdrawal("ATM CASH WDL MUMBAI", 2000), models.CategoryTransfers},
		{"Self transfer deposit", deposit("SELF TRANSFER FROM SAVINGS", 1000), models.CategoryTransfers},
		{"Salary deposit", deposit("FEB PAYROLL CREDIT", 55000), models.CategorySalary},
		{"Refund deposit", deposit("REVERSAL OF CHARGE", 99), models.CategoryRefunds},
		{"Other deposit", deposit("MISC CREDIT", 100), models.CategoryIncome},
		{"Unmatched withdrawal", withdrawal("SOMETHING ELSE", 100), models.CategoryUncategorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := models.MerchantInfo{Merchant: "UNMATCHED", Method: models.MethodOther}
			assert.Equal(t, tc.expected, engine.Categorize(&tc.tx, info))
		})
	}
}
