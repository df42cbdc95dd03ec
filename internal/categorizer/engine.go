// Package categorizer assigns spending categories to transactions with a
// deterministic, explainable scoring engine: an externally supplied rule
// table is scored per transaction, learned merchant history breaks the
// below-threshold cases, and a fixed fallback chain guarantees that every
// transaction receives some category.
package categorizer

import (
	"regexp"
	"strings"

	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/merchant"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
)

// Scoring constants. A rule only wins when its score reaches ScoreThreshold.
const (
	ScoreThreshold = 60.0

	merchantMatchScore  = 100.0
	regexMatchScore     = 95.0
	depositBareScore    = 65.0
	amountMatchScore    = 55.0
	wordBoundaryBonus   = 45.0
	depositPatternScore = 35.0
	substringBonus      = 28.0
	keywordBaseScore    = 20.0

	lengthBoostCap    = 20
	lengthBoostFactor = 1.2

	priorityBoostCap    = 25
	priorityBoostFactor = 0.7
)

// Engine scores transactions against an immutable rule table and the hints
// derived from one historical-transaction list. It holds no mutable state:
// concurrent Categorize calls on the same Engine are safe.
type Engine struct {
	rules  []models.CategorizationRule
	hints  map[string]models.MerchantCategoryHint
	logger logging.Logger
}

// NewEngine builds an engine for one categorization run. rules and history
// are borrowed read-only from the caller.
func NewEngine(rules []models.CategorizationRule, history []models.HistoricalTransaction, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{
		rules:  rules,
		hints:  BuildHints(history),
		logger: logger,
	}
}

// Categorize resolves the category id for one transaction: best-scoring rule
// above the threshold, else merchant hint, else the fixed fallback chain.
// It never fails; the worst case is CategoryUncategorized.
func (e *Engine) Categorize(tx *models.RawTransaction, info models.MerchantInfo) string {
	if rule, score := e.bestRule(tx, info); rule != nil && score >= ScoreThreshold {
		e.logger.Debug("Rule matched",
			logging.Field{Key: logging.FieldCategory, Value: rule.CategoryID},
			logging.Field{Key: "score", Value: score})
		return rule.CategoryID
	}

	if hint, ok := e.hints[merchant.HintKey(info.Merchant)]; ok {
		e.logger.Debug("Merchant hint applied",
			logging.Field{Key: logging.FieldMerchant, Value: info.Merchant},
			logging.Field{Key: logging.FieldCategory, Value: hint.CategoryID})
		return hint.CategoryID
	}

	return fallbackCategory(tx)
}

// bestRule returns the highest-scoring rule, ties broken by the lower
// priority number. A nil rule means nothing scored above zero.
func (e *Engine) bestRule(tx *models.RawTransaction, info models.MerchantInfo) (*models.CategorizationRule, float64) {
	var best *models.CategorizationRule
	bestScore := 0.0

	for i := range e.rules {
		rule := &e.rules[i]
		score := e.Score(rule, tx, info)
		if score <= 0 {
			continue
		}
		if score > bestScore || (score == bestScore && best != nil && rule.Priority < best.Priority) {
			best, bestScore = rule, score
		}
	}

	return best, bestScore
}

// Score computes the non-negative match score of one rule against one
// transaction. Zero means no match. The amount gate applies to every rule
// type before any pattern logic runs.
func (e *Engine) Score(rule *models.CategorizationRule, tx *models.RawTransaction, info models.MerchantInfo) float64 {
	if !rule.AmountInRange(tx.Amount()) {
		return 0
	}

	boost := priorityBoost(rule.Priority)
	text := rule.FieldText(tx.Remarks, info.Merchant)

	switch rule.Type {
	case models.RuleTypeDeposit:
		if !tx.IsDeposit() {
			return 0
		}
		if rule.Pattern == "" {
			return depositBareScore + boost
		}
		kw := bestKeywordScore(rule.Pattern, text)
		if kw == 0 {
			return 0
		}
		return depositPatternScore + kw + boost

	case models.RuleTypeKeyword:
		kw := bestKeywordScore(rule.Pattern, text)
		if kw == 0 {
			return 0
		}
		return keywordBaseScore + kw + boost

	case models.RuleTypeRegex:
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			// A bad rule must not break the run; it simply never matches.
			e.logger.WithError(&parsererror.InvalidRuleExpressionError{Pattern: rule.Pattern, Err: err}).
				Warn("Skipping rule with invalid expression")
			return 0
		}
		if !re.MatchString(text) {
			return 0
		}
		return regexMatchScore + boost

	case models.RuleTypeMerchant:
		if merchant.Normalize(rule.Pattern) != merchant.Normalize(info.Merchant) {
			return 0
		}
		return merchantMatchScore + boost

	case models.RuleTypeAmount:
		return amountMatchScore + boost
	}

	return 0
}

// bestKeywordScore scores a "|"-delimited keyword pattern against text and
// returns the best keyword's contribution: a word-boundary hit outranks a
// bare substring hit, and longer keywords score higher.
func bestKeywordScore(pattern, text string) float64 {
	upperText := strings.ToUpper(text)

	best := 0.0
	for _, keyword := range strings.Split(pattern, "|") {
		keyword = strings.ToUpper(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}

		compactLen := len(strings.ReplaceAll(keyword, " ", ""))
		if compactLen > lengthBoostCap {
			compactLen = lengthBoostCap
		}
		lengthBoost := float64(compactLen) * lengthBoostFactor

		var score float64
		switch {
		case matchesAtBoundary(upperText, keyword):
			score = wordBoundaryBonus + lengthBoost
		case strings.Contains(upperText, keyword):
			score = substringBonus + lengthBoost
		}
		if score > best {
			best = score
		}
	}
	return best
}

// matchesAtBoundary reports whether keyword appears in text delimited by
// non-alphanumeric characters on both sides.
func matchesAtBoundary(text, keyword string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], keyword)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(keyword)
		if (idx == 0 || !isAlphanumeric(text[idx-1])) &&
			(end == len(text) || !isAlphanumeric(text[end])) {
			return true
		}
		start = idx + 1
	}
}

func isAlphanumeric(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// priorityBoost rewards rules the caller ranked higher: priority 0 earns the
// full boost, priorities at or beyond the cap earn none.
func priorityBoost(priority int) float64 {
	if priority < 0 {
		priority = 0
	}
	if priority > priorityBoostCap {
		priority = priorityBoostCap
	}
	return float64(priorityBoostCap-priority) * priorityBoostFactor
}

// Fallback keyword groups, applied in order once rules and hints are
// exhausted.
var (
	transferKeywords = []string{"ATM", "CASH", "SELF TRANSFER"}
	salaryKeywords   = []string{"SALARY", "PAYROLL"}
	refundKeywords   = []string{"REFUND", "REVERSAL", "CASHBACK", "REWARD"}
)

func fallbackCategory(tx *models.RawTransaction) string {
	upper := strings.ToUpper(tx.Remarks)

	if containsAny(upper, transferKeywords) {
		return models.CategoryTransfers
	}
	if tx.IsDeposit() {
		if containsAny(upper, salaryKeywords) {
			return models.CategorySalary
		}
		if containsAny(upper, refundKeywords) {
			return models.CategoryRefunds
		}
		return models.CategoryIncome
	}
	return models.CategoryUncategorized
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
