package categorizer

import (
	"finsight/bankstmt/internal/merchant"
	"finsight/bankstmt/internal/models"
)

// Hint gating: a merchant needs at least MinHintCount supporting historical
// transactions and a majority share of at least MinHintConfidence before its
// learned category is trusted.
const (
	MinHintCount      = 2
	MinHintConfidence = 0.65
)

// minHintKeyLength drops degenerate merchant keys ("A", "NA") that would
// otherwise aggregate unrelated transactions.
const minHintKeyLength = 3

// BuildHints derives merchant-to-category hints from a historical
// transaction list. The list is read-only; the result is ephemeral and
// rebuilt per categorization run. User overrides count as the transaction's
// category, so confirmed corrections reinforce future runs.
func BuildHints(history []models.HistoricalTransaction) map[string]models.MerchantCategoryHint {
	type tally struct {
		total      int
		byCategory map[string]int
	}

	tallies := make(map[string]*tally)
	for i := range history {
		h := &history[i]
		key := merchant.HintKey(h.MerchantName)
		if len(key) < minHintKeyLength {
			continue
		}

		t := tallies[key]
		if t == nil {
			t = &tally{byCategory: make(map[string]int)}
			tallies[key] = t
		}
		t.total++
		if category := h.Category(); category != "" && category != models.CategoryUncategorized {
			t.byCategory[category]++
		}
	}

	hints := make(map[string]models.MerchantCategoryHint, len(tallies))
	for key, t := range tallies {
		category, count := majorityCategory(t.byCategory)
		if category == "" || count < MinHintCount {
			continue
		}
		confidence := float64(count) / float64(t.total)
		if confidence < MinHintConfidence {
			continue
		}
		hints[key] = models.MerchantCategoryHint{
			CategoryID: category,
			Count:      count,
			Confidence: confidence,
		}
	}

	return hints
}

// majorityCategory picks the category with the most supporting transactions.
// Count ties resolve to the lexicographically smaller id so hint building
// stays deterministic across runs.
func majorityCategory(byCategory map[string]int) (string, int) {
	best, bestCount := "", 0
	for category, count := range byCategory {
		if count > bestCount || (count == bestCount && category < best) {
			best, bestCount = category, count
		}
	}
	return best, bestCount
}
