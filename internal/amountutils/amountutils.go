// Package amountutils provides monetary token parsing shared by the
// statement parsers. Malformed numeric text never fails: it parses to zero.
package amountutils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the maximum difference at which two balances are considered
// equal when reconciling running-balance arithmetic.
var Tolerance = decimal.NewFromFloat(0.01)

// amountToken matches a statement amount: optional parentheses for negative,
// digits with optional thousand separators, exactly two decimal places, and
// an optional CR/DR suffix separated by whitespace.
var amountToken = regexp.MustCompile(`\(?\d[\d,]*\.\d{2}\)?(?:\s+(?:CR|DR))?`)

// trailingAmounts matches the amount tokens at the end of a transaction
// block, separated by whitespace.
var trailingAmounts = regexp.MustCompile(`(?:\(?\d[\d,]*\.\d{2}\)?(?:\s+(?:CR|DR))?\s*)+$`)

// ParseAmount converts a statement amount token into a decimal. Thousand
// separators and currency noise are stripped; parentheses mark a negative
// value; unparseable input yields zero.
func ParseAmount(token string) decimal.Decimal {
	token = strings.TrimSpace(token)
	if token == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")") {
		negative = true
		token = token[1 : len(token)-1]
	}
	token = strings.TrimSpace(strings.TrimSuffix(token, "CR"))
	token = strings.TrimSpace(strings.TrimSuffix(token, "DR"))
	token = strings.ReplaceAll(token, ",", "")
	token = strings.ReplaceAll(token, " ", "")

	dec, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		dec = dec.Neg()
	}
	return dec
}

// SplitTrailingAmounts separates the trailing run of amount tokens from the
// narration text of a transaction block. It returns the narration prefix and
// the parsed amounts in order of appearance.
func SplitTrailingAmounts(text string) (string, []decimal.Decimal) {
	text = strings.TrimSpace(text)
	loc := trailingAmounts.FindStringIndex(text)
	if loc == nil {
		return text, nil
	}

	tokens := amountToken.FindAllString(text[loc[0]:], -1)
	amounts := make([]decimal.Decimal, 0, len(tokens))
	for _, tok := range tokens {
		amounts = append(amounts, ParseAmount(tok))
	}
	return strings.TrimSpace(text[:loc[0]]), amounts
}

// Reconciles reports whether previousBalance + deposit - withdrawal lands on
// balance within the shared tolerance.
func Reconciles(previousBalance, deposit, withdrawal, balance decimal.Decimal) bool {
	expected := previousBalance.Add(deposit).Sub(withdrawal)
	return expected.Sub(balance).Abs().LessThanOrEqual(Tolerance)
}

// NearlyZero reports whether d is within the shared tolerance of zero.
func NearlyZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Tolerance)
}
