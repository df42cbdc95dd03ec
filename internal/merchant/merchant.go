// Package merchant derives a normalized merchant name and payment channel
// from noisy statement narrations.
package merchant

import (
	"regexp"
	"strings"

	"finsight/bankstmt/internal/models"
)

// noiseWords are segment values that describe the transfer mechanics rather
// than a counterparty and never qualify as a merchant.
var noiseWords = map[string]struct{}{
	"UPI": {}, "IMPS": {}, "NEFT": {}, "RTGS": {}, "MMT": {}, "BIL": {},
	"VIN": {}, "TRF": {}, "REF": {}, "ACCOUNT": {}, "CARD": {}, "ATM": {},
	"CHEQUE": {}, "CHQ": {}, "INB": {}, "POS": {}, "PAYMENT": {},
	"TRANSFER": {}, "BANK": {}, "LTD": {}, "PVT": {},
}

var (
	segmentDelimiters = regexp.MustCompile(`[/|:;\-_*]`)
	nonMerchantRunes  = regexp.MustCompile(`[^A-Z0-9@&]+`)
	digitsOnly        = regexp.MustCompile(`^[0-9]+$`)
	letter            = regexp.MustCompile(`[A-Za-z]`)
)

// channelBucket couples narration prefix detection with the bucket's
// fallback label and payment method.
type channelBucket struct {
	method   models.PaymentMethod
	fallback string
	matches  func(upper string) bool
}

func prefixMatch(prefixes ...string) func(string) bool {
	return func(upper string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(upper, p) {
				return true
			}
		}
		return false
	}
}

func keywordMatch(keywords ...string) func(string) bool {
	return func(upper string) bool {
		for _, k := range keywords {
			if strings.Contains(upper, k) {
				return true
			}
		}
		return false
	}
}

// Buckets are checked in order; first match wins.
var channelBuckets = []channelBucket{
	{models.MethodUPI, "Unknown UPI", prefixMatch("UPI/")},
	{models.MethodNEFT, "NEFT Transfer", prefixMatch("NEFT")},
	{models.MethodIMPS, "IMPS Transfer", prefixMatch("MMT/IMPS", "IMPS")},
	{models.MethodOther, "Bill Payment", prefixMatch("BIL/")},
	{models.MethodCard, "Card Payment", prefixMatch("VIN/")},
	{models.MethodATM, "ATM Withdrawal", keywordMatch("ATM", "CASH WDL", "CASH WITHDRAWAL")},
	{models.MethodCheque, "Cheque", keywordMatch("CHEQUE", "CHQ", "CLG")},
}

// Extract classifies a narration into its payment channel and derives the
// merchant name. Every bucket shares the same token heuristic and differs
// only in its fallback label.
func Extract(narration string) models.MerchantInfo {
	upper := strings.ToUpper(strings.TrimSpace(narration))

	for _, bucket := range channelBuckets {
		if bucket.matches(upper) {
			return models.MerchantInfo{
				Merchant: merchantToken(upper, bucket.fallback),
				Method:   bucket.method,
			}
		}
	}

	return models.MerchantInfo{
		Merchant: merchantToken(upper, "Unknown"),
		Method:   models.MethodOther,
	}
}

// ExtractForCard derives a merchant directly from a credit-card narration.
// Card statements carry no channel prefixes, so the method is always CARD.
func ExtractForCard(narration string) models.MerchantInfo {
	upper := strings.ToUpper(strings.TrimSpace(narration))
	return models.MerchantInfo{
		Merchant: merchantToken(upper, "Unknown Merchant"),
		Method:   models.MethodCard,
	}
}

// merchantToken returns the first merchant-like narration segment,
// normalized, or the bucket fallback when none qualifies.
func merchantToken(upper, fallback string) string {
	for _, segment := range segmentDelimiters.Split(upper, -1) {
		// VPA handles carry the merchant before the @.
		if at := strings.Index(segment, "@"); at >= 0 {
			segment = segment[:at]
		}
		segment = strings.TrimSpace(segment)
		if isMerchantLike(segment) {
			return Normalize(segment)
		}
	}
	return fallback
}

// isMerchantLike reports whether a narration segment plausibly names a
// counterparty: it has a letter, is at least 3 compact characters, is not a
// bare number and is not transfer-mechanics noise.
func isMerchantLike(segment string) bool {
	if segment == "" {
		return false
	}
	compact := strings.ReplaceAll(segment, " ", "")
	if len(compact) < 3 {
		return false
	}
	if !letter.MatchString(segment) {
		return false
	}
	if digitsOnly.MatchString(compact) {
		return false
	}
	if _, noisy := noiseWords[compact]; noisy {
		return false
	}
	return true
}

// Normalize uppercases a merchant name and collapses every run of
// characters outside [A-Z0-9@&] into a single space.
func Normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = nonMerchantRunes.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// HintKey is the normalized grouping key used for historical merchant
// hints: the normalized name with the VPA leftovers stripped.
func HintKey(name string) string {
	key := Normalize(name)
	key = strings.ReplaceAll(key, "@", "")
	key = strings.ReplaceAll(key, "&", "")
	return strings.TrimSpace(key)
}
