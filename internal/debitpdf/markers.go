package debitpdf

import (
	"regexp"
	"strings"
)

// compact lowercases a line and strips everything but letters, digits and
// slashes, so banner checks survive the erratic spacing of PDF extraction.
func compact(line string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(line) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '/':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// terminalPrefixes end the transaction section outright.
var terminalPrefixes = []string{
	"accountrelatedotherinformation",
	"total",
}

// boilerplatePrefixes are table furniture that must not leak into a block's
// narration.
var boilerplatePrefixes = []string{
	"openingbalance",
	"closingbalance",
	"carriedforward",
	"page",
	"statementofaccount",
	"statementsummary",
	"thisisacomputergenerated",
	"registeredoffice",
	"datemode",
}

func isTerminalMarker(line string) bool {
	c := compact(line)
	for _, prefix := range terminalPrefixes {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func isTotalBanner(line string) bool {
	return strings.HasPrefix(compact(line), "total")
}

func isBoilerplate(line string) bool {
	c := compact(line)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// isColumnHeader matches the literal header row of the transaction table.
func isColumnHeader(line string) bool {
	c := compact(line)
	return strings.Contains(c, "narration") &&
		(strings.Contains(c, "withdrawal") || strings.Contains(c, "chqno"))
}

// isBroughtForward matches B/F opening-balance carry-over rows, which
// establish the opening balance and contribute no transaction.
func isBroughtForward(narration string) bool {
	c := compact(narration)
	return strings.Contains(c, "b/f") || strings.Contains(c, "broughtforward") ||
		strings.Contains(c, "balanceforwarded")
}

// shortStandalone are short tokens that legitimately stand alone inside a
// narration segment and must not be glued onto the preceding token.
var shortStandalone = map[string]struct{}{
	"of": {}, "to": {}, "at": {}, "on": {}, "in": {}, "by": {},
	"no": {}, "rs": {}, "cr": {}, "dr": {},
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenGap     = regexp.MustCompile(`\s*-\s*`)
)

// longTokenLength is the minimum length at which a token is considered a
// full word that a trailing glued fragment may belong to.
const longTokenLength = 5

// cleanNarration normalizes a block narration against inconsistent PDF word
// spacing. The narration is treated as "/"-delimited segments: glued or
// broken tokens are rejoined per segment, the first and third segments are
// compacted with no internal spaces, and the middle segment keeps its
// spacing but is de-hyphenated.
func cleanNarration(narration string) string {
	narration = whitespaceRun.ReplaceAllString(strings.TrimSpace(narration), " ")
	if narration == "" {
		return ""
	}

	segments := strings.Split(narration, "/")
	for i, seg := range segments {
		seg = rejoinTokens(strings.TrimSpace(seg))
		switch i {
		case 0, 2:
			seg = strings.ReplaceAll(seg, " ", "")
		case 1:
			seg = hyphenGap.ReplaceAllString(seg, "")
		}
		segments[i] = seg
	}

	return strings.Join(segments, "/")
}

// rejoinTokens repairs word fragments inside one segment: single-character
// fragments always glue onto their neighbor, and a short trailing fragment
// glues onto a preceding long token unless it is a legitimate standalone
// word.
func rejoinTokens(segment string) string {
	tokens := strings.Fields(segment)
	if len(tokens) < 2 {
		return segment
	}

	merged := []string{tokens[0]}
	for _, tok := range tokens[1:] {
		last := merged[len(merged)-1]
		_, standalone := shortStandalone[strings.ToLower(tok)]
		switch {
		case len(tok) == 1:
			merged[len(merged)-1] = last + tok
		case len(tok) <= 2 && !standalone && len(last) >= longTokenLength:
			merged[len(merged)-1] = last + tok
		default:
			merged = append(merged, tok)
		}
	}

	return strings.Join(merged, " ")
}
