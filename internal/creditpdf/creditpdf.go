// Package creditpdf parses credit-card statements rendered as PDF. The
// transaction ledger sits on the first pages and uses a fixed line shape:
// date, bank serial, narration, reward points, an optional foreign-currency
// pair, the amount, and an optional CR suffix marking a credit.
package creditpdf

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsight/bankstmt/internal/amountutils"
	"finsight/bankstmt/internal/dateutils"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
)

// MaxPages is the default bound on how many leading pages the parser
// reads; credit statements place the ledger first.
const MaxPages = 2

// maxDetailLength is the longest trailing detail clause still considered
// part of the transaction; anything longer is footer text bleeding in.
const maxDetailLength = 40

var (
	// transactionStart anchors a ledger entry: a day-first date followed by
	// the bank's 8+ digit transaction serial.
	transactionStart = regexp.MustCompile(`^\s*\d{2}/\d{2}/\d{4}\s+\d{8,}\b`)

	// transactionShape decomposes a fully accumulated ledger entry.
	transactionShape = regexp.MustCompile(`^\s*(\d{2}/\d{2}/\d{4})\s+(\d{8,})\s+(.*?)\s+(\d{1,6})(?:\s+(\d+(?:\.\d+)?)\s+([A-Z]{3}))?\s+(\d[\d,]*\.\d{2})(\s+CR\b)?(?:\s+(.*))?$`)

	cardNumberRun = regexp.MustCompile(`[0-9Xx*]{8,}`)
	slashDate     = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	integerToken  = regexp.MustCompile(`\d+`)
)

// Banner prefixes (compacted) that end transaction accumulation.
var terminalPrefixes = []string{
	"earnings",
	"spendsoverview",
	"paymentsummary",
	"importantinformation",
	"rewardpointssummary",
	"endofstatement",
}

// Banner prefixes a trailing detail clause is checked against before it is
// kept as narration.
var detailBoilerplate = []string{
	"page",
	"statement",
	"gstin",
	"creditlimit",
}

// Parse extracts the ledger and statement metadata from the reconstructed
// lines of the first maxPages pages. A non-positive maxPages falls back to
// the MaxPages default.
func Parse(pages [][]string, filePath string, maxPages int, logger logging.Logger) (*models.ParsedStatement, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger = logger.WithField(logging.FieldParser, "credit-pdf")

	if maxPages <= 0 {
		maxPages = MaxPages
	}
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	var lines []string
	for _, page := range pages {
		lines = append(lines, page...)
	}

	stmt := &models.ParsedStatement{Type: models.StatementTypeCredit}
	extractMetadata(lines, stmt)

	var txDates []time.Time
	var pending string
	flush := func() {
		if pending == "" {
			return
		}
		if tx, ok := parseEntry(pending, len(stmt.Transactions)+1); ok {
			stmt.Transactions = append(stmt.Transactions, tx)
			txDates = append(txDates, tx.TransactionDate)
		} else {
			logger.Debug("Discarding unparseable ledger entry",
				logging.Field{Key: "line", Value: pending})
		}
		pending = ""
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case transactionStart.MatchString(line):
			flush()
			pending = line
		case isTerminalBanner(line):
			flush()
		case pending != "":
			pending += " " + line
		}
	}
	flush()

	if len(stmt.Transactions) == 0 {
		return nil, &parsererror.NoTransactionsError{Parser: "credit-pdf"}
	}

	stmt.DateFrom, stmt.DateTo = dateutils.ReconcilePeriod(stmt.DateFrom, stmt.DateTo, txDates)

	logger.Info("Parsed credit card statement",
		logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)})
	return stmt, nil
}

// parseEntry matches one accumulated ledger entry against the fixed shape.
// The running balance is not printed on credit statements, so Balance stays
// zero by design of the statement, not as an error.
func parseEntry(entry string, serial int) (models.RawTransaction, bool) {
	m := transactionShape.FindStringSubmatch(entry)
	if m == nil {
		return models.RawTransaction{}, false
	}

	date, _, err := dateutils.ParseDate(m[1])
	if err != nil {
		return models.RawTransaction{}, false
	}

	narration := strings.TrimSpace(m[3])
	if detail := strings.TrimSpace(m[9]); detail != "" && keepDetail(detail) {
		narration += " " + detail
	}

	rewardPoints, _ := strconv.ParseInt(m[4], 10, 64)
	amount := amountutils.ParseAmount(m[7])

	tx := models.RawTransaction{
		SerialNo:        serial,
		ValueDate:       date,
		TransactionDate: date,
		Remarks:         narration,
		RewardPoints:    rewardPoints,
		Balance:         decimal.Zero,
	}
	if m[8] != "" { // CR suffix: a credit to the card, not a charge
		tx.Deposit = amount
	} else {
		tx.Withdrawal = amount
	}
	return tx, true
}

func keepDetail(detail string) bool {
	if len(detail) > maxDetailLength {
		return false
	}
	c := compact(detail)
	for _, prefix := range detailBoilerplate {
		if strings.HasPrefix(c, prefix) {
			return false
		}
	}
	return true
}

func isTerminalBanner(line string) bool {
	c := compact(line)
	for _, prefix := range terminalPrefixes {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func compact(line string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(line) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractMetadata pulls the account fields, statement period and cashback
// summary out of the same line corpus via literal anchors. Only lines before
// the first ledger entry are considered for account identity.
func extractMetadata(lines []string, stmt *models.ParsedStatement) {
	firstTx := len(lines)
	for i, line := range lines {
		if transactionStart.MatchString(line) {
			firstTx = i
			break
		}
	}

	for _, line := range lines[:firstTx] {
		lower := strings.ToLower(line)
		switch {
		case stmt.AccountNumber == "" && strings.Contains(lower, "card number"):
			stmt.AccountNumber = cardNumberRun.FindString(line)
		case stmt.AccountHolder == "" && strings.Contains(lower, "card member name"):
			if idx := strings.LastIndexAny(line, ":"); idx >= 0 {
				stmt.AccountHolder = strings.TrimSpace(line[idx+1:])
			}
		case stmt.DateFrom.IsZero() && strings.Contains(lower, "statement period"):
			if dates := slashDate.FindAllString(line, 2); len(dates) == 2 {
				if t, _, err := dateutils.ParseDate(dates[0]); err == nil {
					stmt.DateFrom = t
				}
				if t, _, err := dateutils.ParseDate(dates[1]); err == nil {
					stmt.DateTo = t
				}
			}
		}
	}

	stmt.CashbackEarned, stmt.CashbackTransferred = extractCashback(lines)
}

// extractCashback reads the first two integers inside the bounded text
// window between the EARNINGS banner and the SPENDS OVERVIEW banner. The
// banner line itself is part of the window; compact layouts print the
// earned amount right on it.
func extractCashback(lines []string) (int64, int64) {
	inWindow := false
	var found []int64
	for _, line := range lines {
		c := compact(line)
		if !inWindow {
			if !strings.HasPrefix(c, "earnings") {
				continue
			}
			inWindow = true
		} else if strings.HasPrefix(c, "spendsoverview") {
			break
		}
		for _, tok := range integerToken.FindAllString(line, -1) {
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				continue
			}
			found = append(found, n)
			if len(found) == 2 {
				return found[0], found[1]
			}
		}
	}
	if len(found) == 1 {
		return found[0], 0
	}
	return 0, 0
}
