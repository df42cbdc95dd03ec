// Package debitpdf parses debit account statements rendered as PDF. The
// transaction table is recovered line by line with an explicit state
// machine: a transaction block gathers up to two prelude lines, one
// date-leading line and any continuation lines, and is finalized when the
// next date line or a terminal banner appears.
package debitpdf

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsight/bankstmt/internal/amountutils"
	"finsight/bankstmt/internal/dateutils"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
)

// scanState is the position of the scanner within the document.
type scanState int

const (
	stateScanningPrelude scanState = iota // before the transaction table
	stateInTransactions                   // inside the table
	stateDone                             // past the terminal banner
)

// maxPreludeLines caps how many non-date lines directly preceding a date
// line are folded into the block narration.
const maxPreludeLines = 2

// parser accumulates one transaction block at a time while scanning.
type parser struct {
	state   scanState
	prelude []string // candidate narration lines seen before the next date
	block   *block
	logger  logging.Logger

	openingBalance  decimal.NullDecimal
	closingBalance  decimal.NullDecimal
	previousBalance decimal.Decimal
	hasPrevious     bool

	transactions []models.RawTransaction
}

// block is a transaction block under accumulation.
type block struct {
	date  time.Time
	lines []string // prelude + date remainder + trailing narration
}

// Parse extracts the transactions from reconstructed statement lines, pages
// flattened in order.
func Parse(pages [][]string, filePath string, logger logging.Logger) (*models.ParsedStatement, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger = logger.WithField(logging.FieldParser, "debit-pdf")

	p := &parser{logger: logger}
	for _, page := range pages {
		for _, line := range page {
			if p.state == stateDone {
				break
			}
			p.consume(line)
		}
	}
	p.finalizeBlock()

	if len(p.transactions) == 0 {
		return nil, &parsererror.NoTransactionsError{Parser: "debit-pdf"}
	}

	stmt := &models.ParsedStatement{
		Type:           models.StatementTypeDebit,
		Transactions:   p.transactions,
		OpeningBalance: p.openingBalance,
		ClosingBalance: p.closingBalance,
	}
	if !stmt.ClosingBalance.Valid {
		stmt.ClosingBalance = decimal.NullDecimal{
			Decimal: p.transactions[len(p.transactions)-1].Balance,
			Valid:   true,
		}
	}

	dates := make([]time.Time, 0, len(p.transactions))
	for _, tx := range p.transactions {
		dates = append(dates, tx.TransactionDate)
	}
	stmt.DateFrom, stmt.DateTo = dateutils.ReconcilePeriod(time.Time{}, time.Time{}, dates)

	logger.Info("Parsed debit PDF statement",
		logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)})
	return stmt, nil
}

// consume advances the state machine by one reconstructed line.
func (p *parser) consume(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	switch p.state {
	case stateScanningPrelude:
		if isColumnHeader(line) {
			p.state = stateInTransactions
			return
		}
		if dateutils.HasLeadingDate(line) {
			p.state = stateInTransactions
			p.consume(line)
		}
	case stateInTransactions:
		p.consumeTableLine(line)
	case stateDone:
	}
}

func (p *parser) consumeTableLine(line string) {
	if isTerminalMarker(line) {
		p.finalizeBlock()
		if isTotalBanner(line) {
			if _, amounts := amountutils.SplitTrailingAmounts(line); len(amounts) > 0 {
				p.closingBalance = decimal.NullDecimal{
					Decimal: amounts[len(amounts)-1],
					Valid:   true,
				}
				// Totals may repeat per page; keep scanning for the last one.
				return
			}
		}
		p.state = stateDone
		return
	}

	if date, rest, ok := dateutils.LeadingDate(line); ok {
		p.finalizeBlock()
		p.block = &block{date: date}
		// Fold in the narration lines that printed above the date row.
		if n := len(p.prelude); n > maxPreludeLines {
			p.prelude = p.prelude[n-maxPreludeLines:]
		}
		p.block.lines = append(p.block.lines, p.prelude...)
		p.prelude = nil
		if rest != "" {
			p.block.lines = append(p.block.lines, rest)
		}
		return
	}

	if isBoilerplate(line) {
		return
	}

	// Undated brought-forward rows establish the opening balance and are
	// never part of any block's narration.
	if p.block == nil && isBroughtForward(line) {
		if _, amounts := amountutils.SplitTrailingAmounts(line); len(amounts) > 0 {
			bal := amounts[len(amounts)-1]
			p.openingBalance = decimal.NullDecimal{Decimal: bal, Valid: true}
			p.previousBalance = bal
			p.hasPrevious = true
		}
		return
	}

	if p.block != nil {
		p.block.lines = append(p.block.lines, line)
	} else {
		p.prelude = append(p.prelude, line)
	}
}

// finalizeBlock turns the accumulated block into a transaction, if any.
func (p *parser) finalizeBlock() {
	if p.block == nil {
		return
	}
	b := p.block
	p.block = nil

	text := strings.Join(b.lines, " ")
	narration, amounts := amountutils.SplitTrailingAmounts(text)

	// Brought-forward rows only establish the opening balance.
	if isBroughtForward(narration) {
		if len(amounts) > 0 {
			bal := amounts[len(amounts)-1]
			p.openingBalance = decimal.NullDecimal{Decimal: bal, Valid: true}
			p.previousBalance = bal
			p.hasPrevious = true
		}
		return
	}

	if len(amounts) < 2 {
		p.logger.Debug("Discarding block without amount tokens",
			logging.Field{Key: "narration", Value: narration})
		return
	}

	balance := amounts[len(amounts)-1]
	var deposit, withdrawal decimal.Decimal

	if len(amounts) >= 3 {
		deposit, withdrawal = amounts[len(amounts)-3], amounts[len(amounts)-2]
		deposit, withdrawal = p.reconcileTriplet(deposit, withdrawal, balance)
	} else {
		deposit, withdrawal = p.inferDirection(amounts[0], balance)
	}

	if !deposit.IsPositive() && !withdrawal.IsPositive() {
		return
	}

	tx := models.RawTransaction{
		SerialNo:        len(p.transactions) + 1,
		ValueDate:       b.date,
		TransactionDate: b.date,
		Remarks:         cleanNarration(narration),
		Withdrawal:      withdrawal,
		Deposit:         deposit,
		Balance:         balance,
	}
	p.transactions = append(p.transactions, tx)
	p.previousBalance = balance
	p.hasPrevious = true
}

// reconcileTriplet checks deposit/withdrawal against the running balance and
// repairs column misreads: swapped columns first, then a full re-derivation
// from the balance delta.
func (p *parser) reconcileTriplet(deposit, withdrawal, balance decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !p.hasPrevious {
		return deposit, withdrawal
	}
	if amountutils.Reconciles(p.previousBalance, deposit, withdrawal, balance) {
		return deposit, withdrawal
	}
	if amountutils.Reconciles(p.previousBalance, withdrawal, deposit, balance) {
		return withdrawal, deposit
	}

	delta := balance.Sub(p.previousBalance)
	if delta.IsPositive() {
		return delta, decimal.Zero
	}
	return decimal.Zero, delta.Neg()
}

// inferDirection assigns a single ambiguous amount to deposit or withdrawal
// using the balance delta. On an exactly flat balance the amount falls back
// to a comparison against the block's carried-forward opening balance; when
// that comparison is also a tie the row is treated as a withdrawal.
func (p *parser) inferDirection(amount, balance decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	amount = amount.Abs()

	if p.hasPrevious {
		delta := balance.Sub(p.previousBalance)
		switch {
		case !amountutils.NearlyZero(delta) && delta.IsPositive():
			return amount, decimal.Zero
		case !amountutils.NearlyZero(delta) && delta.IsNegative():
			return decimal.Zero, amount
		}
	}

	if p.openingBalance.Valid && balance.GreaterThan(p.openingBalance.Decimal) {
		return amount, decimal.Zero
	}
	return decimal.Zero, amount
}
