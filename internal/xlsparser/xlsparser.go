// Package xlsparser parses debit account statements exported as
// spreadsheets. It locates the statement metadata and the transaction table
// inside the raw cell grid produced by the tabular extractor.
package xlsparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"finsight/bankstmt/internal/dateutils"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
	"finsight/bankstmt/internal/tabular"

	"github.com/shopspring/decimal"
)

// Transaction table column order, relative to the serial-number column.
const (
	colSerial = iota
	colValueDate
	colTxnDate
	colCheque
	colRemarks
	colWithdrawal
	colDeposit
	colBalance
)

var (
	accountNumberRun  = regexp.MustCompile(`\d{10,}`)
	accountHolderTail = regexp.MustCompile(`-\s*([A-Za-z][A-Za-z .]*[A-Za-z.])\s*$`)
	slashDate         = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

// Parse scans the grid for the statement markers and the transaction table
// and returns the normalized statement. The three markers (account row,
// period row, header row) may appear in any order before the first
// transaction row.
func Parse(grid tabular.Grid, filePath string, logger logging.Logger) (*models.ParsedStatement, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger = logger.WithField(logging.FieldParser, "debit-xls")

	stmt := &models.ParsedStatement{Type: models.StatementTypeDebit}

	headerRow := -1
	colOffset := 0
	var declaredFrom, declaredTo time.Time

	for i, row := range grid {
		rowText := strings.ToLower(strings.Join(row, " "))

		// The legend below the table restarts numbering and repeats words
		// like "from"; the marker scan must not read past the first
		// transaction row.
		if headerRow != -1 {
			if serial, err := strconv.Atoi(strings.TrimSpace(grid.Cell(i, colOffset+colSerial))); err == nil && serial > 0 {
				break
			}
		}

		if stmt.AccountNumber == "" && strings.Contains(rowText, "account number") {
			joined := strings.Join(row, " ")
			stmt.AccountNumber = accountNumberRun.FindString(joined)
			if m := accountHolderTail.FindStringSubmatch(joined); m != nil {
				stmt.AccountHolder = strings.TrimSpace(m[1])
			}
			continue
		}

		if declaredFrom.IsZero() && strings.Contains(rowText, "from") && strings.Contains(rowText, "to") {
			if dates := slashDate.FindAllString(strings.Join(row, " "), 2); len(dates) == 2 {
				if t, _, err := dateutils.ParseDate(dates[0]); err == nil {
					declaredFrom = t
				}
				if t, _, err := dateutils.ParseDate(dates[1]); err == nil {
					declaredTo = t
				}
			}
			continue
		}

		if headerRow == -1 && strings.Contains(rowText, "s no") {
			headerRow = i
			// Some exports ship a spacer column before the header; every
			// column read below shifts right by one in that case.
			if len(row) > 0 && strings.TrimSpace(row[0]) == "" {
				colOffset = 1
			}
		}
	}

	if headerRow == -1 {
		logger.Warn("Header row not found in spreadsheet")
		return nil, &parsererror.HeaderNotFoundError{FilePath: filePath, Marker: "s no"}
	}

	var txDates []time.Time
	for i := headerRow + 1; i < len(grid); i++ {
		serialText := strings.TrimSpace(grid.Cell(i, colOffset+colSerial))
		serial, err := strconv.Atoi(serialText)
		if err != nil || serial <= 0 {
			continue
		}

		remarks := strings.TrimSpace(grid.Cell(i, colOffset+colRemarks))
		lowerRemarks := strings.ToLower(remarks)
		// The trailing legend section restarts numbering; stop there.
		if strings.Contains(lowerRemarks, "legend") || strings.Contains(lowerRemarks, "note") {
			break
		}

		tx := models.RawTransaction{
			SerialNo:     serial,
			ChequeNumber: strings.TrimSpace(grid.Cell(i, colOffset+colCheque)),
			Remarks:      remarks,
			Withdrawal:   parseCellAmount(grid.Cell(i, colOffset+colWithdrawal)),
			Deposit:      parseCellAmount(grid.Cell(i, colOffset+colDeposit)),
			Balance:      parseCellAmount(grid.Cell(i, colOffset+colBalance)),
		}
		if t, _, err := dateutils.ParseDate(grid.Cell(i, colOffset+colValueDate)); err == nil {
			tx.ValueDate = t
		}
		if t, _, err := dateutils.ParseDate(grid.Cell(i, colOffset+colTxnDate)); err == nil {
			tx.TransactionDate = t
		}

		if remarks == "" {
			continue
		}
		if !tx.Withdrawal.IsPositive() && !tx.Deposit.IsPositive() && !tx.Balance.IsPositive() {
			continue
		}

		stmt.Transactions = append(stmt.Transactions, tx)
		if !tx.TransactionDate.IsZero() {
			txDates = append(txDates, tx.TransactionDate)
		}
	}

	if len(stmt.Transactions) == 0 {
		return nil, &parsererror.NoTransactionsError{Parser: "debit-xls"}
	}

	stmt.DateFrom, stmt.DateTo = dateutils.ReconcilePeriod(declaredFrom, declaredTo, txDates)

	logger.Info("Parsed spreadsheet statement",
		logging.Field{Key: logging.FieldCount, Value: len(stmt.Transactions)},
		logging.Field{Key: "account", Value: stmt.AccountNumber})
	return stmt, nil
}

// parseCellAmount parses a spreadsheet amount cell, yielding zero for any
// malformed or empty value.
func parseCellAmount(cell string) decimal.Decimal {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return decimal.Zero
	}
	cell = strings.ReplaceAll(cell, ",", "")
	dec, err := decimal.NewFromString(cell)
	if err != nil {
		return decimal.Zero
	}
	return dec
}
