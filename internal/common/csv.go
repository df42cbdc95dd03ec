// Package common provides the shared CSV output path used by the CLI
// commands.
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/models"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger.
func SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	log = logger
}

// csvRow is the flat, string-typed projection of a categorized transaction
// written to CSV output.
type csvRow struct {
	SerialNo        int    `csv:"SerialNo"`
	TransactionDate string `csv:"TransactionDate"`
	ValueDate       string `csv:"ValueDate"`
	Remarks         string `csv:"Remarks"`
	ChequeNumber    string `csv:"ChequeNumber"`
	Withdrawal      string `csv:"Withdrawal"`
	Deposit         string `csv:"Deposit"`
	Balance         string `csv:"Balance"`
	RewardPoints    int64  `csv:"RewardPoints"`
	Merchant        string `csv:"Merchant"`
	PaymentMethod   string `csv:"PaymentMethod"`
	Category        string `csv:"Category"`
	StatementType   string `csv:"StatementType"`
}

const csvDateLayout = "02/01/2006"

func toCSVRow(tx *models.CategorizedTransaction) csvRow {
	row := csvRow{
		SerialNo:      tx.SerialNo,
		Remarks:       tx.Remarks,
		ChequeNumber:  tx.ChequeNumber,
		Withdrawal:    tx.Withdrawal.StringFixed(2),
		Deposit:       tx.Deposit.StringFixed(2),
		Balance:       tx.Balance.StringFixed(2),
		RewardPoints:  tx.RewardPoints,
		Merchant:      tx.MerchantName,
		PaymentMethod: string(tx.PaymentMethod),
		Category:      tx.EffectiveCategory(),
		StatementType: string(tx.StatementType),
	}
	if !tx.TransactionDate.IsZero() {
		row.TransactionDate = tx.TransactionDate.Format(csvDateLayout)
	}
	if !tx.ValueDate.IsZero() {
		row.ValueDate = tx.ValueDate.Format(csvDateLayout)
	}
	return row
}

// WriteTransactionsToCSV writes categorized transactions to a CSV file.
func WriteTransactionsToCSV(transactions []models.CategorizedTransaction, csvFile string) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	log.Info("Writing transactions to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := make([]csvRow, 0, len(transactions))
	for i := range transactions {
		rows = append(rows, toCSVRow(&transactions[i]))
	}

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("error writing CSV file: %w", err)
	}

	log.Info("Successfully wrote transactions to CSV file",
		logging.Field{Key: logging.FieldCount, Value: len(rows)})
	return nil
}
