// Package ingest handles statement ingestion commands
package ingest

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"finsight/bankstmt/cmd/root"
	"finsight/bankstmt/internal/common"
	"finsight/bankstmt/internal/config"
	"finsight/bankstmt/internal/fileutils"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/pipeline"
	"finsight/bankstmt/internal/rulestore"
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse a statement file and write categorized transactions to CSV",
	Long: `Parse a bank account statement (XLSX or PDF) or a credit card statement
(PDF), extract merchants, categorize every transaction and write the
result to a CSV file.`,
	Run: ingestFunc,
}

var kind string

func init() {
	Cmd.Flags().StringVarP(&kind, "kind", "k", "debit", "Statement kind: debit or credit")
}

func ingestFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	root.Log.Info("Ingest command called")

	if root.SharedFlags.Input == "" || root.SharedFlags.Output == "" {
		logger.Error("Both --input and --output are required")
		os.Exit(1)
	}

	stmtKind, ok := statementKind(kind)
	if !ok {
		logger.Error("Invalid --kind, must be 'debit' or 'credit'",
			logging.Field{Key: "kind", Value: kind})
		os.Exit(1)
	}

	content, err := fileutils.ReadFile(root.SharedFlags.Input)
	if err != nil {
		logger.WithError(err).Error("Failed to read input file",
			logging.Field{Key: logging.FieldFile, Value: root.SharedFlags.Input})
		os.Exit(1)
	}

	rules := loadRules(logger)

	p := pipeline.New(logger)
	if root.Cfg != nil {
		p.SetCreditPageLimit(root.Cfg.Parsers.Credit.MaxPages)
	}
	result, err := p.Process(content, stmtKind, root.SharedFlags.Input, rules, nil)
	if err != nil {
		logger.WithError(err).Error("Failed to process statement")
		os.Exit(1)
	}

	outputPath := resolveOutputPath(root.SharedFlags.Output, root.Cfg)
	if err := common.WriteTransactionsToCSV(result.Transactions, outputPath); err != nil {
		logger.WithError(err).Error("Failed to write CSV output",
			logging.Field{Key: logging.FieldFile, Value: outputPath})
		os.Exit(1)
	}

	stmt := result.Statement
	fields := []logging.Field{
		{Key: logging.FieldRunID, Value: result.RunID},
		{Key: logging.FieldCount, Value: len(result.Transactions)},
		{Key: "date_from", Value: stmt.DateFrom.Format("2006-01-02")},
		{Key: "date_to", Value: stmt.DateTo.Format("2006-01-02")},
		{Key: "file_hash", Value: stmt.FileHash},
	}
	if stmt.OpeningBalance.Valid {
		fields = append(fields, logging.Field{Key: "opening_balance", Value: stmt.OpeningBalance.Decimal.StringFixed(2)})
	}
	if stmt.ClosingBalance.Valid {
		fields = append(fields, logging.Field{Key: "closing_balance", Value: stmt.ClosingBalance.Decimal.StringFixed(2)})
	}
	logger.Info("Ingest completed", fields...)
}

// resolveOutputPath places relative output paths under the configured
// output directory. Absolute paths and an unset directory pass through.
func resolveOutputPath(output string, cfg *config.Config) string {
	if cfg == nil || cfg.Output.Directory == "" || filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(cfg.Output.Directory, output)
}

func statementKind(s string) (models.StatementType, bool) {
	switch s {
	case "debit":
		return models.StatementTypeDebit, true
	case "credit":
		return models.StatementTypeCredit, true
	}
	return "", false
}

// loadRules loads the configured rule file. A missing rule file is not
// fatal: ingestion still runs and every transaction falls through to the
// keyword-free fallback categories.
func loadRules(logger logging.Logger) []models.CategorizationRule {
	path, err := rulestore.FindConfigFile(root.RulesFile())
	if err != nil {
		logger.Warn("No rule file found, categorizing with fallbacks only",
			logging.Field{Key: logging.FieldFile, Value: root.RulesFile()})
		return nil
	}

	set, err := rulestore.Load(path)
	if err != nil {
		logger.WithError(err).Warn("Failed to load rule file, categorizing with fallbacks only",
			logging.Field{Key: logging.FieldFile, Value: path})
		return nil
	}

	logger.Debug("Loaded rule file",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(set.Rules)})
	return set.Rules
}
