// Package pipeline sequences parsing, merchant extraction and
// categorization for one uploaded statement file. Each Process call is an
// independent run: the only shared inputs, the rule table and the
// historical transaction list, are read-only for the duration of the call,
// so independent pipelines may run concurrently without locking.
package pipeline

import (
	"bytes"

	"github.com/google/uuid"

	"finsight/bankstmt/internal/categorizer"
	"finsight/bankstmt/internal/creditpdf"
	"finsight/bankstmt/internal/debitpdf"
	"finsight/bankstmt/internal/fileutils"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/merchant"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
	"finsight/bankstmt/internal/pdftext"
	"finsight/bankstmt/internal/tabular"
	"finsight/bankstmt/internal/xlsparser"
)

// Result is everything the storage collaborator needs for one processed
// file. The core persists nothing itself.
type Result struct {
	RunID        string
	Statement    *models.ParsedStatement
	Transactions []models.CategorizedTransaction
}

// Pipeline processes statement files. A zero-configured Pipeline from New
// is ready to use.
type Pipeline struct {
	logger         logging.Logger
	creditMaxPages int
}

// New creates a Pipeline logging through logger.
func New(logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Pipeline{logger: logger, creditMaxPages: creditpdf.MaxPages}
}

// SetCreditPageLimit overrides how many leading pages the credit card
// parser reads. Non-positive values keep the current limit.
func (p *Pipeline) SetCreditPageLimit(n int) {
	if n > 0 {
		p.creditMaxPages = n
	}
}

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK")
)

// Process parses one statement file of the declared kind, derives merchants
// and categorizes every transaction. Parsing failures are terminal for this
// file and surface verbatim; categorization cannot fail.
func (p *Pipeline) Process(content []byte, kind models.StatementType, filePath string,
	rules []models.CategorizationRule, history []models.HistoricalTransaction) (*Result, error) {

	runID := uuid.NewString()
	logger := p.logger.WithFields(
		logging.Field{Key: logging.FieldRunID, Value: runID},
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldStatement, Value: string(kind)},
	)

	stmt, err := p.parse(content, kind, filePath, logger)
	if err != nil {
		return nil, err
	}
	stmt.FileHash = fileutils.HashBytes(content)

	transactions := p.categorize(stmt, rules, history, logger)

	logger.Info("Statement processed",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)},
		logging.Field{Key: "date_from", Value: stmt.DateFrom.Format("2006-01-02")},
		logging.Field{Key: "date_to", Value: stmt.DateTo.Format("2006-01-02")})

	return &Result{RunID: runID, Statement: stmt, Transactions: transactions}, nil
}

// parse routes the file bytes to the parser matching the declared kind and
// the sniffed container format.
func (p *Pipeline) parse(content []byte, kind models.StatementType, filePath string, logger logging.Logger) (*models.ParsedStatement, error) {
	isPDF := bytes.HasPrefix(content, pdfMagic)
	isSheet := bytes.HasPrefix(content, zipMagic)

	switch {
	case kind == models.StatementTypeDebit && isSheet:
		grid, err := tabular.ExtractGrid(content)
		if err != nil {
			return nil, err
		}
		return xlsparser.Parse(grid, filePath, logger)

	case kind == models.StatementTypeDebit && isPDF:
		pages, err := pdftext.ExtractLines(content, 0)
		if err != nil {
			return nil, err
		}
		return debitpdf.Parse(pages, filePath, logger)

	case kind == models.StatementTypeCredit && isPDF:
		pages, err := pdftext.ExtractLines(content, p.creditMaxPages)
		if err != nil {
			return nil, err
		}
		return creditpdf.Parse(pages, filePath, p.creditMaxPages, logger)
	}

	return nil, &parsererror.UnsupportedFormatError{
		FilePath:       filePath,
		ExpectedFormat: expectedFormats(kind),
		Msg:            "file content does not match the requested statement kind",
	}
}

func expectedFormats(kind models.StatementType) string {
	if kind == models.StatementTypeCredit {
		return "PDF"
	}
	return "XLSX or PDF"
}

// categorize assigns categories with a merchant cache scoped to this single
// statement: once a merchant resolves to a real category within the run,
// later transactions of the same merchant reuse it without re-scoring.
func (p *Pipeline) categorize(stmt *models.ParsedStatement,
	rules []models.CategorizationRule, history []models.HistoricalTransaction,
	logger logging.Logger) []models.CategorizedTransaction {

	engine := categorizer.NewEngine(rules, history, logger)
	sessionCache := make(map[string]string)

	out := make([]models.CategorizedTransaction, 0, len(stmt.Transactions))
	for i := range stmt.Transactions {
		tx := &stmt.Transactions[i]

		var info models.MerchantInfo
		if stmt.Type == models.StatementTypeCredit {
			info = merchant.ExtractForCard(tx.Remarks)
		} else {
			info = merchant.Extract(tx.Remarks)
		}

		key := merchant.HintKey(info.Merchant)
		category, cached := sessionCache[key]
		if !cached {
			category = engine.Categorize(tx, info)
			if key != "" && category != models.CategoryUncategorized {
				sessionCache[key] = category
			}
		}

		out = append(out, models.CategorizedTransaction{
			RawTransaction: *tx,
			CategoryID:     category,
			MerchantName:   info.Merchant,
			PaymentMethod:  info.Method,
			StatementType:  stmt.Type,
		})
	}

	return out
}

// Recategorize re-runs the engine over already categorized transactions,
// for example after a rule change. A user override is authoritative: the
// engine result never replaces or clears it.
func (p *Pipeline) Recategorize(transactions []models.CategorizedTransaction,
	rules []models.CategorizationRule, history []models.HistoricalTransaction) []models.CategorizedTransaction {

	engine := categorizer.NewEngine(rules, history, p.logger)

	out := make([]models.CategorizedTransaction, 0, len(transactions))
	for i := range transactions {
		tx := transactions[i]
		if tx.UserCategoryOverride == "" {
			info := models.MerchantInfo{Merchant: tx.MerchantName, Method: tx.PaymentMethod}
			tx.CategoryID = engine.Categorize(&tx.RawTransaction, info)
		}
		out = append(out, tx)
	}
	return out
}
