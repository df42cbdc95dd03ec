package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finsight/bankstmt/internal/fileutils"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
)

func debitWorkbook(t *testing.T) []byte {
	t.Helper()
	rows := [][]interface{}{
		{"Statement for Account Number 5010012345678 - RAVI SHANKAR"},
		{"Period From 01/02/2024 To 29/02/2024"},
		{"S No", "Value Date", "Transaction Date", "Cheque Number", "Remarks", "Withdrawal", "Deposit", "Balance"},
		{"1", "15/02/2024", "15/02/2024", "", "UPI/SWIGGY/402912345/LUNCH", "349.00", "0.00", "12651.00"},
		{"2", "16/02/2024", "16/02/2024", "", "NEFT SALARY CREDIT", "0.00", "55000.00", "67651.00"},
		{"3", "17/02/2024", "17/02/2024", "", "UPI/RANDOMSHOP/40293", "120.00", "0.00", "67531.00"},
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func foodRule() models.CategorizationRule {
	return models.CategorizationRule{
		Priority:   5,
		CategoryID: "food",
		Type:       models.RuleTypeKeyword,
		Pattern:    "SWIGGY|ZOMATO",
		Field:      models.RuleFieldRemarks,
	}
}

func TestProcessDebitWorkbook(t *testing.T) {
	content := debitWorkbook(t)

	result, err := New(nil).Process(content, models.StatementTypeDebit, "stmt.xlsx",
		[]models.CategorizationRule{foodRule()}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, fileutils.HashBytes(content), result.Statement.FileHash)
	assert.Equal(t, models.StatementTypeDebit, result.Statement.Type)

	require.Len(t, result.Transactions, 3)

	first := result.Transactions[0]
	assert.Equal(t, "food", first.CategoryID)
	assert.Equal(t, "SWIGGY", first.MerchantName)
	assert.Equal(t, models.MethodUPI, first.PaymentMethod)
	assert.Equal(t, models.StatementTypeDebit, first.StatementType)

	second := result.Transactions[1]
	assert.Equal(t, models.CategorySalary, second.CategoryID, "deposit fallback applies when no rule matches")

	third := result.Transactions[2]
	assert.Equal(t, models.CategoryUncategorized, third.CategoryID)
}

func TestProcessHashStableAcrossRuns(t *testing.T) {
	content := debitWorkbook(t)
	p := New(nil)

	first, err := p.Process(content, models.StatementTypeDebit, "a.xlsx", nil, nil)
	require.NoError(t, err)
	second, err := p.Process(content, models.StatementTypeDebit, "b.xlsx", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Statement.FileHash, second.Statement.FileHash,
		"the dedup key depends only on content, never the filename")
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSetCreditPageLimit(t *testing.T) {
	p := New(nil)
	assert.Equal(t, 2, p.creditMaxPages, "default matches the credit parser")

	p.SetCreditPageLimit(5)
	assert.Equal(t, 5, p.creditMaxPages)

	p.SetCreditPageLimit(0)
	assert.Equal(t, 5, p.creditMaxPages, "non-positive values keep the current limit")
}

func TestProcessRejectsMismatchedKind(t *testing.T) {
	// A spreadsheet uploaded as a credit statement is unsupported: credit
	// statements are PDF only.
	_, err := New(nil).Process(debitWorkbook(t), models.StatementTypeCredit, "stmt.xlsx", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, parsererror.ErrUnsupportedFormat)
}

func TestProcessRejectsUnknownContent(t *testing.T) {
	_, err := New(nil).Process([]byte("plain text file"), models.StatementTypeDebit, "stmt.txt", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, parsererror.ErrUnsupportedFormat)
}

func TestRecategorizePreservesOverrides(t *testing.T) {
	transactions := []models.CategorizedTransaction{
		{
			RawTransaction: models.RawTransaction{
				SerialNo:   1,
				Remarks:    "UPI/SWIGGY/40291/LUNCH",
				Withdrawal: decimal.NewFromInt(349),
			},
			CategoryID:           "uncategorized",
			MerchantName:         "SWIGGY",
			PaymentMethod:        models.MethodUPI,
			UserCategoryOverride: "entertainment",
		},
		{
			RawTransaction: models.RawTransaction{
				SerialNo:   2,
				Remarks:    "UPI/ZOMATO/40292/DINNER",
				Withdrawal: decimal.NewFromInt(500),
			},
			CategoryID:    "uncategorized",
			MerchantName:  "ZOMATO",
			PaymentMethod: models.MethodUPI,
		},
	}

	out := New(nil).Recategorize(transactions, []models.CategorizationRule{foodRule()}, nil)
	require.Len(t, out, 2)

	assert.Equal(t, "uncategorized", out[0].CategoryID,
		"overridden transactions are not re-scored")
	assert.Equal(t, "entertainment", out[0].UserCategoryOverride)
	assert.Equal(t, "entertainment", out[0].EffectiveCategory())

	assert.Equal(t, "food", out[1].CategoryID, "rule change re-categorizes unoverridden transactions")
}
