// Package categorize handles single transaction categorization commands
package categorize

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"finsight/bankstmt/cmd/root"
	"finsight/bankstmt/internal/categorizer"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/merchant"
	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/rulestore"
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize a single transaction narration",
	Long: `Score a single transaction narration against the rule table and print
the category it resolves to. Useful for testing rule files.`,
	Run: categorizeFunc,
}

var (
	remarks   string
	amount    string
	isDeposit bool
	card      bool
)

func init() {
	Cmd.Flags().StringVarP(&remarks, "remarks", "m", "", "Transaction narration to categorize")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Transaction amount (optional)")
	Cmd.Flags().BoolVarP(&isDeposit, "deposit", "d", false, "Whether the transaction is a deposit (default: withdrawal)")
	Cmd.Flags().BoolVarP(&card, "card", "c", false, "Treat the narration as a credit card entry")
	_ = Cmd.MarkFlagRequired("remarks")
}

func categorizeFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	root.Log.Info("Categorize command called")

	var rules []models.CategorizationRule
	if path, err := rulestore.FindConfigFile(root.RulesFile()); err == nil {
		if set, err := rulestore.Load(path); err == nil {
			rules = set.Rules
		} else {
			logger.WithError(err).Warn("Failed to load rule file")
		}
	} else {
		logger.Warn("No rule file found, using fallbacks only")
	}

	tx := models.RawTransaction{SerialNo: 1, Remarks: remarks}
	if amount != "" {
		value, err := decimal.NewFromString(amount)
		if err != nil {
			logger.WithError(err).Error("Invalid --amount")
			return
		}
		if isDeposit {
			tx.Deposit = value
		} else {
			tx.Withdrawal = value
		}
	}

	var info models.MerchantInfo
	if card {
		info = merchant.ExtractForCard(remarks)
	} else {
		info = merchant.Extract(remarks)
	}

	engine := categorizer.NewEngine(rules, nil, logger)
	category := engine.Categorize(&tx, info)

	logger.Info("Transaction categorized",
		logging.Field{Key: logging.FieldMerchant, Value: info.Merchant},
		logging.Field{Key: "payment_method", Value: string(info.Method)},
		logging.Field{Key: logging.FieldCategory, Value: category})
}
