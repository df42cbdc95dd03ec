// Package rules handles rule file inspection commands
package rules

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finsight/bankstmt/cmd/root"
	"finsight/bankstmt/internal/logging"
	"finsight/bankstmt/internal/rulestore"
)

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate and list the categorization rule file",
	Long: `Load the categorization rule file, report every problem in it and list
the rules in priority order. Problems are advisory: the engine treats
broken rules as non-matches, so a file with problems still categorizes.`,
	Run: rulesFunc,
}

func rulesFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	root.Log.Info("Rules command called")

	path, err := rulestore.FindConfigFile(root.RulesFile())
	if err != nil {
		logger.Error("No rule file found",
			logging.Field{Key: logging.FieldFile, Value: root.RulesFile()})
		os.Exit(1)
	}

	set, err := rulestore.Load(path)
	if err != nil {
		logger.WithError(err).Error("Failed to load rule file",
			logging.Field{Key: logging.FieldFile, Value: path})
		os.Exit(1)
	}

	logger.Info("Loaded rule file",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(set.Rules)})

	for _, problem := range set.Validate() {
		logger.Warn("Rule problem",
			logging.Field{Key: logging.FieldRule, Value: problem.Error()})
	}

	for _, rule := range set.Rules {
		line := fmt.Sprintf("priority=%d type=%s field=%s category=%s pattern=%q",
			rule.Priority, rule.Type, rule.Field, rule.CategoryID, rule.Pattern)
		logger.Info("Rule", logging.Field{Key: logging.FieldRule, Value: line})
	}
}
