// Package rulestore loads the categorization rule table and category
// taxonomy from YAML. The loaded table is an ordered, immutable snapshot:
// the engine never mutates it and reloading requires a fresh Load call.
package rulestore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"finsight/bankstmt/internal/models"
	"finsight/bankstmt/internal/parsererror"
)

// Category is one entry of the caller-owned category taxonomy.
type Category struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RuleSet is the parsed content of a rule file.
type RuleSet struct {
	Categories []Category
	Rules      []models.CategorizationRule
}

type ruleYAML struct {
	Priority  int      `yaml:"priority"`
	Category  string   `yaml:"category"`
	Type      string   `yaml:"type"`
	Pattern   string   `yaml:"pattern"`
	Field     string   `yaml:"field"`
	MinAmount *float64 `yaml:"min_amount"`
	MaxAmount *float64 `yaml:"max_amount"`
}

type ruleFileYAML struct {
	Categories []Category `yaml:"categories"`
	Rules      []ruleYAML `yaml:"rules"`
}

// FindConfigFile looks for a rule file in the standard locations.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "bankstmt", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads and converts a YAML rule file. Rules come back ordered by
// priority so listings and scoring iterate deterministically.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error reading rule file: %w", err)
	}
	return Parse(data)
}

// Parse converts raw YAML into a RuleSet.
func Parse(data []byte) (*RuleSet, error) {
	var file ruleFileYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing rule file: %w", err)
	}

	set := &RuleSet{Categories: file.Categories}
	for _, r := range file.Rules {
		rule := models.CategorizationRule{
			Priority:   r.Priority,
			CategoryID: r.Category,
			Type:       models.RuleType(r.Type),
			Pattern:    r.Pattern,
			Field:      models.RuleField(r.Field),
		}
		if rule.Field == "" {
			rule.Field = models.RuleFieldRemarks
		}
		if r.MinAmount != nil {
			rule.MinAmount = decimal.NullDecimal{Decimal: decimal.NewFromFloat(*r.MinAmount), Valid: true}
		}
		if r.MaxAmount != nil {
			rule.MaxAmount = decimal.NullDecimal{Decimal: decimal.NewFromFloat(*r.MaxAmount), Valid: true}
		}
		set.Rules = append(set.Rules, rule)
	}

	sort.SliceStable(set.Rules, func(i, j int) bool {
		return set.Rules[i].Priority < set.Rules[j].Priority
	})

	return set, nil
}

var validRuleTypes = map[models.RuleType]struct{}{
	models.RuleTypeKeyword:  {},
	models.RuleTypeRegex:    {},
	models.RuleTypeMerchant: {},
	models.RuleTypeDeposit:  {},
	models.RuleTypeAmount:   {},
}

// Validate reports the problems in a rule set without failing it: unknown
// types and fields, and regex rules that do not compile. The engine treats
// all of these as non-matches at scoring time, so validation is advisory.
func (s *RuleSet) Validate() []error {
	categoryIDs := make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		categoryIDs[c.ID] = struct{}{}
	}

	var problems []error
	for i, rule := range s.Rules {
		if _, ok := validRuleTypes[rule.Type]; !ok {
			problems = append(problems, fmt.Errorf("rule %d: unknown type '%s'", i, rule.Type))
		}
		if rule.Field != models.RuleFieldRemarks && rule.Field != models.RuleFieldMerchant {
			problems = append(problems, fmt.Errorf("rule %d: unknown field '%s'", i, rule.Field))
		}
		if rule.Type == models.RuleTypeRegex {
			if _, err := regexp.Compile("(?i)" + rule.Pattern); err != nil {
				problems = append(problems, &parsererror.InvalidRuleExpressionError{Pattern: rule.Pattern, Err: err})
			}
		}
		if len(categoryIDs) > 0 {
			if _, ok := categoryIDs[rule.CategoryID]; !ok {
				problems = append(problems, fmt.Errorf("rule %d: unknown category '%s'", i, rule.CategoryID))
			}
		}
	}
	return problems
}
