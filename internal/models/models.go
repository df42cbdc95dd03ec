// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is a single statement entry exactly as recovered from the
// source document, before merchant extraction and categorization.
type RawTransaction struct {
	SerialNo        int             // statement-local 1-based ordinal
	ValueDate       time.Time       // date the amount was value-dated
	TransactionDate time.Time       // date the transaction was booked
	ChequeNumber    string          // optional cheque reference
	Remarks         string          // free-text narration from the statement
	Withdrawal      decimal.Decimal // non-negative outgoing magnitude
	Deposit         decimal.Decimal // non-negative incoming magnitude
	Balance         decimal.Decimal // running balance immediately after this entry
	RewardPoints    int64           // credit-card reward points, zero when absent
}

// Amount returns the transaction's monetary magnitude: the withdrawal when
// one is present, else the deposit.
func (t *RawTransaction) Amount() decimal.Decimal {
	if t.Withdrawal.IsPositive() {
		return t.Withdrawal
	}
	return t.Deposit
}

// IsDeposit reports whether money moved into the account.
func (t *RawTransaction) IsDeposit() bool {
	return t.Deposit.IsPositive()
}

// ParsedStatement is the normalized result of parsing one statement file.
// DateFrom/DateTo bound the transaction dates after period reconciliation.
type ParsedStatement struct {
	Type                StatementType
	AccountNumber       string
	AccountHolder       string
	DateFrom            time.Time
	DateTo              time.Time
	Transactions        []RawTransaction
	FileHash            string // content-derived dedup key, stable under re-parse
	OpeningBalance      decimal.NullDecimal
	ClosingBalance      decimal.NullDecimal
	Currency            string
	CashbackEarned      int64 // credit statements only, zero when absent
	CashbackTransferred int64
}

// MerchantInfo is the merchant name and payment channel derived from a
// narration string. It is computed per transaction and never persisted.
type MerchantInfo struct {
	Merchant string
	Method   PaymentMethod
}

// CategorizedTransaction is a RawTransaction with its assigned category and
// merchant attribution. UserCategoryOverride, when set by the caller, is
// authoritative: the engine must never change or clear it.
type CategorizedTransaction struct {
	RawTransaction
	CategoryID           string
	MerchantName         string
	PaymentMethod        PaymentMethod
	StatementType        StatementType
	UserCategoryOverride string
}

// EffectiveCategory returns the user override when present, else the
// engine-assigned category.
func (t *CategorizedTransaction) EffectiveCategory() string {
	if t.UserCategoryOverride != "" {
		return t.UserCategoryOverride
	}
	return t.CategoryID
}

// HistoricalTransaction is the minimal projection of a previously stored
// categorized transaction, supplied read-only by the storage collaborator to
// seed merchant hints.
type HistoricalTransaction struct {
	Remarks              string
	MerchantName         string
	CategoryID           string
	UserCategoryOverride string
	Withdrawal           decimal.Decimal
	Deposit              decimal.Decimal
}

// Category returns the category that should count toward merchant hints.
func (h *HistoricalTransaction) Category() string {
	if h.UserCategoryOverride != "" {
		return h.UserCategoryOverride
	}
	return h.CategoryID
}

// MerchantCategoryHint is a learned merchant-to-category mapping derived from
// historical transactions. Rebuilt per categorization run, never persisted.
type MerchantCategoryHint struct {
	CategoryID string
	Count      int     // supporting historical transactions
	Confidence float64 // Count divided by the merchant's total
}
