// Package parsererror defines the tagged failure kinds surfaced by the
// statement parsers. Parsing errors are terminal for a single file and are
// never retried; the caller decides user messaging.
package parsererror

import (
	"errors"
	"fmt"
)

// Sentinel kinds for errors.Is checks. Each concrete error type below wraps
// one of these so callers can branch without knowing the concrete type.
var (
	ErrUnsupportedFormat     = errors.New("unsupported file format")
	ErrHeaderNotFound        = errors.New("statement header not found")
	ErrNoTransactionsFound   = errors.New("no transactions found")
	ErrPasswordProtected     = errors.New("document is password protected")
	ErrDocumentUnreadable    = errors.New("document is unreadable")
	ErrInvalidRuleExpression = errors.New("invalid rule expression")
)

// UnsupportedFormatError indicates the file content does not match the
// format the requested parser expects.
type UnsupportedFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// HeaderNotFoundError indicates a tabular statement is missing the expected
// column-header row, so no transaction rows can be located.
type HeaderNotFoundError struct {
	FilePath string
	Marker   string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header row ('%s') not found in '%s'", e.Marker, e.FilePath)
}

func (e *HeaderNotFoundError) Unwrap() error { return ErrHeaderNotFound }

// NoTransactionsError indicates a parser completed but extracted zero valid
// records. Applies to all three parser variants.
type NoTransactionsError struct {
	Parser string
}

func (e *NoTransactionsError) Error() string {
	return fmt.Sprintf("%s: no transactions found", e.Parser)
}

func (e *NoTransactionsError) Unwrap() error { return ErrNoTransactionsFound }

// PasswordProtectedError indicates a PDF requires a password to open. This
// is user-actionable and must stay distinct from a generic parse failure.
type PasswordProtectedError struct {
	FilePath string
}

func (e *PasswordProtectedError) Error() string {
	if e.FilePath == "" {
		return "PDF is password protected"
	}
	return fmt.Sprintf("PDF '%s' is password protected", e.FilePath)
}

func (e *PasswordProtectedError) Unwrap() error { return ErrPasswordProtected }

// DocumentUnreadableError indicates a malformed or corrupt PDF.
type DocumentUnreadableError struct {
	FilePath string
	Err      error
}

func (e *DocumentUnreadableError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("PDF could not be read: %v", e.Err)
	}
	return fmt.Sprintf("PDF '%s' could not be read: %v", e.FilePath, e.Err)
}

func (e *DocumentUnreadableError) Unwrap() error { return ErrDocumentUnreadable }

// InvalidRuleExpressionError indicates a regex-type categorization rule
// failed to compile. The engine treats such rules as non-matches rather than
// failing the run, so one bad rule cannot break categorization.
type InvalidRuleExpressionError struct {
	Pattern string
	Err     error
}

func (e *InvalidRuleExpressionError) Error() string {
	return fmt.Sprintf("rule pattern '%s' does not compile: %v", e.Pattern, e.Err)
}

func (e *InvalidRuleExpressionError) Unwrap() error { return ErrInvalidRuleExpression }
