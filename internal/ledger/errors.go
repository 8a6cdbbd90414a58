package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// ErrStructural is matched by every error Build returns for an invalid ledger.
var ErrStructural = errors.New("invalid ledger")

func location(source string) string {
	if source == "" {
		return ""
	}
	return source + ": "
}

// DuplicateAccountError is returned when two declarations share a name.
type DuplicateAccountError struct {
	Name   string
	Source string
	First  string // source of the earlier declaration
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("%saccount %q is already declared (at %s)", location(e.Source), e.Name, e.First)
}

func (e *DuplicateAccountError) Is(target error) bool { return target == ErrStructural }

// UnknownAccountTypeError is returned for a type outside the known classes.
type UnknownAccountTypeError struct {
	Account string
	Value   string
	Source  string
}

func (e *UnknownAccountTypeError) Error() string {
	return fmt.Sprintf("%saccount %q has unknown type %q", location(e.Source), e.Account, e.Value)
}

func (e *UnknownAccountTypeError) Is(target error) bool { return target == ErrStructural }

// UnknownAccountError is returned when a transaction references an undeclared account.
type UnknownAccountError struct {
	Name   string
	Date   time.Time
	Source string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("%stransaction on %s references unknown account %q",
		location(e.Source), e.Date.Format(model.DateFormat), e.Name)
}

func (e *UnknownAccountError) Is(target error) bool { return target == ErrStructural }

// SelfReferencingTransactionError is returned when both legs name the same account.
type SelfReferencingTransactionError struct {
	Account string
	Date    time.Time
	Amount  decimal.Decimal
	Source  string
}

func (e *SelfReferencingTransactionError) Error() string {
	return fmt.Sprintf("%stransaction on %s for %s uses %q as both account and offset account",
		location(e.Source), e.Date.Format(model.DateFormat), e.Amount, e.Account)
}

func (e *SelfReferencingTransactionError) Is(target error) bool { return target == ErrStructural }

// TransactionBeforeAccountOpenError is returned when a transaction predates an account it touches.
type TransactionBeforeAccountOpenError struct {
	Account string
	Opened  time.Time
	Date    time.Time
	Source  string
}

func (e *TransactionBeforeAccountOpenError) Error() string {
	return fmt.Sprintf("%stransaction on %s is before account %q opened on %s",
		location(e.Source), e.Date.Format(model.DateFormat), e.Account, e.Opened.Format(model.DateFormat))
}

func (e *TransactionBeforeAccountOpenError) Is(target error) bool { return target == ErrStructural }

// DuplicatePriceError is returned when two prices share commodity, date and currency.
type DuplicatePriceError struct {
	Commodity string
	Currency  string
	Date      time.Time
	Source    string
}

func (e *DuplicatePriceError) Error() string {
	return fmt.Sprintf("%sprice of %s in %s on %s is declared more than once",
		location(e.Source), e.Commodity, e.Currency, e.Date.Format(model.DateFormat))
}

func (e *DuplicatePriceError) Is(target error) bool { return target == ErrStructural }

// InvalidPriceError is returned for a zero or negative price.
type InvalidPriceError struct {
	Commodity string
	Price     decimal.Decimal
	Date      time.Time
	Source    string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("%sprice of %s on %s must be positive, got %s",
		location(e.Source), e.Commodity, e.Date.Format(model.DateFormat), e.Price)
}

func (e *InvalidPriceError) Is(target error) bool { return target == ErrStructural }
