package importer

import (
	"errors"
	"fmt"
)

// ErrImport matches every per-row normalization failure.
var ErrImport = errors.New("import error")

// DateParseError is returned when a date cell does not match the date format.
type DateParseError struct {
	Row    int
	Value  string
	Format string
	Err    error
}

func (e *DateParseError) Error() string {
	return rowPrefix(e.Row) + fmt.Sprintf("parsing date %q with format %q: %v", e.Value, e.Format, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

func (e *DateParseError) Is(target error) bool { return target == ErrImport }

// AmountParseError is returned when an amount cell is not a recognized number.
type AmountParseError struct {
	Row   int
	Field string
	Value string
}

func (e *AmountParseError) Error() string {
	return rowPrefix(e.Row) + fmt.Sprintf("parsing %s %q: unrecognized amount", e.Field, e.Value)
}

func (e *AmountParseError) Is(target error) bool { return target == ErrImport }

// MissingFieldError is returned when a required field has no value and no default.
type MissingFieldError struct {
	Row    int
	Field  string
	Column string
}

func (e *MissingFieldError) Error() string {
	if e.Column == "" {
		return rowPrefix(e.Row) + fmt.Sprintf("missing %s: no column mapped and no default", e.Field)
	}
	return rowPrefix(e.Row) + fmt.Sprintf("missing %s: column %q is empty", e.Field, e.Column)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrImport }

func rowPrefix(row int) string {
	if row <= 0 {
		return ""
	}
	return fmt.Sprintf("row %d: ", row)
}

// setRow stamps the source row on a normalization error.
func setRow(err error, row int) {
	var dateErr *DateParseError
	var amountErr *AmountParseError
	var missingErr *MissingFieldError
	switch {
	case errors.As(err, &dateErr):
		dateErr.Row = row
	case errors.As(err, &amountErr):
		amountErr.Row = row
	case errors.As(err, &missingErr):
		missingErr.Row = row
	}
}
