package importer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// DefaultDateFormat is used when a Normalizer has no DateFormat.
const DefaultDateFormat = "%d/%m/%Y"

// Mapping names the source columns holding each transaction field.
// Empty column names are unmapped.
type Mapping struct {
	Date          string `yaml:"date,omitempty"`
	Amount        string `yaml:"amount,omitempty"`
	Debit         string `yaml:"debit,omitempty"`
	Credit        string `yaml:"credit,omitempty"`
	Quantity      string `yaml:"quantity,omitempty"`
	Account       string `yaml:"account,omitempty"`
	OffsetAccount string `yaml:"offset_account,omitempty"`
	Payee         string `yaml:"payee,omitempty"`
	Note          string `yaml:"note,omitempty"`

	// Used when the account columns are unmapped or empty. For
	// single-entry bank exports DefaultOffsetAccount is the funding account.
	DefaultAccount       string `yaml:"default_account,omitempty"`
	DefaultOffsetAccount string `yaml:"default_offset_account,omitempty"`
}

// Split reports whether amounts come from separate debit and credit columns.
func (m Mapping) Split() bool {
	return m.Amount == "" && (m.Debit != "" || m.Credit != "")
}

// Validate checks that the mapping can produce a transaction.
func (m Mapping) Validate() error {
	if m.Date == "" {
		return fmt.Errorf("mapping: date column is required")
	}
	if m.Amount == "" && m.Debit == "" && m.Credit == "" {
		return fmt.Errorf("mapping: an amount column or debit/credit columns are required")
	}
	return nil
}

// SignConvention says how source amounts become signed transaction amounts.
// With split debit/credit columns the combined value is credit minus debit
// before the convention is applied.
type SignConvention string

const (
	SignAsIs          SignConvention = "as-is"
	SignInverted      SignConvention = "inverted"
	SignAbsolute      SignConvention = "absolute"
	SignDebitNegative SignConvention = "debit-negative"
	SignDebitPositive SignConvention = "debit-positive"
)

// ParseSignConvention parses a convention name. Empty means SignAsIs.
func ParseSignConvention(s string) (SignConvention, error) {
	switch c := SignConvention(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return SignAsIs, nil
	case SignAsIs, SignInverted, SignAbsolute, SignDebitNegative, SignDebitPositive:
		return c, nil
	default:
		return "", fmt.Errorf("unknown sign convention %q", s)
	}
}

func (c SignConvention) apply(d decimal.Decimal) decimal.Decimal {
	switch c {
	case SignInverted, SignDebitPositive:
		return d.Neg()
	case SignAbsolute:
		return d.Abs()
	default:
		return d
	}
}

// Normalizer turns one source row into a transaction.
type Normalizer struct {
	Mapping    Mapping
	DateFormat string
	Sign       SignConvention
}

func (n Normalizer) dateFormat() string {
	if n.DateFormat == "" {
		return DefaultDateFormat
	}
	return n.DateFormat
}

// parseDate reads s with the date format: strftime directives such as
// "%d/%m/%Y" when it has a '%', otherwise a Go layout like "01/02/2006".
func (n Normalizer) parseDate(s string) (time.Time, error) {
	format := n.dateFormat()
	if strings.Contains(format, "%") {
		return timefmt.Parse(s, format)
	}
	return time.Parse(format, s)
}

// dateFormatCheck is written and read back to vet a date format.
var dateFormatCheck = time.Date(2006, time.November, 23, 0, 0, 0, 0, time.UTC)

// CheckDateFormat fails when the date format cannot read back a full date
// it wrote itself.
func (n Normalizer) CheckDateFormat() error {
	format := n.dateFormat()
	written := dateFormatCheck.Format(format)
	if strings.Contains(format, "%") {
		written = timefmt.Format(dateFormatCheck, format)
	}
	got, err := n.parseDate(written)
	if err != nil {
		return fmt.Errorf("invalid date format %q: %w", format, err)
	}
	if !model.Day(got).Equal(dateFormatCheck) {
		return fmt.Errorf("invalid date format %q: needs a day, month and year", format)
	}
	return nil
}

// Normalize maps row, keyed by column name, to a transaction with
// OffsetAmount = -Amount. Account names are not checked against a ledger.
func (n Normalizer) Normalize(row map[string]string) (model.Transaction, error) {
	m := n.Mapping

	rawDate := cell(row, m.Date)
	if rawDate == "" {
		return model.Transaction{}, &MissingFieldError{Field: "date", Column: m.Date}
	}
	date, err := n.parseDate(rawDate)
	if err != nil {
		return model.Transaction{}, &DateParseError{Value: rawDate, Format: n.dateFormat(), Err: err}
	}

	amount, err := n.amount(row)
	if err != nil {
		return model.Transaction{}, err
	}

	qty := decimal.NewFromInt(1)
	if raw := cell(row, m.Quantity); raw != "" {
		qty, err = parseAmount(raw)
		if err != nil {
			return model.Transaction{}, &AmountParseError{Field: "quantity", Value: raw}
		}
	}

	account, err := pick(row, "account", m.Account, m.DefaultAccount)
	if err != nil {
		return model.Transaction{}, err
	}
	offset, err := pick(row, "offset account", m.OffsetAccount, m.DefaultOffsetAccount)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Date:          model.Day(date),
		Account:       account,
		OffsetAccount: offset,
		Amount:        amount,
		OffsetAmount:  amount.Neg(),
		Quantity:      qty,
		Payee:         cell(row, m.Payee),
		Note:          cell(row, m.Note),
	}, nil
}

func (n Normalizer) amount(row map[string]string) (decimal.Decimal, error) {
	m := n.Mapping
	if !m.Split() {
		raw := cell(row, m.Amount)
		if raw == "" {
			return decimal.Zero, &MissingFieldError{Field: "amount", Column: m.Amount}
		}
		d, err := parseAmount(raw)
		if err != nil {
			return decimal.Zero, &AmountParseError{Field: "amount", Value: raw}
		}
		return n.Sign.apply(d), nil
	}

	debit, credit := cell(row, m.Debit), cell(row, m.Credit)
	if debit == "" && credit == "" {
		return decimal.Zero, &MissingFieldError{Field: "amount", Column: strings.Trim(m.Debit+"/"+m.Credit, "/")}
	}
	total := decimal.Zero
	if debit != "" {
		d, err := parseAmount(debit)
		if err != nil {
			return decimal.Zero, &AmountParseError{Field: "debit", Value: debit}
		}
		total = total.Sub(d.Abs())
	}
	if credit != "" {
		c, err := parseAmount(credit)
		if err != nil {
			return decimal.Zero, &AmountParseError{Field: "credit", Value: credit}
		}
		total = total.Add(c.Abs())
	}
	return n.Sign.apply(total), nil
}

func cell(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}

func pick(row map[string]string, field, column, fallback string) (string, error) {
	if v := cell(row, column); v != "" {
		return v, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", &MissingFieldError{Field: field, Column: column}
}

var (
	plainNumber   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	groupedNumber = regexp.MustCompile(`^\d{1,3}(,\d{3})+(\.\d+)?$`)
)

const currencySymbols = "$€£¥₹"

// parseAmount accepts signed decimals with optional thousands separators,
// a currency symbol, parentheses or a trailing minus for negatives.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasSuffix(s, "-") {
		neg = !neg
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}
	for {
		trimmed := strings.TrimLeft(s, currencySymbols+" ")
		switch {
		case strings.HasPrefix(trimmed, "-"):
			neg = !neg
			trimmed = trimmed[1:]
		case strings.HasPrefix(trimmed, "+"):
			trimmed = trimmed[1:]
		}
		if trimmed == s {
			break
		}
		s = trimmed
	}

	switch {
	case plainNumber.MatchString(s):
	case groupedNumber.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
