package ledgerfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// AppendTransactions writes txns as [[transaction]] blocks. Fields equal
// to their defaults (offset_amount = -amount, quantity = 1) are omitted.
func AppendTransactions(w io.Writer, txns []model.Transaction) error {
	bw := bufio.NewWriter(w)
	for _, t := range txns {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "[[transaction]]")
		fmt.Fprintf(bw, "date = %s\n", t.Date.Format(model.DateFormat))
		fmt.Fprintf(bw, "account = %s\n", quote(t.Account))
		fmt.Fprintf(bw, "offset_account = %s\n", quote(t.OffsetAccount))
		fmt.Fprintf(bw, "amount = %s\n", number(t.Amount))
		if !t.OffsetAmount.Equal(t.Amount.Neg()) {
			fmt.Fprintf(bw, "offset_amount = %s\n", number(t.OffsetAmount))
		}
		if !t.Quantity.Equal(decimal.NewFromInt(1)) {
			fmt.Fprintf(bw, "quantity = %s\n", number(t.Quantity))
		}
		if t.Payee != "" {
			fmt.Fprintf(bw, "payee = %s\n", quote(t.Payee))
		}
		if t.Note != "" {
			fmt.Fprintf(bw, "note = %s\n", quote(t.Note))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	return nil
}

// WriteAccount writes a single [[account]] block.
func WriteAccount(w io.Writer, a model.Account) error {
	var b strings.Builder
	b.WriteString("[[account]]\n")
	fmt.Fprintf(&b, "open = %s\n", a.Opened.Format(model.DateFormat))
	fmt.Fprintf(&b, "name = %s\n", quote(a.Name))
	fmt.Fprintf(&b, "type = %s\n", quote(string(a.Type)))
	fmt.Fprintf(&b, "currency = %s\n", quote(a.Currency))
	if a.OpeningBalance != nil {
		fmt.Fprintf(&b, "opening_balance = %s\n", number(*a.OpeningBalance))
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing account %s: %w", a.Name, err)
	}
	return nil
}

// AppendFile appends txns to the ledger file at path, creating it if needed.
func AppendFile(path string, txns []model.Transaction) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger file: %w", err)
	}
	if err := AppendTransactions(f, txns); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Numbers with more significant digits than this do not survive a float64
// round trip and are written as decimal strings instead.
const maxFloatDigits = 15

func number(d decimal.Decimal) string {
	if len(strings.TrimPrefix(d.Coefficient().String(), "-")) <= maxFloatDigits {
		return d.String()
	}
	return quote(d.String())
}

// quote renders s as a TOML basic string.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
