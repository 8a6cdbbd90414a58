package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type align int

const (
	alignLeft align = iota
	alignRight
)

type column struct {
	title string
	align align
}

type cell struct {
	text  string
	style *lipgloss.Style
}

type table struct {
	columns []column
	rows    [][]cell
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) widths() []int {
	w := make([]int, len(t.columns))
	for i, c := range t.columns {
		w[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if n := runewidth.StringWidth(c.text); n > w[i] {
				w[i] = n
			}
		}
	}
	return w
}

// write pads on display width before styling, so escape sequences never
// count toward column width.
func (t *table) write(w io.Writer, header lipgloss.Style) error {
	widths := t.widths()

	titles := make([]string, len(t.columns))
	rules := make([]string, len(t.columns))
	for i, c := range t.columns {
		titles[i] = header.Render(pad(c.title, widths[i], c.align))
		rules[i] = strings.Repeat("-", widths[i])
	}
	if err := writeLine(w, titles); err != nil {
		return err
	}
	if err := writeLine(w, rules); err != nil {
		return err
	}

	for _, row := range t.rows {
		out := make([]string, len(t.columns))
		for i := range t.columns {
			var c cell
			if i < len(row) {
				c = row[i]
			}
			text := pad(c.text, widths[i], t.columns[i].align)
			if c.style != nil {
				text = c.style.Render(text)
			}
			out[i] = text
		}
		if err := writeLine(w, out); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, cells []string) error {
	line := strings.TrimRight(strings.Join(cells, "  "), " ")
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func pad(s string, width int, a align) string {
	if a == alignRight {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}
