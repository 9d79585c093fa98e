// Package ui - Terminal user interface
// Quote tables, totals and diagnostics for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"aurora-quote/core/diagnostics"
	"aurora-quote/core/pricing"
	"aurora-quote/core/quote"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Green, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Yellow, "⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.color(Red, "✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Println("%s%s", w.color(Blue, "ℹ "), fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Println("%s", w.color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// Align is a column alignment
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders a table. Widths are measured in terminal cells, so Cyrillic
// and wide characters line up.
type Table struct {
	w       *Writer
	headers []string
	align   []Align
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		align:   make([]Align, len(headers)),
		rows:    [][]string{},
		widths:  widths,
	}
}

// AlignRight right-aligns the given columns
func (t *Table) AlignRight(columns ...int) *Table {
	for _, c := range columns {
		if c >= 0 && c < len(t.align) {
			t.align[c] = AlignRight
		}
	}
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if width := runewidth.StringWidth(row[i]); width > t.widths[i] {
			t.widths[i] = width
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) line(cells []string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if t.align[i] == AlignRight {
			parts[i] = runewidth.FillLeft(cell, t.widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, t.widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, " │ "), " ")
}

// Render prints the table
func (t *Table) Render() {
	t.w.Println("%s", t.w.color(Bold, t.line(t.headers)))

	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	t.w.Println("%s", strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		t.w.Println("%s", t.line(row))
	}
}

// FormatHours prints hours without trailing zeros
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// FormatMoney groups digits by thousands and appends the currency
func FormatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	if currency == "" {
		return sign + b.String()
	}
	return sign + b.String() + " " + currency
}

// QuoteSummary renders the lines and totals of one quote
type QuoteSummary struct {
	w *Writer

	Package  string
	Lines    []*quote.ServiceLine
	Totals   pricing.Totals
	Currency string

	// ShowZero also prints lines with quantity 0
	ShowZero bool

	// CatalogBroken adds the "data may be wrong" banner
	CatalogBroken bool
}

// NewQuoteSummary creates a quote summary
func (w *Writer) NewQuoteSummary() *QuoteSummary {
	return &QuoteSummary{w: w}
}

// Render prints the quote summary
func (s *QuoteSummary) Render() {
	s.w.Header("Quote: " + s.Package)

	if s.CatalogBroken {
		s.w.Error("Service matrix failed its self-check; totals may be wrong")
		s.w.Println("")
	}

	table := s.w.NewTable("Service", "Group", "Mode", "Qty", "h/unit", "Hours").AlignRight(3, 4, 5)
	for _, line := range s.Lines {
		if line == nil || (line.Quantity == 0 && !s.ShowZero) {
			continue
		}
		mode := string(line.Mode)
		if line.ManualOverride {
			mode += "*"
		}
		table.AddRow(
			line.Title,
			line.Group,
			mode,
			strconv.Itoa(line.Quantity),
			FormatHours(line.UnitHours),
			FormatHours(line.Hours()),
		)
	}
	table.Render()
	s.w.Println("")

	groups := s.w.NewTable("Group", "Hours", "Price").AlignRight(1, 2)
	for _, g := range s.Totals.Groups {
		if g.Hours == 0 && !s.ShowZero {
			continue
		}
		groups.AddRow(g.Group, FormatHours(g.Hours), FormatMoney(g.Price, s.Currency))
	}
	groups.Render()
	s.w.Println("")

	s.w.Println("%s %s h", s.w.color(Bold, "Total hours:"), FormatHours(s.Totals.TotalHours))
	s.w.Println("%s %s", s.w.color(Bold, "Total price:"), s.w.color(Green, FormatMoney(s.Totals.TotalPrice, s.Currency)))
	s.w.Println("%s", s.w.color(Dim, fmt.Sprintf("Rate: %s per hour", FormatMoney(int64(s.Totals.Rate), s.Currency))))

	if s.Totals.RateFallback {
		s.w.Warning("Configured rate was unusable; fallback rate applied")
	}
	if len(s.Totals.SkippedLines) > 0 {
		s.w.Warning("Invalid hours ignored for: %s", strings.Join(s.Totals.SkippedLines, ", "))
	}
}

// DiagnosticList renders diagnostics, one per line
func (w *Writer) DiagnosticList(title string, diags []diagnostics.Diagnostic) {
	if len(diags) == 0 {
		w.Success("%s: no problems", title)
		return
	}
	w.SubHeader(fmt.Sprintf("%s (%d)", title, len(diags)))
	for _, d := range diags {
		if d.Kind == diagnostics.KindSelfCheckMismatch {
			w.Error("%s", d.String())
		} else {
			w.Warning("%s", d.String())
		}
	}
}
