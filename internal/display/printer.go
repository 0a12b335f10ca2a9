package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
)

const (
	headerWidth    = 60
	subheaderWidth = 50
)

// Printer writes formatted status lines to a single destination.
// Colored output is enabled only when the destination is a terminal,
// so piped and captured output stays free of escape codes.
type Printer struct {
	out io.Writer

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{
		out:    out,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
	}
	if f, ok := out.(*os.File); !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		for _, c := range []*color.Color{p.green, p.red, p.yellow, p.cyan, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

// Successf prints a checkmark status line in green.
func (p *Printer) Successf(format string, args ...interface{}) {
	p.green.Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Errorf prints a cross status line in red.
func (p *Printer) Errorf(format string, args ...interface{}) {
	p.red.Fprintf(p.out, "✗ "+format+"\n", args...)
}

// Warnf prints a warning status line in yellow.
func (p *Printer) Warnf(format string, args ...interface{}) {
	p.yellow.Fprintf(p.out, "⚠ "+format+"\n", args...)
}

// Infof prints an informational status line in cyan.
func (p *Printer) Infof(format string, args ...interface{}) {
	p.cyan.Fprintf(p.out, "ℹ "+format+"\n", args...)
}

// Header prints a banner with the message centered inside a 60-column rule.
func (p *Printer) Header(message string) {
	rule := strings.Repeat("=", headerWidth)
	fmt.Fprintf(p.out, "\n%s\n", rule)
	p.bold.Fprintln(p.out, center(message, headerWidth))
	fmt.Fprintln(p.out, rule)
}

// Subheader prints a left-aligned banner inside a 50-column rule.
func (p *Printer) Subheader(message string) {
	rule := strings.Repeat("-", subheaderWidth)
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", rule, message, rule)
}

// Changef prints a single before/after price line for one tier.
func (p *Printer) Changef(from, to decimal.Decimal, tier string) {
	fmt.Fprintf(p.out, "  %s → %s (%s)\n", FormatCurrency(from), FormatCurrency(to), tier)
}

// FormatCurrency renders a decimal amount as dollars and whole cents.
func FormatCurrency(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

// center pads s with spaces on both sides to width columns. Odd
// padding goes to the right.
func center(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}
