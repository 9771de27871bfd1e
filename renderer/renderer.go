// Package renderer turns portfolio summaries into text: the fact-sheet the
// assistant is grounded on, and markdown reports for people.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/etnz/fundqa"
	"github.com/shopspring/decimal"
)

//go:embed *.md
var templates embed.FS

// FactSheetView is the data behind the markdown fact-sheet.
type FactSheetView struct {
	Currency string
	Rows     []FactSheetRow
	Total    string
}

// FactSheetRow is a single portfolio in a FactSheetView, figures already formatted.
type FactSheetRow struct {
	Portfolio string
	Trades    string
	Holdings  string
	PnL       string
}

// NewFactSheetView builds the view of 's', portfolios sorted by name.
func NewFactSheetView(s fundqa.Summaries, currency string) *FactSheetView {
	v := &FactSheetView{Currency: currency}
	var total decimal.Decimal
	for _, p := range s.Portfolios() {
		ps := s[p]
		total = total.Add(ps.YTDPnL)
		v.Rows = append(v.Rows, FactSheetRow{
			Portfolio: escapeCell(p),
			Trades:    strconv.Itoa(ps.TradeCount),
			Holdings:  strconv.Itoa(ps.HoldingCount),
			PnL:       formatMoney(ps.YTDPnL, currency),
		})
	}
	v.Total = formatMoney(total, currency)
	return v
}

// FactSheetMarkdown renders the summaries as a markdown table, amounts in 'currency'.
func FactSheetMarkdown(s fundqa.Summaries, currency string) string {
	partials := map[string]string{
		"factsheet_table": "factsheet_table.md",
	}
	return renderTemplate("factsheet", "factsheet.md", partials, NewFactSheetView(s, currency))
}

// formatMoney formats 'v' the way 'currency' is usually written, e.g. $1,234.50.
func formatMoney(v decimal.Decimal, currency string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// escapeCell makes 's' safe inside a markdown table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
