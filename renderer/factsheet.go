package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/fundqa"
	"github.com/shopspring/decimal"
)

// FactSheetHeader is the first line of every fact-sheet.
const FactSheetHeader = "FINANCIAL DATA REPORT"

// FactSheet renders the summaries as the plain text report the assistant is
// grounded on: the header line, then one line per portfolio.
//
// Lines follow no particular order.
func FactSheet(s fundqa.Summaries) string {
	var b strings.Builder
	b.WriteString(FactSheetHeader)
	for p, v := range s {
		b.WriteByte('\n')
		b.WriteString(FactLine(p, v))
	}
	return b.String()
}

// FactLine renders the fact-sheet line of a single portfolio.
func FactLine(portfolio string, s fundqa.PortfolioSummary) string {
	return fmt.Sprintf("FUND: %s | TRADES: %d | HOLDINGS: %d | YEARLY_PnL: %s",
		portfolio, s.TradeCount, s.HoldingCount, pnl(s.YTDPnL))
}

// pnl prints the shortest form of 'v', always with a fractional part: 12.5, -3.0, 0.0
func pnl(v decimal.Decimal) string {
	s := v.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
