package fundqa

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// TradeRecord is a single trade. Beyond its portfolio, a trade is only counted.
type TradeRecord struct {
	Portfolio string
	// Fields holds the remaining columns of the row, keyed by header.
	Fields map[string]string
}

// HoldingRecord is a single position held by a portfolio.
type HoldingRecord struct {
	Portfolio string
	// PnL is the year-to-date profit and loss of the position.
	PnL decimal.Decimal
	// Fields holds the remaining columns of the row, keyed by header.
	Fields map[string]string
}

// PortfolioSummary holds the figures computed for a single portfolio.
type PortfolioSummary struct {
	TradeCount   int
	HoldingCount int
	YTDPnL       decimal.Decimal // rounded to 2 decimal places
}

// Summaries maps a portfolio identifier to its summary.
type Summaries map[string]PortfolioSummary

// Portfolios returns the portfolio identifiers in lexical order.
func (s Summaries) Portfolios() []string {
	return slices.Sorted(maps.Keys(s))
}

// pnlPlaces is the number of decimal places kept in PortfolioSummary.YTDPnL.
const pnlPlaces = 2

// Aggregate computes the summary of every portfolio appearing in trades or holdings.
//
// A portfolio present in only one dataset gets zero values for the other
// one's figures. Inputs are not modified.
func Aggregate(trades []TradeRecord, holdings []HoldingRecord) Summaries {
	tradeCounts := make(map[string]int)
	for _, t := range trades {
		tradeCounts[t.Portfolio]++
	}

	holdingCounts := make(map[string]int)
	pnl := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		holdingCounts[h.Portfolio]++
		pnl[h.Portfolio] = pnl[h.Portfolio].Add(h.PnL)
	}

	result := make(Summaries, len(tradeCounts)+len(holdingCounts))
	for p, n := range tradeCounts {
		s := result[p]
		s.TradeCount = n
		result[p] = s
	}
	for p, n := range holdingCounts {
		s := result[p]
		s.HoldingCount = n
		s.YTDPnL = pnl[p].Round(pnlPlaces)
		result[p] = s
	}
	return result
}
