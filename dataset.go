package fundqa

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// this file decodes the trade and holding datasets from CSV files.
// The first row is the header, every other row is a record.

// Columns names the CSV columns the datasets are read from.
type Columns struct {
	Portfolio string // portfolio identifier, in both datasets
	PnL       string // year-to-date profit and loss, holdings only
}

// DefaultColumns are the column names of the usual trade and holding exports.
var DefaultColumns = Columns{
	Portfolio: "PortfolioName",
	PnL:       "PL_YTD",
}

// ColumnError reports a required column missing from a dataset header.
type ColumnError struct {
	Dataset string
	Column  string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s dataset has no %q column", e.Dataset, e.Column)
}

// DecodeTrades reads trade records from 'r' in CSV format.
func DecodeTrades(r io.Reader, cols Columns) ([]TradeRecord, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read trades: %w", err)
	}
	pi, err := columnIndex("trades", header, cols.Portfolio)
	if err != nil {
		return nil, err
	}

	trades := make([]TradeRecord, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, TradeRecord{
			Portfolio: row[pi],
			Fields:    fields(header, row, pi),
		})
	}
	return trades, nil
}

// DecodeHoldings reads holding records from 'r' in CSV format.
//
// An empty PnL cell counts as zero.
func DecodeHoldings(r io.Reader, cols Columns) ([]HoldingRecord, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read holdings: %w", err)
	}
	pi, err := columnIndex("holdings", header, cols.Portfolio)
	if err != nil {
		return nil, err
	}
	vi, err := columnIndex("holdings", header, cols.PnL)
	if err != nil {
		return nil, err
	}

	holdings := make([]HoldingRecord, 0, len(rows))
	var errs error
	for i, row := range rows {
		var pnl decimal.Decimal
		if cell := strings.TrimSpace(row[vi]); cell != "" {
			pnl, err = decimal.NewFromString(cell)
			if err != nil {
				// line numbers are 1-based and the header is line 1.
				errs = errors.Join(errs, fmt.Errorf("holdings line %d: invalid %s %q: %w", i+2, cols.PnL, cell, err))
				continue
			}
		}
		holdings = append(holdings, HoldingRecord{
			Portfolio: row[pi],
			PnL:       pnl,
			Fields:    fields(header, row, pi, vi),
		})
	}
	if errs != nil {
		return nil, errs
	}
	return holdings, nil
}

// LoadTrades decodes the trades CSV file at 'path'.
func LoadTrades(path string, cols Columns) ([]TradeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTrades(f, cols)
}

// LoadHoldings decodes the holdings CSV file at 'path'.
func LoadHoldings(path string, cols Columns) ([]HoldingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeHoldings(f, cols)
}

func readCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("missing header row")
	}
	header = records[0]
	// spreadsheet exports often start with a byte order mark.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	return header, records[1:], nil
}

func columnIndex(dataset string, header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, &ColumnError{Dataset: dataset, Column: name}
}

// fields returns the row as a map, skipping the columns already decoded.
func fields(header, row []string, skip ...int) map[string]string {
	m := make(map[string]string, len(header))
outer:
	for i, h := range header {
		for _, s := range skip {
			if i == s {
				continue outer
			}
		}
		m[h] = row[i]
	}
	return m
}
