// Package fundqa answers questions about portfolio data without letting a
// language model do any arithmetic.
//
// The figures a model may talk about are computed here, deterministically,
// from two tabular datasets:
//   - Trades: one record per trade, only counted per portfolio.
//   - Holdings: one record per position, carrying a year-to-date profit and
//     loss that is summed per portfolio.
//
// [Aggregate] reduces both datasets into [Summaries], one [PortfolioSummary]
// per portfolio seen in either dataset. The renderer package turns them into
// the textual fact-sheet handed to the model, the agent package constrains
// the model to that fact-sheet, and the pipeline package sequences both
// stages for every question.
package fundqa
