package agent

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// numberPattern matches unsigned numbers, with optional thousands separators.
var numberPattern = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)

// listMarker matches the numbering of an ordered list item, like "1. " or "2) ".
var listMarker = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]`)

// numbers returns the distinct values of the numbers written in 's'.
func numbers(s string) map[string]string {
	found := make(map[string]string)
	for _, tok := range numberPattern.FindAllString(s, -1) {
		d, err := decimal.NewFromString(strings.ReplaceAll(tok, ",", ""))
		if err != nil {
			continue
		}
		// canonical form so that 12.50 and 12.5 are the same value.
		found[d.String()] = tok
	}
	return found
}

// ungroundedNumbers returns the numbers of 'answer' that appear in none of the 'sources'.
//
// Signs are ignored: "a loss of 3.5" is grounded on -3.5.
// List numbering in the answer is not a figure.
func ungroundedNumbers(answer string, sources ...string) []string {
	known := make(map[string]string)
	for _, s := range sources {
		for k, v := range numbers(s) {
			known[k] = v
		}
	}

	var unknown []string
	for k, tok := range numbers(listMarker.ReplaceAllString(answer, "")) {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, tok)
		}
	}
	slices.Sort(unknown)
	return unknown
}
