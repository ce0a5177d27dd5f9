package ocr

import (
	"cmp"
	"slices"
	"strings"
)

// Lines groups records into reading-order lines.
//
// Records with a confidence of zero or less, or without any text, are dropped.
// Each distinct LineKey gets a dense index in the order it is first seen.
// Tokens within a line are ordered by their left edge; words at the same
// position keep their input order. The result can always be regenerated
// from the same records.
func Lines(records []Record) []Line {
	index := make(map[LineKey]int)
	var lines []Line

	for _, r := range records {
		if r.Confidence <= 0 || strings.TrimSpace(r.Text) == "" {
			continue
		}
		i, ok := index[r.Key]
		if !ok {
			i = len(lines)
			index[r.Key] = i
			lines = append(lines, Line{Index: i})
		}
		lines[i].Tokens = append(lines[i].Tokens, Token{
			Text:       strings.TrimSpace(r.Text),
			Confidence: r.Confidence,
			Key:        r.Key,
			Box:        r.Box,
		})
	}

	for _, l := range lines {
		slices.SortStableFunc(l.Tokens, func(a, b Token) int {
			return cmp.Compare(a.Box.Left, b.Box.Left)
		})
	}
	return lines
}
