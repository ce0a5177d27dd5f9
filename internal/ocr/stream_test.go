package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(text string, conf float64, block, line int) Record {
	return Record{Text: text, Confidence: conf, Key: LineKey{Page: 1, Block: block, Paragraph: 1, Line: line}}
}

func TestLines(t *testing.T) {
	records := []Record{
		rec("ALBERT", 95, 1, 1),
		rec("HEIJN", 93, 1, 1),
		rec("", 95, 1, 2),
		rec("~", -1, 1, 2),
		rec("AANTAL", 90, 2, 1),
		rec("OMSCHRIJVING", 0, 2, 1),
		rec("BEDRAG", 88, 2, 1),
		rec("MELK", 96, 2, 2),
		rec("1,19", 97, 2, 2),
	}

	lines := Lines(records)
	require.Len(t, lines, 3)

	assert.Equal(t, 0, lines[0].Index)
	assert.Equal(t, []string{"ALBERT", "HEIJN"}, lines[0].Texts())
	assert.Equal(t, 1, lines[1].Index)
	assert.Equal(t, []string{"AANTAL", "BEDRAG"}, lines[1].Texts())
	assert.Equal(t, 2, lines[2].Index)
	assert.Equal(t, "MELK 1,19", lines[2].String())
}

func TestLinesFirstSeenOrder(t *testing.T) {
	// A key that shows up again later keeps its original index.
	records := []Record{
		rec("a", 90, 1, 1),
		rec("b", 90, 1, 2),
		rec("c", 90, 1, 1),
	}
	lines := Lines(records)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"a", "c"}, lines[0].Texts())
	assert.Equal(t, []string{"b"}, lines[1].Texts())
}

func TestLinesOrdersTokensByLeftEdge(t *testing.T) {
	at := func(text string, left int) Record {
		r := rec(text, 90, 1, 1)
		r.Box = BoundingBox{Left: left, Width: 40, Height: 20}
		return r
	}
	records := []Record{
		at("2,30", 410),
		at("1", 12),
		at("B", 470),
		at("BROOD", 60),
	}

	lines := Lines(records)
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"1", "BROOD", "2,30", "B"}, lines[0].Texts())
}

func TestLinesEmpty(t *testing.T) {
	assert.Empty(t, Lines(nil))
	assert.Empty(t, Lines([]Record{rec("x", 0, 1, 1)}))
}

func TestLineAccessors(t *testing.T) {
	line := Line{Tokens: []Token{{Text: "KAAS"}, {Text: "4,99"}, {Text: "b"}}}

	last, ok := line.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.Text)

	second, ok := line.FromEnd(2)
	require.True(t, ok)
	assert.Equal(t, "4,99", second.Text)

	_, ok = line.FromEnd(4)
	assert.False(t, ok)
	_, ok = Line{}.Last()
	assert.False(t, ok)

	assert.True(t, line.Contains("kaas"))
	assert.True(t, line.Contains("X", "B"))
	assert.False(t, line.Contains("KAA"))
	assert.Equal(t, 3, line.Len())
}
