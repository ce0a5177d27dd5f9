package ocr

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// wordLevel is the tesseract TSV level of a single word.
const wordLevel = 5

var tsvColumns = []string{
	"level", "page_num", "block_num", "par_num", "line_num", "word_num",
	"left", "top", "width", "height", "conf", "text",
}

// ParseTSV reads the output of `tesseract <image> stdout tsv` and returns the
// word-level rows. Rows for pages, blocks, paragraphs and lines are skipped.
func ParseTSV(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read tsv header: %w", err)
		}
		return nil, nil
	}
	cols, err := tsvHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	var records []Record
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		row := scanner.Text()
		if row == "" {
			continue
		}
		fields := strings.SplitN(row, "\t", len(tsvColumns))
		if len(fields) < len(tsvColumns)-1 {
			return nil, fmt.Errorf("tsv line %d: expected %d columns, got %d", lineNo, len(tsvColumns), len(fields))
		}
		for len(fields) < len(tsvColumns) {
			fields = append(fields, "")
		}

		ints := make(map[string]int, len(tsvColumns))
		for _, name := range tsvColumns[:10] {
			v, err := strconv.Atoi(strings.TrimSpace(fields[cols[name]]))
			if err != nil {
				return nil, fmt.Errorf("tsv line %d: invalid %s: %w", lineNo, name, err)
			}
			ints[name] = v
		}
		if ints["level"] != wordLevel {
			continue
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(fields[cols["conf"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("tsv line %d: invalid conf: %w", lineNo, err)
		}

		records = append(records, Record{
			Text:       fields[cols["text"]],
			Confidence: conf,
			Key: LineKey{
				Page:      ints["page_num"],
				Block:     ints["block_num"],
				Paragraph: ints["par_num"],
				Line:      ints["line_num"],
			},
			Box: BoundingBox{
				Left:   ints["left"],
				Top:    ints["top"],
				Width:  ints["width"],
				Height: ints["height"],
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tsv: %w", err)
	}

	return records, nil
}

func tsvHeader(header string) (map[string]int, error) {
	cols := make(map[string]int, len(tsvColumns))
	for i, name := range strings.Split(strings.TrimSpace(header), "\t") {
		cols[name] = i
	}
	for _, name := range tsvColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("tsv header is missing column %q", name)
		}
	}
	if len(cols) != len(tsvColumns) || cols["text"] != len(tsvColumns)-1 {
		return nil, fmt.Errorf("tsv header: unexpected layout %q", header)
	}
	return cols, nil
}
