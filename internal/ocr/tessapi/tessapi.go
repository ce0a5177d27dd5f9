// Package tessapi recognizes receipts through the tesseract C API via gosseract.
// It needs libtesseract at build time; the command line recognizer in package
// ocr does not.
package tessapi

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/mmynk/bonsplitser/internal/ocr"
)

// Ensure Recognizer implements ocr.Recognizer
var _ ocr.Recognizer = (*Recognizer)(nil)

// Recognizer runs tesseract in-process. A new client is created per call, so
// a Recognizer is safe for concurrent use.
type Recognizer struct {
	lang        string
	tessdataDir string
	logger      *slog.Logger
}

// New creates a Recognizer for the given tesseract language, e.g. "nld".
func New(lang, tessdataDir string, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if lang == "" {
		lang = "nld"
	}
	return &Recognizer{lang: lang, tessdataDir: tessdataDir, logger: logger}
}

// Recognize implements ocr.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) ([]ocr.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.tessdataDir != "" {
		if err := client.SetTessdataPrefix(r.tessdataDir); err != nil {
			return nil, fmt.Errorf("failed to set tessdata dir: %w", err)
		}
	}
	if err := client.SetLanguage(r.lang); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}

	records := make([]ocr.Record, 0, len(boxes))
	for _, b := range boxes {
		records = append(records, toRecord(b))
	}
	r.logger.Debug("tesseract api finished", "words", len(records), "lang", r.lang)
	return records, nil
}

// toRecord converts a gosseract word box. The C API works on a single page.
func toRecord(b gosseract.BoundingBox) ocr.Record {
	return ocr.Record{
		Text:       b.Word,
		Confidence: b.Confidence,
		Key: ocr.LineKey{
			Page:      1,
			Block:     b.BlockNum,
			Paragraph: b.ParNum,
			Line:      b.LineNum,
		},
		Box: ocr.BoundingBox{
			Left:   b.Box.Min.X,
			Top:    b.Box.Min.Y,
			Width:  b.Box.Dx(),
			Height: b.Box.Dy(),
		},
	}
}
