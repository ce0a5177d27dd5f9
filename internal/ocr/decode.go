package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedDocument is returned for uploads that are neither a PDF nor an image.
	ErrUnsupportedDocument = errors.New("unsupported document type")
	// ErrNoImage is returned when a PDF has no embedded image on its first page.
	ErrNoImage = errors.New("document contains no image")
)

// DecoderConfig configures DocumentDecoder.
type DecoderConfig struct {
	Pdfimages string // binary name or path, default "pdfimages"
}

// DocumentDecoder returns the grayscale receipt image from an uploaded PDF or
// raster image. For a PDF only the first embedded image of the first page is
// used; receipts are single page.
type DocumentDecoder struct {
	cfg    DecoderConfig
	runner Runner
	logger *slog.Logger
}

// NewDocumentDecoder creates a decoder. A nil runner uses ExecRunner.
func NewDocumentDecoder(cfg DecoderConfig, runner Runner, logger *slog.Logger) *DocumentDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdfimages == "" {
		cfg.Pdfimages = "pdfimages"
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &DocumentDecoder{cfg: cfg, runner: runner, logger: logger}
}

// Decode implements Decoder.
func (d *DocumentDecoder) Decode(ctx context.Context, document []byte) (image.Image, error) {
	contentType := http.DetectContentType(document)
	d.logger.Debug("decoding document", "content_type", contentType, "bytes", len(document))

	var img image.Image
	var err error
	switch {
	case contentType == "application/pdf":
		img, err = d.firstPDFImage(ctx, document)
	case strings.HasPrefix(contentType, "image/"):
		img, err = imaging.Decode(bytes.NewReader(document), imaging.AutoOrientation(true))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}
	if err != nil {
		return nil, err
	}

	return imaging.Grayscale(img), nil
}

func (d *DocumentDecoder) firstPDFImage(ctx context.Context, document []byte) (image.Image, error) {
	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	pages := reader.NumPage()
	if pages == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrNoImage)
	}
	if pages > 1 {
		d.logger.Warn("pdf has more than one page, only the first is used", "pages", pages)
	}

	tmpDir, err := os.MkdirTemp("", "bon-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "receipt.pdf")
	if err := os.WriteFile(in, document, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	// pdfimages -f 1 -l 1 -png <in.pdf> <tmp/img>
	prefix := filepath.Join(tmpDir, "img")
	if _, errb, err := d.runner.Run(ctx, d.cfg.Pdfimages, "-f", "1", "-l", "1", "-png", in, prefix); err != nil {
		return nil, fmt.Errorf("pdfimages: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, ErrNoImage
	}
	sort.Strings(matches)

	img, err := imaging.Open(matches[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open extracted image: %w", err)
	}
	return img, nil
}
