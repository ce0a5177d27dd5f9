package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"

	"github.com/disintegration/imaging"
)

// TesseractConfig configures the tesseract command line recognizer.
type TesseractConfig struct {
	Binary      string // default "tesseract"
	Lang        string // default "nld"
	PSM         int    // page segmentation mode, default 6 (single uniform block)
	TessdataDir string
}

// CLIRecognizer runs the tesseract binary in TSV mode.
type CLIRecognizer struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

// NewCLIRecognizer returns a recognizer that shells out to tesseract.
// A nil runner uses ExecRunner.
func NewCLIRecognizer(cfg TesseractConfig, runner Runner, logger *slog.Logger) *CLIRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "nld"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &CLIRecognizer{cfg: cfg, runner: runner, logger: logger}
}

// Recognize writes img to a temporary PNG and reads tesseract's word table.
func (r *CLIRecognizer) Recognize(ctx context.Context, img image.Image) ([]Record, error) {
	tmp, err := os.CreateTemp("", "bon-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, imaging.PNG); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp image: %w", err)
	}

	// tesseract <file> stdout -l <lang> --psm <n> tsv
	args := []string{tmp.Name(), "stdout", "-l", r.cfg.Lang, "--psm", strconv.Itoa(r.cfg.PSM)}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := r.runner.Run(ctx, r.cfg.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}

	records, err := ParseTSV(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tesseract output: %w", err)
	}
	r.logger.Debug("tesseract finished", "words", len(records), "lang", r.cfg.Lang)
	return records, nil
}
