package receipt

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/ocr"
)

// Processor turns an uploaded receipt document into a verified receipt.
type Processor struct {
	decoder    ocr.Decoder
	recognizer ocr.Recognizer
	logger     *slog.Logger
}

// NewProcessor creates a processor using the given OCR collaborators.
func NewProcessor(decoder ocr.Decoder, recognizer ocr.Recognizer, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		decoder:    decoder,
		recognizer: recognizer,
		logger:     logger,
	}
}

// Process decodes document, recognizes its text and reconstructs the receipt.
// Unreadable lines do not fail the call; they are returned as warnings next to
// the receipt. The returned error is reserved for invalid input and failures
// of the OCR tools.
func (p *Processor) Process(ctx context.Context, document []byte, supermarket string, participants []string) (*models.Receipt, []*LineError, error) {
	layout, names, err := p.prepare(supermarket, participants)
	if err != nil {
		return nil, nil, err
	}

	img, err := p.decoder.Decode(ctx, document)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return p.process(ctx, img, supermarket, layout, names)
}

func (p *Processor) prepare(supermarket string, participants []string) (Layout, []string, error) {
	layout, ok := LayoutFor(supermarket)
	if !ok {
		return Layout{}, nil, fmt.Errorf("%w: %q, supported: %s",
			ErrUnknownSupermarket, supermarket, strings.Join(Supermarkets(), ", "))
	}
	names, err := ParseParticipants(participants)
	if err != nil {
		return Layout{}, nil, err
	}
	return layout, names, nil
}

func (p *Processor) process(ctx context.Context, img image.Image, supermarket string, layout Layout, participants []string) (*models.Receipt, []*LineError, error) {
	records, err := p.recognizer.Recognize(ctx, img)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to recognize text: %w", err)
	}

	lines := ocr.Lines(records)
	p.logger.Debug("Recognized receipt text", "records", len(records), "lines", len(lines))

	r, warnings := NewScanner(layout, p.logger).Scan(lines)
	r.Supermarket = strings.ToUpper(strings.TrimSpace(supermarket))
	r.Participants = participants
	r.Verification = Verify(r)
	logVerification(p.logger, r)

	return r, warnings, nil
}
