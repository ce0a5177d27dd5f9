// Package receipt reconstructs structured receipts from recognized text lines,
// checks their totals, and applies human corrections.
package receipt

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
	"github.com/mmynk/bonsplitser/internal/ocr"
)

// stage is a state of the receipt scanner.
type stage int

const (
	stageStart stage = iota
	stageItems
	stageBonus
	stageTotal
	stageEnd
)

func (s stage) String() string {
	switch s {
	case stageStart:
		return "START"
	case stageItems:
		return "ITEMS"
	case stageBonus:
		return "BONUS"
	case stageTotal:
		return "TOTAL"
	case stageEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// scanState is passed into and returned from every transition.
type scanState struct {
	stage stage
	// loyaltyCardSeen stays set once the loyalty card line was skipped, so a
	// later line mentioning the card is read as an item.
	loyaltyCardSeen bool
}

var (
	// unitPriceRe matches the "unit price x quantity" amount printed before
	// the line total on multi-quantity item lines.
	unitPriceRe = regexp.MustCompile(`^\d{1,2},\d{2}`)

	// itemMarkers are checked in order against the last token of an item line.
	itemMarkers = []models.BonusMarker{models.MarkerBonus, models.MarkerPercent35}

	errMissingAmount = errors.New("line has no amount")
)

// Scanner is the line-by-line receipt state machine.
type Scanner struct {
	layout Layout
	logger *slog.Logger
}

// NewScanner creates a scanner for the given layout.
func NewScanner(layout Layout, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{layout: layout, logger: logger}
}

// builder collects the per-line fragments of a receipt during a scan.
type builder struct {
	receipt    models.Receipt
	items      []models.Item
	bonusItems []models.BonusItem
}

// Scan consumes lines in reading order and returns the reconstructed receipt.
// Lines that cannot be read are reported as warnings and skipped. A receipt
// that ends before the grand total is still returned, with the missing
// amounts left at zero and an ErrIncomplete warning.
func (s *Scanner) Scan(lines []ocr.Line) (*models.Receipt, []*LineError) {
	b := &builder{}
	st := scanState{stage: stageStart}
	var warnings []*LineError

	for _, line := range lines {
		if st.stage == stageEnd {
			break
		}
		next, err := s.step(st, line, b)
		if err != nil {
			lerr := &LineError{Line: line.Index, Text: line.String(), State: st.stage.String(), Err: err}
			s.logger.Warn("Skipping unreadable receipt line", "line", lerr.Line, "state", lerr.State, "text", lerr.Text, "error", err)
			warnings = append(warnings, lerr)
		}
		if next.stage != st.stage {
			s.logger.Debug("Receipt scanner transition", "line", line.Index, "from", st.stage, "to", next.stage)
		}
		st = next
	}

	if st.stage != stageEnd {
		warnings = append(warnings, &LineError{Line: -1, State: st.stage.String(), Err: ErrIncomplete})
		s.logger.Warn("Receipt ended early", "state", st.stage)
	}

	return b.finalize(), warnings
}

// step applies one line to the machine. The returned state is valid even when
// an error is returned.
func (s *Scanner) step(st scanState, line ocr.Line, b *builder) (scanState, error) {
	switch st.stage {
	case stageStart:
		if line.Contains(s.layout.Headers...) {
			st.stage = stageItems
		}
		return st, nil

	case stageItems:
		if !st.loyaltyCardSeen && line.Contains(s.layout.LoyaltyCard) {
			st.loyaltyCardSeen = true
			return st, nil
		}
		if line.Contains(s.layout.Subtotal) {
			st.stage = stageBonus
			amount, conf, err := lastAmount(line)
			b.receipt.Subtotal, b.receipt.SubtotalConfidence = amount, conf
			return st, err
		}
		item, err := parseItem(line)
		if err != nil {
			return st, err
		}
		b.items = append(b.items, item)
		return st, nil

	case stageBonus:
		if line.Contains(s.layout.BonusTotal) {
			st.stage = stageTotal
			amount, conf, err := lastAmount(line)
			b.receipt.BonusTotal, b.receipt.BonusConfidence = amount, conf
			return st, err
		}
		item, err := s.parseBonusItem(line)
		if err != nil {
			return st, err
		}
		b.bonusItems = append(b.bonusItems, item)
		return st, nil

	case stageTotal:
		if line.Contains(s.layout.Total) {
			st.stage = stageEnd
			amount, conf, err := lastAmount(line)
			b.receipt.GrandTotal, b.receipt.TotalConfidence = amount, conf
			return st, err
		}
		return st, nil

	default:
		return st, nil
	}
}

// lastAmount parses the last token of a totals line.
func lastAmount(line ocr.Line) (money.Money, float64, error) {
	last, ok := line.Last()
	if !ok {
		return money.Zero, 0, errMissingAmount
	}
	amount, err := money.Parse(last.Text)
	if err != nil {
		return money.Zero, 0, err
	}
	return amount, last.Confidence, nil
}

// parseItem reads a product line. The price is the last token, unless the
// last token is a discount marker on its own, in which case the price is the
// token before it. A marker glued to the price is cut out of the token.
func parseItem(line ocr.Line) (models.Item, error) {
	last, ok := line.Last()
	if !ok {
		return models.Item{}, errMissingAmount
	}

	priceTok := last
	fromEnd := 1
	marker := models.MarkerNone
	upper := strings.ToUpper(last.Text)
	for _, m := range itemMarkers {
		if !strings.Contains(upper, string(m)) {
			continue
		}
		marker = m
		if upper == string(m) {
			fromEnd = 2
			priceTok, ok = line.FromEnd(fromEnd)
			if !ok {
				return models.Item{}, errMissingAmount
			}
		} else {
			priceTok.Text = stripMarker(last.Text, m)
		}
		break
	}

	price, err := money.Parse(priceTok.Text)
	if err != nil {
		return models.Item{}, err
	}

	var words []string
	for _, tok := range line.Tokens[:line.Len()-fromEnd] {
		if unitPriceRe.MatchString(tok.Text) {
			continue
		}
		words = append(words, tok.Text)
	}

	return models.Item{
		Price:           price,
		PriceConfidence: priceTok.Confidence,
		Marker:          marker,
		Description:     strings.Join(words, " "),
	}, nil
}

// stripMarker removes every occurrence of the marker, in any case, and all spaces.
func stripMarker(text string, m models.BonusMarker) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(string(m)))
	return strings.ReplaceAll(re.ReplaceAllString(text, ""), " ", "")
}

// parseBonusItem reads a discount line: description tokens followed by the
// discount amount, usually printed with a minus sign.
func (s *Scanner) parseBonusItem(line ocr.Line) (models.BonusItem, error) {
	last, ok := line.Last()
	if !ok {
		return models.BonusItem{}, errMissingAmount
	}
	price, err := money.Parse(strings.ReplaceAll(last.Text, "-", ""))
	if err != nil {
		return models.BonusItem{}, err
	}

	texts := line.Texts()
	description := strings.ToUpper(strings.Join(texts[:len(texts)-1], " "))
	for _, noise := range s.layout.BonusNoise {
		description = strings.ReplaceAll(description, noise, "")
	}

	return models.BonusItem{
		Price:           price,
		PriceConfidence: last.Confidence,
		Description:     strings.TrimSpace(description),
	}, nil
}

// finalize merges the collected fragments in encounter order.
func (b *builder) finalize() *models.Receipt {
	r := b.receipt
	r.Items = append([]models.Item{}, b.items...)
	r.BonusItems = append([]models.BonusItem{}, b.bonusItems...)
	return &r
}
