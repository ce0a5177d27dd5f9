// Package calculator splits a verified receipt among its participants and
// works out who has to pay whom.
package calculator

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
)

var (
	// ErrZeroShares is returned when nobody holds a share of a line.
	ErrZeroShares = errors.New("line has no shares")

	// ErrInvalidShares is returned for a share assignment that does not fit
	// the receipt.
	ErrInvalidShares = errors.New("invalid share assignment")
)

// Mismatch names used in Settlement.Mismatches.
const (
	MismatchSubtotal     = "subtotal"
	MismatchBonus        = "bonus"
	MismatchTotal        = "total"
	MismatchParticipants = "participants"
)

// Engine computes settlements. The chooser decides ties when a leftover cent
// could go to more than one participant.
type Engine struct {
	chooser Chooser
}

// NewEngine creates an engine. A nil chooser picks at random.
func NewEngine(chooser Chooser) *Engine {
	if chooser == nil {
		chooser = NewRandomChooser()
	}
	return &Engine{chooser: chooser}
}

// line is one chargeable receipt line. Discount lines are debits.
type line struct {
	label  string
	price  money.Money
	shares models.Shares
	debit  bool
}

// Settle splits r according to shares. Every line is divided into equal
// whole-cent shares; the cents that do not divide evenly are handed out one
// at a time so that, over many lines shared by the same people, everyone
// receives leftover cents in proportion to their shares.
//
// Invalid input fails the whole call. Totals that do not add up are reported
// in the result's Mismatches and do not fail the call.
func (e *Engine) Settle(r *models.Receipt, shares models.ShareAssignment) (*models.Settlement, error) {
	lines, err := chargeableLines(r, shares)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]money.Money, len(r.Participants))
	ledger := newLedger()
	leftoverCents := 0

	for _, l := range lines {
		amounts, cents, err := e.split(l, ledger)
		if err != nil {
			return nil, err
		}
		leftoverCents += cents
		for p, amount := range amounts {
			if l.debit {
				totals[p] = totals[p].Sub(amount)
			} else {
				totals[p] = totals[p].Add(amount)
			}
		}
	}

	s := &models.Settlement{
		ReceiptID:     r.ID,
		GrandTotal:    r.GrandTotal,
		LeftoverCents: leftoverCents,
		Shares:        shares,
		Totals:        make([]models.ParticipantTotal, 0, len(r.Participants)),
	}
	for _, p := range r.Participants {
		s.Totals = append(s.Totals, models.ParticipantTotal{Participant: p, Total: totals[p]})
	}
	s.Mismatches = check(r, s.Totals)
	s.Balanced = len(s.Mismatches) == 0
	return s, nil
}

// split divides one line. It returns the amount per participant with a
// nonzero share and the number of leftover cents that were handed out.
func (e *Engine) split(l line, ledger *ledger) (map[string]money.Money, int, error) {
	total := l.shares.Total()
	if total == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrZeroShares, l.label)
	}

	holders := l.holders()
	amounts := make(map[string]money.Money, len(holders))
	if len(holders) == 1 {
		amounts[holders[0]] = l.price
		return amounts, 0, nil
	}

	leftover := l.price.Mod(money.FromCents(int64(total)))
	sharePrice := l.price.Sub(leftover).DivInt(int64(total))
	for _, p := range holders {
		amounts[p] = sharePrice.MulInt(int64(l.shares[p]))
	}

	cents := int(leftover.Cents())
	scores := ledger.bucket(holders)
	for range cents {
		p := e.chooser.ChooseOne(scores.candidates(holders, l.debit))
		amounts[p] = amounts[p].Add(money.Cent)
		scores.award(p, l.shares[p], l.debit)
	}
	return amounts, cents, nil
}

// holders returns the participants with a nonzero share, sorted.
func (l line) holders() []string {
	var out []string
	for p, n := range l.shares {
		if n > 0 {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// newLine stores the magnitude of price. A negative charge, such as a
// returned deposit, is settled as a discount and a negative discount as a
// charge, so leftover cents are always whole and non-negative.
func newLine(label string, price money.Money, shares models.Shares, debit bool) line {
	if price.IsNegative() {
		return line{label: label, price: price.Abs(), shares: shares, debit: !debit}
	}
	return line{label: label, price: price, shares: shares, debit: debit}
}

func chargeableLines(r *models.Receipt, shares models.ShareAssignment) ([]line, error) {
	if len(shares.Items) != len(r.Items) {
		return nil, fmt.Errorf("%w: %d item share lists for %d items", ErrInvalidShares, len(shares.Items), len(r.Items))
	}
	if len(shares.BonusItems) != len(r.BonusItems) {
		return nil, fmt.Errorf("%w: %d bonus share lists for %d bonus items", ErrInvalidShares, len(shares.BonusItems), len(r.BonusItems))
	}

	lines := make([]line, 0, len(r.Items)+len(r.BonusItems))
	for i, item := range r.Items {
		label := fmt.Sprintf("item %d (%s)", i, item.Description)
		if err := validateShares(r, shares.Items[i], label); err != nil {
			return nil, err
		}
		lines = append(lines, newLine(label, item.Price, shares.Items[i], false))
	}
	for i, item := range r.BonusItems {
		label := fmt.Sprintf("bonus item %d (%s)", i, item.Description)
		if err := validateShares(r, shares.BonusItems[i], label); err != nil {
			return nil, err
		}
		lines = append(lines, newLine(label, item.Price, shares.BonusItems[i], true))
	}
	return lines, nil
}

func validateShares(r *models.Receipt, shares models.Shares, label string) error {
	for p, n := range shares {
		if n < 0 {
			return fmt.Errorf("%w: %s: negative share count %d for %s", ErrInvalidShares, label, n, p)
		}
		if !r.HasParticipant(p) {
			return fmt.Errorf("%w: %s: %q is not a participant", ErrInvalidShares, label, p)
		}
	}
	return nil
}

// check compares the settled totals against the receipt.
func check(r *models.Receipt, totals []models.ParticipantTotal) []string {
	var mismatches []string
	if !money.Sum(r.ItemPrices()...).Equal(r.Subtotal) {
		mismatches = append(mismatches, MismatchSubtotal)
	}
	if !money.Sum(r.BonusPrices()...).Equal(r.BonusTotal) {
		mismatches = append(mismatches, MismatchBonus)
	}
	if !r.Subtotal.Sub(r.BonusTotal).Equal(r.GrandTotal) {
		mismatches = append(mismatches, MismatchTotal)
	}

	sum := money.Zero
	for _, t := range totals {
		sum = sum.Add(t.Total)
		if t.Total.IsNegative() {
			mismatches = append(mismatches, "negative:"+t.Participant)
		}
	}
	if !sum.Equal(r.GrandTotal) {
		mismatches = append(mismatches, MismatchParticipants)
	}
	return mismatches
}

// ledger keeps the leftover point scores of every participant combination
// seen during one settlement.
type ledger struct {
	buckets map[string]scores
}

func newLedger() *ledger {
	return &ledger{buckets: make(map[string]scores)}
}

// bucket returns the scores of the exact combination of participants.
func (l *ledger) bucket(participants []string) scores {
	key := strings.Join(participants, ",")
	s, ok := l.buckets[key]
	if !ok {
		s = make(scores, len(participants))
		for _, p := range participants {
			s[p] = new(big.Rat)
		}
		l.buckets[key] = s
	}
	return s
}

// scores are exact fractional points. A participant gains 1/shares points
// for every leftover cent charged to them and loses as much for every cent
// of discount.
type scores map[string]*big.Rat

// candidates returns the participants next in line: the lowest scores for a
// charge, the highest for a discount.
func (s scores) candidates(participants []string, debit bool) []string {
	var best *big.Rat
	var out []string
	for _, p := range participants {
		score := s[p]
		switch c := compare(score, best, debit); {
		case best == nil || c < 0:
			best = score
			out = append(out[:0], p)
		case c == 0:
			out = append(out, p)
		}
	}
	return out
}

// compare orders a before b when a is the better candidate.
func compare(a, b *big.Rat, debit bool) int {
	if b == nil {
		return -1
	}
	if debit {
		return b.Cmp(a)
	}
	return a.Cmp(b)
}

func (s scores) award(p string, shares int, debit bool) {
	step := big.NewRat(1, int64(shares))
	if debit {
		s[p].Sub(s[p], step)
	} else {
		s[p].Add(s[p], step)
	}
}
