// Package ocr turns recognized words into ordered receipt lines and wraps the
// external text recognition and document decoding tools.
package ocr

import (
	"context"
	"image"
	"strings"
)

// BoundingBox is a word's position on the page, in pixels.
type BoundingBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LineKey identifies the text line a word was grouped into by the recognizer.
type LineKey struct {
	Page      int
	Block     int
	Paragraph int
	Line      int
}

// Record is one raw word as reported by a recognizer.
type Record struct {
	Text       string
	Confidence float64 // 0..100, values <= 0 mark non-detections
	Key        LineKey
	Box        BoundingBox
}

// Token is a recognized word that survived filtering.
type Token struct {
	Text       string
	Confidence float64
	Key        LineKey
	Box        BoundingBox
}

// Line is an ordered group of tokens sharing the same LineKey.
type Line struct {
	// Index is the dense, 0-based reading-order position of the line.
	Index  int
	Tokens []Token
}

// Len returns the number of tokens on the line.
func (l Line) Len() int { return len(l.Tokens) }

// Last returns the right-most token. ok is false for an empty line.
func (l Line) Last() (Token, bool) {
	return l.FromEnd(1)
}

// FromEnd returns the n-th token counted from the right, 1-based:
// FromEnd(1) is the last token, FromEnd(2) the one before it.
func (l Line) FromEnd(n int) (Token, bool) {
	if n < 1 || n > len(l.Tokens) {
		return Token{}, false
	}
	return l.Tokens[len(l.Tokens)-n], true
}

// Texts returns the token texts in order.
func (l Line) Texts() []string {
	texts := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		texts[i] = t.Text
	}
	return texts
}

// Contains reports whether any token equals word, ignoring case.
func (l Line) Contains(words ...string) bool {
	for _, t := range l.Tokens {
		for _, w := range words {
			if strings.EqualFold(t.Text, w) {
				return true
			}
		}
	}
	return false
}

// String joins the token texts with single spaces.
func (l Line) String() string {
	return strings.Join(l.Texts(), " ")
}

// Recognizer runs text recognition over an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]Record, error)
}

// Decoder extracts the image to recognize from an uploaded document.
type Decoder interface {
	Decode(ctx context.Context, document []byte) (image.Image, error)
}
