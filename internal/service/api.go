package service

import (
	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
	"github.com/mmynk/bonsplitser/internal/receipt"
)

// ProcessReceiptRequest uploads a receipt. Document holds the PDF or image
// bytes (base64 in JSON).
type ProcessReceiptRequest struct {
	Supermarket  string   `json:"supermarket"`
	Participants []string `json:"participants"`
	Document     []byte   `json:"document"`
}

type ProcessReceiptResponse struct {
	Receipt  *models.Receipt `json:"receipt"`
	Warnings []Warning       `json:"warnings,omitempty"`
	// Token grants access to the stored receipt.
	Token string `json:"token"`
}

// Warning describes a receipt line that could not be read.
type Warning struct {
	Line    int    `json:"line"`
	Text    string `json:"text,omitempty"`
	State   string `json:"state"`
	Message string `json:"message"`
}

func toWarnings(errs []*receipt.LineError) []Warning {
	warnings := make([]Warning, len(errs))
	for i, e := range errs {
		warnings[i] = Warning{Line: e.Line, Text: e.Text, State: e.State, Message: e.Err.Error()}
	}
	return warnings
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type GetReceiptResponse struct {
	Receipt *models.Receipt `json:"receipt"`
}

// CorrectReceiptRequest carries the values of the adjustment form, one price
// per item and per discount line in receipt order.
type CorrectReceiptRequest struct {
	ReceiptID   string        `json:"receipt_id"`
	ItemPrices  []money.Money `json:"item_prices"`
	BonusPrices []money.Money `json:"bonus_prices"`
	Subtotal    money.Money   `json:"subtotal"`
	BonusTotal  money.Money   `json:"bonus_total"`
	GrandTotal  money.Money   `json:"grand_total"`
}

type CorrectReceiptResponse struct {
	Receipt *models.Receipt `json:"receipt"`
}

// SettleRequest splits a stored receipt. Payer is optional; when set the
// response also lists who has to pay the payer back.
type SettleRequest struct {
	ReceiptID string                 `json:"receipt_id"`
	Shares    models.ShareAssignment `json:"shares"`
	Payer     string                 `json:"payer,omitempty"`
}

type SettleResponse struct {
	Settlement *models.Settlement `json:"settlement"`
	Transfers  []models.Transfer  `json:"transfers,omitempty"`
}

type ListSettlementsRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type ListSettlementsResponse struct {
	Settlements []*models.Settlement `json:"settlements"`
}
