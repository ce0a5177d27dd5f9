package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/bonsplitser/internal/auth"
	"github.com/mmynk/bonsplitser/internal/calculator"
	"github.com/mmynk/bonsplitser/internal/metrics"
	"github.com/mmynk/bonsplitser/internal/middleware"
	"github.com/mmynk/bonsplitser/internal/models"
	"github.com/mmynk/bonsplitser/internal/money"
	"github.com/mmynk/bonsplitser/internal/ocr"
	"github.com/mmynk/bonsplitser/internal/receipt"
	"github.com/mmynk/bonsplitser/internal/storage"
)

// DefaultMaxUploadBytes is the largest document ProcessReceipt accepts by default.
const DefaultMaxUploadBytes = 2 << 20

// ReceiptService implements the Connect ReceiptService
type ReceiptService struct {
	store          storage.Store
	processor      *receipt.Processor
	engine         *calculator.Engine
	jwt            *auth.JWTManager
	metrics        *metrics.Metrics
	logger         *slog.Logger
	maxUploadBytes int
}

// Options holds the optional collaborators of a ReceiptService.
type Options struct {
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	MaxUploadBytes int
}

// NewReceiptService creates a new ReceiptService with the given storage backend.
func NewReceiptService(store storage.Store, processor *receipt.Processor, engine *calculator.Engine, jwt *auth.JWTManager, opts Options) *ReceiptService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &ReceiptService{
		store:          store,
		processor:      processor,
		engine:         engine,
		jwt:            jwt,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// ProcessReceipt reconstructs an uploaded receipt, stores it and returns an
// access token for it.
func (s *ReceiptService) ProcessReceipt(ctx context.Context, req *connect.Request[ProcessReceiptRequest]) (*connect.Response[ProcessReceiptResponse], error) {
	msg := req.Msg
	if len(msg.Document) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("document is required"))
	}
	if len(msg.Document) > s.maxUploadBytes {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("document is %d bytes, the limit is %d", len(msg.Document), s.maxUploadBytes))
	}

	start := time.Now()
	r, lineErrs, err := s.processor.Process(ctx, msg.Document, msg.Supermarket, msg.Participants)
	if err != nil {
		s.logger.Error("ProcessReceipt failed", "supermarket", msg.Supermarket, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.RecordReceipt(r.Supermarket, r.Verification.OK(), time.Since(start))
	for _, e := range lineErrs {
		s.metrics.RecordLineWarning(e.State)
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateReceipt(ctx, r); err != nil {
		s.logger.Error("ProcessReceipt failed to store receipt", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwt.Generate(r.ID, r.Participants)
	if err != nil {
		s.logger.Error("ProcessReceipt failed to issue token", "receipt_id", r.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Receipt processed",
		"receipt_id", r.ID,
		"items", len(r.Items),
		"bonus_items", len(r.BonusItems),
		"warnings", len(lineErrs),
		"verified", r.Verification.OK(),
	)

	return connect.NewResponse(&ProcessReceiptResponse{
		Receipt:  r,
		Warnings: toWarnings(lineErrs),
		Token:    token,
	}), nil
}

// GetReceipt returns a stored receipt.
func (s *ReceiptService) GetReceipt(ctx context.Context, req *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error) {
	r, err := s.authorizedReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetReceiptResponse{Receipt: r}), nil
}

// CorrectReceipt applies the values of the adjustment form and verifies the
// receipt again.
func (s *ReceiptService) CorrectReceipt(ctx context.Context, req *connect.Request[CorrectReceiptRequest]) (*connect.Response[CorrectReceiptResponse], error) {
	msg := req.Msg
	r, err := s.authorizedReceipt(ctx, msg.ReceiptID)
	if err != nil {
		return nil, err
	}

	corrected, err := receipt.ApplyCorrection(r, receipt.Correction{
		ItemPrices:  msg.ItemPrices,
		BonusPrices: msg.BonusPrices,
		Subtotal:    msg.Subtotal,
		BonusTotal:  msg.BonusTotal,
		GrandTotal:  msg.GrandTotal,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateReceipt(ctx, corrected); err != nil {
		s.logger.Error("CorrectReceipt failed", "receipt_id", corrected.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Receipt corrected", "receipt_id", corrected.ID, "verified", corrected.Verification.OK(),
		"failed_checks", corrected.Verification.Failed())
	return connect.NewResponse(&CorrectReceiptResponse{Receipt: corrected}), nil
}

// Settle splits a stored receipt among its participants and records the result.
func (s *ReceiptService) Settle(ctx context.Context, req *connect.Request[SettleRequest]) (*connect.Response[SettleResponse], error) {
	msg := req.Msg
	r, err := s.authorizedReceipt(ctx, msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	if msg.Payer != "" && !r.HasParticipant(msg.Payer) {
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("payer '%s' must be one of the participants", msg.Payer))
	}

	settlement, err := s.engine.Settle(r, msg.Shares)
	if err != nil {
		s.logger.Warn("Settle rejected", "receipt_id", r.ID, "error", err)
		return nil, toConnectError(err)
	}
	if !settlement.Balanced {
		s.logger.Warn("Settlement does not add up", "receipt_id", r.ID, "mismatches", settlement.Mismatches)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		s.logger.Error("Settle failed to store settlement", "receipt_id", r.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.RecordSettlement(settlement.Balanced, settlement.LeftoverCents)

	for _, t := range settlement.Totals {
		s.logger.Debug("Participant total", "receipt_id", r.ID, "participant", t.Participant, "total", t.Total)
	}

	resp := &SettleResponse{Settlement: settlement}
	if msg.Payer != "" {
		resp.Transfers = calculator.Transfers(settlement.Totals, map[string]money.Money{msg.Payer: r.GrandTotal})
	}
	return connect.NewResponse(resp), nil
}

// ListSettlements returns the recorded settlements of a receipt, newest first.
func (s *ReceiptService) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	r, err := s.authorizedReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlements(ctx, r.ID)
	if err != nil {
		s.logger.Error("ListSettlements failed", "receipt_id", r.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if settlements == nil {
		settlements = []*models.Settlement{}
	}
	return connect.NewResponse(&ListSettlementsResponse{Settlements: settlements}), nil
}

// authorizedReceipt loads a receipt after checking that the caller's token
// was issued for it.
func (s *ReceiptService) authorizedReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	if receiptID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("receipt_id is required"))
	}
	tokenReceipt := middleware.GetReceiptID(ctx)
	if tokenReceipt == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if tokenReceipt != receiptID {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("token does not grant access to receipt %s", receiptID))
	}

	r, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return r, nil
}

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, receipt.ErrUnknownSupermarket),
		errors.Is(err, receipt.ErrInvalidParticipants),
		errors.Is(err, receipt.ErrCorrectionMismatch),
		errors.Is(err, calculator.ErrInvalidShares),
		errors.Is(err, calculator.ErrZeroShares),
		errors.Is(err, money.ErrParse),
		errors.Is(err, ocr.ErrUnsupportedDocument),
		errors.Is(err, ocr.ErrNoImage):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
