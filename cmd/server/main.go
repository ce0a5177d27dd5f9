package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/bonsplitser/internal/auth"
	"github.com/mmynk/bonsplitser/internal/calculator"
	"github.com/mmynk/bonsplitser/internal/config"
	"github.com/mmynk/bonsplitser/internal/metrics"
	"github.com/mmynk/bonsplitser/internal/middleware"
	"github.com/mmynk/bonsplitser/internal/ocr"
	"github.com/mmynk/bonsplitser/internal/ocr/tessapi"
	"github.com/mmynk/bonsplitser/internal/receipt"
	"github.com/mmynk/bonsplitser/internal/service"
	"github.com/mmynk/bonsplitser/internal/storage/sqlite"
	"github.com/mmynk/bonsplitser/pkg/logging"
)

func main() {
	logger := logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.Database.Path)

	decoder := ocr.NewDocumentDecoder(ocr.DecoderConfig{Pdfimages: cfg.OCR.PdfimagesBin}, nil, logger)
	recognizer := newRecognizer(cfg.OCR, logger)
	logger.Info("OCR initialized", "engine", cfg.OCR.Engine, "lang", cfg.OCR.Lang)

	m := metrics.New()
	svc := service.NewReceiptService(
		store,
		receipt.NewProcessor(decoder, recognizer, logger),
		calculator.NewEngine(nil),
		auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		service.Options{
			Metrics:        m,
			Logger:         logger,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		},
	)

	mux := http.NewServeMux()

	// Register Connect service
	path, handler := service.NewReceiptServiceHandler(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor(logger, m)))
	mux.Handle(path, handler)

	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	// Add logging, CORS and timeout middleware
	wrapped := loggingMiddleware(logger, corsMiddleware(timeoutMiddleware(cfg.Server.RequestTimeout, mux)))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	h2cHandler := h2c.NewHandler(wrapped, &http2.Server{})

	addr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
}

func newRecognizer(cfg config.OCRConfig, logger *slog.Logger) ocr.Recognizer {
	if cfg.Engine == config.EngineAPI {
		return tessapi.New(cfg.Lang, cfg.TessdataDir, logger)
	}
	return ocr.NewCLIRecognizer(ocr.TesseractConfig{
		Binary:      cfg.TesseractBin,
		Lang:        cfg.Lang,
		PSM:         cfg.PageSegMode,
		TessdataDir: cfg.TessdataDir,
	}, nil, logger)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		logger.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// timeoutMiddleware bounds each request, including the OCR tools it runs.
func timeoutMiddleware(d time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
