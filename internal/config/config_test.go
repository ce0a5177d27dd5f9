package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "OCR_ENGINE", "TESSERACT_PSM", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*1024*1024, cfg.Server.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, EngineCLI, cfg.OCR.Engine)
	assert.Equal(t, "nld", cfg.OCR.Lang)
	assert.Equal(t, 6, cfg.OCR.PageSegMode)
	assert.Error(t, cfg.Validate(), "missing JWT_SECRET must fail validation")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("OCR_ENGINE", "api")
	t.Setenv("TESSERACT_PSM", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 6, cfg.OCR.PageSegMode, "unparseable value falls back to the default")
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("OCR_ENGINE", "magic")

	assert.ErrorContains(t, Load().Validate(), "OCR_ENGINE")
}
