package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m := New()

	m.RecordRPC("/bonsplitser.v1.ReceiptService/Settle", "ok", 20*time.Millisecond)
	m.RecordRPC("/bonsplitser.v1.ReceiptService/Settle", "ok", 30*time.Millisecond)
	m.RecordReceipt("AH", true, time.Second)
	m.RecordReceipt("AH", false, time.Second)
	m.RecordLineWarning("ITEMS")
	m.RecordSettlement(true, 3)
	m.RecordSettlement(false, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("/bonsplitser.v1.ReceiptService/Settle", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.receiptsProcessed.WithLabelValues("AH", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lineWarnings.WithLabelValues("ITEMS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("true")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.leftoverCents))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordSettlement(true, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `bonsplitser_settlements_total{balanced="true"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
