package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRowsIngested(t *testing.T) {
	retained := testutil.ToFloat64(DefaultMetrics.RowsIngested)
	deduped := testutil.ToFloat64(DefaultMetrics.RowsDeduped)

	RecordRowsIngested(7, 2)

	assert.Equal(t, retained+7, testutil.ToFloat64(DefaultMetrics.RowsIngested))
	assert.Equal(t, deduped+2, testutil.ToFloat64(DefaultMetrics.RowsDeduped))
}

func TestRecordIngestionRun(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.IngestionRuns.WithLabelValues("structural"))

	RecordIngestionRun("structural", 0.25)

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.IngestionRuns.WithLabelValues("structural")))
}

func TestRecordRiskRun(t *testing.T) {
	RecordRiskRun(42, 0.01)
	assert.Equal(t, 42.0, testutil.ToFloat64(DefaultMetrics.LedgerDays))
}

func TestRecordDBQuery_CountsErrors(t *testing.T) {
	errs := DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "test_op")
	before := testutil.ToFloat64(errs)

	RecordDBQuery("postgres", "test_op", 0.002, nil)
	RecordDBQuery("postgres", "test_op", 0.003, errors.New("timeout"))

	assert.Equal(t, before+1, testutil.ToFloat64(errs))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RecordParseFailure("profit_loss")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `bet_ledger_ingestion_cell_parse_failures_total{field="profit_loss"}`), "parse failure counter missing")
}
