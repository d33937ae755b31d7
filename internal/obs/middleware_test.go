package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := NewStatusRecorder(rr)
	rec.WriteHeader(http.StatusTeapot)
	n, err := rec.Write([]byte("short and stout"))
	require.NoError(t, err)
	require.Equal(t, 15, n)
	require.Equal(t, http.StatusTeapot, rec.Status())
	require.Equal(t, int64(15), rec.BytesWritten())
}

func TestHTTPObsMiddlewareCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics("ooh_test", nil, reg)
	handler := HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))

	require.Equal(t, http.StatusCreated, rr.Code)
	count := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "unknown", "201"))
	require.Equal(t, 1.0, count)
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, ParseBucketsCSV(" "))
	require.Equal(t, []float64{50, 5, 500}, ParseBucketsCSV("50, 5,500, nope, -3"))
}
