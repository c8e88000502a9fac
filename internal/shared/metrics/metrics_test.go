package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(exportsTotal.WithLabelValues("pdf", "ok"))
	ObserveExport("pdf", "ok", 120*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(exportsTotal.WithLabelValues("pdf", "ok")))

	hits := testutil.ToFloat64(cacheRequests.WithLabelValues("memory", "hit"))
	IncCache("memory", "hit")
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheRequests.WithLabelValues("memory", "hit")))

	saves := testutil.ToFloat64(versionSaves)
	IncVersionSaved()
	assert.Equal(t, saves+1, testutil.ToFloat64(versionSaves))
}

func TestHandlerServesPrometheusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncShare("wrong_password")
	ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `resume_builder_share_requests_total{outcome="wrong_password"}`))
	assert.True(t, strings.Contains(body, `route="unmatched"`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
