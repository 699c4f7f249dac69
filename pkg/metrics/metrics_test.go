package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestInstrumentRoute(t *testing.T) {
	h := InstrumentRoute("/test/route", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/route", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTeapot)
	}

	mw := httptest.NewRecorder()
	Handler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(mw.Result().Body)

	want := `neo_api_http_requests_total{code="418",method="get",route="/test/route"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}
	if !strings.Contains(string(body), "neo_api_http_request_duration_seconds_bucket") {
		t.Error("metrics output missing duration histogram")
	}
}
