package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCollector_RegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	c.RecordRequest(http.MethodGet, http.StatusOK, 10*time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	if !names["tasuku_http_requests_total"] {
		t.Error("expected tasuku_http_requests_total to be registered")
	}
	if !names["tasuku_http_request_duration_seconds"] {
		t.Error("expected tasuku_http_request_duration_seconds to be registered")
	}
}

func TestRecordRequest_IncrementsCounterWithLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	c.RecordRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	c.RecordRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	c.RecordRequest(http.MethodPost, http.StatusNotFound, time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, f := range families {
		if f.GetName() != "tasuku_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["method"] == "GET" && labels["status_code"] == "200" {
				if got := m.GetCounter().GetValue(); got != 2 {
					t.Errorf("GET 200 counter = %v, want 2", got)
				}
			}
			if labels["method"] == "POST" && labels["status_code"] == "404" {
				if got := m.GetCounter().GetValue(); got != 1 {
					t.Errorf("POST 404 counter = %v, want 1", got)
				}
			}
		}
	}
}

func TestHandler_ServesPrometheusFormat(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)
	c.RecordRequest(http.MethodGet, http.StatusOK, time.Millisecond)

	h := Handler(registry)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "tasuku_http_requests_total") {
		t.Error("response should contain tasuku_http_requests_total")
	}
}

func TestMiddleware_RecordsCompletedRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	mw := NewMiddleware(c)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() != "tasuku_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status_code" && l.GetValue() == "404" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected a recorded request with status_code=404")
	}
}
