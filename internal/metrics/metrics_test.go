package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/cards/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/cards/{id}", "404"))

	req := httptest.NewRequest(http.MethodGet, "/cards/abc", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/cards/{id}", "404"))
	if after-before != 1 {
		t.Errorf("http_requests_total delta = %f, want 1", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ok", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", http.NoBody))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ok", "200"))
	if after-before != 1 {
		t.Errorf("delta = %f, want 1", after-before)
	}
}

func TestStatusWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	var w http.ResponseWriter = &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusWriter should implement http.Flusher")
	}
	f.Flush()
	if !rec.Flushed {
		t.Error("underlying recorder was not flushed")
	}
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(searchTotal.WithLabelValues(SiteOutside))
	ObserveSearch(SiteOutside, 3, time.Millisecond)
	after := testutil.ToFloat64(searchTotal.WithLabelValues(SiteOutside))
	if after-before != 1 {
		t.Errorf("search_total delta = %f, want 1", after-before)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveSearch(SiteWorkspace, 1, time.Millisecond)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "mindvault_search_total") {
		t.Error("metrics output missing mindvault_search_total")
	}
}
