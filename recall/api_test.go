package recall

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Items(t *testing.T) {
	f := newFixture(t, testCatalog)
	h := f.svc.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/items", `{"model_key":"profutura_1","mhd":"2026-07-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var it Item
	if err := json.Unmarshal(rec.Body.Bytes(), &it); err != nil {
		t.Fatal(err)
	}
	if it.MHD != "01-07-2026" {
		t.Fatalf("mhd: %q", it.MHD)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"duplicate", `{"model_key":"profutura_1","mhd":"01-07-2026"}`, http.StatusConflict},
		{"unknown model", `{"model_key":"x","mhd":"01-07-2026"}`, http.StatusBadRequest},
		{"bad date", `{"model_key":"profutura_1","mhd":"07/2026"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doJSON(t, h, http.MethodPost, "/api/items", tt.body); rec.Code != tt.want {
				t.Fatalf("got %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}

	rec = doJSON(t, h, http.MethodGet, "/api/items", "")
	var items []Item
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil || len(items) != 1 {
		t.Fatalf("list: %s", rec.Body)
	}

	if rec := doJSON(t, h, http.MethodDelete, "/api/items/"+it.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, "/api/items/"+it.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete twice: %d", rec.Code)
	}
}

func TestAPI_SourcesAndModels(t *testing.T) {
	f := newFixture(t, testCatalog)
	h := f.svc.Handler()

	rec := doJSON(t, h, http.MethodGet, "/api/sources?enabled=true", "")
	var srcs []Source
	if err := json.Unmarshal(rec.Body.Bytes(), &srcs); err != nil || len(srcs) != 1 {
		t.Fatalf("sources: %s", rec.Body)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/sources?tier=x", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad tier: %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/sources/danone_de", ""); rec.Code != http.StatusOK {
		t.Fatalf("get source: %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/sources/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing source: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/models", "")
	var models []ProductModel
	if err := json.Unmarshal(rec.Body.Bytes(), &models); err != nil || len(models) != 2 {
		t.Fatalf("models: %s", rec.Body)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing")
	}
}

func TestAPI_ScanAndReport(t *testing.T) {
	f := newFixture(t, testCatalog)
	h := f.svc.Handler()

	if rec := doJSON(t, h, http.MethodGet, "/api/report", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("report before scan: %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/sources/danone_de/scan?force_ocr=true", ""); rec.Code != http.StatusOK {
		t.Fatalf("scan source: %d %s", rec.Code, rec.Body)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/scan", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("scan: %d %s", rec.Code, rec.Body)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/report", "")
	var rep Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.RiskLevel != RiskSafe || len(rep.Results) != 1 {
		t.Fatalf("report: %+v", rep)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/snapshots?source=danone_de", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("snapshots: %d %s", rec.Code, rec.Body)
	}
	if rec := doJSON(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}
