package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// noopValidator allows all URLs (for tests that don't test SSRF).
func noopValidator(_ string) error { return nil }

func TestGet_Success(t *testing.T) {
	// WHAT: GET returns the body and sends the configured User-Agent.
	// WHY: Some retailer sites block requests without a browser-like UA.
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<p>Rückruf</p>"))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator})
	resp, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(resp.Body) != "<p>Rückruf</p>" {
		t.Errorf("body: got %q", resp.Body)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("user agent: got %q", gotUA)
	}
	if resp.ContentType != "text/html" {
		t.Errorf("content type: got %q", resp.ContentType)
	}
}

func TestGet_Non2xx(t *testing.T) {
	// WHAT: Non-2xx returns ErrStatus with the status code preserved.
	// WHY: CONTENT_KEYWORD treats a missing page as state, not failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator})
	resp, err := f.Get(context.Background(), srv.URL)
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("err: got %v, want ErrStatus", err)
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("status: got %+v", resp)
	}
}

func TestGet_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n\t "))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator})
	if _, err := f.Get(context.Background(), srv.URL); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err: got %v, want ErrEmptyResponse", err)
	}
}

func TestGet_MaxBytesTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator, MaxBytes: 100})
	resp, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Body) != 100 {
		t.Fatalf("body length: got %d, want 100", len(resp.Body))
	}
}

func TestGet_Timeout(t *testing.T) {
	// WHAT: A hanging server fails the request after the configured timeout.
	// WHY: One slow source must not stall the whole scan cycle.
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	f := New(Config{URLValidator: noopValidator, Timeout: 50 * time.Millisecond})
	start := time.Now()
	if _, err := f.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout not enforced")
	}
}

func TestGet_SSRFBlocked(t *testing.T) {
	f := New(Config{})
	if _, err := f.Get(context.Background(), "http://127.0.0.1:1/"); err == nil {
		t.Fatal("expected loopback URL to be blocked")
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator})
	_, err := f.Get(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "too many redirects") {
		t.Fatalf("err: got %v", err)
	}
}

func TestHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method: got %s", r.Method)
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(Config{URLValidator: noopValidator})
	if code, err := f.Head(context.Background(), srv.URL+"/present"); err != nil || code != 200 {
		t.Fatalf("present: %d, %v", code, err)
	}
	if code, err := f.Head(context.Background(), srv.URL+"/missing"); err != nil || code != 404 {
		t.Fatalf("missing: %d, %v", code, err)
	}
}
