package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/recallwatch/internal/chat"
)

func testAliases() *AliasTable {
	return NewAliasTable(map[string][]string{
		"pronutra_pre": {"압타밀 프로누트라 어드밴스 HMO PRE", "프로누트라 PRE"},
		"pronutra_1":   {"압타밀 프로누트라 어드밴스 HMO 1단계", "프로누트라 1단계", "프로누트라 1"},
		"pronutra_2":   {"압타밀 프로누트라 어드밴스 HMO 2단계", "프로누트라 2단계", "프로누트라 2"},
		"ha_1":         {"압타밀 HA 1단계", "HA 1"},
	})
}

const transcript = `제품명: 압타밀 프로누트라 어드밴스 HMO PRE
MHD: 17-12-2026, 15-03-2027, 22.04.2027, soon
---
제품명: 압타밀 프로누트라 어드밴스 HMO 1단계
MHD: 21-04-2027, 01-06-2027, 21-04-2027
---
제품명: 알 수 없는 제품
MHD: 01-01-2027
---
MHD: 02-02-2027
---
`

func TestParseProducts(t *testing.T) {
	got := ParseProducts(transcript, testAliases())
	want := []ProductGroup{
		{Name: "압타밀 프로누트라 어드밴스 HMO PRE", ModelKey: "pronutra_pre", MHDs: []string{"17-12-2026", "15-03-2027", "22-04-2027"}},
		{Name: "압타밀 프로누트라 어드밴스 HMO 1단계", ModelKey: "pronutra_1", MHDs: []string{"21-04-2027", "01-06-2027"}},
		{Name: "알 수 없는 제품", MHDs: []string{"01-01-2027"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseProducts mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProducts_NilAliases(t *testing.T) {
	got := ParseProducts("제품명: X\nMHD: 01-01-2027", nil)
	if len(got) != 1 || got[0].ModelKey != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestAliasTable_LongestAliasWins(t *testing.T) {
	// WHAT: When a shorter alias of another model also occurs, the longest alias decides.
	// WHY: "프로누트라 1" is a substring of names belonging to other stages.
	tbl := NewAliasTable(map[string][]string{
		"pronutra_1":  {"프로누트라 1"},
		"pronutra_1x": {"프로누트라 1단계 스페셜"},
		"ha_1":        {"HA 1"},
	})
	tests := map[string]string{
		"압타밀 프로누트라 1단계 스페셜 800g": "pronutra_1x",
		"압타밀 프로누트라 1단계":          "pronutra_1",
		"압타밀 ha 1단계":              "ha_1",
		"컴포트":                     "",
	}
	for name, want := range tests {
		if got := tbl.Resolve(name); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAliasTable_TieBrokenByKey(t *testing.T) {
	tbl := NewAliasTable(map[string][]string{"b_model": {"같은"}, "a_model": {"같은"}})
	for range 20 {
		if got := tbl.Resolve("같은 이름"); got != "a_model" {
			t.Fatalf("tie: got %q, want a_model", got)
		}
	}
}

type fakeExtractor struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	mu       sync.Mutex
	calls    []string
}

func (f *fakeExtractor) ExtractText(_ context.Context, url string) string {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if strings.Contains(url, "broken") {
		return ""
	}
	return "text of " + url
}

func TestExtractAll_OrderAndBound(t *testing.T) {
	// WHAT: Transcripts come back in input order with bounded parallelism.
	// WHY: Vision APIs rate-limit aggressively.
	fe := &fakeExtractor{}
	urls := []string{"a", "b", "broken", "d", "e", "f"}
	got := ExtractAll(context.Background(), fe, urls, 2)

	want := []string{"text of a", "text of b", "", "text of d", "text of e", "text of f"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExtractAll mismatch (-want +got):\n%s", diff)
	}
	if fe.maxSeen.Load() > 2 {
		t.Fatalf("max in flight: got %d, want <= 2", fe.maxSeen.Load())
	}
	if len(fe.calls) != len(urls) {
		t.Fatalf("calls: got %d", len(fe.calls))
	}
}

func TestJoin(t *testing.T) {
	got := Join([]string{"제품명: A\nMHD: 01-01-2027", "", "  ", "제품명: B\nMHD: 02-02-2027"})
	if strings.Count(got, "---") != 1 {
		t.Fatalf("delimiters: %q", got)
	}
	if len(ParseProducts(got, nil)) != 2 {
		t.Fatalf("joined transcript should parse into two groups: %q", got)
	}
}

func TestClient_ExtractText(t *testing.T) {
	// WHAT: Markup in the model output is stripped and entities unescaped.
	// WHY: Some vision models wrap answers in HTML.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"<p>제품명: Cow &amp; Gate</p>\nMHD: 01-06-2027"}}]}`))
	}))
	defer srv.Close()

	c := New(Config{Chat: chat.Config{BaseURL: srv.URL}}, nil)
	got := c.ExtractText(context.Background(), "https://img.example/a.png")
	if got != "제품명: Cow & Gate\nMHD: 01-06-2027" {
		t.Fatalf("got %q", got)
	}
}

func TestClient_ExtractTextFailureIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{Chat: chat.Config{BaseURL: srv.URL}}, nil)
	if got := c.ExtractText(context.Background(), "https://img.example/a.png"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
