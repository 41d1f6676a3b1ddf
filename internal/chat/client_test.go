package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete_SendsImagePart(t *testing.T) {
	// WHAT: Image parts are sent as image_url content with the bearer key.
	// WHY: The vision OCR call depends on the OpenAI wire shape.
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header: got %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"제품명: 압타밀 프레"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/", APIKey: "sk-test", Model: "vision-x"}, nil)
	out, err := c.Complete(context.Background(), 500, Text("read"), Image("https://img.example/a.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if out != "제품명: 압타밀 프레" {
		t.Fatalf("content: got %q", out)
	}
	if got.Model != "vision-x" || got.MaxTokens != 500 {
		t.Fatalf("request: %+v", got)
	}
	parts := got.Messages[0].Content
	if len(parts) != 2 || parts[1].Type != "image_url" || parts[1].ImageURL.URL != "https://img.example/a.jpg" {
		t.Fatalf("parts: %+v", parts)
	}
}

func TestSend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"status", http.StatusTooManyRequests, `{"error":"rate"}`, nil},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrNoChoices},
		{"bad json", http.StatusOK, `{`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(Config{BaseURL: srv.URL}, nil).Complete(context.Background(), 10, Text("x"))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
