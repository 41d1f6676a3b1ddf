package horosafe

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{"http://127.0.0.1:8080/x", ErrSSRF},
		{"http://10.1.2.3/", ErrSSRF},
		{"http://192.168.0.10/", ErrSSRF},
		{"http://[::1]/", ErrSSRF},
		{"http://169.254.169.254/latest/meta-data", ErrSSRF},
		{"ftp://example.com/file", ErrUnsafeScheme},
		{"javascript:alert(1)", ErrUnsafeScheme},
		{"https://8.8.8.8/", nil},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL_NoHost(t *testing.T) {
	if err := ValidateURL("http:///path"); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func TestValidateIdentifier(t *testing.T) {
	for _, ok := range []string{"DE_Danone_Official", "uk-fsa", "kr.notice.1"} {
		if err := ValidateIdentifier(ok); err != nil {
			t.Errorf("%q: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "has space", "slash/inside", strings.Repeat("a", 257)} {
		if err := ValidateIdentifier(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data, err := LimitedReadAll(strings.NewReader("hello"), 5)
	if err != nil || string(data) != "hello" {
		t.Fatalf("at limit: %q, %v", data, err)
	}
	if _, err := LimitedReadAll(strings.NewReader("hello!"), 5); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("over limit: got %v", err)
	}
}
