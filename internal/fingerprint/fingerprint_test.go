package fingerprint

import "testing"

func TestOf_KnownVector(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Of(""); got != want {
		t.Fatalf("Of(\"\") = %s, want %s", got, want)
	}
}

func TestOf_DeterministicAndSensitive(t *testing.T) {
	a := Of("Rückruf Aptamil 15-06-2026")
	if a != Of("Rückruf Aptamil 15-06-2026") {
		t.Fatal("same input must hash identically")
	}
	if a == Of("Rückruf Aptamil 16-06-2026") {
		t.Fatal("different input must hash differently")
	}
	if len(a) != 64 {
		t.Fatalf("hex length: got %d", len(a))
	}
}
