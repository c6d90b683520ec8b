package codes

import (
	"errors"
	"strings"
	"testing"
)

func TestPromoCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		code, err := PromoCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != PromoCodeLength+1 || code[4] != '-' {
			t.Fatalf("code %q not in XXXX-XXXX form", code)
		}
		for _, r := range strings.ReplaceAll(code, "-", "") {
			if !strings.ContainsRune(charsetPromo, r) {
				t.Fatalf("code %q has %q outside charset", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := Generate(0, charsetPromo); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("length 0: error = %v", err)
	}
	if _, err := Generate(4, ""); err == nil {
		t.Error("empty charset: expected error")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		code  string
		group int
		want  string
	}{
		{"ABCD1234", 4, "ABCD-1234"},
		{"ABCDE", 2, "AB-CD-E"},
		{"ABC", 4, "ABC"},
		{"ABCD", 0, "ABCD"},
	}
	for _, tt := range tests {
		if got := Format(tt.code, tt.group); got != tt.want {
			t.Errorf("Format(%q, %d) = %q, want %q", tt.code, tt.group, got, tt.want)
		}
	}
}
