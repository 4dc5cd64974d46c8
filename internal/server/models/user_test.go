package models

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		"alice@x.com":         "alice@x.com",
		"  Alice@X.com \t":    "alice@x.com",
		"ADMIN@CODEPULSE.COM": "admin@codepulse.com",
		"":                    "",
	}
	for in, want := range tests {
		if got := NormalizeEmail(in); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
