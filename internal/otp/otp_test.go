package otp

import (
	"strconv"
	"testing"
)

func TestGenerateCode_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if !ValidFormat(code) {
			t.Fatalf("code %q is not six digits", code)
		}
		n, _ := strconv.Atoi(code)
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
	}
}

func TestGenerateCode_Randomness(t *testing.T) {
	seen := make(map[string]bool)
	dups := 0
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if seen[code] {
			dups++
		}
		seen[code] = true
	}
	// 100 draws from 900000 values: more than a couple of repeats means the source is broken.
	if dups > 2 {
		t.Errorf("%d duplicate codes in 100 draws", dups)
	}
}

func TestHashCode(t *testing.T) {
	h1 := HashCode("123456")
	if h1 != HashCode("123456") {
		t.Error("HashCode not consistent")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
	if h1 == HashCode("654321") {
		t.Error("HashCode produced same hash for different codes")
	}
}

func TestCodeEqual(t *testing.T) {
	stored := HashCode("123456")
	if !CodeEqual("123456", stored) {
		t.Error("CodeEqual should match")
	}
	if CodeEqual("123457", stored) {
		t.Error("CodeEqual should not match a different code")
	}
	if CodeEqual("123456", "") {
		t.Error("CodeEqual should not match empty hash")
	}
}

func TestValidFormat(t *testing.T) {
	testCases := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
		{" 12345", false},
		{"１２３４５６", false},
	}
	for _, tc := range testCases {
		if got := ValidFormat(tc.code); got != tc.want {
			t.Errorf("ValidFormat(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
