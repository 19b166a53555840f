package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"3,000,000", 3_000_000, false},
		{"3.000.000", 3_000_000, false},
		{"  1500000 ", 1_500_000, false},
		{"0", 0, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-500", 0, true},
		{"1,000đ", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ParseAmount(%q) err = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatVND(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 ₫"},
		{500, "500 ₫"},
		{3_000_000, "3.000.000 ₫"},
		{12_345_678, "12.345.678 ₫"},
		{-1_500_000, "-1.500.000 ₫"},
	}
	for _, tt := range tests {
		if got := FormatVND(tt.in); got != tt.want {
			t.Errorf("FormatVND(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGroupDigits(t *testing.T) {
	if got := GroupDigits(3_000_000); got != "3,000,000" {
		t.Errorf("GroupDigits = %q, want 3,000,000", got)
	}
	if got := GroupDigits(-42); got != "-42" {
		t.Errorf("GroupDigits = %q, want -42", got)
	}
}
