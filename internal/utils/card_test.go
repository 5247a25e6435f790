package utils

import "testing"

func TestNormalizeCardNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4111 1111 1111 1111", "4111111111111111"},
		{"4111-1111-1111-1111", "4111111111111111"},
		{"not a card", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeCardNumber(tc.in); got != tc.want {
			t.Errorf("NormalizeCardNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskCardNumber(t *testing.T) {
	if got := MaskCardNumber("4111111111111111"); got != "**** **** **** 1111" {
		t.Errorf("unexpected mask: %q", got)
	}
	// Short inputs are shown as-is after the mask prefix.
	if got := MaskCardNumber("42"); got != "**** **** **** 42" {
		t.Errorf("unexpected mask for short input: %q", got)
	}
}

func TestDetectCardBrand(t *testing.T) {
	cases := []struct {
		digits string
		want   string
	}{
		{"4111111111111111", "VISA"},
		{"5105105105105100", "MASTERCARD"},
		{"2221000000000009", "MASTERCARD"},
		{"340000000000009", "AMEX"},
		{"370000000000002", "AMEX"},
		{"6011000000000004", "UNKNOWN"},
		{"", "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := DetectCardBrand(tc.digits); got != tc.want {
			t.Errorf("DetectCardBrand(%q) = %q, want %q", tc.digits, got, tc.want)
		}
	}
}
