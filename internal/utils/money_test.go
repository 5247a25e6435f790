package utils

import "testing"

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{100.00, 100.00},
		{99.995, 100.00},
		{12.344, 12.34},
		{12.346, 12.35},
		{0.005, 0.01},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestComputeTax(t *testing.T) {
	cases := []struct {
		subtotal float64
		want     float64
	}{
		{0, 0},
		{100.00, 12.00},
		{99.995, 12.00}, // 11.9994 rounds up
		{250.50, 30.06},
	}
	for _, tc := range cases {
		if got := ComputeTax(tc.subtotal); got != tc.want {
			t.Errorf("ComputeTax(%v) = %v, want %v", tc.subtotal, got, tc.want)
		}
	}
}
