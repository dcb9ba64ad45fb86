package cphmath

import (
	"math"
	"testing"
)

func TestSaturate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below zero", -0.5, 0},
		{"above one", 1.5, 1},
		{"nan", math.NaN(), 0},
		{"mid", 0.42, 0.42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Saturate(tt.in); got != tt.want {
				t.Errorf("Saturate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSafePow(t *testing.T) {
	tests := []struct {
		name     string
		b, e     float64
		fallback float64
		want     float64
	}{
		{"normal", 2, 3, -1, 8},
		{"nan base", math.NaN(), 2, -1, -1},
		{"neg base frac exp", -2, 0.5, -1, -1},
		{"neg base int exp", -2, 2, -1, 4},
		{"zero base nonpositive exp", 0, 0, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafePow(tt.b, tt.e, tt.fallback); got != tt.want {
				t.Errorf("SafePow(%v,%v) = %v, want %v", tt.b, tt.e, got, tt.want)
			}
		})
	}
}

func TestSafeDiv(t *testing.T) {
	if got := SafeDiv(1, 0, -99); got != -99 {
		t.Errorf("SafeDiv by zero = %v, want -99", got)
	}
	if got := SafeDiv(4, 2, -99); got != 2 {
		t.Errorf("SafeDiv(4,2) = %v, want 2", got)
	}
}

func TestSmoothstep(t *testing.T) {
	if got := Smoothstep(0, 1, -1); got != 0 {
		t.Errorf("Smoothstep below range = %v, want 0", got)
	}
	if got := Smoothstep(0, 1, 2); got != 1 {
		t.Errorf("Smoothstep above range = %v, want 1", got)
	}
	if got := Smoothstep(0, 1, 0.5); got != 0.5 {
		t.Errorf("Smoothstep midpoint = %v, want 0.5", got)
	}
}

func TestSignedCbrt(t *testing.T) {
	if got := SignedCbrt(-8); got != -2 {
		t.Errorf("SignedCbrt(-8) = %v, want -2", got)
	}
	if got := SignedCbrt(27); got != 3 {
		t.Errorf("SignedCbrt(27) = %v, want 3", got)
	}
}
