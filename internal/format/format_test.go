package format

import "testing"

func TestBRL(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "R$ 0,00"},
		{1234.5, "R$ 1.234,50"},
		{1000000, "R$ 1.000.000,00"},
		{0.1, "R$ 0,10"},
	}
	for _, tt := range tests {
		if got := BRL(tt.in); got != tt.want {
			t.Errorf("BRL(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInt(t *testing.T) {
	if got := Int(12345); got != "12.345" {
		t.Errorf("Int(12345) = %q, want %q", got, "12.345")
	}
	if got := Int(7); got != "7" {
		t.Errorf("Int(7) = %q, want %q", got, "7")
	}
}

func TestPct(t *testing.T) {
	if got := Pct(12.34); got != "12,3%" {
		t.Errorf("Pct(12.34) = %q, want %q", got, "12,3%")
	}
	if got := SignedPct(5); got != "+5,0%" {
		t.Errorf("SignedPct(5) = %q, want %q", got, "+5,0%")
	}
	if got := SignedPct(-5); got != "-5,0%" {
		t.Errorf("SignedPct(-5) = %q, want %q", got, "-5,0%")
	}
	if got := SignedPct(0); got != "0,0%" {
		t.Errorf("SignedPct(0) = %q, want %q", got, "0,0%")
	}
}

func TestKg(t *testing.T) {
	if got := Kg(12345.67); got != "12.345,7 kg" {
		t.Errorf("Kg(12345.67) = %q, want %q", got, "12.345,7 kg")
	}
}
