package format

import "testing"

func TestNumber(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		expected string
	}{
		{0, 0, "0"},
		{12.34, 1, "12.3"},
		{999, 0, "999"},
		{1000, 0, "1,000"},
		{1154351, 0, "1,154,351"},
		{2568.75, 1, "2,568.8"},
		{-1234.5, 1, "-1,234.5"},
		{-0.01, 1, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Number(tt.value, tt.decimals); got != tt.expected {
				t.Errorf("Number(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.expected)
			}
		})
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(96); got != "96 s" {
		t.Errorf("Seconds(96) = %q", got)
	}
	if got := Seconds(5.5); got != "5.5 s" {
		t.Errorf("Seconds(5.5) = %q", got)
	}
	if got := Seconds(1500); got != "1,500 s" {
		t.Errorf("Seconds(1500) = %q", got)
	}
}

func TestSignedPercent(t *testing.T) {
	tests := map[int]string{13: "+13%", -5: "-5%", 0: "0%"}
	for value, expected := range tests {
		if got := SignedPercent(value); got != expected {
			t.Errorf("SignedPercent(%d) = %q, want %q", value, got, expected)
		}
	}
}
