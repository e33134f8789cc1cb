package models

import "testing"

func TestParseLooseFloat(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"12", 12, true},
		{"  -2.1358 ", -2.1358, true},
		{"12.5m", 12.5, true},
		{".5", 0.5, true},
		{"1e2", 100, true},
		{"+3", 3, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"1e999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLooseFloat(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseLooseFloat(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		12:      "12",
		12.5:    "12.5",
		-2.1358: "-2.1358",
		0:       "0",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
