package service

import "testing"

// Midtrans sends gross_amount as a string; anything that doesn't parse must be
// rejected rather than settled as a zero-value payment.
func TestParseGrossAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"decimal", "29.99", 29.99, false},
		{"integer", "100000", 100000, false},
		{"padded", " 59.99 ", 59.99, false},
		{"empty", "", 0, true},
		{"garbage", "abc", 0, true},
		{"trailing junk", "29.99abc", 0, true},
		{"negative", "-10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGrossAmount(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseGrossAmount(%q) = %v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGrossAmount(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("parseGrossAmount(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
