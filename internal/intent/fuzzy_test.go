package intent

import "testing"

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		min  int
		max  int
	}{
		{"identical", "request leave", "request leave", 100, 100},
		{"substring", "leave", "i want to leave early", 100, 100},
		{"one typo", "leave balance", "my leave balence please", 80, 99},
		{"unrelated", "overtime", "zzzzzzzz", 0, 40},
		{"empty pattern", "", "anything", 0, 0},
		{"both empty", "", "", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PartialRatio(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("PartialRatio(%q, %q) = %d, want between %d and %d", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestPartialRatioIsCaseInsensitive(t *testing.T) {
	if got := PartialRatio("Annual Leave", "annual leave"); got != 100 {
		t.Errorf("PartialRatio() = %d, want 100", got)
	}
}
