package domain

import (
	"testing"
	"time"
)

func TestBattleWindow(t *testing.T) {
	start := time.Date(2026, 6, 6, 18, 0, 0, 0, time.UTC)
	b := &Battle{StartTime: start, EndTime: start.Add(4 * time.Hour)}

	tests := []struct {
		name   string
		now    time.Time
		active bool
		ended  bool
	}{
		{"before start", start.Add(-time.Minute), false, false},
		{"at start", start, true, false},
		{"mid window", start.Add(2 * time.Hour), true, false},
		{"at end", start.Add(4 * time.Hour), false, true},
		{"after end", start.Add(5 * time.Hour), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Active(tt.now); got != tt.active {
				t.Fatalf("Active(%v) = %v, want %v", tt.now, got, tt.active)
			}
			if got := b.Ended(tt.now); got != tt.ended {
				t.Fatalf("Ended(%v) = %v, want %v", tt.now, got, tt.ended)
			}
		})
	}
}
