package model

import (
	"testing"
	"time"
)

func TestTotalAmount(t *testing.T) {
	tests := []struct {
		name            string
		hourlyRate      float64
		durationMinutes int
		want            float64
	}{
		{"one hour at flat rate", 50, 60, 50.00},
		{"half hour", 100, 30, 50.00},
		{"ninety minutes", 80, 90, 120.00},
		{"forty five minutes", 80, 45, 60.00},
		{"rounding up", 99.99, 20, 33.33},
		{"rounding to cents", 100, 25, 41.67},
		{"zero rate", 0, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalAmount(tt.hourlyRate, tt.durationMinutes); got != tt.want {
				t.Errorf("TotalAmount(%v, %d) = %v, want %v", tt.hourlyRate, tt.durationMinutes, got, tt.want)
			}
		})
	}
}

func TestTotalAmount_Deterministic(t *testing.T) {
	first := TotalAmount(123.45, 75)
	for i := 0; i < 10; i++ {
		if got := TotalAmount(123.45, 75); got != first {
			t.Fatalf("TotalAmount not deterministic: %v vs %v", got, first)
		}
	}
}

func TestEndFor(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)
	end := EndFor(start, 90)
	want := time.Date(2026, 9, 15, 11, 30, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Errorf("EndFor = %v, want %v", end, want)
	}
}

func TestIsParty(t *testing.T) {
	b := &Booking{ClientID: "client-1", ProfessionalID: "prof-1"}

	if !b.IsParty("client-1") {
		t.Error("client should be a party")
	}
	if !b.IsParty("prof-1") {
		t.Error("professional should be a party")
	}
	if b.IsParty("stranger") {
		t.Error("third parties should be rejected")
	}
	if b.IsParty("") {
		t.Error("empty user should be rejected")
	}
}

func TestParseConsultationType(t *testing.T) {
	for _, valid := range []string{"in_person", "virtual", "phone"} {
		if _, err := ParseConsultationType(valid); err != nil {
			t.Errorf("unexpected error for %q: %v", valid, err)
		}
	}
	if _, err := ParseConsultationType("telepathy"); err == nil {
		t.Error("expected error for unknown consultation type")
	}
}
