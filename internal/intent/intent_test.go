package intent

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	ex := NewKeywordExtractor()
	cases := []struct {
		text     string
		expected Intent
	}{
		{"rezervasyon yapmak istiyorum", IntentReserve},
		{"I'd like a RESERVATION please", IntentReserve},
		{"evet", IntentAffirm},
		{"onaylıyorum", IntentAffirm},
		{"yes please", IntentAffirm},
		{"iptal", IntentDecline},
		{"hayır", IntentDecline},
		{"cancel it", IntentDecline},
		{"merhaba", IntentNone},
		{"4", IntentNone},
		// reserve keyword wins even when an affirm keyword is present
		{"evet yeni bir rezervasyon", IntentReserve},
	}
	for _, tc := range cases {
		if got := ex.Classify(tc.text); got != tc.expected {
			t.Fatalf("Classify(%q) = %v, expected %v", tc.text, got, tc.expected)
		}
	}
}

func TestPartySize(t *testing.T) {
	ex := NewKeywordExtractor()
	cases := []struct {
		text string
		n    int
		ok   bool
	}{
		{"4", 4, true},
		{"4 kişi", 4, true},
		{"we are 12 people", 12, true},
		{"20", 20, true},
		{"21", 0, false},
		{"0", 0, false},
		{"çok kişi", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		n, ok := ex.PartySize(tc.text)
		if ok != tc.ok || n != tc.n {
			t.Fatalf("PartySize(%q) = (%d, %v), expected (%d, %v)", tc.text, n, ok, tc.n, tc.ok)
		}
	}
}

func TestDateTime(t *testing.T) {
	ex := NewKeywordExtractor()
	now := time.Date(2026, 9, 1, 10, 30, 45, 0, time.UTC)

	at, ok := ex.DateTime("yarın 20:00", now)
	if !ok {
		t.Fatalf("expected parse of %q to succeed", "yarın 20:00")
	}
	expected := time.Date(2026, 9, 2, 20, 0, 0, 0, time.UTC)
	if !at.Equal(expected) {
		t.Fatalf("DateTime(yarın 20:00) = %v, expected %v", at, expected)
	}

	at, ok = ex.DateTime("tomorrow 20:00", now)
	if !ok || !at.Equal(expected) {
		t.Fatalf("DateTime(tomorrow 20:00) = (%v, %v), expected %v", at, ok, expected)
	}

	at, ok = ex.DateTime("19:30", now)
	if !ok || !at.Equal(time.Date(2026, 9, 1, 19, 30, 0, 0, time.UTC)) {
		t.Fatalf("DateTime(19:30) = (%v, %v), expected today 19:30", at, ok)
	}

	// bare hour, no minutes
	at, ok = ex.DateTime("9", now)
	if !ok || at.Hour() != 9 || at.Minute() != 0 {
		t.Fatalf("DateTime(9) = (%v, %v), expected 09:00", at, ok)
	}

	for _, text := range []string{"25:00", "12:75", "saat bilinmiyor", ""} {
		if _, ok := ex.DateTime(text, now); ok {
			t.Fatalf("expected parse of %q to fail", text)
		}
	}
}
