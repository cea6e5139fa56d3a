package format

import (
	"testing"
	"time"
)

func TestISODate(t *testing.T) {
	d := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	if got := ISODate(d); got != "2024-03-05" {
		t.Errorf("ISODate = %q, want %q", got, "2024-03-05")
	}
}

func TestDisplayDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if got := DisplayDate(d); got != "Mar 5, 2024" {
		t.Errorf("DisplayDate = %q, want %q", got, "Mar 5, 2024")
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	if got := DateRange(start, &end); got != "Jan 1, 2024 - Jun 30, 2024" {
		t.Errorf("DateRange = %q", got)
	}
	if got := DateRange(start, nil); got != "Jan 1, 2024 - 継続中" {
		t.Errorf("終了日なしのDateRange = %q", got)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{0.75, "75%"},
		{0.5, "50%"},
		{1.0, "100%"},
		{0.01, "1%"},
	}
	for _, tt := range tests {
		if got := Percentage(tt.fraction); got != tt.want {
			t.Errorf("Percentage(%v) = %q, want %q", tt.fraction, got, tt.want)
		}
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"John Doe", "JD"},
		{"alice", "A"},
		{"山田 太郎", "山太"},
		{"Ana Maria Silva", "AM"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Initials(tt.name); got != tt.want {
			t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCountryFlag(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"JP", "\U0001F1EF\U0001F1F5"},
		{"pt", "\U0001F1F5\U0001F1F9"},
		{"", ""},
		{"JPN", ""},
		{"1A", ""},
	}
	for _, tt := range tests {
		if got := CountryFlag(tt.code); got != tt.want {
			t.Errorf("CountryFlag(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestCurrency_UnknownCurrencyCode(t *testing.T) {
	got := Currency(100, "zzz")
	if got == "" {
		t.Error("不明な通貨コードでも空文字を返してはいけない")
	}
}
