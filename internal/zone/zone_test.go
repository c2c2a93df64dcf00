package zone

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testZones() []Zone {
	return []Zone{
		{NeighborhoodName: "Centro", Fee: decimal.NewFromInt(5)},
		{NeighborhoodName: "Norte", Fee: decimal.NewFromInt(8)},
		{NeighborhoodName: "São José", Fee: decimal.RequireFromString("6.50")},
		{NeighborhoodName: "Jardim América", Fee: decimal.NewFromInt(7)},
		{NeighborhoodName: "Jardim Europa", Fee: decimal.NewFromInt(9)},
	}
}

func TestFee_Exact(t *testing.T) {
	zones := testZones()

	fee, err := Fee(zones, "Centro", MatchExact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(5)) {
		t.Errorf("fee: got %s, want 5", fee)
	}

	_, err = Fee(zones, "centro", MatchExact)
	if !errors.Is(err, ErrUnknownNeighborhood) {
		t.Errorf("lowercase in exact mode: got %v, want ErrUnknownNeighborhood", err)
	}
}

func TestFee_Fold(t *testing.T) {
	fee, err := Fee(testZones(), "sao jose", MatchFold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fee.Equal(decimal.RequireFromString("6.5")) {
		t.Errorf("fee: got %s, want 6.50", fee)
	}
}

func TestFee_NoZones(t *testing.T) {
	fee, err := Fee(nil, "Anywhere", MatchExact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fee.IsZero() {
		t.Errorf("fee: got %s, want 0", fee)
	}
	if !Validate(nil, "Anywhere", MatchExact) {
		t.Error("empty zone list should accept any neighborhood")
	}
}

func TestValidate(t *testing.T) {
	zones := testZones()
	if !Validate(zones, "Norte", MatchExact) {
		t.Error("Norte should be valid")
	}
	if Validate(zones, "Sul", MatchExact) {
		t.Error("Sul should be invalid")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]MatchMode{
		"":       MatchExact,
		"exact":  MatchExact,
		"fold":   MatchFold,
		" FOLD ": MatchFold,
		"bogus":  MatchExact,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSearch(t *testing.T) {
	got := Search(testZones(), "jard")
	if len(got) != 2 {
		t.Fatalf("results: got %d, want 2", len(got))
	}
	if got[0].NeighborhoodName != "Jardim América" || got[1].NeighborhoodName != "Jardim Europa" {
		t.Errorf("order: got %q, %q", got[0].NeighborhoodName, got[1].NeighborhoodName)
	}

	if got := Search(testZones(), "JOSÉ"); len(got) != 1 {
		t.Errorf("accent search: got %d results, want 1", len(got))
	}
	if got := Search(testZones(), ""); len(got) != len(testZones()) {
		t.Errorf("empty query: got %d results, want all", len(got))
	}
}

func TestSuggest(t *testing.T) {
	zones := testZones()

	tests := []struct {
		name   string
		input  string
		status SuggestStatus
		zone   string
	}{
		{"distinctive word", "jd america", Matched, "Jardim América"},
		{"accent typo", "sao jose", Matched, "São José"},
		{"generic only", "jardim", Ambiguous, ""},
		{"no overlap", "Sul", Unmatched, ""},
		{"empty", "  ", Unmatched, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(zones, tt.input)
			if got.Status != tt.status {
				t.Fatalf("status: got %s, want %s", got.Status, tt.status)
			}
			if tt.status == Matched && got.Zone.NeighborhoodName != tt.zone {
				t.Errorf("zone: got %q, want %q", got.Zone.NeighborhoodName, tt.zone)
			}
			if tt.status == Ambiguous && len(got.Candidates) != 2 {
				t.Errorf("candidates: got %d, want 2", len(got.Candidates))
			}
		})
	}
}
