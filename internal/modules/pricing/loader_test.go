package pricing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuild_DefaultsWithoutSources(t *testing.T) {
	snap := NewLoader(nil, "", "").Build(context.Background())

	if snap.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", snap.Currency)
	}
	if len(snap.Categories) != 10 {
		t.Errorf("got %d categories, want 10", len(snap.Categories))
	}
	if snap.Categories[0] != "standard_sedan" {
		t.Errorf("fallback category = %q, want standard_sedan", snap.Categories[0])
	}
	if got := snap.VehicleRates["coach_51_pax"]; got != 20.0 {
		t.Errorf("coach_51_pax rate = %v, want 20.0", got)
	}
	if len(snap.FixedPrices) != 2 {
		t.Errorf("got %d fixed price rules, want 2 built-ins", len(snap.FixedPrices))
	}
}

func TestBuild_FileOverlay(t *testing.T) {
	path := writeConfig(t, `
currency: USD
vehicle_rates:
  shuttle: 1.5
  limo: 6.0
zone_multipliers:
  NYC: 1.4
  DEFAULT: 1.0
time_multipliers:
  night: 1.3
min_fares:
  shuttle: 40
  limo: 150
surge_windows:
  - name: "new year"
    start_time: "2026-12-31T20:00:00Z"
    end_time: "2027-01-01T04:00:00Z"
    multiplier: 2.5
display:
  margin: 25
`)

	snap := NewLoader(nil, path, "EUR").Build(context.Background())

	if snap.Currency != "USD" {
		t.Errorf("currency = %q, want USD", snap.Currency)
	}
	if len(snap.Categories) != 2 || snap.VehicleRates["limo"] != 6.0 {
		t.Errorf("rates not replaced by file: %v", snap.VehicleRates)
	}
	if snap.ZoneMultipliers["NYC"] != 1.4 {
		t.Errorf("NYC multiplier = %v, want 1.4", snap.ZoneMultipliers["NYC"])
	}
	if snap.TimeMultipliers.Night != 1.3 {
		t.Errorf("night multiplier = %v, want 1.3", snap.TimeMultipliers.Night)
	}
	// Weekend untouched by the file keeps the default.
	if snap.TimeMultipliers.Weekend != 1.0 {
		t.Errorf("weekend multiplier = %v, want default 1.0", snap.TimeMultipliers.Weekend)
	}
	if len(snap.SurgeWindows) != 1 || snap.SurgeWindows[0].Multiplier != 2.5 {
		t.Errorf("surge windows = %v", snap.SurgeWindows)
	}
	if snap.DisplayMargin != 25 {
		t.Errorf("display margin = %v, want 25", snap.DisplayMargin)
	}
}

func TestBuild_SanitizesBadValues(t *testing.T) {
	path := writeConfig(t, `
vehicle_rates:
  standard_sedan: -2
zone_multipliers:
  RM: 0
min_fares:
  standard_sedan: -10
surge_windows:
  - name: "inverted"
    start_time: "2026-06-01T12:00:00Z"
    end_time: "2026-06-01T10:00:00Z"
    multiplier: 1.5
  - name: "worthless"
    start_time: "2026-06-01T10:00:00Z"
    end_time: "2026-06-01T12:00:00Z"
    multiplier: 0
`)

	snap := NewLoader(nil, path, "").Build(context.Background())

	if got := snap.VehicleRates["standard_sedan"]; got != 2.6 {
		t.Errorf("negative rate repaired to %v, want default 2.6", got)
	}
	if got := snap.ZoneMultipliers["RM"]; got != 1.0 {
		t.Errorf("zero multiplier repaired to %v, want default 1.0", got)
	}
	if got := snap.MinFares["standard_sedan"]; got != 70.0 {
		t.Errorf("negative fare repaired to %v, want default 70.0", got)
	}
	if len(snap.SurgeWindows) != 0 {
		t.Errorf("invalid surge windows kept: %v", snap.SurgeWindows)
	}
}

func TestBuild_UnreadableFileKeepsDefaults(t *testing.T) {
	snap := NewLoader(nil, "/nonexistent/pricing.yaml", "").Build(context.Background())
	if len(snap.Categories) != 10 || snap.Currency != "EUR" {
		t.Errorf("missing file must fall back to defaults, got %d categories, %q",
			len(snap.Categories), snap.Currency)
	}
}
