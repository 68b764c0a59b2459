package main

import (
	"math"
	"strings"
	"testing"

	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/CylinderScattering/cylinder"
)

const minimalParams = `{
	// a 500 nm glass fibre in air
	diameter_nm: 500,
	wavelength_nm: 633,
	particle_index: 1.5,
}`

func parseParams(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	var jsonTable map[string]interface{}
	if err := json.Unmarshal([]byte(text), &jsonTable); err != nil {
		t.Fatalf("json5 parse failed: %v", err)
	}
	return jsonTable
}

func TestValidateFillsDefaults(t *testing.T) {
	var event ScatteringEvent
	msg, ok := validateJsonFileAndFillEvent(parseParams(t, minimalParams), &event)
	if !ok {
		t.Fatalf("validation failed: %s", msg)
	}

	if event.MediumIndex != 1.0 || event.E0 != 1.0 || event.ObservationRadiusM != 1.0 {
		t.Errorf("defaults: medium=%g e0=%g r=%g", event.MediumIndex, event.E0, event.ObservationRadiusM)
	}
	if event.NumPhiPoints != 181 || event.NumThetaPoints != 91 {
		t.Errorf("default grid sizes = %d x %d, want 181 x 91", event.NumPhiPoints, event.NumThetaPoints)
	}
	if event.Grid != cylinder.Structured || event.Extinction != cylinder.ExtinctionPublished {
		t.Errorf("grid=%v extinction=%v", event.Grid, event.Extinction)
	}
	if event.PolarizationGiven || event.SweepGiven || event.WindowSizePixels != 0 || event.ResultsDB != "" {
		t.Errorf("optional features enabled by default: %+v", event)
	}

	s := event.Scatterer()
	want := cylinder.Scatterer{Diameter: 500e-9, Wavelength: 633e-9, Index: 1.5, NMedium: 1.0}
	if math.Abs(s.Diameter-want.Diameter) > 1e-20 || math.Abs(s.Wavelength-want.Wavelength) > 1e-20 ||
		s.Index != want.Index || s.NMedium != want.NMedium {
		t.Errorf("Scatterer() = %+v, want %+v", s, want)
	}
	if cfg := event.FieldConfig(); cfg.Polarization.Polarized {
		t.Errorf("FieldConfig polarization = %+v, want unpolarized", cfg.Polarization)
	}
}

func TestValidateFullParameterFile(t *testing.T) {
	text := `{
		title: "fibre run",
		show_input_bool: true,
		window_size_pixels: 600,
		diameter_nm: 1200,
		wavelength_nm: 532,
		particle_index: 1.45,
		medium_index: 1.33,
		polarization_degrees: 90,
		e0: 2,
		observation_radius_m: 0.5,
		num_phi_points: 37,
		num_theta_points: 19,
		grid: "unstructured",
		extinction_rule: "paired",
		results_db: "runs.db",
		diameter_sweep: {
			start_nm: 100,
			end_nm: 2000,
			num_points: 50,
			log_spacing_bool: true,
		},
	}`

	var event ScatteringEvent
	msg, ok := validateJsonFileAndFillEvent(parseParams(t, text), &event)
	if !ok {
		t.Fatalf("validation failed: %s", msg)
	}

	if event.Title != "fibre run" || !event.ShowInput || event.WindowSizePixels != 600 {
		t.Errorf("header fields: %+v", event)
	}
	if event.Grid != cylinder.Unstructured || event.Extinction != cylinder.ExtinctionPaired {
		t.Errorf("grid=%v extinction=%v", event.Grid, event.Extinction)
	}
	if !event.SweepGiven || event.SweepNumPoints != 50 || !event.SweepLogSpacing {
		t.Errorf("sweep: %+v", event)
	}
	if event.ResultsDB != "runs.db" {
		t.Errorf("results_db = %q", event.ResultsDB)
	}

	cfg := event.FieldConfig()
	if !cfg.Polarization.Polarized || math.Abs(cfg.Polarization.Angle-math.Pi/2) > 1e-15 {
		t.Errorf("polarization = %+v, want π/2", cfg.Polarization)
	}
	if cfg.E0 != 2 || cfg.R != 0.5 {
		t.Errorf("e0=%g r=%g", cfg.E0, cfg.R)
	}

	phi, theta := event.AngleGrids()
	if len(phi) != 37 || len(theta) != 37 {
		t.Errorf("unstructured grids have %d phi and %d theta points, want 37 each", len(phi), len(theta))
	}
}

func TestAngleGridsStructured(t *testing.T) {
	event := ScatteringEvent{NumPhiPoints: 5, NumThetaPoints: 3, Grid: cylinder.Structured}
	phi, theta := event.AngleGrids()
	if len(phi) != 5 || len(theta) != 3 {
		t.Fatalf("grid sizes = %d, %d, want 5, 3", len(phi), len(theta))
	}
	if phi[0] != 0 || math.Abs(phi[4]-2*math.Pi) > 1e-15 {
		t.Errorf("phi range = [%g, %g]", phi[0], phi[4])
	}
	if math.Abs(theta[0]+math.Pi/2) > 1e-15 || math.Abs(theta[1]) > 1e-15 || math.Abs(theta[2]-math.Pi/2) > 1e-15 {
		t.Errorf("theta = %v", theta)
	}
}

func TestValidateRejectsBadFiles(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"missing diameter", `{wavelength_nm: 633, particle_index: 1.5}`, "diameter_nm: not found"},
		{"string wavelength", `{diameter_nm: 500, wavelength_nm: "red", particle_index: 1.5}`, "wavelength_nm: is not a float64"},
		{"negative index", `{diameter_nm: 500, wavelength_nm: 633, particle_index: -1}`, "particle_index: must be positive"},
		{"zero medium", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5, medium_index: 0}`, "medium_index: must be positive"},
		{"bad grid", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5, grid: "hex"}`, "grid:"},
		{"bad rule", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5, extinction_rule: "other"}`, "extinction_rule:"},
		{"one phi point", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5, num_phi_points: 1}`, "num_phi_points: must be at least 2"},
		{"bool polarization", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5, polarization_degrees: true}`, "polarization_degrees: is not a float64"},
		{"reversed sweep", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5,
			diameter_sweep: {start_nm: 900, end_nm: 100, num_points: 5}}`, "diameter_sweep.end_nm: must be larger"},
		{"sweep without points", `{diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5,
			diameter_sweep: {start_nm: 100, end_nm: 900}}`, "diameter_sweep.num_points: not found"},
		{"show input not bool", `{show_input_bool: 1, diameter_nm: 500, wavelength_nm: 633, particle_index: 1.5}`, "show_input_bool: is not a bool"},
	}

	for _, tc := range cases {
		var event ScatteringEvent
		msg, ok := validateJsonFileAndFillEvent(parseParams(t, tc.text), &event)
		if ok {
			t.Errorf("%s: validation passed, want failure", tc.name)
			continue
		}
		if !strings.HasPrefix(msg, tc.want) {
			t.Errorf("%s: msg = %q, want prefix %q", tc.name, msg, tc.want)
		}
	}
}

func TestGetLeafValue(t *testing.T) {
	jsonTable := parseParams(t, `{diameter_sweep: {start_nm: 100}}`)

	v, ok := getLeafValue(jsonTable, "diameter_sweep", "start_nm")
	if !ok || v.(float64) != 100 {
		t.Fatalf("getLeafValue = %v, %t", v, ok)
	}
	if _, ok := getLeafValue(jsonTable, "diameter_sweep", "end_nm"); ok {
		t.Error("missing leaf reported as found")
	}
	if _, ok := getLeafValue(jsonTable, "diameter_sweep", "start_nm", "deeper"); ok {
		t.Error("path through a number reported as found")
	}
}
