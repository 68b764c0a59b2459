package main

import (
	"fmt"
	"strings"

	"github.com/bob-anderson-ok/CylinderScattering/cylinder"
)

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// getPositiveFloat reads a required number that must be > 0.
func getPositiveFloat(jsonTable map[string]interface{}, path ...string) (float64, string, bool) {
	name := strings.Join(path, ".")
	v, ok := getLeafValue(jsonTable, path...)
	if !ok {
		return 0, name + ": not found", false
	}
	value, ok := v.(float64)
	if !ok {
		return 0, name + ": is not a float64", false
	}
	if !(value > 0) {
		return 0, fmt.Sprintf("%s: must be positive, got %g", name, value), false
	}
	return value, "", true
}

func validateJsonFileAndFillEvent(jsonTable map[string]interface{}, event *ScatteringEvent) (string, bool) {
	msg := "No problem found in json file" // Initialize msg to presumed success.

	showInput, ok := getLeafValue(jsonTable, "show_input_bool")
	if !ok {
		event.ShowInput = false // default to false if this field is missing
	} else {
		event.ShowInput, ok = showInput.(bool)
		if !ok {
			msg = "show_input_bool: is not a bool"
			return msg, false
		}
	}

	windowSize, ok := getLeafValue(jsonTable, "window_size_pixels")
	if !ok {
		event.WindowSizePixels = 0 // No windows if this field is missing
	} else {
		wSize, ok := windowSize.(float64)
		if !ok {
			msg = "window_size_pixels: is not a float64"
			return msg, false
		}
		event.WindowSizePixels = int(wSize)
	}

	title, ok := getLeafValue(jsonTable, "title")
	if ok {
		event.Title, ok = title.(string)
		if !ok {
			msg = "title: is not a string"
			return msg, false
		}
	}

	event.DiameterNm, msg, ok = getPositiveFloat(jsonTable, "diameter_nm")
	if !ok {
		return msg, false
	}

	event.WavelengthNm, msg, ok = getPositiveFloat(jsonTable, "wavelength_nm")
	if !ok {
		return msg, false
	}

	event.ParticleIndex, msg, ok = getPositiveFloat(jsonTable, "particle_index")
	if !ok {
		return msg, false
	}

	event.MediumIndex = 1.0 // Default: vacuum/air
	if _, ok = getLeafValue(jsonTable, "medium_index"); ok {
		event.MediumIndex, msg, ok = getPositiveFloat(jsonTable, "medium_index")
		if !ok {
			return msg, false
		}
	}

	// An absent polarization means unpolarized (isotropic) field synthesis
	pol, ok := getLeafValue(jsonTable, "polarization_degrees")
	event.PolarizationGiven = ok
	if ok {
		event.PolarizationDegrees, ok = pol.(float64)
		if !ok {
			msg = "polarization_degrees: is not a float64"
			return msg, false
		}
	}

	event.E0 = 1.0
	if _, ok = getLeafValue(jsonTable, "e0"); ok {
		event.E0, msg, ok = getPositiveFloat(jsonTable, "e0")
		if !ok {
			return msg, false
		}
	}

	event.ObservationRadiusM = 1.0
	if _, ok = getLeafValue(jsonTable, "observation_radius_m"); ok {
		event.ObservationRadiusM, msg, ok = getPositiveFloat(jsonTable, "observation_radius_m")
		if !ok {
			return msg, false
		}
	}

	event.NumPhiPoints = 181
	numPhi, ok := getLeafValue(jsonTable, "num_phi_points")
	if ok {
		n, ok := numPhi.(float64)
		if !ok {
			msg = "num_phi_points: is not a float64"
			return msg, false
		}
		event.NumPhiPoints = int(n)
		if event.NumPhiPoints < 2 {
			msg = "num_phi_points: must be at least 2"
			return msg, false
		}
	}

	event.NumThetaPoints = 91
	numTheta, ok := getLeafValue(jsonTable, "num_theta_points")
	if ok {
		n, ok := numTheta.(float64)
		if !ok {
			msg = "num_theta_points: is not a float64"
			return msg, false
		}
		event.NumThetaPoints = int(n)
		if event.NumThetaPoints < 2 {
			msg = "num_theta_points: must be at least 2"
			return msg, false
		}
	}

	gridName := ""
	grid, ok := getLeafValue(jsonTable, "grid")
	if ok {
		gridName, ok = grid.(string)
		if !ok {
			msg = "grid: is not a string"
			return msg, false
		}
	}
	var err error
	event.Grid, err = cylinder.ParseGridKind(gridName)
	if err != nil {
		msg = fmt.Sprintf("grid: %v", err)
		return msg, false
	}

	ruleName := ""
	rule, ok := getLeafValue(jsonTable, "extinction_rule")
	if ok {
		ruleName, ok = rule.(string)
		if !ok {
			msg = "extinction_rule: is not a string"
			return msg, false
		}
	}
	event.Extinction, err = cylinder.ParseExtinctionRule(ruleName)
	if err != nil {
		msg = fmt.Sprintf("extinction_rule: %v", err)
		return msg, false
	}

	dbPath, ok := getLeafValue(jsonTable, "results_db")
	if ok {
		event.ResultsDB, ok = dbPath.(string)
		if !ok {
			msg = "results_db: is not a string"
			return msg, false
		}
	}

	// Check to see if a diameter_sweep group is present --- it is optional
	_, ok = getLeafValue(jsonTable, "diameter_sweep")
	event.SweepGiven = ok

	if ok {
		event.SweepStartNm, msg, ok = getPositiveFloat(jsonTable, "diameter_sweep", "start_nm")
		if !ok {
			return msg, false
		}

		event.SweepEndNm, msg, ok = getPositiveFloat(jsonTable, "diameter_sweep", "end_nm")
		if !ok {
			return msg, false
		}
		if event.SweepEndNm <= event.SweepStartNm {
			msg = "diameter_sweep.end_nm: must be larger than start_nm"
			return msg, false
		}

		v, ok := getLeafValue(jsonTable, "diameter_sweep", "num_points")
		if !ok {
			msg = "diameter_sweep.num_points: not found"
			return msg, false
		}
		n, ok := v.(float64)
		if !ok {
			msg = "diameter_sweep.num_points: is not a float64"
			return msg, false
		}
		event.SweepNumPoints = int(n)
		if event.SweepNumPoints < 2 {
			msg = "diameter_sweep.num_points: must be at least 2"
			return msg, false
		}

		v, ok = getLeafValue(jsonTable, "diameter_sweep", "log_spacing_bool")
		if ok {
			event.SweepLogSpacing, ok = v.(bool)
			if !ok {
				msg = "diameter_sweep.log_spacing_bool: is not a bool"
				return msg, false
			}
		}
	}

	return "No problem found in json file", true
}
