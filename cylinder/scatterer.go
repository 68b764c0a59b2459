// Package cylinder computes plane-wave scattering by an infinite dielectric cylinder:
// multipole coefficients, efficiencies, the S1/S2 amplitude functions and the far
// field on structured or paired angular grids.
//
// Every operation is synchronous and owns its buffers for the duration of the call.
// Nothing is cached between calls.
package cylinder

import "math"

// Scatterer describes an infinite dielectric cylinder in a surrounding medium.
// Diameter and Wavelength share the same length unit.
type Scatterer struct {
	Diameter   float64 // Cylinder diameter
	Wavelength float64 // Vacuum wavelength of the incident plane wave
	Index      float64 // Refractive index of the cylinder
	NMedium    float64 // Refractive index of the surrounding medium
}

// Validate rejects non-positive or non-finite parameters.
func (s Scatterer) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"diameter", s.Diameter},
		{"wavelength", s.Wavelength},
		{"index", s.Index},
		{"medium index", s.NMedium},
	}
	for _, c := range checks {
		if !isFinite(c.value) {
			return invalidf("%s is not finite (%v)", c.name, c.value)
		}
		if c.value <= 0 {
			return invalidf("%s must be positive (%v)", c.name, c.value)
		}
	}
	return nil
}

// SizeParameter returns the cylinder size parameter x = nMedium·π·diameter/wavelength.
// Note the π (not 2π) convention used for cylinders.
func SizeParameter(diameter, wavelength, nMedium float64) float64 {
	return nMedium * math.Pi * diameter / wavelength
}

// MaxOrder returns the truncation order for a size parameter (Wiscombe criterion).
// The result is at least 2 for any positive size parameter and never decreases as x grows.
func MaxOrder(sizeParameter float64) int {
	return int(2 + sizeParameter + 4*math.Cbrt(sizeParameter))
}

// SizeParameter of the scatterer.
func (s Scatterer) SizeParameter() float64 {
	return SizeParameter(s.Diameter, s.Wavelength, s.NMedium)
}

// MaxOrder of the scatterer.
func (s Scatterer) MaxOrder() int {
	return MaxOrder(s.SizeParameter())
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkAngles(name string, angles []float64) error {
	if len(angles) == 0 {
		return invalidf("%s is empty", name)
	}
	for i, a := range angles {
		if !isFinite(a) {
			return invalidf("%s[%d] is not finite (%v)", name, i, a)
		}
	}
	return nil
}
