package cylinder

import (
	"fmt"
	"math"
)

// Amplitudes are the scattering amplitude functions sampled at a set of phi angles.
type Amplitudes struct {
	Phi []float64
	S1  []complex128
	S2  []complex128
}

// Amplitudes evaluates S1 and S2 at each angle of phi (radians) from the coefficients.
// The angular functions are recomputed per angle into buffers sized by the coefficients'
// truncation order.
func (c *Coefficients) Amplitudes(phi []float64) *Amplitudes {
	n := c.MaxOrder()
	out := &Amplitudes{
		Phi: append([]float64(nil), phi...),
		S1:  make([]complex128, len(phi)),
		S2:  make([]complex128, len(phi)),
	}

	pin := make([]float64, n)
	taun := make([]float64, n)
	for i, p := range phi {
		fillAngular(math.Cos(p-math.Pi/2), pin, taun)
		out.S1[i], out.S2[i] = c.amplitudeAt(pin, taun)
	}
	return out
}

func (c *Coefficients) amplitudeAt(pin, taun []float64) (s1, s2 complex128) {
	if len(pin) != len(c.An) || len(taun) != len(c.An) {
		panic(fmt.Sprintf("cylinder: angular order %d does not match coefficient order %d", len(pin), len(c.An)))
	}
	for i := range c.An {
		k := float64(i + 1)
		prefactor := complex((2*k+1)/(k*(k+1)), 0)
		p, t := complex(pin[i], 0), complex(taun[i], 0)
		s1 += prefactor * (c.An[i]*p + c.Bn[i]*t)
		s2 += prefactor * (c.An[i]*t + c.Bn[i]*p)
	}
	return s1, s2
}

// Amplitudes solves the coefficients of s once and evaluates S1, S2 over phi.
func (sv *Solver) Amplitudes(s Scatterer, phi []float64) (*Amplitudes, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := checkAngles("phi", phi); err != nil {
		return nil, err
	}
	c, err := sv.Coefficients(s, s.MaxOrder())
	if err != nil {
		return nil, fmt.Errorf("amplitudes: %w", err)
	}
	return c.Amplitudes(phi), nil
}

// S1S2 is S1S2(index, diameter, wavelength, nMedium, phi) with the default Solver.
func S1S2(index, diameter, wavelength, nMedium float64, phi []float64) (s1, s2 []complex128, err error) {
	a, err := NewSolver().Amplitudes(Scatterer{
		Diameter:   diameter,
		Wavelength: wavelength,
		Index:      index,
		NMedium:    nMedium,
	}, phi)
	if err != nil {
		return nil, nil, err
	}
	return a.S1, a.S2, nil
}
