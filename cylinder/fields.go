package cylinder

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// GridKind selects how the phi and theta samples are combined into observation points.
type GridKind int

const (
	// Structured evaluates the outer product Phi × Theta.
	Structured GridKind = iota
	// Unstructured evaluates paired samples (Phi[i], Theta[i]).
	Unstructured
)

func (g GridKind) String() string {
	switch g {
	case Structured:
		return "structured"
	case Unstructured:
		return "unstructured"
	default:
		return fmt.Sprintf("GridKind(%d)", int(g))
	}
}

// ParseGridKind maps "structured" or "unstructured" to a GridKind.
func ParseGridKind(s string) (GridKind, error) {
	switch s {
	case "structured", "":
		return Structured, nil
	case "unstructured":
		return Unstructured, nil
	}
	return 0, invalidf("unknown grid kind %q", s)
}

// Polarization of the incident plane wave. The zero value is unpolarized.
type Polarization struct {
	Polarized bool
	Angle     float64 // radians, meaningful only when Polarized
}

// Polarized returns a linear polarization at angle radians.
func Polarized(angle float64) Polarization {
	return Polarization{Polarized: true, Angle: angle}
}

// PolarizationDegrees returns a linear polarization given in degrees.
func PolarizationDegrees(deg float64) Polarization {
	return Polarized(deg * math.Pi / 180)
}

// Unpolarized returns the isotropic polarization weighting.
func Unpolarized() Polarization {
	return Polarization{}
}

// weights returns the EPhi and ETheta weights at theta.
func (p Polarization) weights(theta float64) (complex128, complex128) {
	if !p.Polarized {
		return 1, 1
	}
	return complex(math.Abs(math.Cos(theta+p.Angle)), 0), complex(math.Abs(math.Sin(theta+p.Angle)), 0)
}

// FieldConfig parameterises a far-field synthesis.
type FieldConfig struct {
	Grid         GridKind
	Polarization Polarization
	E0           float64 // Incident field amplitude
	R            float64 // Observation radius, same length unit as the wavelength
}

// FieldGrid holds the far-field components. Their shape depends on the synthesis variant:
// structured polarized grids are (len(Phi), len(Theta)); structured unpolarized grids are
// the transpose (len(Theta), len(Phi)); unstructured grids are (1, N) for N paired samples.
type FieldGrid struct {
	EPhi   *mat.CDense
	ETheta *mat.CDense
	// Transposed reports whether the natural phi-major layout was transposed.
	Transposed bool
}

// Dims returns the shape shared by EPhi and ETheta.
func (g *FieldGrid) Dims() (r, c int) {
	return g.EPhi.Dims()
}

// Fields synthesises the far field of s at the phi and theta samples (radians).
// S1 and S2 are solved once over phi; every cell then folds the propagator
// (E0/(k·R))·exp(−i·k·R), the amplitudes and the polarization weight.
//
// Only the structured polarized variant keeps the phi-major layout; the other
// three return it transposed.
func (sv *Solver) Fields(s Scatterer, phi, theta []float64, cfg FieldConfig) (*FieldGrid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := checkAngles("phi", phi); err != nil {
		return nil, err
	}
	if err := checkAngles("theta", theta); err != nil {
		return nil, err
	}
	if err := cfg.validate(len(phi), len(theta)); err != nil {
		return nil, err
	}

	k := 2 * math.Pi / s.Wavelength
	propagator := complex(cfg.E0/(k*cfg.R), 0) * cmplx.Exp(complex(0, -k*cfg.R))

	amps, err := sv.Amplitudes(s, phi)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	grid := cfg.loop(propagator, amps, theta)
	if cfg.transposed() {
		grid = &FieldGrid{
			EPhi:       transpose(grid.EPhi),
			ETheta:     transpose(grid.ETheta),
			Transposed: true,
		}
	}
	return grid, nil
}

func (cfg FieldConfig) validate(phiLen, thetaLen int) error {
	switch cfg.Grid {
	case Structured:
	case Unstructured:
		if phiLen != thetaLen {
			return invalidf("unstructured grid needs paired samples, got %d phi and %d theta", phiLen, thetaLen)
		}
	default:
		return invalidf("unknown grid kind %d", int(cfg.Grid))
	}
	if !isFinite(cfg.E0) {
		return invalidf("E0 is not finite (%v)", cfg.E0)
	}
	if !isFinite(cfg.R) || cfg.R <= 0 {
		return invalidf("observation radius must be positive and finite (%v)", cfg.R)
	}
	if cfg.Polarization.Polarized && !isFinite(cfg.Polarization.Angle) {
		return invalidf("polarization angle is not finite (%v)", cfg.Polarization.Angle)
	}
	return nil
}

func (cfg FieldConfig) transposed() bool {
	return !(cfg.Grid == Structured && cfg.Polarization.Polarized)
}

// loop fills the phi-major grid cell by cell.
func (cfg FieldConfig) loop(propagator complex128, amps *Amplitudes, theta []float64) *FieldGrid {
	rows := len(amps.Phi)
	cols := len(theta)
	if cfg.Grid == Unstructured {
		cols = 1
	}

	ePhi := mat.NewCDense(rows, cols, make([]complex128, rows*cols))
	eTheta := mat.NewCDense(rows, cols, make([]complex128, rows*cols))

	cell := func(p, col int, th float64) {
		wPhi, wTheta := cfg.Polarization.weights(th)
		ePhi.Set(p, col, 1i*propagator*amps.S1[p]*wPhi)
		eTheta.Set(p, col, -propagator*amps.S2[p]*wTheta)
	}

	for p := 0; p < rows; p++ {
		if cfg.Grid == Unstructured {
			cell(p, 0, theta[p])
			continue
		}
		for t, th := range theta {
			cell(p, t, th)
		}
	}
	return &FieldGrid{EPhi: ePhi, ETheta: eTheta}
}

func transpose(m *mat.CDense) *mat.CDense {
	r, c := m.Dims()
	t := mat.NewCDense(c, r, make([]complex128, r*c))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t.Set(j, i, m.At(i, j))
		}
	}
	return t
}

func (sv *Solver) fields(index, diameter, wavelength, nMedium float64, phi, theta []float64, cfg FieldConfig) (ePhi, eTheta *mat.CDense, err error) {
	g, err := sv.Fields(Scatterer{
		Diameter:   diameter,
		Wavelength: wavelength,
		Index:      index,
		NMedium:    nMedium,
	}, phi, theta, cfg)
	if err != nil {
		return nil, nil, err
	}
	return g.EPhi, g.ETheta, nil
}

// FieldsStructured returns (EPhi, ETheta) of shape (len(phi), len(theta)).
func FieldsStructured(index, diameter, wavelength, nMedium float64, phi, theta []float64, polarization, e0, r float64) (ePhi, eTheta *mat.CDense, err error) {
	return NewSolver().fields(index, diameter, wavelength, nMedium, phi, theta,
		FieldConfig{Grid: Structured, Polarization: Polarized(polarization), E0: e0, R: r})
}

// FieldsUnstructured returns (EPhi, ETheta) of shape (1, len(phi)) for paired samples.
func FieldsUnstructured(index, diameter, wavelength, nMedium float64, phi, theta []float64, polarization, e0, r float64) (ePhi, eTheta *mat.CDense, err error) {
	return NewSolver().fields(index, diameter, wavelength, nMedium, phi, theta,
		FieldConfig{Grid: Unstructured, Polarization: Polarized(polarization), E0: e0, R: r})
}

// FieldsStructuredUnpolarized returns (EPhi, ETheta) of shape (len(theta), len(phi)).
func FieldsStructuredUnpolarized(index, diameter, wavelength, nMedium float64, phi, theta []float64, e0, r float64) (ePhi, eTheta *mat.CDense, err error) {
	return NewSolver().fields(index, diameter, wavelength, nMedium, phi, theta,
		FieldConfig{Grid: Structured, Polarization: Unpolarized(), E0: e0, R: r})
}

// FieldsUnstructuredUnpolarized returns (EPhi, ETheta) of shape (1, len(phi)) for paired samples.
func FieldsUnstructuredUnpolarized(index, diameter, wavelength, nMedium float64, phi, theta []float64, e0, r float64) (ePhi, eTheta *mat.CDense, err error) {
	return NewSolver().fields(index, diameter, wavelength, nMedium, phi, theta,
		FieldConfig{Grid: Unstructured, Polarization: Unpolarized(), E0: e0, R: r})
}
