package cylinder

import "fmt"

// ExtinctionRule selects the coefficient pair summed into Qext.
type ExtinctionRule int

const (
	// ExtinctionPublished sums Re(an + an), as the cited reference formula is written.
	// It has not been verified against the paper; see ExtinctionPaired.
	ExtinctionPublished ExtinctionRule = iota
	// ExtinctionPaired sums Re(an + bn). For a lossless cylinder it makes Qabs vanish.
	ExtinctionPaired
)

func (r ExtinctionRule) String() string {
	switch r {
	case ExtinctionPublished:
		return "published"
	case ExtinctionPaired:
		return "paired"
	default:
		return fmt.Sprintf("ExtinctionRule(%d)", int(r))
	}
}

// ParseExtinctionRule maps "published" or "paired" to an ExtinctionRule.
func ParseExtinctionRule(s string) (ExtinctionRule, error) {
	switch s {
	case "published", "":
		return ExtinctionPublished, nil
	case "paired":
		return ExtinctionPaired, nil
	}
	return 0, invalidf("unknown extinction rule %q", s)
}

// Efficiencies are the scattering, extinction and absorption efficiencies.
type Efficiencies struct {
	Qsca float64
	Qext float64
	Qabs float64
}

// Efficiencies reduces the coefficients using the size parameter x and the given rule.
func (c *Coefficients) Efficiencies(x float64, rule ExtinctionRule) Efficiencies {
	norm := 2 / (x * x)

	var sca, ext float64
	for i := range c.An {
		weight := 2*float64(i+1) + 1
		an, bn := c.An[i], c.Bn[i]

		sca += weight * (sqAbs(an) + sqAbs(bn))

		switch rule {
		case ExtinctionPaired:
			ext += weight * real(an+bn)
		default:
			ext += weight * real(an+an)
		}
	}

	q := Efficiencies{Qsca: norm * sca, Qext: norm * ext}
	q.Qabs = q.Qext - q.Qsca
	return q
}

// Efficiencies computes Qsca, Qext and Qabs of s.
func (sv *Solver) Efficiencies(s Scatterer) (Efficiencies, error) {
	if err := s.Validate(); err != nil {
		return Efficiencies{}, err
	}
	x := s.SizeParameter()
	c, err := sv.Coefficients(s, MaxOrder(x))
	if err != nil {
		return Efficiencies{}, fmt.Errorf("efficiencies: %w", err)
	}
	return c.Efficiencies(x, sv.extinction()), nil
}

func (sv *Solver) extinction() ExtinctionRule {
	if sv == nil {
		return ExtinctionPublished
	}
	return sv.Extinction
}

// ComputeEfficiencies is Efficiencies(diameter, wavelength, index, nMedium) with the
// default Solver, which uses ExtinctionPublished. With that rule Qabs of a lossless
// cylinder is not zero; use a Solver with ExtinctionPaired when it must vanish.
func ComputeEfficiencies(diameter, wavelength, index, nMedium float64) (Efficiencies, error) {
	return NewSolver().Efficiencies(Scatterer{
		Diameter:   diameter,
		Wavelength: wavelength,
		Index:      index,
		NMedium:    nMedium,
	})
}

func sqAbs(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
