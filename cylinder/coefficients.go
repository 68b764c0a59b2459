package cylinder

import (
	"math"
	"math/cmplx"
)

// instabilityTolerance bounds |denominator| relative to the magnitude of its two terms.
const instabilityTolerance = 1e-12

// Coefficients holds the multipole coefficients of one scatterer.
// An[i] and Bn[i] belong to multipole order i+1; order 0 is never produced.
type Coefficients struct {
	An []complex128
	Bn []complex128
}

// MaxOrder is the truncation order the coefficients were solved for.
func (c *Coefficients) MaxOrder() int {
	return len(c.An)
}

// Solver evaluates the kernel operations. The zero value uses Bessel and the
// published extinction rule.
type Solver struct {
	Special    SpecialFunctions
	Extinction ExtinctionRule
}

// NewSolver returns a Solver backed by the math package Bessel functions.
func NewSolver() *Solver {
	return &Solver{Special: Bessel{}, Extinction: ExtinctionPublished}
}

func (sv *Solver) special() SpecialFunctions {
	if sv == nil || sv.Special == nil {
		return Bessel{}
	}
	return sv.Special
}

// Coefficients solves an and bn for orders 1..maxOrder (ref: doi.org/10.1364/AO.44.002338).
// The coefficient size parameter is π·diameter/wavelength; the particle and medium
// indices scale it inside the Bessel arguments.
func (sv *Solver) Coefficients(s Scatterer, maxOrder int) (*Coefficients, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if maxOrder < 1 {
		return nil, invalidf("truncation order must be at least 1 (%d)", maxOrder)
	}

	sf := sv.special()
	x := math.Pi * s.Diameter / s.Wavelength
	mt, m := complex(s.Index, 0), complex(s.NMedium, 0)

	c := &Coefficients{
		An: make([]complex128, maxOrder),
		Bn: make([]complex128, maxOrder),
	}

	for i := range c.An {
		order := i + 1

		jt, jtp := sf.Jn(order, s.Index*x), sf.JnPrime(order, s.Index*x)
		jm, jmp := sf.Jn(order, s.NMedium*x), sf.JnPrime(order, s.NMedium*x)
		hm, hmp := sf.Hn(order, s.NMedium*x), sf.HnPrime(order, s.NMedium*x)

		an, err := quotient("an", order, mt*jt*jmp-m*jtp*jm, mt*jt*hmp, m*jtp*hm)
		if err != nil {
			return nil, err
		}
		bn, err := quotient("bn", order, m*jt*jmp-mt*jtp*jm, m*jt*hmp, mt*jtp*hm)
		if err != nil {
			return nil, err
		}
		c.An[i], c.Bn[i] = an, bn
	}
	return c, nil
}

// quotient returns num / (d1 - d2), refusing a denominator that cancels to zero.
func quotient(name string, order int, num, d1, d2 complex128) (complex128, error) {
	den := d1 - d2
	if cmplx.Abs(den) <= instabilityTolerance*(cmplx.Abs(d1)+cmplx.Abs(d2)) {
		return 0, &InstabilityError{Order: order, Coefficient: name, Denominator: den}
	}
	q := num / den
	if cmplx.IsNaN(q) || cmplx.IsInf(q) {
		return 0, &InstabilityError{Order: order, Coefficient: name, Denominator: den}
	}
	return q, nil
}

// ComputeCoefficients solves the coefficients of s with the default Solver, truncated
// at the order selected from its size parameter.
func ComputeCoefficients(s Scatterer) (*Coefficients, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return NewSolver().Coefficients(s, s.MaxOrder())
}
