package cylinder

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

var reference = Scatterer{Diameter: 500e-9, Wavelength: 633e-9, Index: 1.5, NMedium: 1.0}

func TestMaxOrderIsMonotone(t *testing.T) {
	prev := 0
	for x := 1e-4; x < 200; x *= 1.07 {
		n := MaxOrder(x)
		if n < 2 {
			t.Fatalf("MaxOrder(%v) = %d, want at least 2", x, n)
		}
		if n < prev {
			t.Fatalf("MaxOrder(%v) = %d dropped below %d", x, n, prev)
		}
		prev = n
	}
	if got := reference.MaxOrder(); got != 9 {
		t.Fatalf("MaxOrder of the reference scatterer = %d, want 9", got)
	}
}

func TestCoefficientLengthMatchesMaxOrder(t *testing.T) {
	c, err := ComputeCoefficients(reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := MaxOrder(SizeParameter(reference.Diameter, reference.Wavelength, reference.NMedium))
	if len(c.An) != want || len(c.Bn) != want || c.MaxOrder() != want {
		t.Fatalf("len(an)=%d len(bn)=%d, want %d", len(c.An), len(c.Bn), want)
	}
	for i := range c.An {
		if cmplx.IsNaN(c.An[i]) || cmplx.IsInf(c.An[i]) || cmplx.IsNaN(c.Bn[i]) || cmplx.IsInf(c.Bn[i]) {
			t.Fatalf("order %d: non-finite coefficient an=%v bn=%v", i+1, c.An[i], c.Bn[i])
		}
	}
}

func TestCoefficientsAreScaleInvariant(t *testing.T) {
	base, err := ComputeCoefficients(reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	baseQ, err := NewSolver().Efficiencies(reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, factor := range []float64{1e3, 7.3, 0.01} {
		scaled := reference
		scaled.Diameter *= factor
		scaled.Wavelength *= factor

		if !scalar.EqualWithinAbsOrRel(scaled.SizeParameter(), reference.SizeParameter(), 1e-9, 1e-9) {
			t.Fatalf("factor %v: size parameter %v, want %v", factor, scaled.SizeParameter(), reference.SizeParameter())
		}

		c, err := ComputeCoefficients(scaled)
		if err != nil {
			t.Fatalf("factor %v: unexpected error: %v", factor, err)
		}
		if len(c.An) != len(base.An) {
			t.Fatalf("factor %v: order %d, want %d", factor, len(c.An), len(base.An))
		}
		for i := range c.An {
			if cmplx.Abs(c.An[i]-base.An[i]) > 1e-9 || cmplx.Abs(c.Bn[i]-base.Bn[i]) > 1e-9 {
				t.Fatalf("factor %v order %d: an=%v bn=%v, want an=%v bn=%v",
					factor, i+1, c.An[i], c.Bn[i], base.An[i], base.Bn[i])
			}
		}

		q, err := NewSolver().Efficiencies(scaled)
		if err != nil {
			t.Fatalf("factor %v: unexpected error: %v", factor, err)
		}
		if !scalar.EqualWithinAbsOrRel(q.Qsca, baseQ.Qsca, 1e-9, 1e-9) ||
			!scalar.EqualWithinAbsOrRel(q.Qext, baseQ.Qext, 1e-9, 1e-9) {
			t.Fatalf("factor %v: got %+v, want %+v", factor, q, baseQ)
		}
	}
}

func TestIndexMatchedCylinderDoesNotScatter(t *testing.T) {
	s := Scatterer{Diameter: 800e-9, Wavelength: 600e-9, Index: 1.33, NMedium: 1.33}
	c, err := ComputeCoefficients(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range c.An {
		if cmplx.Abs(c.An[i]) > 1e-12 || cmplx.Abs(c.Bn[i]) > 1e-12 {
			t.Fatalf("order %d: an=%v bn=%v, want 0", i+1, c.An[i], c.Bn[i])
		}
	}
}

type constantSpecial complex128

func (c constantSpecial) Jn(int, float64) complex128      { return complex128(c) }
func (c constantSpecial) JnPrime(int, float64) complex128 { return complex128(c) }
func (c constantSpecial) Hn(int, float64) complex128      { return complex128(c) }
func (c constantSpecial) HnPrime(int, float64) complex128 { return complex128(c) }

func TestVanishingDenominatorIsReported(t *testing.T) {
	sv := &Solver{Special: constantSpecial(1)}
	_, err := sv.Coefficients(Scatterer{Diameter: 1, Wavelength: 1, Index: 1, NMedium: 1}, 3)
	if !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("got %v, want ErrNumericalInstability", err)
	}
	var ie *InstabilityError
	if !errors.As(err, &ie) {
		t.Fatalf("got %T, want *InstabilityError", err)
	}
	if ie.Order != 1 || ie.Coefficient != "an" {
		t.Fatalf("got order %d coefficient %q, want order 1 coefficient \"an\"", ie.Order, ie.Coefficient)
	}
}

func TestNonFiniteSpecialFunctionIsReported(t *testing.T) {
	sv := &Solver{Special: constantSpecial(complex(math.NaN(), 0))}
	_, err := sv.Coefficients(reference, 4)
	if !errors.Is(err, ErrNumericalInstability) {
		t.Fatalf("got %v, want ErrNumericalInstability", err)
	}
}

func TestInvalidScatterersAreRejected(t *testing.T) {
	cases := map[string]Scatterer{
		"zero diameter":     {Diameter: 0, Wavelength: 633e-9, Index: 1.5, NMedium: 1},
		"negative lambda":   {Diameter: 500e-9, Wavelength: -633e-9, Index: 1.5, NMedium: 1},
		"nan index":         {Diameter: 500e-9, Wavelength: 633e-9, Index: math.NaN(), NMedium: 1},
		"infinite medium":   {Diameter: 500e-9, Wavelength: 633e-9, Index: 1.5, NMedium: math.Inf(1)},
		"zero medium index": {Diameter: 500e-9, Wavelength: 633e-9, Index: 1.5, NMedium: 0},
	}
	for name, s := range cases {
		if _, err := ComputeCoefficients(s); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: got %v, want ErrInvalidInput", name, err)
		}
		if _, err := NewSolver().Efficiencies(s); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: efficiencies got %v, want ErrInvalidInput", name, err)
		}
	}

	if _, err := NewSolver().Coefficients(reference, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("order 0: got %v, want ErrInvalidInput", err)
	}
}
