package cylinder

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

func TestS1S2OfReferenceCylinder(t *testing.T) {
	s1, s2, err := S1S2(1.5, 500e-9, 633e-9, 1.0, []float64{0.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s1) != 1 || len(s2) != 1 {
		t.Fatalf("lengths %d, %d, want 1", len(s1), len(s2))
	}
	for name, v := range map[string]complex128{"S1": s1[0], "S2": s2[0]} {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			t.Fatalf("%s = %v, want finite", name, v)
		}
	}

	again1, again2, err := S1S2(1.5, 500e-9, 633e-9, 1.0, []float64{0.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again1[0] != s1[0] || again2[0] != s2[0] {
		t.Fatalf("repeated call differs: (%v, %v) then (%v, %v)", s1[0], s2[0], again1[0], again2[0])
	}
}

func TestAmplitudesMatchExplicitSum(t *testing.T) {
	c, err := ComputeCoefficients(reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	phi := []float64{0.7, math.Pi / 2, 2.9}
	a := c.Amplitudes(phi)

	for i, p := range phi {
		pin, taun := AngularFunctions(math.Cos(p-math.Pi/2), c.MaxOrder())
		var s1, s2 complex128
		for k := 1; k <= c.MaxOrder(); k++ {
			pre := complex(float64(2*k+1)/float64(k*(k+1)), 0)
			an, bn := c.An[k-1], c.Bn[k-1]
			s1 += pre * (an*complex(pin[k-1], 0) + bn*complex(taun[k-1], 0))
			s2 += pre * (an*complex(taun[k-1], 0) + bn*complex(pin[k-1], 0))
		}
		if cmplx.Abs(a.S1[i]-s1) > 1e-12*(1+cmplx.Abs(s1)) || cmplx.Abs(a.S2[i]-s2) > 1e-12*(1+cmplx.Abs(s2)) {
			t.Fatalf("phi=%v: got (%v, %v), want (%v, %v)", p, a.S1[i], a.S2[i], s1, s2)
		}
	}
}

func TestAmplitudesRejectBadAngles(t *testing.T) {
	if _, _, err := S1S2(1.5, 500e-9, 633e-9, 1.0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty phi: got %v, want ErrInvalidInput", err)
	}
	if _, _, err := S1S2(1.5, 500e-9, 633e-9, 1.0, []float64{0, math.NaN()}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("NaN phi: got %v, want ErrInvalidInput", err)
	}
	if _, _, err := S1S2(1.5, -1, 633e-9, 1.0, []float64{0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative diameter: got %v, want ErrInvalidInput", err)
	}
}

func TestAmplitudeOrderMismatchPanics(t *testing.T) {
	c, err := ComputeCoefficients(reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for mismatched truncation orders")
		}
	}()
	pin, taun := AngularFunctions(0.2, c.MaxOrder()-1)
	c.amplitudeAt(pin, taun)
}
