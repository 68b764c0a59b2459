package cylinder

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// SPF returns the scattering phase function |EPhi|² + |ETheta|² of every grid cell,
// in the grid's layout.
func SPF(g *FieldGrid) *mat.Dense {
	r, c := g.Dims()
	spf := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			spf.Set(i, j, sqAbs(g.EPhi.At(i, j))+sqAbs(g.ETheta.At(i, j)))
		}
	}
	return spf
}

// StokesParameters of a field grid. Q, U and V are normalised by I.
type StokesParameters struct {
	I *mat.Dense
	Q *mat.Dense
	U *mat.Dense
	V *mat.Dense
}

// Stokes computes the Stokes parameters of every grid cell. Cells with zero
// intensity get Q = U = V = 0.
func Stokes(g *FieldGrid) StokesParameters {
	r, c := g.Dims()
	s := StokesParameters{
		I: mat.NewDense(r, c, nil),
		Q: mat.NewDense(r, c, nil),
		U: mat.NewDense(r, c, nil),
		V: mat.NewDense(r, c, nil),
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			ePhi, eTheta := g.EPhi.At(i, j), g.ETheta.At(i, j)
			intensity := sqAbs(ePhi) + sqAbs(eTheta)
			s.I.Set(i, j, intensity)
			if intensity == 0 {
				continue
			}
			cross := ePhi * cmplx.Conj(eTheta)
			s.Q.Set(i, j, (sqAbs(ePhi)-sqAbs(eTheta))/intensity)
			s.U.Set(i, j, 2*real(cross)/intensity)
			s.V.Set(i, j, -2*imag(cross)/intensity)
		}
	}
	return s
}
