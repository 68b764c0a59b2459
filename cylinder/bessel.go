package cylinder

import "math"

// SpecialFunctions evaluates cylindrical Bessel and Hankel functions of integer order.
// Every argument the kernel passes is real, since refractive indices and the size
// parameter are real scalars; the Hankel functions are complex-valued.
type SpecialFunctions interface {
	Jn(n int, x float64) complex128      // Bessel function of the first kind
	JnPrime(n int, x float64) complex128 // d/dx Jn
	Hn(n int, x float64) complex128      // Hankel function of the first kind, Jn + i·Yn
	HnPrime(n int, x float64) complex128 // d/dx Hn
}

// Bessel is the SpecialFunctions implementation backed by math.Jn and math.Yn.
type Bessel struct{}

func (Bessel) Jn(n int, x float64) complex128 {
	return complex(math.Jn(n, x), 0)
}

func (Bessel) JnPrime(n int, x float64) complex128 {
	return complex((math.Jn(n-1, x)-math.Jn(n+1, x))/2, 0)
}

func (Bessel) Hn(n int, x float64) complex128 {
	return complex(math.Jn(n, x), math.Yn(n, x))
}

func (Bessel) HnPrime(n int, x float64) complex128 {
	return complex(
		(math.Jn(n-1, x)-math.Jn(n+1, x))/2,
		(math.Yn(n-1, x)-math.Yn(n+1, x))/2,
	)
}
