package cylinder

import "math"

// AngularFunctions returns the cylinder angular functions pin and taun for
// mu = cos(angle offset), one slot per multipole order (slot i is order i+1).
//
// The base cases pin[1] = 3·mu and taun[1] = 3·cos(2·arccos(mu)) differ from the
// spherical Mie recurrence on purpose. A maxOrder below 1 gives empty slices.
func AngularFunctions(mu float64, maxOrder int) (pin, taun []float64) {
	if maxOrder < 1 {
		return []float64{}, []float64{}
	}
	pin = make([]float64, maxOrder)
	taun = make([]float64, maxOrder)
	fillAngular(mu, pin, taun)
	return pin, taun
}

// fillAngular writes the recurrence into caller-owned buffers of equal length.
func fillAngular(mu float64, pin, taun []float64) {
	if len(pin) != len(taun) {
		panic("cylinder: angular buffers differ in length")
	}
	if len(pin) == 0 {
		return
	}

	pin[0] = 1
	taun[0] = mu
	if len(pin) == 1 {
		return
	}

	pin[1] = 3 * mu
	taun[1] = 3 * math.Cos(2*math.Acos(mu))

	for i := 2; i < len(pin); i++ {
		n := float64(i)
		pin[i] = ((2*n+1)*mu*pin[i-1] - (n+1)*pin[i-2]) / n
		taun[i] = (n+1)*mu*pin[i] - (n+2)*pin[i-1]
	}
}
