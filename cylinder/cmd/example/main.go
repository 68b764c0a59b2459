// Example program demonstrating how to use the cylinder package to:
// 1. Compute the Mie coefficients of a dielectric fibre
// 2. Sweep the scattering efficiency across diameters
// 3. Sample and plot the amplitude functions S1 and S2
// 4. Synthesize far fields on a structured angular grid
//
// Usage:
//
//	go run main.go
//
// The plots are written to the current directory.
package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/bob-anderson-ok/CylinderScattering/curves"
	"github.com/bob-anderson-ok/CylinderScattering/cylinder"
)

func main() {
	fmt.Println("Cylinder Scattering Example")
	fmt.Println("===========================")

	// A 500 nm glass fibre in air, illuminated by a HeNe laser
	fibre := cylinder.Scatterer{
		Diameter:   500e-9, // Fibre diameter (m)
		Wavelength: 633e-9, // Vacuum wavelength (m)
		Index:      1.5,    // Refractive index of the fibre
		NMedium:    1.0,    // Refractive index of the surrounding medium
	}

	sv := &cylinder.Solver{Extinction: cylinder.ExtinctionPaired}

	x := fibre.SizeParameter()
	fmt.Printf("\nSize parameter: %.4f", x)
	fmt.Printf("\nTruncation order: %d\n", cylinder.MaxOrder(x))

	c, err := sv.Coefficients(fibre, cylinder.MaxOrder(x))
	if err != nil {
		var ie *cylinder.InstabilityError
		if errors.As(err, &ie) {
			log.Fatalf("Coefficient %s of order %d is unstable", ie.Coefficient, ie.Order)
		}
		log.Fatalf("Failed to compute coefficients: %v", err)
	}

	fmt.Println("\nFirst 3 coefficient pairs:")
	for i := 0; i < 3 && i < c.MaxOrder(); i++ {
		fmt.Printf("  order %d: a = %9.6f, b = %9.6f\n", i+1, c.An[i], c.Bn[i])
	}

	q := c.Efficiencies(x, sv.Extinction)
	fmt.Printf("\nQsca = %.6f, Qext = %.6f, Qabs = %.2e\n", q.Qsca, q.Qext, q.Qabs)

	// Sweep the efficiencies across diameters
	sweep := curves.SweepSpec{StartDiameter: 50e-9, EndDiameter: 2000e-9, NumPoints: 200}
	points, err := curves.EfficiencySweep(sv, fibre, sweep)
	if err != nil {
		log.Fatalf("Efficiency sweep failed: %v", err)
	}
	best := points[0]
	for _, pt := range points {
		if pt.Qsca > best.Qsca {
			best = pt
		}
	}
	fmt.Printf("\nLargest Qsca in sweep: %.4f at %.0f nm\n", best.Qsca, best.Diameter*1e9)

	outputSweep := "efficiency_sweep.png"
	if err := curves.SaveEfficiencyPlot(outputSweep, points, 1200, 500); err != nil {
		log.Printf("Could not save efficiency plot: %v\n", err)
	} else {
		fmt.Printf("Saved efficiency plot to %s\n", outputSweep)
	}

	// Sample the amplitude functions around the fibre
	curve, err := curves.AmplitudeCurve(sv, fibre, 721)
	if err != nil {
		log.Fatalf("Amplitude curve failed: %v", err)
	}
	fmt.Printf("\nForward |S1| = %.4f, backward |S1| = %.4f\n",
		cmplx.Abs(curve[0].S1), cmplx.Abs(curve[len(curve)/2].S1))

	outputAmp := "amplitudes.png"
	if err := curves.SaveAmplitudePlot(outputAmp, curve, 1200, 500); err != nil {
		log.Printf("Could not save amplitude plot: %v\n", err)
	} else {
		fmt.Printf("Saved amplitude plot to %s\n", outputAmp)
	}

	// Far fields on a structured grid
	phi := floats.Span(make([]float64, 181), 0, math.Pi)
	theta := floats.Span(make([]float64, 91), -math.Pi/2, math.Pi/2)
	grid, err := sv.Fields(fibre, phi, theta, cylinder.FieldConfig{
		Grid:         cylinder.Structured,
		Polarization: cylinder.PolarizationDegrees(0),
		E0:           1,
		R:            1,
	})
	if err != nil {
		log.Fatalf("Field synthesis failed: %v", err)
	}
	r, cols := grid.Dims()
	fmt.Printf("\nField grid: %d x %d (transposed: %t)\n", r, cols, grid.Transposed)

	spf := cylinder.SPF(grid)
	fmt.Printf("Peak phase function value: %.4e\n", maxOf(spf.RawMatrix().Data))

	fmt.Println("\nDone!")
}

func maxOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Max(v)
}
