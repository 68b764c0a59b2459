package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	json "github.com/KevinWang15/go-json5"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/bob-anderson-ok/CylinderScattering/curves"
	"github.com/bob-anderson-ok/CylinderScattering/cylinder"
	"github.com/bob-anderson-ok/CylinderScattering/results"
)

// !!!!! This MUST match the app name given in the run configuration !!!!!
const version = "1_0_0"

const (
	amplitudePlotFile  = "amplitudes.png"
	sweepPlotFile      = "efficiency_sweep.png"
	fieldImage8bitFile = "fieldIntensity8bit.png"
	fieldImage16File   = "fieldIntensity16bit.png"
)

type ScatteringEvent struct {
	Title               string
	ShowInput           bool
	WindowSizePixels    int
	DiameterNm          float64
	WavelengthNm        float64
	ParticleIndex       float64
	MediumIndex         float64
	PolarizationGiven   bool
	PolarizationDegrees float64
	E0                  float64
	ObservationRadiusM  float64
	NumPhiPoints        int
	NumThetaPoints      int
	Grid                cylinder.GridKind
	Extinction          cylinder.ExtinctionRule
	SweepGiven          bool
	SweepStartNm        float64
	SweepEndNm          float64
	SweepNumPoints      int
	SweepLogSpacing     bool
	ResultsDB           string
}

const nmToM = 1e-9

// Scatterer converts the event's nm-based parameters to the kernel's SI units.
func (e *ScatteringEvent) Scatterer() cylinder.Scatterer {
	return cylinder.Scatterer{
		Diameter:   e.DiameterNm * nmToM,
		Wavelength: e.WavelengthNm * nmToM,
		Index:      e.ParticleIndex,
		NMedium:    e.MediumIndex,
	}
}

func (e *ScatteringEvent) FieldConfig() cylinder.FieldConfig {
	pol := cylinder.Unpolarized()
	if e.PolarizationGiven {
		pol = cylinder.PolarizationDegrees(e.PolarizationDegrees)
	}
	return cylinder.FieldConfig{
		Grid:         e.Grid,
		Polarization: pol,
		E0:           e.E0,
		R:            e.ObservationRadiusM,
	}
}

// AngleGrids returns phi over [0, 2π] and theta over [-π/2, π/2]. Unstructured grids
// pair the samples, so theta then gets as many points as phi.
func (e *ScatteringEvent) AngleGrids() (phi, theta []float64) {
	phi = floats.Span(make([]float64, e.NumPhiPoints), 0, 2*math.Pi)
	nTheta := e.NumThetaPoints
	if e.Grid == cylinder.Unstructured {
		nTheta = e.NumPhiPoints
	}
	theta = floats.Span(make([]float64, nTheta), -math.Pi/2, math.Pi/2)
	return phi, theta
}

func main() {

	programStart := time.Now()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: CylinderScattering <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the Json5 (or Json) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	// Parse json(5) data into a generic container
	var jsonTable map[string]interface{}
	err = json.Unmarshal(data, &jsonTable)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tFormat error in file %q: %w\n", path, err))
		os.Exit(3)
	}

	var event ScatteringEvent
	msg, ok := validateJsonFileAndFillEvent(jsonTable, &event)
	if !ok {
		fmt.Println(msg)
		os.Exit(4)
	}

	// Check for user wanting printout of complete jsonTable
	if event.ShowInput {
		fmt.Printf("%s", "\nPrintout of  complete jsonTable contents...\n")
		fmt.Println(string(data))
	}

	fmt.Printf("\nVersion %s\n\n", version)

	scatterer := event.Scatterer()
	sv := &cylinder.Solver{Extinction: event.Extinction}

	x := scatterer.SizeParameter()
	fmt.Printf("Size parameter is %0.4f\n", x)
	fmt.Printf("Series truncated at order %d\n", cylinder.MaxOrder(x))
	fmt.Printf("Extinction rule is %q\n\n", event.Extinction)

	start := time.Now()
	q, err := sv.Efficiencies(scatterer)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tEfficiency calculation failed: %s", describeKernelError(err)))
		os.Exit(5)
	}
	fmt.Printf("Qsca = %0.6f\nQext = %0.6f\nQabs = %0.3e\n", q.Qsca, q.Qext, q.Qabs)
	fmt.Printf("Calculation of the efficiencies took %s\n\n", time.Since(start))

	start = time.Now()
	curve, err := curves.AmplitudeCurve(sv, scatterer, event.NumPhiPoints)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAmplitude calculation failed: %s", describeKernelError(err)))
		os.Exit(6)
	}
	err = curves.SaveAmplitudePlot(amplitudePlotFile, curve, 1200, 500)
	if err != nil {
		fmt.Println(fmt.Errorf("writing of %q failed: %w", amplitudePlotFile, err))
		os.Exit(7)
	}
	fmt.Printf("Calculation and plot of S1, S2 took %s\n", time.Since(start))

	var sweep []curves.EfficiencyPoint
	if event.SweepGiven {
		start = time.Now()
		sweep, err = curves.EfficiencySweep(sv, scatterer, curves.SweepSpec{
			StartDiameter: event.SweepStartNm * nmToM,
			EndDiameter:   event.SweepEndNm * nmToM,
			NumPoints:     event.SweepNumPoints,
			LogSpacing:    event.SweepLogSpacing,
		})
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tDiameter sweep failed: %s", describeKernelError(err)))
			os.Exit(8)
		}
		err = curves.SaveEfficiencyPlot(sweepPlotFile, sweep, 1200, 500)
		if err != nil {
			fmt.Println(fmt.Errorf("writing of %q failed: %w", sweepPlotFile, err))
			os.Exit(9)
		}
		fmt.Printf("Diameter sweep of %d points took %s\n", len(sweep), time.Since(start))
	}

	start = time.Now()
	phi, theta := event.AngleGrids()
	grid, err := sv.Fields(scatterer, phi, theta, event.FieldConfig())
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tField synthesis failed: %s", describeKernelError(err)))
		os.Exit(10)
	}
	rows, cols := grid.Dims()
	fmt.Printf("Synthesis of the %s far field (%d x %d, transposed: %t) took %s\n",
		event.Grid, rows, cols, grid.Transposed, time.Since(start))

	spf := cylinder.SPF(grid)
	fmt.Printf("Peak phase function value is %0.4e\n", mat.Max(spf))

	fieldImageWritten := false
	if event.Grid == cylinder.Structured {
		err = writeFieldImages(spf)
		if err != nil {
			fmt.Println(fmt.Errorf("writing of the field intensity images failed: %w", err))
			os.Exit(11)
		}
		fieldImageWritten = true
	} else {
		fmt.Println("Unstructured grid: no field intensity image written")
	}

	if event.ResultsDB != "" {
		err = saveResults(event, scatterer, q, sweep, curve)
		if err != nil {
			fmt.Println(fmt.Errorf("\n\tSaving results to %q failed: %w", event.ResultsDB, err))
			os.Exit(12)
		}
	}

	fmt.Printf("\nTotal program run time is %s\n", time.Since(programStart))

	if event.WindowSizePixels > 0 { // We have displays to make
		showWindows(event, fieldImageWritten)
	}
}

// describeKernelError classifies a kernel error for the run report.
func describeKernelError(err error) string {
	var ie *cylinder.InstabilityError
	switch {
	case errors.As(err, &ie):
		return fmt.Sprintf("coefficient %s of order %d is numerically unstable (denominator %g): %v",
			ie.Coefficient, ie.Order, ie.Denominator, err)
	case errors.Is(err, cylinder.ErrInvalidInput):
		return fmt.Sprintf("bad parameters: %v", err)
	}
	return err.Error()
}

// writeFieldImages saves a log-stretched 8 bit view and a peak-normalized 16 bit
// data image of the phase function.
func writeFieldImages(spf *mat.Dense) error {
	view, err := MatrixToGrayViewPercentile(LogIntensity(spf, 1e-6), 0.0, 100)
	if err != nil {
		return fmt.Errorf("creation of the display image failed: %w", err)
	}
	if err := SaveGrayPNG(fieldImage8bitFile, view); err != nil {
		return fmt.Errorf("writing of %q failed: %w", fieldImage8bitFile, err)
	}

	peak := mat.Max(spf)
	if !(peak > 0) {
		peak = 1
	}
	data, err := MatrixToGray16Data(spf, 65535/peak)
	if err != nil {
		return fmt.Errorf("creation of the data image failed: %w", err)
	}
	if err := SaveGray16PNG(fieldImage16File, data); err != nil {
		return fmt.Errorf("writing of %q failed: %w", fieldImage16File, err)
	}

	// Read the data image back: it must reproduce the phase function to 16 bit precision
	back, err := LoadGray16Data(fieldImage16File, 65535/peak)
	if err != nil {
		return fmt.Errorf("reading back %q failed: %w", fieldImage16File, err)
	}
	if !mat.EqualApprox(back, spf, peak/65535) {
		return fmt.Errorf("%q does not reproduce the phase function", fieldImage16File)
	}
	return nil
}

func saveResults(event ScatteringEvent, s cylinder.Scatterer, q cylinder.Efficiencies,
	sweep []curves.EfficiencyPoint, curve []curves.AnglePoint) (err error) {
	store, err := results.Open(event.ResultsDB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	id, err := store.SaveRun(event.Title, s, event.Extinction, q)
	if err != nil {
		return err
	}
	if len(sweep) > 0 {
		if err := store.SaveSweep(id, sweep); err != nil {
			return fmt.Errorf("save sweep: %w", err)
		}
	}
	if err := store.SaveAmplitudes(id, curve); err != nil {
		return fmt.Errorf("save amplitudes: %w", err)
	}
	fmt.Printf("Results saved to %q as run %s\n", event.ResultsDB, id)
	return nil
}

func showWindows(event ScatteringEvent, fieldImageWritten bool) {
	size := float32(event.WindowSizePixels)

	// We supply an ID (hopefully unique) because we may need to use the preferences API
	myApp := app.NewWithID("com.gmail.ok.anderson.bob.cylinder")

	winTitle := event.Title
	if winTitle == "" {
		winTitle = "CylinderScattering"
	}

	w := myApp.NewWindow(winTitle + " - scattering amplitudes")
	ampImg := canvas.NewImageFromFile(amplitudePlotFile)
	ampImg.FillMode = canvas.ImageFillContain
	ampImg.SetMinSize(fyne.NewSize(1200, 500))
	w.SetContent(container.NewCenter(ampImg))
	w.Resize(fyne.NewSize(950, 550))

	if fieldImageWritten {
		w2 := myApp.NewWindow(winTitle + " - far field intensity (log scale)")
		w2.SetPadded(false)
		img := canvas.NewImageFromFile(fieldImage8bitFile)
		img.FillMode = canvas.ImageFillContain
		w2.SetContent(container.NewStack(img))
		w2.Resize(fyne.Size{Height: size, Width: size})
		w2.Show()
	}

	if event.SweepGiven {
		sweepImg := canvas.NewImageFromFile(sweepPlotFile)
		sweepImg.FillMode = canvas.ImageFillContain
		sweepImg.SetMinSize(fyne.NewSize(1200, 500))

		w3 := myApp.NewWindow(winTitle + " - efficiencies vs diameter")
		w3.SetContent(container.NewCenter(sweepImg))
		w3.Resize(fyne.NewSize(950, 550))
		w3.Show()
	}

	w.CenterOnScreen()
	w.ShowAndRun()
}
