package qvectors

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// Corrections are defined for centralities in [0, MaxCentrality).
	MaxCentrality = 80
	// One calibration bin per centrality percent, numbered from 1.
	CentralityBins = 80
	// Centrality reported for events outside the calibrated window.
	UncalibratedCentrality = 110
	// Harmonic whose table replaces a missing one.
	FallbackHarmonic = 2
)

// CorrectionConstants are the six numbers stored per harmonic, sub-system and
// centrality bin.
type CorrectionConstants struct {
	MeanX    float64 `json:"mean_x" db:"MeanX"`
	MeanY    float64 `json:"mean_y" db:"MeanY"`
	TwistA   float64 `json:"twist_a" db:"TwistA"`
	TwistB   float64 `json:"twist_b" db:"TwistB"`
	RescaleX float64 `json:"rescale_x" db:"RescaleX"`
	RescaleY float64 `json:"rescale_y" db:"RescaleY"`
}

// IdentityCorrection leaves every vector unchanged.
var IdentityCorrection = CorrectionConstants{RescaleX: 1, RescaleY: 1}

type CalibrationTable struct {
	Harmonic int
	bins     [NumSubsystems][CentralityBins]CorrectionConstants
}

// NewCalibrationTable returns a table filled with IdentityCorrection.
func NewCalibrationTable(harmonic int) *CalibrationTable {
	t := &CalibrationTable{Harmonic: harmonic}
	for s := range t.bins {
		for b := range t.bins[s] {
			t.bins[s][b] = IdentityCorrection
		}
	}
	return t
}

// Set stores the constants of a 1-based centrality bin.
func (t *CalibrationTable) Set(subsystem Subsystem, bin int, c CorrectionConstants) error {
	if subsystem < 0 || subsystem >= NumSubsystems {
		return fmt.Errorf("invalid sub-system %d", subsystem)
	}
	if bin < 1 || bin > CentralityBins {
		return fmt.Errorf("invalid centrality bin %d", bin)
	}
	t.bins[subsystem][bin-1] = c
	return nil
}

// Constants returns the constants of a 1-based centrality bin.
func (t *CalibrationTable) Constants(subsystem Subsystem, bin int) CorrectionConstants {
	if bin < 1 || bin > CentralityBins || subsystem < 0 || subsystem >= NumSubsystems {
		return IdentityCorrection
	}
	return t.bins[subsystem][bin-1]
}

// CentralityBin returns int(cent)+1 for centralities in [0, MaxCentrality).
// ok is false outside that window.
func CentralityBin(cent float32) (bin int, ok bool) {
	if cent < 0 || cent >= MaxCentrality {
		return 0, false
	}
	return int(cent) + 1, true
}

func Recenter(q QVector, c CorrectionConstants) QVector {
	if !q.IsDefined() {
		return q
	}
	return DefinedVector(q.Re-c.MeanX, q.Im-c.MeanY)
}

// Twist removes the correlation between components by solving
// [[1, b], [a, 1]] * q' = q. A singular matrix leaves q unchanged.
func Twist(q QVector, c CorrectionConstants) QVector {
	if !q.IsDefined() {
		return q
	}
	if c.TwistA == 0 && c.TwistB == 0 {
		return q
	}
	m := mat.NewDense(2, 2, []float64{
		1, c.TwistB,
		c.TwistA, 1,
	})
	var x mat.VecDense
	if err := x.SolveVec(m, mat.NewVecDense(2, []float64{q.Re, q.Im})); err != nil {
		return q
	}
	return DefinedVector(x.AtVec(0), x.AtVec(1))
}

// Rescale divides each component by its width. Zero widths are skipped.
func Rescale(q QVector, c CorrectionConstants) QVector {
	if !q.IsDefined() {
		return q
	}
	if c.RescaleX != 0 {
		q.Re /= c.RescaleX
	}
	if c.RescaleY != 0 {
		q.Im /= c.RescaleY
	}
	return q
}

// ApplyCorrections runs the chain on a raw vector. Every stage starts from the
// raw vector, so the mean is subtracted exactly once in each of them.
func ApplyCorrections(raw QVector, c CorrectionConstants) Stages {
	var s Stages
	s[StageRaw] = raw
	s[StageRecentered] = Recenter(raw, c)
	s[StageTwisted] = Twist(Recenter(raw, c), c)
	s[StageRescaled] = Rescale(Twist(Recenter(raw, c), c), c)
	return s
}

// UncorrectedStages copies the raw vector into every stage.
func UncorrectedStages(raw QVector) Stages {
	var s Stages
	for i := range s {
		s[i] = raw
	}
	return s
}
