package qvectors

import (
	"errors"
	"fmt"
)

// ConditionsProvider gives access to the run-dependent constants. Missing
// objects are reported with ErrNotFound.
type ConditionsProvider interface {
	Alignment(family DetectorFamily, run int) (FamilyAlignment, error)
	ChannelPositions(family DetectorFamily, run int) ([]Position, error)
	RelativeGains(family DetectorFamily, run int) ([]float64, error)
	CalibrationTable(harmonic int, run int) (*CalibrationTable, error)
}

// RunConditions is the immutable snapshot of the constants of one run.
type RunConditions struct {
	Run         int
	Geometry    *Geometry
	Gains       [2][]float64
	Calibration map[int]*CalibrationTable
}

// Table returns the calibration table used for a harmonic, nil when the
// harmonic is not calibrated for this run.
func (rc *RunConditions) Table(harmonic int) *CalibrationTable {
	return rc.Calibration[harmonic]
}

// HasCalibration reports whether at least one harmonic has a table.
func (rc *RunConditions) HasCalibration() bool {
	for _, t := range rc.Calibration {
		if t != nil {
			return true
		}
	}
	return false
}

func unitGains(family DetectorFamily) []float64 {
	gains := make([]float64, family.Channels())
	for i := range gains {
		gains[i] = 1
	}
	return gains
}

// LoadRunConditions reads every object needed to process a run. Missing
// alignment or geometry is fatal. Missing gains default to ones. A missing
// calibration table falls back to the FallbackHarmonic table, and when that is
// also missing the harmonic is left uncalibrated.
func LoadRunConditions(provider ConditionsProvider, run int, harmonics []int) (*RunConditions, error) {
	rc := &RunConditions{
		Run:         run,
		Calibration: make(map[int]*CalibrationTable),
	}

	var positions [2][]Position
	var alignment [2]FamilyAlignment
	for _, family := range DetectorFamilies {
		align, err := provider.Alignment(family, run)
		if err != nil {
			return nil, &ErrMissingAlignment{Run: run, Family: family, Err: err}
		}
		alignment[family] = align

		pos, err := provider.ChannelPositions(family, run)
		if err != nil {
			return nil, &ErrMissingGeometry{Run: run, Family: family, Err: err}
		}
		positions[family] = pos

		gains, err := provider.RelativeGains(family, run)
		switch {
		case errors.Is(err, ErrNotFound):
			if configuration.Verbosity > 0 {
				message := fmt.Sprintf("Run %d: no relative gains for %v, using unit gains", run, family)
				logger.Info(message, "conditions")
			}
			gains = unitGains(family)
		case err != nil:
			return nil, fmt.Errorf("error reading %v gains for run %d: %w", family, run, err)
		case len(gains) != family.Channels():
			return nil, fmt.Errorf("run %d: %v gain table has %d channels, expected %d",
				run, family, len(gains), family.Channels())
		}
		rc.Gains[family] = gains
	}

	geometry, err := NewGeometry(positions[FT0], positions[FV0], alignment[FT0], alignment[FV0])
	if err != nil {
		return nil, fmt.Errorf("run %d: %w", run, err)
	}
	rc.Geometry = geometry

	for _, harmonic := range harmonics {
		table, err := loadCalibration(provider, run, harmonic)
		if err != nil {
			return nil, err
		}
		rc.Calibration[harmonic] = table
	}
	return rc, nil
}

func loadCalibration(provider ConditionsProvider, run int, harmonic int) (*CalibrationTable, error) {
	table, err := provider.CalibrationTable(harmonic, run)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("error reading calibration v%d for run %d: %w", harmonic, run, err)
	}
	if harmonic != FallbackHarmonic {
		table, err = provider.CalibrationTable(FallbackHarmonic, run)
		if err == nil {
			message := fmt.Sprintf("Run %d: no calibration for v%d, using v%d constants", run, harmonic, FallbackHarmonic)
			logger.Info(message, "conditions")
			calibrationFallbacks.WithLabelValues(fmt.Sprint(harmonic)).Inc()
			return table, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("error reading calibration v%d for run %d: %w", FallbackHarmonic, run, err)
		}
	}
	logger.Error(fmt.Sprintf("Run %d: no calibration for v%d, harmonic left uncalibrated", run, harmonic))
	missingCalibrations.WithLabelValues(fmt.Sprint(harmonic)).Inc()
	return nil, nil
}
