package qvectors

import (
	"math"
	"sync/atomic"
)

const testRun = 544122

// uniformPositions places the channels of a family on the unit circle, channel
// c at azimuth 2*pi*c/N.
func uniformPositions(family DetectorFamily) []Position {
	n := family.Channels()
	positions := make([]Position, n)
	for c := range positions {
		phi := 2 * math.Pi * float64(c) / float64(n)
		positions[c] = Position{X: math.Cos(phi), Y: math.Sin(phi)}
	}
	return positions
}

func uniformAngle(family DetectorFamily, channel int) float64 {
	return math.Atan2(uniformPositions(family)[channel].Y, uniformPositions(family)[channel].X)
}

// testEntry returns geometry and alignment for runs [run, run] without gains
// or calibration.
func testEntry(run int) ConditionsEntry {
	return ConditionsEntry{
		MinRun: run,
		MaxRun: run,
		Alignment: map[string]FamilyAlignment{
			"FT0": {},
			"FV0": {},
		},
		Positions: map[string][]Position{
			"FT0": uniformPositions(FT0),
			"FV0": uniformPositions(FV0),
		},
	}
}

// calibrationRows returns one row per sub-system for the given bin.
func calibrationRows(harmonic int, bin int, c CorrectionConstants) []CalibrationEntry {
	rows := make([]CalibrationEntry, 0, NumSubsystems)
	for s := FT0C; s < NumSubsystems; s++ {
		rows = append(rows, CalibrationEntry{Harmonic: harmonic, Subsystem: int(s), Bin: bin, CorrectionConstants: c})
	}
	return rows
}

type fixedAngles map[int]float64

func (f fixedAngles) AngleOf(family DetectorFamily, channel int) float64 {
	return f[channel]
}

// countingProvider counts the alignment lookups, one per family and reload.
type countingProvider struct {
	ConditionsProvider
	alignmentCalls atomic.Int32
}

func (c *countingProvider) Alignment(family DetectorFamily, run int) (FamilyAlignment, error) {
	c.alignmentCalls.Add(1)
	return c.ConditionsProvider.Alignment(family, run)
}

func goodTrack(index int64, pt, eta, phi float32) Track {
	return Track{
		GlobalIndex: index,
		Pt:          pt,
		Eta:         eta,
		Phi:         phi,
		Quality: TrackQuality{
			ITSNCls:                true,
			ITSChi2NDF:             true,
			ITSHits:                true,
			TPCCrossedRowsOverNCls: true,
			TPCChi2NDF:             true,
			DCAxy:                  true,
			DCAz:                   true,
		},
	}
}
