package qvectors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(t *testing.T, entries []ConditionsEntry, enabled SubsystemSet) *Assembler {
	t.Helper()
	harmonics := []int{2, 3}
	cache := NewRunCache(NewLocalConditions(entries), harmonics)
	return NewAssembler(cache, AssemblerOptions{
		Harmonics: harmonics,
		Enabled:   enabled,
		Estimator: CentFT0C,
		Cuts:      defaultCuts,
	})
}

func calibratedEntry() ConditionsEntry {
	entry := testEntry(testRun)
	entry.Calibration = calibrationRows(2, 42, testConstants)
	return entry
}

// testCollision has one FT0-A, one FT0-C and one FV0 channel fired and two
// barrel tracks.
func testCollision(cent float32) *Collision {
	return &Collision{
		GlobalIndex: 7,
		RunNumber:   testRun,
		Timestamp:   1700000000000,
		Centrality:  [4]float32{cent, cent, cent, cent},
		FT0: &FT0Signals{
			A: []ChannelSignal{{Channel: 0, Amplitude: 100}},
			C: []ChannelSignal{{Channel: 4, Amplitude: 50}},
		},
		FV0: &FV0Signals{Channels: []ChannelSignal{{Channel: 12, Amplitude: 30}}},
		Tracks: []Track{
			goodTrack(1, 1, 0.5, 0.3),
			goodTrack(2, 2, -0.5, 1.2),
		},
	}
}

func process(t *testing.T, a *Assembler, collision *Collision) EventRecord {
	t.Helper()
	record, err := a.Process(collision)
	require.NoError(t, err)
	a.Emitted()
	return record
}

func TestAssemblerCalibratedEvent(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)

	record := process(t, a, testCollision(41.5))

	assert.True(t, record.IsCalibrated)
	assert.Equal(t, float32(41.5), record.Centrality)
	require.Len(t, record.Harmonics, 2)

	v2 := record.Harmonic(2)
	require.NotNil(t, v2)
	assert.True(t, v2.Calibrated)

	phi := 2 * uniformAngle(FT0, FT0COffset+4)
	ft0c := v2.SubEvents[FT0C]
	assertVector(t, math.Cos(phi), math.Sin(phi), ft0c.Stages[StageRaw])
	assertVector(t, math.Cos(phi)-0.01, math.Sin(phi)+0.02, ft0c.Corrected())
	assert.InDelta(t, 50, ft0c.Amplitude, 1e-9)

	v3 := record.Harmonic(3)
	require.NotNil(t, v3)
	assert.True(t, v3.Calibrated)
}

func TestAssemblerFT0MIsUnionOfSides(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, NewSubsystemSet(FT0M))

	record := process(t, a, testCollision(90))

	phiA := 2 * uniformAngle(FT0, 0)
	phiC := 2 * uniformAngle(FT0, FT0COffset+4)
	wantRe := (100*math.Cos(phiA) + 50*math.Cos(phiC)) / 150
	wantIm := (100*math.Sin(phiA) + 50*math.Sin(phiC)) / 150

	v2 := record.Harmonic(2)
	assertVector(t, wantRe, wantIm, v2.SubEvents[FT0M].Corrected())
	assert.InDelta(t, 150, v2.SubEvents[FT0M].Amplitude, 1e-9)
	assert.Equal(t, NotRequested, v2.SubEvents[FT0A].Corrected().State)
	assert.Equal(t, NotRequested, v2.SubEvents[FT0C].Corrected().State)
}

func TestAssemblerCentralityOutsideWindow(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)

	record := process(t, a, testCollision(85))

	assert.False(t, record.IsCalibrated)
	assert.Equal(t, float32(UncalibratedCentrality), record.Centrality)
	for _, hr := range record.Harmonics {
		assert.False(t, hr.Calibrated)
		for _, sub := range hr.SubEvents {
			for _, q := range sub.Stages {
				assert.Equal(t, sub.Stages[StageRaw], q)
			}
		}
	}
}

func TestAssemblerNoCalibrationForRun(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{testEntry(testRun)}, AllSubsystems)

	record := process(t, a, testCollision(41.5))

	assert.False(t, record.IsCalibrated)
	assert.Equal(t, float32(41.5), record.Centrality)
	v2 := record.Harmonic(2)
	assert.False(t, v2.Calibrated)
	assert.Equal(t, v2.SubEvents[FT0C].Stages[StageRaw], v2.SubEvents[FT0C].Corrected())
}

func TestAssemblerSentinels(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, NewSubsystemSet(FT0C, FT0A, FV0A, BPos, BNeg))

	collision := testCollision(41.5)
	collision.FV0 = nil
	collision.FT0.A = nil
	collision.Tracks = collision.Tracks[:1]

	record := process(t, a, collision)
	v2 := record.Harmonic(2)

	tests := []struct {
		subsystem Subsystem
		state     VectorState
		sentinel  float32
	}{
		{FT0A, Unavailable, SentinelUnavailable},
		{FT0M, NotRequested, SentinelNotRequested},
		{FV0A, NotRequested, SentinelNotRequested},
		{BNeg, Unavailable, SentinelUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.subsystem.String(), func(t *testing.T) {
			for _, q := range v2.SubEvents[tt.subsystem].Stages {
				assert.Equal(t, tt.state, q.State)
				re, im := q.Components()
				assert.Equal(t, tt.sentinel, re)
				assert.Equal(t, tt.sentinel, im)
			}
		})
	}

	assert.True(t, v2.SubEvents[FT0C].Corrected().IsDefined())
	assert.True(t, v2.SubEvents[BPos].Corrected().IsDefined())
	assert.Equal(t, []int64{1}, v2.SubEvents[BPos].Labels)
	assert.Equal(t, 0, v2.SubEvents[BNeg].NTracks())
}

func TestAssemblerMissingFT0(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)

	collision := testCollision(10)
	collision.FT0 = nil
	record := process(t, a, collision)

	for _, s := range []Subsystem{FT0A, FT0C, FT0M} {
		assert.Equal(t, NotRequested, record.Harmonic(2).SubEvents[s].Corrected().State, s.String())
	}
	assert.True(t, record.Harmonic(2).SubEvents[FV0A].Corrected().IsDefined())
}

func TestAssemblerStates(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)
	assert.Equal(t, Idle, a.State())

	_, err := a.Process(testCollision(20))
	require.NoError(t, err)
	assert.Equal(t, EventComputed, a.State())

	_, err = a.Process(testCollision(20))
	assert.Error(t, err)

	a.Emitted()
	assert.Equal(t, Emitted, a.State())

	_, err = a.Process(testCollision(30))
	require.NoError(t, err)
	assert.Equal(t, EventComputed, a.State())
}

func TestAssemblerRunWithoutAlignment(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)

	collision := testCollision(20)
	collision.RunNumber = testRun + 1
	_, err := a.Process(collision)

	var missing *ErrMissingAlignment
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, testRun+1, missing.Run)
	assert.Equal(t, Idle, a.State())
}

func TestAssemblerIsPure(t *testing.T) {
	a := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)
	b := newTestAssembler(t, []ConditionsEntry{calibratedEntry()}, AllSubsystems)

	first := process(t, a, testCollision(41.5))
	process(t, a, testCollision(63))
	again := process(t, a, testCollision(41.5))
	other := process(t, b, testCollision(41.5))

	assert.Equal(t, first, again)
	assert.Equal(t, first, other)
}
