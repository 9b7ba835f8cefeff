package qvectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignmentFromRows(t *testing.T) {
	rows := []AlignmentEntry{{Part: 1, X: -0.2, Y: 0.1}, {Part: 0, X: 0.3, Y: 0}}

	alignment, err := alignmentFromRows(rows)
	require.NoError(t, err)
	assert.Equal(t, FamilyAlignment{{X: 0.3}, {X: -0.2, Y: 0.1}}, alignment)

	_, err = alignmentFromRows(rows[:1])
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = alignmentFromRows([]AlignmentEntry{{Part: 2}})
	assert.Error(t, err)
}

func TestPositionsFromRows(t *testing.T) {
	rows := make([]ChannelPositionEntry, 0, FV0Channels)
	for c := FV0Channels - 1; c >= 0; c-- {
		rows = append(rows, ChannelPositionEntry{Channel: c, X: float64(c), Y: 1})
	}

	positions, err := positionsFromRows(FV0, rows)
	require.NoError(t, err)
	require.Len(t, positions, FV0Channels)
	assert.Equal(t, Position{X: 5, Y: 1}, positions[5])

	_, err = positionsFromRows(FV0, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = positionsFromRows(FV0, rows[1:])
	assert.Error(t, err)

	_, err = positionsFromRows(FV0, []ChannelPositionEntry{{Channel: FV0Channels}})
	assert.Error(t, err)
}

func TestGainsFromRows(t *testing.T) {
	gains, err := gainsFromRows(FT0, []GainEntry{{Channel: 200, Gain: 0.8}})
	require.NoError(t, err)
	require.Len(t, gains, FT0Channels)
	assert.Equal(t, 0.8, gains[200])
	assert.Equal(t, 1.0, gains[0])

	_, err = gainsFromRows(FT0, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gainsFromRows(FT0, []GainEntry{{Channel: -1}})
	assert.Error(t, err)
}
