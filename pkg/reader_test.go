package qvectors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collisionLines(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `{"global_index": %d, "run_number": %d, "centrality": [1, 2, 3, 4], "tracks": []}`+"\n", i, testRun)
	}
	return sb.String()
}

func readAll(t *testing.T, r *CollisionReader) []int64 {
	t.Helper()
	indices := make([]int64, 0)
	for {
		collision, err := r.Next()
		if errors.Is(err, io.EOF) {
			return indices
		}
		require.NoError(t, err)
		indices = append(indices, collision.GlobalIndex)
	}
}

func TestCollisionReader(t *testing.T) {
	tests := []struct {
		name      string
		skip      int
		maxEvents int
		want      []int64
	}{
		{"all", 0, 100, []int64{0, 1, 2, 3, 4}},
		{"skip", 2, 100, []int64{2, 3, 4}},
		{"max", 0, 3, []int64{0, 1, 2}},
		{"skip and max", 1, 3, []int64{1, 2}},
		{"none", 0, 0, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCollisionReader(strings.NewReader(collisionLines(5)), tt.skip, tt.maxEvents)
			assert.Equal(t, tt.want, readAll(t, r))
		})
	}
}

func TestCollisionReaderDecodesDetectors(t *testing.T) {
	line := `{"global_index": 3, "run_number": 10, "timestamp": 99, "centrality": [5, 6, 7, 8],` +
		`"ft0": {"a": [{"ch": 1, "amp": 12.5}], "c": []},` +
		`"tracks": [{"global_index": 4, "pt": 1.5, "eta": -0.3, "phi": 2, "quality": {"its_ncls": true, "dca_z": true}}]}`

	collision, err := NewCollisionReader(strings.NewReader(line+"\n\n"), 0, 10).Next()
	require.NoError(t, err)

	assert.Equal(t, 10, collision.RunNumber)
	assert.Equal(t, float32(7), collision.Centrality[CentFT0C])
	require.NotNil(t, collision.FT0)
	assert.Equal(t, []ChannelSignal{{Channel: 1, Amplitude: 12.5}}, collision.FT0.A)
	assert.Nil(t, collision.FV0)
	require.Len(t, collision.Tracks, 1)
	assert.True(t, collision.Tracks[0].Quality.DCAz)
	assert.False(t, collision.Tracks[0].Quality.Passed())
}

func TestCollisionReaderBadLine(t *testing.T) {
	r := NewCollisionReader(strings.NewReader("{not json}\n"), 0, 10)
	_, err := r.Next()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}
