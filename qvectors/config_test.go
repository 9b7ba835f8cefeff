package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qvectors "github.com/next-exp/qvectors_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
	return filename
}

func TestLoadConfigurationDefaults(t *testing.T) {
	filename := writeConfig(t, `{"file_in": "collisions.jsonl", "file_out": "qvectors.h5"}`)

	config, err := LoadConfiguration(filename)
	require.NoError(t, err)

	defaults := qvectors.DefaultConfiguration()
	assert.Equal(t, "collisions.jsonl", config.FileIn)
	assert.Equal(t, defaults.Harmonics, config.Harmonics)
	assert.Equal(t, defaults.Subsystems, config.Subsystems)
	assert.Equal(t, int(qvectors.CentFT0C), config.CentEstimator)
	assert.Equal(t, 1, config.NumWorkers)
	assert.True(t, config.WriteData)
}

func TestLoadConfigurationOverrides(t *testing.T) {
	filename := writeConfig(t, `{
		"file_in": "in.jsonl",
		"file_out": "out.h5",
		"conditions": "local://conditions.json",
		"harmonics": [2, 3, 4],
		"subsystems": ["FT0C", "BPos"],
		"num_workers": 8
	}`)
	t.Setenv("QVEC_PASS", "secret")
	t.Setenv("QVEC_NUMWORKERS", "2")

	config, err := LoadConfiguration(filename)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 4}, config.Harmonics)
	assert.Equal(t, []string{"FT0C", "BPos"}, config.Subsystems)
	assert.Equal(t, "local://conditions.json", config.Conditions)
	assert.Equal(t, "secret", config.Passwd)
	assert.Equal(t, 2, config.NumWorkers)
}

func TestLoadConfigurationInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing input", `{"file_out": "out.h5"}`},
		{"missing output", `{"file_in": "in.jsonl", "file_out": ""}`},
		{"estimator", `{"file_in": "in.jsonl", "file_out": "out.h5", "cent_estimator": 4}`},
		{"pt window", `{"file_in": "in.jsonl", "file_out": "out.h5", "min_pt": 3, "max_pt": 1}`},
		{"sub-system", `{"file_in": "in.jsonl", "file_out": "out.h5", "subsystems": ["ZDC"]}`},
		{"harmonics", `{"file_in": "in.jsonl", "file_out": "out.h5", "harmonics": []}`},
		{"compression", `{"file_in": "in.jsonl", "file_out": "out.h5", "compression_level": 12}`},
		{"syntax", `{"file_in": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigurationNoOutputWhenNotWriting(t *testing.T) {
	filename := writeConfig(t, `{"file_in": "in.jsonl", "file_out": "", "write_data": false}`)

	_, err := LoadConfiguration(filename)
	assert.NoError(t, err)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoggerFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := newLogger(&stdout, &stderr)

	l.Info("Reading configuration file", "main")
	l.Error("something failed")

	line := stdout.String()
	assert.True(t, strings.HasPrefix(line, "["))
	assert.Contains(t, line, "[main] Reading configuration file\n")
	assert.Contains(t, stderr.String(), `"msg":"something failed"`)
}
