package qvectors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/slices"
)

// LocalPrefix selects a JSON conditions file instead of the database.
const LocalPrefix = "local://"

// CalibrationEntry is one stored row of a calibration table. Subsystem
// follows the Subsystem order and Bin is 1-based.
type CalibrationEntry struct {
	Harmonic  int `json:"harmonic" db:"Harmonic"`
	Subsystem int `json:"subsystem" db:"Subsystem"`
	Bin       int `json:"bin" db:"CentBin"`
	CorrectionConstants
}

// ConditionsEntry groups the objects valid for the runs [MinRun, MaxRun].
// Maps are keyed by detector family name.
type ConditionsEntry struct {
	MinRun      int                        `json:"min_run"`
	MaxRun      int                        `json:"max_run"`
	Alignment   map[string]FamilyAlignment `json:"alignment,omitempty"`
	Positions   map[string][]Position      `json:"positions,omitempty"`
	Gains       map[string][]float64       `json:"gains,omitempty"`
	Calibration []CalibrationEntry         `json:"calibration,omitempty"`
}

func (e *ConditionsEntry) validFor(run int) bool {
	return e.MinRun <= run && e.MaxRun >= run
}

// LocalConditions serves conditions from memory, usually read from a JSON
// file. When several entries are valid for a run the first one holding the
// requested object wins.
type LocalConditions struct {
	Entries []ConditionsEntry `json:"entries"`
}

func NewLocalConditions(entries []ConditionsEntry) *LocalConditions {
	return &LocalConditions{Entries: entries}
}

// LoadLocalConditions reads a conditions file. The local:// prefix is
// accepted and stripped.
func LoadLocalConditions(path string) (*LocalConditions, error) {
	filename := strings.TrimPrefix(path, LocalPrefix)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	conditions := &LocalConditions{}
	if err := json.Unmarshal(data, conditions); err != nil {
		return nil, fmt.Errorf("error parsing conditions file %q: %w", filename, err)
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Read %d conditions entries from %s", len(conditions.Entries), filename)
		logger.Info(message, "conditions")
	}
	return conditions, nil
}

func (l *LocalConditions) find(run int, has func(*ConditionsEntry) bool) (*ConditionsEntry, error) {
	i := slices.IndexFunc(l.Entries, func(e ConditionsEntry) bool {
		return e.validFor(run) && has(&e)
	})
	if i < 0 {
		return nil, ErrNotFound
	}
	return &l.Entries[i], nil
}

func (l *LocalConditions) Alignment(family DetectorFamily, run int) (FamilyAlignment, error) {
	entry, err := l.find(run, func(e *ConditionsEntry) bool {
		_, ok := e.Alignment[family.String()]
		return ok
	})
	if err != nil {
		return FamilyAlignment{}, err
	}
	return entry.Alignment[family.String()], nil
}

func (l *LocalConditions) ChannelPositions(family DetectorFamily, run int) ([]Position, error) {
	entry, err := l.find(run, func(e *ConditionsEntry) bool {
		return len(e.Positions[family.String()]) > 0
	})
	if err != nil {
		return nil, err
	}
	return entry.Positions[family.String()], nil
}

func (l *LocalConditions) RelativeGains(family DetectorFamily, run int) ([]float64, error) {
	entry, err := l.find(run, func(e *ConditionsEntry) bool {
		return len(e.Gains[family.String()]) > 0
	})
	if err != nil {
		return nil, err
	}
	return entry.Gains[family.String()], nil
}

func (l *LocalConditions) CalibrationTable(harmonic int, run int) (*CalibrationTable, error) {
	hasHarmonic := func(c CalibrationEntry) bool { return c.Harmonic == harmonic }
	entry, err := l.find(run, func(e *ConditionsEntry) bool {
		return slices.ContainsFunc(e.Calibration, hasHarmonic)
	})
	if err != nil {
		return nil, err
	}
	return buildCalibrationTable(harmonic, entry.Calibration)
}

// buildCalibrationTable fills a table from the rows of one harmonic. Bins
// without a row keep IdentityCorrection.
func buildCalibrationTable(harmonic int, rows []CalibrationEntry) (*CalibrationTable, error) {
	table := NewCalibrationTable(harmonic)
	found := 0
	for _, row := range rows {
		if row.Harmonic != harmonic {
			continue
		}
		if err := table.Set(Subsystem(row.Subsystem), row.Bin, row.CorrectionConstants); err != nil {
			return nil, fmt.Errorf("calibration v%d: %w", harmonic, err)
		}
		found++
	}
	if found == 0 {
		return nil, ErrNotFound
	}
	return table, nil
}
