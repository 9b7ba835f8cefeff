package qvectors

import (
	"errors"
	"fmt"

	"gonum.org/v1/hdf5"
)

// Writer stores event records in an HDF5 file: /Run/events holds one row per
// collision, /QVectors/<sub-system> one row per collision and harmonic for
// each enabled sub-system, and /QVectors/trackLabels the tracks used by the
// barrel sub-events.
type Writer struct {
	File            *hdf5.File
	Filename        string
	RunGroup        *hdf5.Group
	QvecGroup       *hdf5.Group
	EventTable      *hdf5.Dataset
	SubsystemTables [NumSubsystems]*hdf5.Dataset
	LabelTable      *hdf5.Dataset
	Enabled         SubsystemSet
	EvtCounter      int
	rowCounters     [NumSubsystems]int
	labelCounter    int
}

func NewWriter(filename string, enabled SubsystemSet) (*Writer, error) {
	writer := &Writer{Filename: filename, Enabled: enabled}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	}

	var err error
	if writer.File, err = openFile(filename); err != nil {
		return nil, err
	}
	if writer.RunGroup, err = createGroup(writer.File, "Run"); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.QvecGroup, err = createGroup(writer.File, "QVectors"); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.EventTable, err = createTable(writer.RunGroup, "events", EventInfoHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	for _, s := range enabled.List() {
		if writer.SubsystemTables[s], err = createTable(writer.QvecGroup, s.String(), QVectorHDF5{}); err != nil {
			return nil, errors.Join(err, writer.Close())
		}
	}
	if enabled.Has(BPos) || enabled.Has(BNeg) {
		if writer.LabelTable, err = createTable(writer.QvecGroup, "trackLabels", TrackLabelHDF5{}); err != nil {
			return nil, errors.Join(err, writer.Close())
		}
	}
	return writer, nil
}

func eventRow(record *EventRecord) EventInfoHDF5 {
	return EventInfoHDF5{
		evt_number:    record.GlobalIndex,
		run_number:    int32(record.RunNumber),
		timestamp:     record.Timestamp,
		centrality:    record.Centrality,
		is_calibrated: boolToUint8(record.IsCalibrated),
	}
}

// subsystemRows converts one sub-system of the record, one row per harmonic.
// Undefined vectors are written as their sentinel values.
func subsystemRows(record *EventRecord, subsystem Subsystem) []QVectorHDF5 {
	rows := make([]QVectorHDF5, len(record.Harmonics))
	for i, hr := range record.Harmonics {
		sub := hr.SubEvents[subsystem]
		row := QVectorHDF5{
			evt_number:    record.GlobalIndex,
			harmonic:      int32(hr.Harmonic),
			is_calibrated: boolToUint8(hr.Calibrated),
			amplitude:     float32(sub.Amplitude),
			n_tracks:      int32(sub.NTracks()),
		}
		for stage, q := range sub.Stages {
			row.re[stage], row.im[stage] = q.Components()
		}
		rows[i] = row
	}
	return rows
}

func labelRows(record *EventRecord, enabled SubsystemSet) []TrackLabelHDF5 {
	rows := make([]TrackLabelHDF5, 0)
	for _, hr := range record.Harmonics {
		for _, s := range []Subsystem{BPos, BNeg} {
			if !enabled.Has(s) {
				continue
			}
			for _, track := range hr.SubEvents[s].Labels {
				rows = append(rows, TrackLabelHDF5{
					evt_number: record.GlobalIndex,
					harmonic:   int32(hr.Harmonic),
					subsystem:  int32(s),
					track:      track,
				})
			}
		}
	}
	return rows
}

func (w *Writer) WriteEvent(record *EventRecord) error {
	events := []EventInfoHDF5{eventRow(record)}
	if err := writeArrayToTable(w.EventTable, &events, w.EvtCounter); err != nil {
		return fmt.Errorf("event %d: %w", record.GlobalIndex, err)
	}

	for _, s := range w.Enabled.List() {
		rows := subsystemRows(record, s)
		if err := writeArrayToTable(w.SubsystemTables[s], &rows, w.rowCounters[s]); err != nil {
			return fmt.Errorf("event %d, %v: %w", record.GlobalIndex, s, err)
		}
		w.rowCounters[s] += len(rows)
	}

	if w.LabelTable != nil {
		labels := labelRows(record, w.Enabled)
		if err := writeArrayToTable(w.LabelTable, &labels, w.labelCounter); err != nil {
			return fmt.Errorf("event %d, track labels: %w", record.GlobalIndex, err)
		}
		w.labelCounter += len(labels)
	}

	w.EvtCounter++
	return nil
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "writer")
	}
	var errs []error

	if w.EventTable != nil {
		if err := w.EventTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing event table: %w", err))
		}
	}
	for s, table := range w.SubsystemTables {
		if table == nil {
			continue
		}
		if err := table.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %v table: %w", Subsystem(s), err))
		}
	}
	if w.LabelTable != nil {
		if err := w.LabelTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing track labels table: %w", err))
		}
	}
	if w.QvecGroup != nil {
		if err := w.QvecGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing QVectors group: %w", err))
		}
	}
	if w.RunGroup != nil {
		if err := w.RunGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing run group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
