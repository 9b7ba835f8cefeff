package qvectors

import (
	"fmt"
)

type AssemblerState int

const (
	Idle AssemblerState = iota
	RunCacheValid
	EventComputed
	Emitted
)

func (s AssemblerState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case RunCacheValid:
		return "RunCacheValid"
	case EventComputed:
		return "EventComputed"
	case Emitted:
		return "Emitted"
	default:
		return "Unknown"
	}
}

type AssemblerOptions struct {
	Harmonics []int
	Enabled   SubsystemSet
	Estimator CentEstimator
	Cuts      TrackCuts
}

// Assembler builds the event record of each collision. It is not safe for
// concurrent use; parallel workers each own one and share the RunCache.
type Assembler struct {
	cache      *RunCache
	options    AssemblerOptions
	state      AssemblerState
	conditions *RunConditions
}

func NewAssembler(cache *RunCache, options AssemblerOptions) *Assembler {
	return &Assembler{cache: cache, options: options, state: Idle}
}

func (a *Assembler) State() AssemblerState {
	return a.state
}

// Process computes the record of one collision. Errors are fatal: they come
// from a failed conditions reload.
func (a *Assembler) Process(collision *Collision) (EventRecord, error) {
	if a.state == EventComputed {
		return EventRecord{}, fmt.Errorf("event %d: previous record not emitted", collision.GlobalIndex)
	}
	if a.conditions == nil || a.conditions.Run != collision.RunNumber {
		a.state = Idle
		conditions, err := a.cache.Get(collision.RunNumber)
		if err != nil {
			a.conditions = nil
			return EventRecord{}, err
		}
		a.conditions = conditions
	}
	a.state = RunCacheValid

	record := a.compute(collision)
	a.state = EventComputed
	return record, nil
}

// Emitted marks the last record as handed to the output.
func (a *Assembler) Emitted() {
	if a.state == EventComputed {
		a.state = Emitted
	}
}

func (a *Assembler) compute(collision *Collision) EventRecord {
	cent := collision.Centrality[a.options.Estimator]
	bin, centOK := CentralityBin(cent)
	if !centOK {
		cent = UncalibratedCentrality
	}

	record := EventRecord{
		GlobalIndex:  collision.GlobalIndex,
		RunNumber:    collision.RunNumber,
		Timestamp:    collision.Timestamp,
		Centrality:   cent,
		IsCalibrated: centOK && a.conditions.HasCalibration(),
		Enabled:      a.options.Enabled,
		Harmonics:    make([]HarmonicRecord, 0, len(a.options.Harmonics)),
	}

	for _, harmonic := range a.options.Harmonics {
		table := a.conditions.Table(harmonic)
		calibrated := centOK && table != nil
		hr := HarmonicRecord{Harmonic: harmonic, Calibrated: calibrated}

		raw := a.rawSubEvents(collision, harmonic, &hr)
		for s := FT0C; s < NumSubsystems; s++ {
			if calibrated && raw[s].IsDefined() {
				hr.SubEvents[s].Stages = ApplyCorrections(raw[s], table.Constants(s, bin))
			} else {
				hr.SubEvents[s].Stages = UncorrectedStages(raw[s])
			}
		}
		record.Harmonics = append(record.Harmonics, hr)
	}

	eventsProcessed.Inc()
	if !record.IsCalibrated {
		eventsUncalibrated.Inc()
	}
	centrality.Observe(float64(cent))
	return record
}

// rawSubEvents fills the amplitudes and labels of hr and returns the raw
// vector of every sub-system.
func (a *Assembler) rawSubEvents(collision *Collision, harmonic int, hr *HarmonicRecord) [NumSubsystems]QVector {
	var raw [NumSubsystems]QVector
	enabled := a.options.Enabled

	var tracks *TrackSubEvents
	if enabled.Has(BPos) || enabled.Has(BNeg) {
		sub := BuildTrackSubEvents(collision.Tracks, a.options.Cuts, harmonic)
		tracks = &sub
		if harmonic == a.options.Harmonics[0] {
			selectedTracks.Add(float64(sub.Selected))
		}
	}

	for _, desc := range Subsystems {
		if !enabled.Has(desc.ID) {
			raw[desc.ID] = QVector{State: NotRequested}
			continue
		}
		switch desc.Kind {
		case ChannelBased:
			sum, present := a.channelSum(collision, desc, harmonic)
			if !present {
				raw[desc.ID] = QVector{State: NotRequested}
				continue
			}
			raw[desc.ID] = sum.Normalized()
			hr.SubEvents[desc.ID].Amplitude = sum.Weight
		case TrackBased:
			sum, labels := tracks.Pos, tracks.PosLabels
			if desc.ID == BNeg {
				sum, labels = tracks.Neg, tracks.NegLabels
			}
			raw[desc.ID] = sum.Normalized()
			hr.SubEvents[desc.ID].Amplitude = sum.Weight
			hr.SubEvents[desc.ID].Labels = labels
		}
	}
	return raw
}

// channelSum accumulates every detector half of a channel-based sub-system.
// present is false when the detector has no data for the collision.
func (a *Assembler) channelSum(collision *Collision, desc SubsystemDescriptor, harmonic int) (RawQVector, bool) {
	var sum RawQVector
	gains := a.conditions.Gains[desc.Family]
	geometry := a.conditions.Geometry
	for _, side := range desc.Sides {
		var signals []ChannelSignal
		offset := 0
		switch side {
		case SideFT0A:
			if collision.FT0 == nil {
				return RawQVector{}, false
			}
			signals = collision.FT0.A
		case SideFT0C:
			if collision.FT0 == nil {
				return RawQVector{}, false
			}
			signals = collision.FT0.C
			offset = FT0COffset
		case SideFV0:
			if collision.FV0 == nil {
				return RawQVector{}, false
			}
			signals = collision.FV0.Channels
		}
		sum = sum.Add(SumQVector(desc.Family, signals, offset, gains, geometry, harmonic))
	}
	return sum, true
}
