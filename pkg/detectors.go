package qvectors

import (
	"fmt"
	"strings"
)

// DetectorFamily identifies a forward detector read out channel by channel.
type DetectorFamily int

const (
	FT0 DetectorFamily = iota
	FV0
)

const (
	FT0Channels = 208
	FV0Channels = 48
	// FT0-C channel ids are stored after the 96 A-side channels.
	FT0COffset = 96
)

func (d DetectorFamily) String() string {
	switch d {
	case FT0:
		return "FT0"
	case FV0:
		return "FV0"
	default:
		return "Unknown"
	}
}

// Channels returns the fixed channel count of the family.
func (d DetectorFamily) Channels() int {
	switch d {
	case FT0:
		return FT0Channels
	case FV0:
		return FV0Channels
	default:
		return 0
	}
}

var DetectorFamilies = []DetectorFamily{FT0, FV0}

// Subsystem is one of the six sources of a Q-vector. The order matches the
// sub-system axis of the calibration tables.
type Subsystem int

const (
	FT0C Subsystem = iota
	FT0A
	FT0M
	FV0A
	BPos
	BNeg
	NumSubsystems
)

var subsystemNames = [NumSubsystems]string{"FT0C", "FT0A", "FT0M", "FV0A", "BPos", "BNeg"}

func (s Subsystem) String() string {
	if s < 0 || s >= NumSubsystems {
		return "Unknown"
	}
	return subsystemNames[s]
}

type InputKind int

const (
	ChannelBased InputKind = iota
	TrackBased
)

// SubsystemDescriptor describes how the Q-vector of a sub-system is built.
// Channel-based sub-systems read one or more halves of a detector family.
type SubsystemDescriptor struct {
	ID     Subsystem
	Kind   InputKind
	Family DetectorFamily
	Sides  []DetectorSide
}

type DetectorSide int

const (
	SideFT0A DetectorSide = iota
	SideFT0C
	SideFV0
)

var Subsystems = [NumSubsystems]SubsystemDescriptor{
	FT0C: {ID: FT0C, Kind: ChannelBased, Family: FT0, Sides: []DetectorSide{SideFT0C}},
	FT0A: {ID: FT0A, Kind: ChannelBased, Family: FT0, Sides: []DetectorSide{SideFT0A}},
	FT0M: {ID: FT0M, Kind: ChannelBased, Family: FT0, Sides: []DetectorSide{SideFT0A, SideFT0C}},
	FV0A: {ID: FV0A, Kind: ChannelBased, Family: FV0, Sides: []DetectorSide{SideFV0}},
	BPos: {ID: BPos, Kind: TrackBased},
	BNeg: {ID: BNeg, Kind: TrackBased},
}

// SubsystemSet is a bitset of enabled sub-systems, fixed at configuration time.
type SubsystemSet uint8

const AllSubsystems SubsystemSet = 1<<NumSubsystems - 1

func NewSubsystemSet(subsystems ...Subsystem) SubsystemSet {
	var set SubsystemSet
	for _, s := range subsystems {
		set |= 1 << s
	}
	return set
}

func (set SubsystemSet) Has(s Subsystem) bool {
	return set&(1<<s) != 0
}

func (set SubsystemSet) List() []Subsystem {
	list := make([]Subsystem, 0, NumSubsystems)
	for s := FT0C; s < NumSubsystems; s++ {
		if set.Has(s) {
			list = append(list, s)
		}
	}
	return list
}

func (set SubsystemSet) String() string {
	names := make([]string, 0, NumSubsystems)
	for _, s := range set.List() {
		names = append(names, s.String())
	}
	return strings.Join(names, ",")
}

// ParseSubsystems converts configuration names (FT0C, FT0A, FT0M, FV0A, BPos,
// BNeg) into a set.
func ParseSubsystems(names []string) (SubsystemSet, error) {
	var set SubsystemSet
	for _, name := range names {
		found := false
		for s := FT0C; s < NumSubsystems; s++ {
			if strings.EqualFold(name, subsystemNames[s]) {
				set |= 1 << s
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown sub-system %q", name)
		}
	}
	return set, nil
}

// CentEstimator selects one of the four precomputed centrality percentiles.
type CentEstimator int

const (
	CentFT0M CentEstimator = iota
	CentFT0A
	CentFT0C
	CentFV0A
)

func (c CentEstimator) String() string {
	switch c {
	case CentFT0M:
		return "FT0M"
	case CentFT0A:
		return "FT0A"
	case CentFT0C:
		return "FT0C"
	case CentFV0A:
		return "FV0A"
	default:
		return "Unknown"
	}
}
