package qvectors

// Collision is the input record of one collision. Centralities are given in
// CentEstimator order (FT0M, FT0A, FT0C, FV0A). FT0 and FV0 are nil when the
// detector has no data for the collision.
type Collision struct {
	GlobalIndex int64       `json:"global_index"`
	RunNumber   int         `json:"run_number"`
	Timestamp   uint64      `json:"timestamp"`
	Centrality  [4]float32  `json:"centrality"`
	FT0         *FT0Signals `json:"ft0,omitempty"`
	FV0         *FV0Signals `json:"fv0,omitempty"`
	Tracks      []Track     `json:"tracks"`
}

type ChannelSignal struct {
	Channel   int     `json:"ch"`
	Amplitude float32 `json:"amp"`
}

// FT0Signals holds the A and C side channels. C side channel ids start at 0;
// they are shifted by FT0COffset when looking up gains and geometry.
type FT0Signals struct {
	A []ChannelSignal `json:"a"`
	C []ChannelSignal `json:"c"`
}

type FV0Signals struct {
	Channels []ChannelSignal `json:"channels"`
}

type Track struct {
	GlobalIndex int64        `json:"global_index"`
	Pt          float32      `json:"pt"`
	Eta         float32      `json:"eta"`
	Phi         float32      `json:"phi"`
	Quality     TrackQuality `json:"quality"`
}

// TrackQuality carries the outcome of the standard track-quality checks.
type TrackQuality struct {
	ITSNCls                bool `json:"its_ncls"`
	ITSChi2NDF             bool `json:"its_chi2ndf"`
	ITSHits                bool `json:"its_hits"`
	TPCCrossedRowsOverNCls bool `json:"tpc_crossed_rows_over_ncls"`
	TPCChi2NDF             bool `json:"tpc_chi2ndf"`
	DCAxy                  bool `json:"dca_xy"`
	DCAz                   bool `json:"dca_z"`
}

func (q TrackQuality) Passed() bool {
	return q.ITSNCls && q.ITSChi2NDF && q.ITSHits &&
		q.TPCCrossedRowsOverNCls && q.TPCChi2NDF &&
		q.DCAxy && q.DCAz
}

// VectorState tells whether a Q-vector carries a measurement.
type VectorState uint8

const (
	// Defined vectors hold real components.
	Defined VectorState = iota
	// Unavailable: the sub-system was requested but collected no signal.
	Unavailable
	// NotRequested: the sub-system is disabled or its detector is absent.
	NotRequested
)

func (s VectorState) String() string {
	switch s {
	case Defined:
		return "Defined"
	case Unavailable:
		return "Unavailable"
	case NotRequested:
		return "NotRequested"
	default:
		return "Unknown"
	}
}

// Sentinel component values written for undefined vectors.
const (
	SentinelUnavailable  = 999.0
	SentinelNotRequested = -999.0
)

type QVector struct {
	State VectorState
	Re    float64
	Im    float64
}

func DefinedVector(re, im float64) QVector {
	return QVector{State: Defined, Re: re, Im: im}
}

func (q QVector) IsDefined() bool {
	return q.State == Defined
}

// Components returns the serialized real and imaginary parts, replacing
// undefined vectors by their sentinel.
func (q QVector) Components() (float32, float32) {
	switch q.State {
	case Defined:
		return float32(q.Re), float32(q.Im)
	case Unavailable:
		return SentinelUnavailable, SentinelUnavailable
	default:
		return SentinelNotRequested, SentinelNotRequested
	}
}

// Stage indexes the steps of the correction chain.
type Stage int

const (
	StageRaw Stage = iota
	StageRecentered
	StageTwisted
	StageRescaled
	NumStages
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageRecentered:
		return "recentered"
	case StageTwisted:
		return "twisted"
	case StageRescaled:
		return "rescaled"
	default:
		return "unknown"
	}
}

type Stages [NumStages]QVector

// Corrected is the output of the full chain.
func (s Stages) Corrected() QVector {
	return s[StageRescaled]
}

// SubEvent is the result for one sub-system and harmonic. Amplitude is the
// sum of gain-corrected amplitudes for detector sub-systems and the number of
// contributing tracks for track sub-systems.
type SubEvent struct {
	Stages    Stages
	Amplitude float64
	Labels    []int64
}

func (s SubEvent) Corrected() QVector {
	return s.Stages.Corrected()
}

func (s SubEvent) NTracks() int {
	return len(s.Labels)
}

type HarmonicRecord struct {
	Harmonic   int
	Calibrated bool
	SubEvents  [NumSubsystems]SubEvent
}

type EventRecord struct {
	GlobalIndex  int64
	RunNumber    int
	Timestamp    uint64
	Centrality   float32
	IsCalibrated bool
	Enabled      SubsystemSet
	Harmonics    []HarmonicRecord
}

// Harmonic returns the record of harmonic n, or nil if n was not computed.
func (e *EventRecord) Harmonic(n int) *HarmonicRecord {
	for i := range e.Harmonics {
		if e.Harmonics[i].Harmonic == n {
			return &e.Harmonics[i]
		}
	}
	return nil
}
