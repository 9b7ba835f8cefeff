package qvectors

import "math"

// AmplitudeEpsilon is the minimum summed weight for a Q-vector to be defined.
const AmplitudeEpsilon = 1e-8

// RawQVector holds the unnormalised sums of a sub-event.
type RawQVector struct {
	Re     float64
	Im     float64
	Weight float64
}

// Add merges two sums.
func (q RawQVector) Add(other RawQVector) RawQVector {
	return RawQVector{Re: q.Re + other.Re, Im: q.Im + other.Im, Weight: q.Weight + other.Weight}
}

// Normalized divides the sums by the weight. Weights not above
// AmplitudeEpsilon give an Unavailable vector.
func (q RawQVector) Normalized() QVector {
	if q.Weight > AmplitudeEpsilon {
		return DefinedVector(q.Re/q.Weight, q.Im/q.Weight)
	}
	return QVector{State: Unavailable}
}

// GainFactor returns the relative gain of a channel, 1 when the table does not
// cover it or holds a non-positive value.
func GainFactor(gains []float64, channel int) float64 {
	if channel < 0 || channel >= len(gains) || gains[channel] <= 0 {
		return 1
	}
	return gains[channel]
}

// SumQVector accumulates amplitude/gain * exp(i*n*phi) over the signals of one
// detector half. offset is added to every channel id before the gain and
// geometry lookups. Channels outside the family range are ignored.
func SumQVector(family DetectorFamily, signals []ChannelSignal, offset int,
	gains []float64, geometry GeometryProvider, harmonic int) RawQVector {
	var q RawQVector
	nChannels := family.Channels()
	n := float64(harmonic)
	for _, signal := range signals {
		channel := signal.Channel + offset
		if channel < 0 || channel >= nChannels {
			continue
		}
		ampl := float64(signal.Amplitude) / GainFactor(gains, channel)
		phi := geometry.AngleOf(family, channel)
		q.Re += ampl * math.Cos(n*phi)
		q.Im += ampl * math.Sin(n*phi)
		q.Weight += ampl
	}
	return q
}
