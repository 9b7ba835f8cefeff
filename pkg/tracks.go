package qvectors

import "math"

// Pseudorapidity window of the barrel sub-events. Tracks inside the gap
// |eta| < EtaGap or beyond EtaMax are not used.
const (
	EtaGap = 0.1
	EtaMax = 0.8
)

type TrackCuts struct {
	MinPt float32
	MaxPt float32
}

// Select applies the transverse-momentum window and the quality flags.
func (c TrackCuts) Select(track Track) bool {
	if track.Pt < c.MinPt || track.Pt > c.MaxPt {
		return false
	}
	return track.Quality.Passed()
}

type TrackSubEvents struct {
	Pos       RawQVector
	Neg       RawQVector
	PosLabels []int64
	NegLabels []int64
	Selected  int
}

// BuildTrackSubEvents splits the selected tracks into the positive and
// negative pseudorapidity sub-events. Each sub-event sums pt*cos(n*phi) and
// pt*sin(n*phi) and counts its members, so normalising gives the mean over
// tracks. Labels keep the traversal order of the input.
func BuildTrackSubEvents(tracks []Track, cuts TrackCuts, harmonic int) TrackSubEvents {
	var sub TrackSubEvents
	n := float64(harmonic)
	for _, track := range tracks {
		if !cuts.Select(track) {
			continue
		}
		sub.Selected++
		absEta := math.Abs(float64(track.Eta))
		if absEta < EtaGap || absEta > EtaMax {
			continue
		}
		pt := float64(track.Pt)
		phi := float64(track.Phi)
		contribution := RawQVector{
			Re:     pt * math.Cos(n*phi),
			Im:     pt * math.Sin(n*phi),
			Weight: 1,
		}
		if track.Eta > 0 {
			sub.Pos = sub.Pos.Add(contribution)
			sub.PosLabels = append(sub.PosLabels, track.GlobalIndex)
		} else {
			sub.Neg = sub.Neg.Add(contribution)
			sub.NegLabels = append(sub.NegLabels, track.GlobalIndex)
		}
	}
	return sub
}
