package qvectors

import (
	"fmt"
	"math"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FamilyAlignment holds the offsets of the two halves of a detector family:
// A and C sides for FT0, left and right halves for FV0.
type FamilyAlignment [2]Offset

// GeometryProvider maps a channel to its azimuthal angle.
type GeometryProvider interface {
	AngleOf(family DetectorFamily, channel int) float64
}

// FV0 cells read out by the left half of the detector.
var fv0LeftCells = map[int]bool{
	0: true, 1: true, 2: true, 3: true,
	8: true, 9: true, 10: true, 11: true,
	16: true, 17: true, 18: true, 19: true,
	24: true, 25: true, 26: true, 27: true,
	32: true, 33: true, 34: true, 35: true,
	40: true, 41: true, 42: true, 43: true,
}

type Geometry struct {
	positions [2][]Position
	alignment [2]FamilyAlignment
}

func NewGeometry(ft0 []Position, fv0 []Position, ft0Align FamilyAlignment, fv0Align FamilyAlignment) (*Geometry, error) {
	if len(ft0) != FT0Channels {
		return nil, fmt.Errorf("FT0 geometry has %d channels, expected %d", len(ft0), FT0Channels)
	}
	if len(fv0) != FV0Channels {
		return nil, fmt.Errorf("FV0 geometry has %d channels, expected %d", len(fv0), FV0Channels)
	}
	g := &Geometry{}
	g.positions[FT0] = ft0
	g.positions[FV0] = fv0
	g.alignment[FT0] = ft0Align
	g.alignment[FV0] = fv0Align
	return g, nil
}

// AngleOf returns atan2(y + offY, x + offX) of the channel centre, using the
// offset of the half the channel belongs to. The channel must be valid for the
// family.
func (g *Geometry) AngleOf(family DetectorFamily, channel int) float64 {
	pos := g.positions[family][channel]
	offset := g.alignment[family][g.half(family, channel)]
	return math.Atan2(pos.Y+offset.Y, pos.X+offset.X)
}

func (g *Geometry) half(family DetectorFamily, channel int) int {
	switch family {
	case FT0:
		if channel < FT0COffset {
			return 0
		}
		return 1
	default:
		if fv0LeftCells[channel] {
			return 0
		}
		return 1
	}
}
