package report

import (
	"math"

	"github.com/shopspring/decimal"
)

var fullTurn = decimal.NewFromInt(360)

// Point is a position on the unit circle. Angle 0 is twelve o'clock and
// angles grow clockwise, with y pointing down as in SVG.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ArcSlice is one pie sector derived from a bucket.
type ArcSlice struct {
	Label         string  `json:"label"`
	StartAngleDeg float64 `json:"start_angle_deg"`
	EndAngleDeg   float64 `json:"end_angle_deg"`
	ColorIndex    int     `json:"color_index"`
	// FullCircle marks a slice covering the whole circle. Renderers must draw
	// it as a closed circle: a 0-360 arc command is degenerate.
	FullCircle bool  `json:"full_circle"`
	LargeArc   bool  `json:"large_arc"`
	Start      Point `json:"start"`
	End        Point `json:"end"`
}

// EncodeArcs turns ordered buckets into contiguous slices. Boundaries come
// from the cumulative bucket amounts over their total, never from rounded
// percentages, and the last slice always ends at exactly 360 degrees.
func EncodeArcs(buckets []Bucket) []ArcSlice {
	total := Total(buckets)
	if len(buckets) == 0 || total.Sign() <= 0 {
		return []ArcSlice{}
	}

	// bounds[i] is the start of slice i and the end of slice i-1
	bounds := make([]float64, len(buckets)+1)
	cum := decimal.Zero
	for i, b := range buckets {
		cum = cum.Add(b.Amount)
		bounds[i+1] = fullTurn.Mul(cum).DivRound(total, 12).InexactFloat64()
	}
	bounds[0] = 0
	bounds[len(buckets)] = 360

	slices := make([]ArcSlice, len(buckets))
	for i, b := range buckets {
		start, end := bounds[i], bounds[i+1]
		if end < start {
			end = start
		}
		full := start == 0 && end == 360
		slices[i] = ArcSlice{
			Label:         b.Label,
			StartAngleDeg: start,
			EndAngleDeg:   end,
			ColorIndex:    b.Ordinal,
			FullCircle:    full,
			LargeArc:      end-start > 180,
			Start:         pointAt(start),
			End:           pointAt(end),
		}
	}
	return slices
}

func pointAt(deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{X: math.Sin(rad), Y: -math.Cos(rad)}
}

// Palette is an ordered list of colours, cycled when there are more slices
// than colours.
type Palette []string

// Color returns the colour for a slice colour index.
func (p Palette) Color(index int) string {
	if len(p) == 0 {
		return ""
	}
	i := index % len(p)
	if i < 0 {
		i += len(p)
	}
	return p[i]
}

var (
	IncomePalette     = Palette{"#4ade80", "#84cc16", "#06b6d4", "#fde047", "#818cf8", "#f472b6", "#f59e42", "#2dd4bf"}
	ExpensePalette    = Palette{"#fca5a5", "#f87171", "#ef4444", "#eab308", "#a3e635", "#3b82f6", "#06b6d4", "#14b8a6"}
	InvestmentPalette = Palette{"#1e40af", "#6366f1", "#2563eb", "#facc15", "#f472b6", "#f59e42"}
)
