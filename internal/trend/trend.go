// Package trend fits an ordinary least-squares line through price points.
package trend

import "math"

// epsilon guards the least-squares denominator; below it the x values are
// treated as identical and no line is produced.
const epsilon = 1e-10

// Point is one observation. X is a Unix timestamp in milliseconds for
// price history, but any numeric axis works.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is y = Slope*x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Endpoints returns the line evaluated at the first and last X of points,
// the segment a chart draws. ok is false for an empty slice.
func (l Line) Endpoints(points []Point) (start, end Point, ok bool) {
	if len(points) == 0 {
		return Point{}, Point{}, false
	}
	first, last := points[0].X, points[len(points)-1].X
	return Point{X: first, Y: l.At(first)}, Point{X: last, Y: l.At(last)}, true
}

// Fit returns the least-squares line through points. It reports false for
// fewer than two points or when every x is (numerically) the same.
//
// The sums are taken on x shifted by the first x so that millisecond
// timestamps do not swamp the squared terms; the intercept is moved back
// afterwards.
func Fit(points []Point) (Line, bool) {
	n := len(points)
	if n < 2 {
		return Line{}, false
	}

	x0 := points[0].X
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := p.X - x0
		sumX += x
		sumY += p.Y
		sumXY += x * p.Y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if math.Abs(denom) < epsilon {
		return Line{}, false
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return Line{Slope: slope, Intercept: intercept - slope*x0}, true
}
