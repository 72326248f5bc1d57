package mathutil

import (
	"fmt"
	"math"
	"sort"
)

// PiecewisePoint is a breakpoint of a piecewise-linear function.
type PiecewisePoint struct {
	X float64
	Y float64
}

// PiecewiseLinear is a piecewise-linear function defined by breakpoints
// sorted by X. Evaluation outside the breakpoint range extrapolates along
// the first or last piece.
type PiecewiseLinear struct {
	points []PiecewisePoint
}

// NewPiecewiseLinear builds a function from the given breakpoints. The
// points are copied and sorted by X. At least two points are required and
// duplicate X values are rejected.
func NewPiecewiseLinear(points []PiecewisePoint) (*PiecewiseLinear, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("piecewise-linear function needs at least 2 points, got %d", len(points))
	}
	sorted := make([]PiecewisePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].X == sorted[i-1].X {
			return nil, fmt.Errorf("duplicate breakpoint x=%g", sorted[i].X)
		}
	}
	return &PiecewiseLinear{points: sorted}, nil
}

// Eval evaluates the function at x.
func (p *PiecewiseLinear) Eval(x float64) float64 {
	pts := p.points
	if x <= pts[0].X {
		return segmentEval(pts[0], pts[1], x)
	}
	if x >= pts[len(pts)-1].X {
		return segmentEval(pts[len(pts)-2], pts[len(pts)-1], x)
	}
	// Binary search for the piece containing x.
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	return segmentEval(pts[i-1], pts[i], x)
}

func segmentEval(a, b PiecewisePoint, x float64) float64 {
	slope := (b.Y - a.Y) / (b.X - a.X)
	return a.Y + slope*(x-a.X)
}

// Secant describes one linear piece of a convex function approximation:
// y >= Slope*x + Intercept over [X0, X1].
type Secant struct {
	X0, X1    float64
	Slope     float64
	Intercept float64
}

// QuadraticSecants discretizes y = c*x^2 over [0, xMax] into n secant
// pieces. Because x^2 is convex each secant lies above the curve on its
// interval, so the pieces form a valid outer approximation for
// "y at least c*x^2" constraints.
func QuadraticSecants(c, xMax float64, n int) []Secant {
	if n < 1 {
		n = 1
	}
	if xMax <= 0 {
		return nil
	}
	secants := make([]Secant, 0, n)
	step := xMax / float64(n)
	for i := 0; i < n; i++ {
		x0 := float64(i) * step
		x1 := float64(i+1) * step
		y0 := c * x0 * x0
		y1 := c * x1 * x1
		slope := (y1 - y0) / (x1 - x0)
		secants = append(secants, Secant{
			X0:        x0,
			X1:        x1,
			Slope:     slope,
			Intercept: y0 - slope*x0,
		})
	}
	return secants
}

// SolveQuadratic returns the real roots of a*x^2 + b*x + c = 0 in ascending
// order. A degenerate (a == 0) equation falls back to the linear solution.
func SolveQuadratic(a, b, c float64) []float64 {
	if a == 0 {
		if b == 0 {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	switch {
	case disc < 0:
		return nil
	case disc == 0:
		return []float64{-b / (2 * a)}
	default:
		sq := math.Sqrt(disc)
		r1 := (-b - sq) / (2 * a)
		r2 := (-b + sq) / (2 * a)
		if r1 > r2 {
			r1, r2 = r2, r1
		}
		return []float64{r1, r2}
	}
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance returns the population variance of xs, or 0 for fewer than two
// values.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}
