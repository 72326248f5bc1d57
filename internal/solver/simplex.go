package solver

import (
	"math"
	"time"
)

// =============================================================================
// Native Simplex Back-End
// =============================================================================
//
// SimplexBackend implements Backend with a dense two-phase primal simplex.
// Bounded variables are shifted to the origin; finite upper bounds and
// two-sided constraints are expanded into standard-form rows. Bland's rule
// governs pivot selection, which prevents cycling and makes the pivot
// sequence (and therefore the reported solution) deterministic.
//
// Boolean variables are handled by branch-and-bound on top of the LP
// relaxation (see branchbound.go).
//
// The tableau is dense: memory is O(m*n) where m is the number of expanded
// rows and n the number of structural plus slack plus artificial columns.
// That is comfortably sufficient for capacity-planning networks, which stay
// in the hundreds of rows even with piecewise-linear pressure constraints.
// =============================================================================

const (
	pivotEps      = 1e-9
	feasEps       = 1e-7
	maxIterFactor = 200 // iteration cap = maxIterFactor * (rows + cols + 1)
)

type variable struct {
	lo, hi float64
	name   string
	isBool bool
}

type rowConstraint struct {
	lo, hi float64
	name   string
	coeffs map[VarID]float64
}

// SimplexBackend is the native LP/MIP back-end. Not safe for concurrent use.
type SimplexBackend struct {
	vars      []variable
	cons      []rowConstraint
	objective map[VarID]float64
	maximize  bool
	timeLimit time.Duration

	status Status
	values []float64
	objVal float64
}

// NewSimplexBackend creates an empty model.
func NewSimplexBackend() *SimplexBackend {
	return &SimplexBackend{
		objective: make(map[VarID]float64),
		timeLimit: 5 * time.Minute,
		status:    StatusNotSolved,
	}
}

// Name implements Backend.
func (b *SimplexBackend) Name() string { return "simplex" }

// MakeNumVar implements Backend.
func (b *SimplexBackend) MakeNumVar(lo, hi float64, name string) VarID {
	b.vars = append(b.vars, variable{lo: lo, hi: hi, name: name})
	return VarID(len(b.vars) - 1)
}

// MakeBoolVar implements Backend.
func (b *SimplexBackend) MakeBoolVar(name string) VarID {
	b.vars = append(b.vars, variable{lo: 0, hi: 1, name: name, isBool: true})
	return VarID(len(b.vars) - 1)
}

// MakeConstraint implements Backend.
func (b *SimplexBackend) MakeConstraint(lo, hi float64, name string) ConstraintID {
	b.cons = append(b.cons, rowConstraint{lo: lo, hi: hi, name: name, coeffs: make(map[VarID]float64)})
	return ConstraintID(len(b.cons) - 1)
}

// SetCoefficient implements Backend.
func (b *SimplexBackend) SetCoefficient(c ConstraintID, v VarID, coeff float64) {
	b.cons[c].coeffs[v] = coeff
}

// ObjectiveSetCoefficient implements Backend.
func (b *SimplexBackend) ObjectiveSetCoefficient(v VarID, coeff float64) {
	b.objective[v] = coeff
}

// ObjectiveMinimize implements Backend.
func (b *SimplexBackend) ObjectiveMinimize() { b.maximize = false }

// ObjectiveMaximize implements Backend.
func (b *SimplexBackend) ObjectiveMaximize() { b.maximize = true }

// SetTimeLimit implements Backend.
func (b *SimplexBackend) SetTimeLimit(d time.Duration) {
	if d > 0 {
		b.timeLimit = d
	}
}

// Value implements Backend.
func (b *SimplexBackend) Value(v VarID) float64 {
	if int(v) < len(b.values) {
		return b.values[v]
	}
	return 0
}

// ObjectiveValue implements Backend.
func (b *SimplexBackend) ObjectiveValue() float64 { return b.objVal }

// Solve implements Backend. Boolean variables route through
// branch-and-bound; a purely continuous model is a single LP solve.
func (b *SimplexBackend) Solve() Status {
	deadline := time.Now().Add(b.timeLimit)

	hasBool := false
	for _, v := range b.vars {
		if v.isBool {
			hasBool = true
			break
		}
	}

	if hasBool {
		b.status = b.solveMIP(deadline)
	} else {
		values, obj, st := b.solveLP(nil, deadline)
		b.status = st
		if st.Succeeded() {
			b.values = values
			b.objVal = obj
		}
	}
	return b.status
}

// boundOverride narrows a variable's bounds during branch-and-bound.
type boundOverride struct {
	lo, hi float64
}

// solveLP solves the LP relaxation with optional bound overrides.
// Returns the variable values in original (unshifted) space.
func (b *SimplexBackend) solveLP(overrides map[VarID]boundOverride, deadline time.Time) ([]float64, float64, Status) {
	nv := len(b.vars)
	lo := make([]float64, nv)
	hi := make([]float64, nv)
	for j, v := range b.vars {
		lo[j], hi[j] = v.lo, v.hi
		if ov, ok := overrides[VarID(j)]; ok {
			lo[j], hi[j] = ov.lo, ov.hi
		}
		if math.IsInf(lo[j], -1) {
			// Models in this system always have finite lower bounds
			// (flows bounded below by MinFlow, pressures by Pmin^2).
			return nil, 0, StatusError
		}
		if lo[j] > hi[j]+pivotEps {
			return nil, 0, StatusInfeasible
		}
	}

	// Standard-form rows over shifted variables y_j = x_j - lo_j >= 0.
	type stdRow struct {
		coeffs []float64 // length nv
		rhs    float64
		sense  int // -1: <=, 0: ==, +1: >=
	}
	var rows []stdRow

	addRow := func(coeffs []float64, rhs float64, sense int) {
		// Normalize to rhs >= 0 so slack/artificial setup stays uniform.
		if rhs < 0 {
			flipped := make([]float64, nv)
			for j := range coeffs {
				flipped[j] = -coeffs[j]
			}
			rows = append(rows, stdRow{coeffs: flipped, rhs: -rhs, sense: -sense})
			return
		}
		rows = append(rows, stdRow{coeffs: coeffs, rhs: rhs, sense: sense})
	}

	for i := range b.cons {
		c := &b.cons[i]
		if math.IsInf(c.lo, -1) && math.IsInf(c.hi, 1) {
			continue
		}
		coeffs := make([]float64, nv)
		offset := 0.0
		for v, a := range c.coeffs {
			coeffs[v] = a
			offset += a * lo[v]
		}
		if !math.IsInf(c.lo, -1) && !math.IsInf(c.hi, 1) && c.lo == c.hi {
			addRow(coeffs, c.lo-offset, 0)
			continue
		}
		if !math.IsInf(c.hi, 1) {
			cp := make([]float64, nv)
			copy(cp, coeffs)
			addRow(cp, c.hi-offset, -1)
		}
		if !math.IsInf(c.lo, -1) {
			cp := make([]float64, nv)
			copy(cp, coeffs)
			addRow(cp, c.lo-offset, 1)
		}
	}

	// Finite variable upper bounds become rows over the shifted variable.
	for j := 0; j < nv; j++ {
		if math.IsInf(hi[j], 1) {
			continue
		}
		coeffs := make([]float64, nv)
		coeffs[j] = 1
		addRow(coeffs, hi[j]-lo[j], -1)
	}

	m := len(rows)
	// Column layout: [structural 0..nv) [slack/surplus) [artificial).
	nSlack := 0
	for _, r := range rows {
		if r.sense != 0 {
			nSlack++
		}
	}
	nArt := 0
	for _, r := range rows {
		if r.sense >= 0 {
			nArt++
		}
	}
	n := nv + nSlack + nArt
	artStart := nv + nSlack

	// Dense tableau T[i] = row i coefficients + rhs at index n.
	tab := make([][]float64, m)
	basis := make([]int, m)
	slackCol := nv
	artCol := artStart
	for i, r := range rows {
		tab[i] = make([]float64, n+1)
		copy(tab[i], r.coeffs)
		tab[i][n] = r.rhs
		switch r.sense {
		case -1: // <= : slack enters the basis
			tab[i][slackCol] = 1
			basis[i] = slackCol
			slackCol++
		case 1: // >= : surplus + artificial
			tab[i][slackCol] = -1
			slackCol++
			tab[i][artCol] = 1
			basis[i] = artCol
			artCol++
		default: // == : artificial
			tab[i][artCol] = 1
			basis[i] = artCol
			artCol++
		}
	}

	maxIter := maxIterFactor * (m + n + 1)

	// cost holds the reduced-cost row; costRHS the negated objective value.
	cost := make([]float64, n)
	costRHS := 0.0

	pivot := func(row, col int) {
		p := tab[row][col]
		for k := 0; k <= n; k++ {
			tab[row][k] /= p
		}
		for i := 0; i < m; i++ {
			if i == row {
				continue
			}
			f := tab[i][col]
			if f == 0 {
				continue
			}
			for k := 0; k <= n; k++ {
				tab[i][k] -= f * tab[row][k]
			}
		}
		f := cost[col]
		if f != 0 {
			for k := 0; k < n; k++ {
				cost[k] -= f * tab[row][k]
			}
			costRHS -= f * tab[row][n]
		}
		basis[row] = col
	}

	// iterate runs simplex pivots until optimality, unboundedness, or the
	// iteration/time budget runs out. blocked columns may not enter.
	iterate := func(blocked func(int) bool) Status {
		for iter := 0; iter < maxIter; iter++ {
			if iter%64 == 0 && time.Now().After(deadline) {
				return StatusError
			}
			// Bland's rule: first improving column.
			enter := -1
			for j := 0; j < n; j++ {
				if blocked != nil && blocked(j) {
					continue
				}
				if cost[j] < -pivotEps {
					enter = j
					break
				}
			}
			if enter == -1 {
				return StatusOptimal
			}
			// Ratio test, ties broken by smallest basis index.
			leave := -1
			best := math.Inf(1)
			for i := 0; i < m; i++ {
				a := tab[i][enter]
				if a <= pivotEps {
					continue
				}
				ratio := tab[i][n] / a
				if ratio < best-pivotEps || (ratio < best+pivotEps && (leave == -1 || basis[i] < basis[leave])) {
					best = ratio
					leave = i
				}
			}
			if leave == -1 {
				return StatusUnbounded
			}
			pivot(leave, enter)
		}
		return StatusError
	}

	// Phase 1: minimize the sum of artificials.
	if nArt > 0 {
		for j := artStart; j < n; j++ {
			cost[j] = 1
		}
		// Reduce against the artificial basis.
		for i := 0; i < m; i++ {
			if basis[i] >= artStart {
				for k := 0; k < n; k++ {
					cost[k] -= tab[i][k]
				}
				costRHS -= tab[i][n]
			}
		}
		if st := iterate(nil); st == StatusError {
			return nil, 0, StatusError
		}
		if -costRHS > feasEps {
			return nil, 0, StatusInfeasible
		}
		// Drive leftover artificials out of the basis.
		for i := 0; i < m; i++ {
			if basis[i] < artStart {
				continue
			}
			pivoted := false
			for j := 0; j < artStart; j++ {
				if math.Abs(tab[i][j]) > pivotEps {
					pivot(i, j)
					pivoted = true
					break
				}
			}
			if !pivoted {
				// Redundant row; the artificial stays basic at zero.
				tab[i][n] = 0
			}
		}
	}

	// Phase 2: the real objective as a minimization.
	for k := range cost {
		cost[k] = 0
	}
	costRHS = 0
	sign := 1.0
	if b.maximize {
		sign = -1
	}
	objConst := 0.0
	for v, c := range b.objective {
		cost[v] = sign * c
		objConst += c * lo[v] // shift constant from y = x - lo
	}
	for i := 0; i < m; i++ {
		f := cost[basis[i]]
		if f == 0 {
			continue
		}
		for k := 0; k < n; k++ {
			cost[k] -= f * tab[i][k]
		}
		costRHS -= f * tab[i][n]
	}
	blockedArt := func(j int) bool { return j >= artStart }
	switch st := iterate(blockedArt); st {
	case StatusUnbounded:
		return nil, 0, StatusUnbounded
	case StatusError:
		return nil, 0, StatusError
	}

	// Extract the solution back in original space.
	values := make([]float64, nv)
	for j := range values {
		values[j] = lo[j]
	}
	for i := 0; i < m; i++ {
		if basis[i] < nv {
			values[basis[i]] = lo[basis[i]] + tab[i][n]
		}
	}
	// -costRHS is the optimum of the signed objective over the shifted
	// variables; undo the sign and add back the lower-bound constant.
	obj := objConst + sign*(-costRHS)
	return values, obj, StatusOptimal
}
