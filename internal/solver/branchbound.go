package solver

import (
	"math"
	"time"
)

// =============================================================================
// Branch-and-Bound
// =============================================================================
//
// Boolean variables (compressor activation flags) are resolved by
// depth-first branch-and-bound over the LP relaxation. The branching
// variable is the lowest-id fractional boolean, and the branch whose bound
// matches the rounded relaxation value is explored first; both choices are
// deterministic, so identical models yield identical solutions.
//
// On time-limit expiry the best incumbent found so far is returned with
// StatusFeasible; with no incumbent the solve reports StatusError.
// =============================================================================

const integralityEps = 1e-6

type bbNode struct {
	overrides map[VarID]boundOverride
}

func cloneOverrides(src map[VarID]boundOverride) map[VarID]boundOverride {
	dst := make(map[VarID]boundOverride, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// solveMIP runs branch-and-bound and stores the incumbent into the
// back-end's solution fields.
func (b *SimplexBackend) solveMIP(deadline time.Time) Status {
	var (
		bestValues []float64
		bestObj    float64
		haveBest   bool
		exhausted  = true
	)

	better := func(obj float64) bool {
		if !haveBest {
			return true
		}
		if b.maximize {
			return obj > bestObj+pivotEps
		}
		return obj < bestObj-pivotEps
	}

	// Depth-first; the stack keeps memory proportional to tree depth times
	// the number of boolean variables.
	stack := []bbNode{{overrides: map[VarID]boundOverride{}}}

	for len(stack) > 0 {
		if time.Now().After(deadline) {
			exhausted = false
			break
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		values, obj, st := b.solveLP(node.overrides, deadline)
		switch st {
		case StatusInfeasible:
			continue
		case StatusUnbounded:
			// An unbounded relaxation makes the integer problem unbounded
			// as well (bools cannot bound a ray).
			b.status = StatusUnbounded
			return StatusUnbounded
		case StatusError:
			exhausted = false
			continue
		}

		// Bound: prune when the relaxation cannot beat the incumbent.
		if !better(obj) {
			continue
		}

		// Find the first fractional boolean.
		branchVar := VarID(-1)
		for j, v := range b.vars {
			if !v.isBool {
				continue
			}
			x := values[j]
			if math.Abs(x-math.Round(x)) > integralityEps {
				branchVar = VarID(j)
				break
			}
		}

		if branchVar == -1 {
			// Integral: new incumbent.
			bestValues = values
			bestObj = obj
			haveBest = true
			continue
		}

		// Explore the rounded value first (pushed last).
		near := math.Round(values[branchVar])
		far := 1 - near

		farNode := bbNode{overrides: cloneOverrides(node.overrides)}
		farNode.overrides[branchVar] = boundOverride{lo: far, hi: far}
		stack = append(stack, farNode)

		nearNode := bbNode{overrides: cloneOverrides(node.overrides)}
		nearNode.overrides[branchVar] = boundOverride{lo: near, hi: near}
		stack = append(stack, nearNode)
	}

	if !haveBest {
		if exhausted {
			return StatusInfeasible
		}
		return StatusError
	}

	b.values = bestValues
	b.objVal = bestObj
	if exhausted {
		return StatusOptimal
	}
	return StatusFeasible
}
