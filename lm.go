package astrofit

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/gokalman"
	"github.com/gonum/matrix/mat64"
)

const (
	// fdStep is the relative forward-difference step of the Jacobian.
	fdStep = 1e-7
	// dampFloor and dampCeiling bound the Levenberg-Marquardt damping factor.
	dampFloor   = 1e-12
	dampCeiling = 1e15
)

// ObjectiveFunc computes the modeled components for a candidate parameter
// vector, in the same layout as the fit's target vector. It must signal a
// computation failure instead of returning garbage.
type ObjectiveFunc func(point []float64) ([]float64, error)

// ConvergenceError reports that the optimizer exhausted its iterations
// without meeting the convergence threshold.
type ConvergenceError struct {
	Iterations int
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf("optimizer did not converge within %d iterations", e.Iterations)
}

// LevenbergMarquardt minimizes the weighted square error between a target
// vector and an objective function, by damped Gauss-Newton steps on a forward
// difference Jacobian. Convergence is declared when the weighted cost of two
// successive candidate points differs by no more than Threshold.
type LevenbergMarquardt struct {
	Threshold   float64
	evaluations int
}

// NewLevenbergMarquardt returns an optimizer with the given absolute
// convergence threshold.
func NewLevenbergMarquardt(threshold float64) *LevenbergMarquardt {
	return &LevenbergMarquardt{Threshold: threshold}
}

// Evaluations returns the number of objective function evaluations consumed so
// far. The counter is cumulative across Optimize calls.
func (lm *LevenbergMarquardt) Evaluations() int {
	return lm.evaluations
}

// Optimize runs the fit from the initial guess and returns the optimal point.
// Objective function failures are returned as-is; iteration exhaustion is
// returned as a ConvergenceError.
func (lm *LevenbergMarquardt) Optimize(maxIterations int, f ObjectiveFunc, target, weight, initialGuess []float64) ([]float64, error) {
	if len(target) != len(weight) {
		return nil, fmt.Errorf("target and weight lengths differ (%d != %d)", len(target), len(weight))
	}
	m := len(target)
	n := len(initialGuess)
	point := append([]float64(nil), initialGuess...)
	value, err := lm.eval(f, point)
	if err != nil {
		return nil, err
	}
	if len(value) != m {
		return nil, fmt.Errorf("objective returned %d components, expected %d", len(value), m)
	}
	cost := weightedCost(target, weight, value)
	if cost <= lm.Threshold {
		return point, nil
	}

	λ := 1e-3
	for iter := 0; iter < maxIterations; iter++ {
		jac, err := lm.jacobian(f, point, value)
		if err != nil {
			return nil, err
		}
		// Normal equations: (JᵀWJ + λI) δ = JᵀW (target - value)
		wDiag := mat64.NewDense(m, m, nil)
		for i := 0; i < m; i++ {
			wDiag.Set(i, i, weight[i])
		}
		var jtW, jtWJ mat64.Dense
		jtW.Mul(jac.T(), wDiag)
		jtWJ.Mul(&jtW, jac)
		var damp, lhs mat64.Dense
		damp.Scale(λ, gokalman.DenseIdentity(n))
		lhs.Add(&jtWJ, &damp)
		res := make([]float64, m)
		for i := 0; i < m; i++ {
			res[i] = target[i] - value[i]
		}
		var rhs mat64.Vector
		rhs.MulVec(&jtW, mat64.NewVector(m, res))
		var δ mat64.Vector
		if err := δ.SolveVec(&lhs, &rhs); err != nil {
			// Singular system, stiffen the damping and retry.
			λ = math.Min(λ*10, dampCeiling)
			continue
		}
		trial := make([]float64, n)
		for j := 0; j < n; j++ {
			trial[j] = point[j] + δ.At(j, 0)
		}
		trialValue, err := lm.eval(f, trial)
		if err != nil {
			return nil, err
		}
		trialCost := weightedCost(target, weight, trialValue)
		if trialCost < cost {
			converged := cost-trialCost <= lm.Threshold
			point, value, cost = trial, trialValue, trialCost
			λ = math.Max(λ/10, dampFloor)
			if converged || cost <= lm.Threshold {
				return point, nil
			}
		} else {
			if trialCost-cost <= lm.Threshold {
				// Stuck at the noise floor: the step no longer changes the cost.
				return point, nil
			}
			λ = math.Min(λ*10, dampCeiling)
		}
	}
	return nil, ConvergenceError{maxIterations}
}

// eval calls the objective function and counts the evaluation.
func (lm *LevenbergMarquardt) eval(f ObjectiveFunc, point []float64) ([]float64, error) {
	lm.evaluations++
	return f(point)
}

// jacobian computes the m×n forward difference Jacobian at point, reusing the
// already known value of the objective there.
func (lm *LevenbergMarquardt) jacobian(f ObjectiveFunc, point, value []float64) (*mat64.Dense, error) {
	m := len(value)
	n := len(point)
	jac := mat64.NewDense(m, n, nil)
	for j := 0; j < n; j++ {
		h := fdStep * math.Max(math.Abs(point[j]), 1)
		shifted := append([]float64(nil), point...)
		shifted[j] += h
		shiftedValue, err := lm.eval(f, shifted)
		if err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			jac.Set(i, j, (shiftedValue[i]-value[i])/h)
		}
	}
	return jac, nil
}

// weightedCost returns Σ w_i (target_i - value_i)².
func weightedCost(target, weight, value []float64) float64 {
	cost := 0.0
	for i := range target {
		r := target[i] - value[i]
		cost += weight[i] * r * r
	}
	return cost
}
