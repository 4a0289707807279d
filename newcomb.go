package astrofit

import (
	"fmt"
	"sync"
)

// NewcombOperators computes and caches the Modified Newcomb Operators.
// From equation 2.7.3 - (12)(13) of the Danielson paper for the Satellite
// Semianalytical Theory, those operators are defined by the recurrence
//
//	4(ρ+σ)Y[ρ,σ](n,s) = 2(2s-n)Y[ρ-1,σ](n,s+1) + (s-n)Y[ρ-2,σ](n,s+2)
//	                  - 2(2s+n)Y[ρ,σ-1](n,s-1) - (s+n)Y[ρ,σ-2](n,s-2)
//	                  + 2(2ρ+2σ+2+3n)Y[ρ-1,σ-1](n,s)
//
// with ρ ≥ σ, seeded by Y[0,0] = 1, Y[1,0] = s - n/2 and Y[0,1] = -s - n/2.
// Each operator is stored as a PolynomialSeries: polynomials in s indexed by
// ascending power of n.
//
// The cache only ever grows: once an index couple is computed its value never
// changes. Concurrent reads of computed entries are safe; extensions take the
// write lock and publish the frontier counters only after the entries they
// cover are stored.
type NewcombOperators struct {
	mu           sync.RWMutex
	polynomials  map[couple]PolynomialSeries
	directOrder  int // Maximum computed order with ρ ≥ σ
	reverseOrder int // Maximum computed order with ρ < σ
}

// couple identifies one operator instance.
type couple struct {
	ρ, σ int
}

// Newcomb is the default process-wide operator cache.
var Newcomb = NewNewcombOperators()

// NewNewcombOperators returns a cache seeded with the three base operators.
func NewNewcombOperators() *NewcombOperators {
	polys := make(map[couple]PolynomialSeries)
	// Y[0,0] = 1
	polys[couple{0, 0}] = PolynomialSeries{NewPolynomial(1)}
	// Y[1,0] = s - n/2
	polys[couple{1, 0}] = PolynomialSeries{NewPolynomial(0, 1), NewPolynomial(-0.5)}
	// Y[0,1] = -s - n/2
	polys[couple{0, 1}] = PolynomialSeries{NewPolynomial(0, -1), NewPolynomial(-0.5)}
	return &NewcombOperators{polynomials: polys}
}

// GetValue evaluates Y[ρ,σ] at (n, s), extending the cache if needed.
func (no *NewcombOperators) GetValue(ρ, σ int, n, s float64) (float64, error) {
	poly, err := no.Polynomials(ρ, σ)
	if err != nil {
		return 0, err
	}
	return poly.Evaluate(n, s), nil
}

// Polynomials returns the polynomial-in-s-per-power-of-n representation of
// Y[ρ,σ], extending the cache if needed. The returned series is shared and
// must not be modified.
func (no *NewcombOperators) Polynomials(ρ, σ int) (PolynomialSeries, error) {
	if ρ < 0 || σ < 0 {
		return nil, fmt.Errorf("newcomb: invalid indices (%d,%d)", ρ, σ)
	}
	reverse := ρ < σ
	no.mu.RLock()
	covered := (reverse && σ <= no.reverseOrder) || (!reverse && ρ <= no.directOrder)
	if covered {
		poly := no.polynomials[couple{ρ, σ}]
		no.mu.RUnlock()
		return poly, nil
	}
	no.mu.RUnlock()

	no.mu.Lock()
	defer no.mu.Unlock()
	// Another writer may have extended past us in the meantime.
	if reverse && σ > no.reverseOrder {
		if σ > no.directOrder {
			no.computeUpToDegree(σ, no.directOrder, false)
		}
		no.computeUpToDegree(σ, no.reverseOrder, true)
	} else if !reverse && ρ > no.directOrder {
		no.computeUpToDegree(ρ, no.directOrder, false)
	}
	return no.polynomials[couple{ρ, σ}], nil
}

// ComputedOrders returns the direct and reverse frontier counters.
func (no *NewcombOperators) ComputedOrders() (direct, reverse int) {
	no.mu.RLock()
	defer no.mu.RUnlock()
	return no.directOrder, no.reverseOrder
}

// computeUpToDegree runs the diagonal sweep. The computation sequence is
//
//	Y[0,0]
//	Y[1,0]
//	Y[2,0] Y[1,1]
//	Y[3,0] Y[2,1]
//	Y[4,0] Y[3,1] Y[2,2]
//	...
//
// with both indices swapped when reverseOrder is set. Callers must hold the
// write lock.
func (no *NewcombOperators) computeUpToDegree(ρ, maximumOrder int, reverseOrder bool) {
	low := maximumOrder
	if ρ < low {
		low = ρ
	}
	// Need 2ρ+1 outer iterations to get the Y[ρ,ρ] computation done.
	for i := 2*low + 1; i < 2*ρ+1; i++ {
		k := i
		j := 0
		// Walk the diagonal: σ grows while ρ decreases, stopping once σ > ρ.
		for j <= k {
			cpl := couple{k, j}
			if reverseOrder {
				cpl = couple{j, k}
			}
			result := zeroSeries(i + j + 1)
			coeffs := recurrenceCoefficients(cpl)

			// A Newcomb operator with ρ < σ cannot appear on the right hand side.
			if cpl.ρ-1 >= cpl.σ {
				// 2(2s-n) * Y[ρ-1,σ](n,s+1)
				result = mulSeries(coeffs[0], shiftSeries(no.polynomials[couple{cpl.ρ - 1, cpl.σ}], 1))
			}
			if cpl.ρ-2 >= cpl.σ {
				// (s-n) * Y[ρ-2,σ](n,s+2)
				result = sumSeries(result, mulSeries(coeffs[1], shiftSeries(no.polynomials[couple{cpl.ρ - 2, cpl.σ}], 2)))
			}
			// Y[ρ,σ] is zero if ρ or σ is negative.
			if cpl.σ-1 >= 0 {
				// -2(2s+n) * Y[ρ,σ-1](n,s-1)
				result = sumSeries(result, mulSeries(coeffs[2], shiftSeries(no.polynomials[couple{cpl.ρ, cpl.σ - 1}], -1)))
			}
			if cpl.σ-2 >= 0 {
				// -(s+n) * Y[ρ,σ-2](n,s-2)
				result = sumSeries(result, mulSeries(coeffs[3], shiftSeries(no.polynomials[couple{cpl.ρ, cpl.σ - 2}], -2)))
			}
			if cpl.ρ-1 >= 0 && cpl.σ-1 >= 0 {
				// 2(2ρ+2σ+2+3n) * Y[ρ-1,σ-1](n,s), no shift
				result = sumSeries(result, mulSeries(coeffs[4], no.polynomials[couple{cpl.ρ - 1, cpl.σ - 1}]))
			}

			no.polynomials[cpl] = result
			j++
			k--
		}
	}
	// Publish the frontier only once the sweep is done.
	if ρ > no.directOrder {
		no.directOrder = ρ
	}
	if reverseOrder {
		no.reverseOrder = ρ
	}
}

// recurrenceCoefficients returns the five multiplier series of the recurrence,
// each normalized by den = 4(ρ+σ).
func recurrenceCoefficients(cpl couple) [5]PolynomialSeries {
	den := float64(4 * (cpl.ρ + cpl.σ))
	return [5]PolynomialSeries{
		// 2(2s - n)
		{NewPolynomial(0, 4/den), NewPolynomial(-2 / den)},
		// (s - n)
		{NewPolynomial(0, 1/den), NewPolynomial(-1 / den)},
		// -2(2s + n)
		{NewPolynomial(0, -4/den), NewPolynomial(-2 / den)},
		// -(s + n)
		{NewPolynomial(0, -1/den), NewPolynomial(-1 / den)},
		// 2(2ρ + 2σ + 2 + 3n)
		{NewPolynomial(4 * float64(cpl.ρ+cpl.σ+1) / den), NewPolynomial(6 / den)},
	}
}
