package astrofit

import (
	"fmt"
	"math"
	"strings"
)

// Polynomial is a dense coefficient polynomial: index i holds the coefficient of x^i.
// The zero value is the zero polynomial. Operations return new values, the receiver
// is never mutated.
type Polynomial struct {
	coeffs []float64
}

// NewPolynomial returns the polynomial defined by the given coefficients, in
// ascending degree order. Trailing zero coefficients are trimmed, though the
// zero polynomial keeps a single coefficient.
func NewPolynomial(coeffs ...float64) Polynomial {
	last := len(coeffs) - 1
	for last > 0 && coeffs[last] == 0 {
		last--
	}
	c := make([]float64, last+1)
	copy(c, coeffs[:last+1])
	return Polynomial{c}
}

// Degree returns the degree of this polynomial.
func (p Polynomial) Degree() int {
	if len(p.coeffs) == 0 {
		return 0
	}
	return len(p.coeffs) - 1
}

// Coefficients returns a copy of the coefficients in ascending degree order.
func (p Polynomial) Coefficients() []float64 {
	if len(p.coeffs) == 0 {
		return []float64{0}
	}
	c := make([]float64, len(p.coeffs))
	copy(c, p.coeffs)
	return c
}

// Evaluate computes p(x) via Horner's scheme.
func (p Polynomial) Evaluate(x float64) float64 {
	v := 0.0
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		v = v*x + p.coeffs[i]
	}
	return v
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	low, high := p.coeffs, q.coeffs
	if len(low) > len(high) {
		low, high = high, low
	}
	c := make([]float64, len(high))
	copy(c, high)
	for i, v := range low {
		c[i] += v
	}
	return NewPolynomial(c...)
}

// Multiply returns p * q.
func (p Polynomial) Multiply(q Polynomial) Polynomial {
	if len(p.coeffs) == 0 || len(q.coeffs) == 0 {
		return NewPolynomial(0)
	}
	c := make([]float64, len(p.coeffs)+len(q.coeffs)-1)
	for i, pi := range p.coeffs {
		for j, qj := range q.coeffs {
			c[i+j] += pi * qj
		}
	}
	return NewPolynomial(c...)
}

// Shift returns the polynomial whose value at x is p(x+k), i.e. the coefficients
// reindexed by the affine substitution x -> x + k.
func (p Polynomial) Shift(k float64) Polynomial {
	if k == 0 || len(p.coeffs) == 0 {
		return NewPolynomial(p.Coefficients()...)
	}
	c := make([]float64, len(p.coeffs))
	for i, pi := range p.coeffs {
		if pi == 0 {
			continue
		}
		// Expand pi*(x+k)^i with binomial coefficients.
		binom := 1.0
		for j := 0; j <= i; j++ {
			c[j] += pi * binom * math.Pow(k, float64(i-j))
			binom = binom * float64(i-j) / float64(j+1)
		}
	}
	return NewPolynomial(c...)
}

// String implements the Stringer interface.
func (p Polynomial) String() string {
	terms := make([]string, 0, len(p.coeffs))
	for i, c := range p.coeffs {
		if c == 0 && len(p.coeffs) > 1 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, fmt.Sprintf("%g", c))
		case 1:
			terms = append(terms, fmt.Sprintf("%gx", c))
		default:
			terms = append(terms, fmt.Sprintf("%gx^%d", c, i))
		}
	}
	return strings.Join(terms, " + ")
}

// PolynomialSeries is a polynomial in n whose coefficients are polynomials in s:
// index k holds the polynomial-in-s coefficient of n^k.
type PolynomialSeries []Polynomial

// zeroSeries returns a series of k zero polynomials.
func zeroSeries(k int) PolynomialSeries {
	s := make(PolynomialSeries, k)
	for i := range s {
		s[i] = NewPolynomial(0)
	}
	return s
}

// Evaluate computes Σ_k coeff_k(s) * n^k.
func (ps PolynomialSeries) Evaluate(n, s float64) float64 {
	result := 0.0
	power := 1.0
	for _, p := range ps {
		result += p.Evaluate(s) * power
		power = n * power
	}
	return result
}

// sumSeries adds two series term by term, padding the shorter one.
func sumSeries(a, b PolynomialSeries) PolynomialSeries {
	low, high := a, b
	if len(low) > len(high) {
		low, high = high, low
	}
	result := make(PolynomialSeries, len(high))
	for i := range low {
		result[i] = low[i].Add(high[i])
	}
	copy(result[len(low):], high[len(low):])
	return result
}

// mulSeries multiplies two series as a convolution in powers of n: the
// coefficient at index i+j accumulates a[i]*b[j].
func mulSeries(a, b PolynomialSeries) PolynomialSeries {
	result := zeroSeries(len(a) + len(b) - 1)
	for i, pa := range a {
		for j, pb := range b {
			result[i+j] = result[i+j].Add(pa.Multiply(pb))
		}
	}
	return result
}

// shiftSeries shifts every polynomial-in-s coefficient by k. The reindexing is
// in s only, the n powers are untouched.
func shiftSeries(a PolynomialSeries, k float64) PolynomialSeries {
	result := make(PolynomialSeries, len(a))
	for i, p := range a {
		result[i] = p.Shift(k)
	}
	return result
}
