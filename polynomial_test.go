package astrofit

import (
	"testing"

	"github.com/gonum/floats"
)

func TestPolynomialBasics(t *testing.T) {
	p := NewPolynomial(1, -2, 3, 0, 0)
	if p.Degree() != 2 {
		t.Fatalf("trailing zeros not trimmed, degree=%d", p.Degree())
	}
	if !floats.Equal(p.Coefficients(), []float64{1, -2, 3}) {
		t.Fatalf("invalid coefficients %+v", p.Coefficients())
	}
	// 1 - 2x + 3x^2 at x=2: 1 - 4 + 12 = 9
	if !floats.EqualWithinAbs(p.Evaluate(2), 9, 1e-12) {
		t.Fatalf("p(2)=%f", p.Evaluate(2))
	}
	zero := NewPolynomial(0, 0, 0)
	if zero.Degree() != 0 || zero.Evaluate(42) != 0 {
		t.Fatal("zero polynomial invalid")
	}
}

func TestPolynomialAdd(t *testing.T) {
	p := NewPolynomial(1, 2)
	q := NewPolynomial(3, -2, 5)
	sum := p.Add(q)
	if !floats.Equal(sum.Coefficients(), []float64{4, 0, 5}) {
		t.Fatalf("invalid sum %+v", sum.Coefficients())
	}
	// Addition canceling the leading term must trim.
	r := NewPolynomial(0, 0, -5).Add(NewPolynomial(1, 0, 5))
	if r.Degree() != 0 || !floats.Equal(r.Coefficients(), []float64{1}) {
		t.Fatalf("canceled sum not trimmed %+v", r.Coefficients())
	}
}

func TestPolynomialMultiply(t *testing.T) {
	// Constants multiply like scalars.
	if !floats.Equal(NewPolynomial(2).Multiply(NewPolynomial(3)).Coefficients(), []float64{6}) {
		t.Fatal("constant multiply fail")
	}
	// (1 + 2x)(3 + 4x) = 3 + 10x + 8x^2
	prod := NewPolynomial(1, 2).Multiply(NewPolynomial(3, 4))
	if !floats.Equal(prod.Coefficients(), []float64{3, 10, 8}) {
		t.Fatalf("invalid product %+v", prod.Coefficients())
	}
	// Multiplying by zero yields the zero polynomial.
	if NewPolynomial(1, 2, 3).Multiply(NewPolynomial(0)).Degree() != 0 {
		t.Fatal("zero product invalid")
	}
}

func TestPolynomialShift(t *testing.T) {
	p := NewPolynomial(1, -2, 3, 0.5)
	for _, k := range []float64{-2, -0.5, 0, 1, 3} {
		shifted := p.Shift(k)
		for x := -3.0; x <= 3.0; x += 0.25 {
			if !floats.EqualWithinAbs(shifted.Evaluate(x), p.Evaluate(x+k), 1e-9) {
				t.Fatalf("shift by %f invalid at x=%f: %f != %f", k, x, shifted.Evaluate(x), p.Evaluate(x+k))
			}
		}
	}
}

func TestSeriesEvaluate(t *testing.T) {
	// series = (1 + s) + (2s) n + 3 n^2
	series := PolynomialSeries{NewPolynomial(1, 1), NewPolynomial(0, 2), NewPolynomial(3)}
	n, s := 2.0, 0.5
	exp := (1 + s) + (2*s)*n + 3*n*n
	if !floats.EqualWithinAbs(series.Evaluate(n, s), exp, 1e-12) {
		t.Fatalf("series evaluate %f != %f", series.Evaluate(n, s), exp)
	}
	if zeroSeries(3).Evaluate(1.5, -2) != 0 {
		t.Fatal("zero series should evaluate to 0")
	}
}

func TestSeriesOps(t *testing.T) {
	a := PolynomialSeries{NewPolynomial(1), NewPolynomial(0, 1)} // 1 + s·n
	b := PolynomialSeries{NewPolynomial(2)}                      // 2
	sum := sumSeries(a, b)
	if len(sum) != 2 {
		t.Fatalf("sum series length %d", len(sum))
	}
	if !floats.EqualWithinAbs(sum.Evaluate(3, 4), 1+4*3+2, 1e-12) {
		t.Fatal("sum series invalid")
	}
	prod := mulSeries(a, a) // (1 + s·n)^2 = 1 + 2s·n + s²·n²
	if len(prod) != 3 {
		t.Fatalf("product series length %d", len(prod))
	}
	for _, n := range []float64{-1, 0.5, 2} {
		for _, s := range []float64{-2, 0, 3} {
			exp := (1 + s*n) * (1 + s*n)
			if !floats.EqualWithinAbs(prod.Evaluate(n, s), exp, 1e-12) {
				t.Fatalf("product series invalid at n=%f s=%f", n, s)
			}
		}
	}
	shifted := shiftSeries(a, 2) // 1 + (s+2)·n
	if !floats.EqualWithinAbs(shifted.Evaluate(3, 4), 1+(4+2)*3, 1e-12) {
		t.Fatal("shift series invalid")
	}
}
