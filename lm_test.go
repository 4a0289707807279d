package astrofit

import (
	"errors"
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestLMLinearFit(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	model := func(point []float64) ([]float64, error) {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = point[0] + point[1]*x
		}
		return out, nil
	}
	truth := []float64{2, -3}
	target, _ := model(truth)
	weight := []float64{1, 1, 1, 1, 1}
	lm := NewLevenbergMarquardt(1e-14)
	point, err := lm.Optimize(50, model, target, weight, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for i := range truth {
		if !floats.EqualWithinAbs(point[i], truth[i], 1e-6) {
			t.Fatalf("point[%d] = %f != %f", i, point[i], truth[i])
		}
	}
	if lm.Evaluations() == 0 {
		t.Fatal("evaluations not counted")
	}
}

func TestLMNonlinearFit(t *testing.T) {
	xs := []float64{0, 0.5, 1, 1.5}
	model := func(point []float64) ([]float64, error) {
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = math.Exp(point[0] * x)
		}
		return out, nil
	}
	target, _ := model([]float64{1})
	weight := []float64{1, 1, 1, 1}
	lm := NewLevenbergMarquardt(1e-14)
	point, err := lm.Optimize(100, model, target, weight, []float64{0.5})
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(point[0], 1, 1e-6) {
		t.Fatalf("point = %f != 1", point[0])
	}
}

func TestLMImmediateConvergence(t *testing.T) {
	model := func(point []float64) ([]float64, error) {
		return []float64{point[0]}, nil
	}
	lm := NewLevenbergMarquardt(1e-14)
	point, err := lm.Optimize(10, model, []float64{7}, []float64{1}, []float64{7})
	if err != nil {
		t.Fatal(err)
	}
	if point[0] != 7 {
		t.Fatalf("point moved to %f", point[0])
	}
	// An exact guess costs a single evaluation.
	if lm.Evaluations() != 1 {
		t.Fatalf("%d evaluations", lm.Evaluations())
	}
}

func TestLMMaxIterations(t *testing.T) {
	model := func(point []float64) ([]float64, error) {
		return []float64{point[0]}, nil
	}
	lm := NewLevenbergMarquardt(1e-14)
	_, err := lm.Optimize(0, model, []float64{7}, []float64{1}, []float64{0})
	var convErr ConvergenceError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConvergenceError, got %v", err)
	}
	if convErr.Iterations != 0 {
		t.Fatalf("iterations %d", convErr.Iterations)
	}
}

func TestLMErrorPassthrough(t *testing.T) {
	boom := errors.New("model exploded")
	model := func(point []float64) ([]float64, error) {
		return nil, boom
	}
	lm := NewLevenbergMarquardt(1e-14)
	_, err := lm.Optimize(10, model, []float64{1}, []float64{1}, []float64{0})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the model error untouched, got %v", err)
	}
}

func TestLMCumulativeEvaluations(t *testing.T) {
	model := func(point []float64) ([]float64, error) {
		return []float64{point[0]}, nil
	}
	lm := NewLevenbergMarquardt(1e-14)
	if _, err := lm.Optimize(10, model, []float64{1}, []float64{1}, []float64{1}); err != nil {
		t.Fatal(err)
	}
	first := lm.Evaluations()
	if _, err := lm.Optimize(10, model, []float64{2}, []float64{1}, []float64{2}); err != nil {
		t.Fatal(err)
	}
	if lm.Evaluations() != first+1 {
		t.Fatalf("counter not cumulative: %d then %d", first, lm.Evaluations())
	}
}
