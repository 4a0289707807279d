package astrofit

import (
	"testing"
	"time"

	"github.com/gonum/floats"
)

var testEpoch = time.Date(2015, 3, 1, 12, 0, 0, 0, time.UTC)

func TestKeplerianPeriod(t *testing.T) {
	o := NewOrbitFromOE(8000, 0.1, 35, 10, 20, 30, Earth)
	prop := NewKeplerianPropagator(o, testEpoch)
	state, err := prop.Propagate(testEpoch.Add(o.Period()))
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := o.StrictlyEquals(state.Orbit); !ok {
		t.Fatalf("orbit changed after one period: %s", err)
	}
	// The initial state is untouched by propagation.
	if ok, _ := prop.InitialState().Orbit.StrictlyEquals(*o); !ok {
		t.Fatal("initial state mutated")
	}
}

func TestKeplerianApsides(t *testing.T) {
	// Start at periapsis, end up at apoapsis after half a period.
	o := NewOrbitFromOE(9000, 0.2, 30, 40, 50, 0, Earth)
	prop := NewKeplerianPropagator(o, testEpoch)
	state, err := prop.Propagate(testEpoch.Add(o.Period() / 2))
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(state.Orbit.RNorm(), o.Apoapsis(), 1e-3) {
		t.Fatalf("r=%f != apoapsis %f", state.Orbit.RNorm(), o.Apoapsis())
	}
}

func TestKeplerianHyperbolic(t *testing.T) {
	o := NewOrbitFromOE(-20000, 1.5, 35, 10, 20, 30, Earth)
	prop := NewKeplerianPropagator(o, testEpoch)
	if _, err := prop.Propagate(testEpoch.Add(time.Hour)); err == nil {
		t.Fatal("hyperbolic propagation should error")
	}
}

func TestNumericalTwoBody(t *testing.T) {
	o := NewOrbitFromOE(7000, 0, 30, 40, 0, 0, Earth)
	num := NewNumericalPropagator(o, testEpoch, Perturbations{}, StepSize)
	analytical := NewKeplerianPropagator(o, testEpoch)
	target := testEpoch.Add(30 * time.Minute)
	numState, err := num.Propagate(target)
	if err != nil {
		t.Fatal(err)
	}
	kepState, err := analytical.Propagate(target)
	if err != nil {
		t.Fatal(err)
	}
	numR, numV := numState.RV()
	kepR, kepV := kepState.RV()
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(numR[i], kepR[i], 1e-3) {
			t.Fatalf("R[%d]: %f != %f", i, numR[i], kepR[i])
		}
		if !floats.EqualWithinAbs(numV[i], kepV[i], 1e-6) {
			t.Fatalf("V[%d]: %f != %f", i, numV[i], kepV[i])
		}
	}
	if !floats.EqualWithinAbs(numState.Orbit.RNorm(), 7000, 1e-2) {
		t.Fatalf("circular radius drifted to %f", numState.Orbit.RNorm())
	}
}

func TestNumericalBackward(t *testing.T) {
	o := NewOrbitFromOE(7000, 0, 30, 40, 0, 0, Earth)
	num := NewNumericalPropagator(o, testEpoch, Perturbations{}, StepSize)
	if _, err := num.Propagate(testEpoch.Add(-time.Hour)); err == nil {
		t.Fatal("backward propagation should error")
	}
}

func TestNumericalJ2(t *testing.T) {
	o := NewOrbitFromOE(7000, 0.001, 51.6, 40, 10, 0, Earth)
	num := NewNumericalPropagator(o, testEpoch, Perturbations{Jn: 2}, StepSize)
	state, err := num.Propagate(testEpoch.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	// J2 only drives short period oscillations of the radius.
	if r := state.Orbit.RNorm(); r < 6900 || r > 7100 {
		t.Fatalf("implausible radius %f under J2", r)
	}
}

func TestPerturbations(t *testing.T) {
	o := NewOrbitFromOE(7000, 0.001, 51.6, 40, 10, 0, Earth)
	none := Perturbations{}
	for i, v := range none.Perturb(*o, testEpoch) {
		if v != 0 {
			t.Fatalf("no-perturbation entry %d = %f", i, v)
		}
	}
	j2 := Perturbations{Jn: 2}
	pert := j2.Perturb(*o, testEpoch)
	for i := 0; i < 3; i++ {
		if pert[i] != 0 {
			t.Fatalf("J2 should not perturb the position derivative (entry %d)", i)
		}
	}
	if norm(pert[3:6]) == 0 {
		t.Fatal("J2 acceleration is zero")
	}
}
