package astrofit

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestOrbitRV2COE(t *testing.T) {
	// From Vallado's RV2COE example, page 114.
	R := []float64{6524.834, 6862.875, 6448.296}
	V := []float64{4.901327, 5.533756, -1.976341}
	o := NewOrbitFromRV(R, V, Earth)
	a, e, i, Ω, ω, ν, _, _, _ := o.Elements()
	if !floats.EqualWithinAbs(a, 36127.343, 1e-1) {
		t.Fatalf("a=%f", a)
	}
	if !floats.EqualWithinAbs(e, 0.832853, 1e-5) {
		t.Fatalf("e=%f", e)
	}
	if !floats.EqualWithinAbs(Rad2deg(i), 87.870, 1e-2) {
		t.Fatalf("i=%f", Rad2deg(i))
	}
	if !floats.EqualWithinAbs(Rad2deg(Ω), 227.898, 1e-2) {
		t.Fatalf("Ω=%f", Rad2deg(Ω))
	}
	if !floats.EqualWithinAbs(Rad2deg(ω), 53.38, 1e-2) {
		t.Fatalf("ω=%f", Rad2deg(ω))
	}
	if !floats.EqualWithinAbs(Rad2deg(ν), 92.335, 1e-2) {
		t.Fatalf("ν=%f", Rad2deg(ν))
	}
	// The cached vectors must be returned as provided.
	gotR, gotV := o.RV()
	if !vectorsEqual(gotR, R) || !vectorsEqual(gotV, V) {
		t.Fatal("cached RV invalid")
	}
}

func TestOrbitCOE2RVRoundTrip(t *testing.T) {
	o0 := NewOrbitFromOE(36127.337764, 0.832853, 87.870, 227.898, 53.38, 92.335, Earth)
	R, V := o0.RV()
	o1 := NewOrbitFromRV(R, V, Earth)
	if ok, err := o0.StrictlyEquals(*o1); !ok {
		t.Fatalf("round trip failed: %s", err)
	}
	// A circular inclined orbit takes the special RV path.
	c0 := NewOrbitFromOE(7000, 0, 30, 40, 0, 0, Earth)
	cR, cV := c0.RV()
	c1 := NewOrbitFromRV(cR, cV, Earth)
	if ok, err := c0.Equals(*c1); !ok {
		t.Fatalf("circular round trip failed: %s", err)
	}
	if !floats.EqualWithinAbs(norm(cR), 7000, distanceε) {
		t.Fatalf("circular radius %f", norm(cR))
	}
}

func TestOrbitAnomalies(t *testing.T) {
	for _, e := range []float64{0.01, 0.2, 0.5, 0.85} {
		for ν := 5.0; ν < 360; ν += 17 {
			o := NewOrbitFromOE(26000, e, 35, 10, 20, ν, Earth)
			M := o.MeanAnomaly()
			E, err := solveKepler(M, e)
			if err != nil {
				t.Fatal(err)
			}
			sinν := math.Sqrt(1-e*e) * math.Sin(E) / (1 - e*math.Cos(E))
			cosν := (math.Cos(E) - e) / (1 - e*math.Cos(E))
			back := math.Mod(math.Atan2(sinν, cosν)+2*math.Pi, 2*math.Pi)
			if ok, err := anglesEqual(back, Deg2rad(ν)); !ok {
				t.Fatalf("e=%f ν=%f: %s", e, ν, err)
			}
		}
	}
}

func TestOrbitMeanMotion(t *testing.T) {
	o := NewOrbitFromOE(7500, 0.1, 30, 40, 50, 60, Earth)
	if !floats.EqualWithinRel(2*math.Pi/o.MeanMotion(), o.Period().Seconds(), 1e-6) {
		t.Fatalf("mean motion %e inconsistent with period %s", o.MeanMotion(), o.Period())
	}
}

func TestOrbitEnergyAndApsides(t *testing.T) {
	o := NewOrbitFromOE(9000, 0.2, 30, 40, 50, 0, Earth)
	if !floats.EqualWithinAbs(o.Periapsis(), 7200, 1e-9) {
		t.Fatalf("periapsis %f", o.Periapsis())
	}
	if !floats.EqualWithinAbs(o.Apoapsis(), 10800, 1e-9) {
		t.Fatalf("apoapsis %f", o.Apoapsis())
	}
	// At periapsis the radius is the periapsis.
	if !floats.EqualWithinAbs(o.RNorm(), o.Periapsis(), 1e-9) {
		t.Fatalf("RNorm %f != periapsis", o.RNorm())
	}
	// Vis-viva consistency.
	visViva := math.Sqrt(2 * (Earth.GM()/o.RNorm() + o.Energyξ()))
	if !floats.EqualWithinAbs(o.VNorm(), visViva, 1e-9) {
		t.Fatalf("VNorm %f != %f", o.VNorm(), visViva)
	}
}
