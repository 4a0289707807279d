package astrofit

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
)

const (
	// StepSize is the default step size of numerical propagation.
	StepSize = 10 * time.Second
	// keplerε is the convergence tolerance of the Kepler equation solver.
	keplerε = 1e-12
)

// SpacecraftState is one point of a trajectory. The core never mutates it, it
// only reads position, velocity and the gravitational parameter.
type SpacecraftState struct {
	DT    time.Time
	Orbit Orbit
}

// RV returns the radius and velocity vectors of this state.
func (s SpacecraftState) RV() ([]float64, []float64) {
	return s.Orbit.RV()
}

// Mu returns the gravitational parameter of the state's origin body.
func (s SpacecraftState) Mu() float64 {
	return s.Orbit.Origin.GM()
}

// String implements the Stringer interface.
func (s SpacecraftState) String() string {
	return fmt.Sprintf("%s @ %s", s.Orbit, s.DT)
}

// Propagator computes spacecraft states at requested times from an initial condition.
type Propagator interface {
	InitialState() SpacecraftState
	Propagate(dt time.Time) (SpacecraftState, error)
	ResetInitialState(s SpacecraftState)
}

// KeplerianPropagator propagates an orbit analytically via the Kepler equation.
// It only models two-body motion: a, e, i, Ω and ω stay constant, the true
// anomaly is advanced by the mean motion.
type KeplerianPropagator struct {
	initial SpacecraftState
}

// NewKeplerianPropagator returns an analytical propagator for the given orbit and epoch.
func NewKeplerianPropagator(o *Orbit, epoch time.Time) *KeplerianPropagator {
	return &KeplerianPropagator{SpacecraftState{epoch.UTC(), *o}}
}

// InitialState returns the initial state.
func (p *KeplerianPropagator) InitialState() SpacecraftState {
	return p.initial
}

// ResetInitialState resets the propagator to the provided state.
func (p *KeplerianPropagator) ResetInitialState(s SpacecraftState) {
	p.initial = s
}

// Propagate returns the state at the requested time.
func (p *KeplerianPropagator) Propagate(dt time.Time) (SpacecraftState, error) {
	o := p.initial.Orbit
	if o.e >= 1 {
		return SpacecraftState{}, fmt.Errorf("kepler: parabolic and hyperbolic orbits not supported (e=%f)", o.e)
	}
	Δt := dt.Sub(p.initial.DT).Seconds()
	M := math.Mod(o.MeanAnomaly()+o.MeanMotion()*Δt, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	E, err := solveKepler(M, o.e)
	if err != nil {
		return SpacecraftState{}, err
	}
	sinE, cosE := math.Sincos(E)
	sinν := math.Sqrt(1-o.e*o.e) * sinE / (1 - o.e*cosE)
	cosν := (cosE - o.e) / (1 - o.e*cosE)
	return SpacecraftState{dt.UTC(), *o.WithTrueAnomaly(math.Atan2(sinν, cosν))}, nil
}

// solveKepler finds the eccentric anomaly E such that M = E - e sinE, via
// Newton iterations seeded at M.
func solveKepler(M, e float64) (float64, error) {
	E := M
	if e > 0.8 {
		// The M seed diverges for high eccentricities.
		E = math.Pi
	}
	for iter := 0; iter < 50; iter++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) < keplerε {
			return E, nil
		}
		E -= f / (1 - e*math.Cos(E))
	}
	return 0, fmt.Errorf("kepler: no convergence for M=%f e=%f", M, e)
}

// NumericalPropagator integrates the Cartesian two-body equations of motion
// with optional Jn perturbations, using a fixed step RK4.
type NumericalPropagator struct {
	initial SpacecraftState
	Perts   Perturbations
	step    time.Duration
	logger  kitlog.Logger
	// Integration state, valid during a Propagate call only.
	orbit  Orbit
	dt     time.Time
	stopDT time.Time
}

// NewNumericalPropagator returns a new numerical propagator with the provided
// perturbations and time step.
func NewNumericalPropagator(o *Orbit, epoch time.Time, perts Perturbations, step time.Duration) *NumericalPropagator {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "prop")
	return &NumericalPropagator{initial: SpacecraftState{epoch.UTC(), *o}, Perts: perts, step: step, logger: klog}
}

// InitialState returns the initial state.
func (p *NumericalPropagator) InitialState() SpacecraftState {
	return p.initial
}

// ResetInitialState resets the propagator to the provided state.
func (p *NumericalPropagator) ResetInitialState(s SpacecraftState) {
	p.initial = s
}

// Propagate integrates from the initial state until the requested time is
// reached. Backward propagation is not supported.
func (p *NumericalPropagator) Propagate(dt time.Time) (SpacecraftState, error) {
	if dt.Before(p.initial.DT) {
		return SpacecraftState{}, fmt.Errorf("cannot propagate backward from %s to %s", p.initial.DT, dt)
	}
	p.orbit = p.initial.Orbit
	p.dt = p.initial.DT
	p.stopDT = dt
	ode.NewRK4(0, p.step.Seconds(), p).Solve() // Blocking.
	return SpacecraftState{p.dt, p.orbit}, nil
}

// GetState returns the state for the integrator.
func (p *NumericalPropagator) GetState() (s []float64) {
	s = make([]float64, 6)
	R, V := p.orbit.RV()
	for i := 0; i < 3; i++ {
		s[i] = R[i]
		s[i+3] = V[i]
	}
	return
}

// SetState sets the updated state.
func (p *NumericalPropagator) SetState(t float64, s []float64) {
	R := []float64{s[0], s[1], s[2]}
	V := []float64{s[3], s[4], s[5]}
	p.orbit = *NewOrbitFromRV(R, V, p.orbit.Origin)
	if p.orbit.RNorm() < p.orbit.Origin.Radius {
		p.logger.Log("level", "critical", "subsys", "astro", "collided", p.orbit.Origin.Name, "dt", p.dt, "r", p.orbit.RNorm(), "radius", p.orbit.Origin.Radius)
	}
	p.dt = p.dt.Add(p.step)
}

// Stop implements the stop call of the integrator.
func (p *NumericalPropagator) Stop(t float64) bool {
	return !p.dt.Before(p.stopDT)
}

// Func is the two-body Cartesian equation of motion with perturbations.
func (p *NumericalPropagator) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 6)
	R := []float64{f[0], f[1], f[2]}
	V := []float64{f[3], f[4], f[5]}
	tmpOrbit := NewOrbitFromRV(R, V, p.orbit.Origin)
	bodyAcc := -tmpOrbit.Origin.μ / math.Pow(tmpOrbit.RNorm(), 3)
	// d\vec{R}/dt
	fDot[0] = f[3]
	fDot[1] = f[4]
	fDot[2] = f[5]
	// d\vec{V}/dt
	fDot[3] = bodyAcc * f[0]
	fDot[4] = bodyAcc * f[1]
	fDot[5] = bodyAcc * f[2]
	pert := p.Perts.Perturb(*tmpOrbit, p.dt)
	for i := 0; i < 6; i++ {
		fDot[i] += pert[i]
		if math.IsNaN(fDot[i]) {
			panic(fmt.Errorf("fDot[%d]=NaN @ dt=%s\tR=%+v\tV=%+v", i, p.dt, R, V))
		}
	}
	return
}
