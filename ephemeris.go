package astrofit

import (
	"fmt"
	"sort"
	"time"
)

// ChebyshevPV is one polynomial segment of a tabulated ephemeris: each
// Cartesian position component is a Chebyshev series over a normalized time
// within [start, start+duration], and velocity is the analytical derivative of
// that series.
type ChebyshevPV struct {
	start    time.Time
	duration float64 // seconds
	xCoeffs  []float64
	yCoeffs  []float64
	zCoeffs  []float64
}

// NewChebyshevPV returns a segment starting at the given date with the given
// duration. The three coefficient slices must share the same length.
func NewChebyshevPV(start time.Time, duration time.Duration, xCoeffs, yCoeffs, zCoeffs []float64) (*ChebyshevPV, error) {
	if len(xCoeffs) == 0 || len(xCoeffs) != len(yCoeffs) || len(xCoeffs) != len(zCoeffs) {
		return nil, fmt.Errorf("inconsistent Chebyshev coefficient lengths (%d, %d, %d)", len(xCoeffs), len(yCoeffs), len(zCoeffs))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("segment duration must be strictly positive")
	}
	return &ChebyshevPV{start.UTC(), duration.Seconds(), xCoeffs, yCoeffs, zCoeffs}, nil
}

// Start returns the start of the validity span.
func (c *ChebyshevPV) Start() time.Time {
	return c.start
}

// InRange returns whether the date falls within this segment's validity span.
func (c *ChebyshevPV) InRange(dt time.Time) bool {
	offset := dt.Sub(c.start).Seconds()
	return offset >= 0 && offset <= c.duration
}

// PositionVelocity evaluates the segment at the given date. The Chebyshev
// recursion and its derivative run in lockstep, and the velocity carries the
// 2/duration scale of the time normalization.
func (c *ChebyshevPV) PositionVelocity(dt time.Time) (R, V []float64) {
	t := 2*dt.Sub(c.start).Seconds()/c.duration - 1
	vScale := 2 / c.duration
	R = make([]float64, 3)
	V = make([]float64, 3)
	// T0 = 1, T1 = t and their derivatives.
	pkm2, pkm1 := 1.0, t
	dkm2, dkm1 := 0.0, 1.0
	for k, coeffs := range [][]float64{c.xCoeffs, c.yCoeffs, c.zCoeffs} {
		R[k] = coeffs[0]
		if len(coeffs) > 1 {
			R[k] += coeffs[1] * t
			V[k] = coeffs[1] * vScale
		}
	}
	for i := 2; i < len(c.xCoeffs); i++ {
		pk := 2*t*pkm1 - pkm2
		dk := 2*pkm1 + 2*t*dkm1 - dkm2
		for k, coeffs := range [][]float64{c.xCoeffs, c.yCoeffs, c.zCoeffs} {
			R[k] += coeffs[i] * pk
			V[k] += coeffs[i] * dk * vScale
		}
		pkm2, pkm1 = pkm1, pk
		dkm2, dkm1 = dkm1, dk
	}
	return R, V
}

// EphemerisPropagator serves states from a piecewise Chebyshev ephemeris. It
// makes tabulated trajectories usable as a conversion source.
type EphemerisPropagator struct {
	segments []*ChebyshevPV
	origin   CelestialObject
	initial  SpacecraftState
}

// NewEphemerisPropagator returns a propagator over the given segments, sorted
// by start date. The initial state is the first segment evaluated at its start.
func NewEphemerisPropagator(segments []*ChebyshevPV, origin CelestialObject) (*EphemerisPropagator, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("an ephemeris needs at least one segment")
	}
	sorted := append([]*ChebyshevPV(nil), segments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start.Before(sorted[j].start) })
	p := &EphemerisPropagator{segments: sorted, origin: origin}
	R, V := sorted[0].PositionVelocity(sorted[0].start)
	p.initial = SpacecraftState{sorted[0].start, *NewOrbitFromRV(R, V, origin)}
	return p, nil
}

// InitialState returns the initial state.
func (p *EphemerisPropagator) InitialState() SpacecraftState {
	return p.initial
}

// ResetInitialState resets the propagator to the provided state.
func (p *EphemerisPropagator) ResetInitialState(s SpacecraftState) {
	p.initial = s
}

// Propagate evaluates the ephemeris at the requested time. Dates outside all
// segments are an error.
func (p *EphemerisPropagator) Propagate(dt time.Time) (SpacecraftState, error) {
	for _, seg := range p.segments {
		if seg.InRange(dt) {
			R, V := seg.PositionVelocity(dt)
			return SpacecraftState{dt.UTC(), *NewOrbitFromRV(R, V, p.origin)}, nil
		}
	}
	return SpacecraftState{}, fmt.Errorf("date %s outside of the ephemeris range", dt)
}
