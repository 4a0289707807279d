package astrofit

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// Sample is an ordered sequence of spacecraft states, ascending in time, all
// expressed about a common origin. The first element's epoch defines the
// reference date of a fit.
type Sample []SpacecraftState

// SamplingError reports a propagation failure while building a trajectory sample.
type SamplingError struct {
	DT    time.Time
	Cause error
}

func (e SamplingError) Error() string {
	return fmt.Sprintf("sampling failed at %s: %s", e.DT, e.Cause)
}

func (e SamplingError) Unwrap() error {
	return e.Cause
}

// CreateSample propagates the source over the given time span and returns the
// resulting states at fixed steps. The source's initial state is restored
// before returning, on both success and failure paths.
//
// The stepping loop uses a strict dt < timeSpan condition, so the nominal last
// point at dt == timeSpan is only hit if floating point accumulation lands
// past the span: a request for nbPoints usually yields nbPoints-1 states.
func CreateSample(source Propagator, timeSpan time.Duration, nbPoints int) (Sample, error) {
	if nbPoints < 2 {
		return nil, fmt.Errorf("sampling needs at least 2 points, got %d", nbPoints)
	}
	if timeSpan <= 0 {
		return nil, errors.New("sampling time span must be strictly positive")
	}
	initialState := source.InitialState()
	defer source.ResetInitialState(initialState)

	span := timeSpan.Seconds()
	stepSize := span / float64(nbPoints-1)
	iniDate := initialState.DT
	var states Sample
	for dt := 0.0; dt < span; dt += stepSize {
		epoch := iniDate.Add(time.Duration(dt * float64(time.Second)))
		state, err := source.Propagate(epoch)
		if err != nil {
			return nil, SamplingError{epoch, err}
		}
		states = append(states, state)
	}
	return states, nil
}

// DisperseSample returns a copy of the sample with zero mean Gaussian noise of
// the provided standard deviations (position in km, velocity in km/s) added to
// every state, e.g. to study fit robustness against measurement noise.
func DisperseSample(s Sample, σR, σV float64, seed *rand.Rand) Sample {
	if seed == nil {
		seed = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rNoise, ok := distmv.NewNormal([]float64{0, 0, 0}, mat64.NewSymDense(3, []float64{σR * σR, 0, 0, 0, σR * σR, 0, 0, 0, σR * σR}), seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	vNoise, ok := distmv.NewNormal([]float64{0, 0, 0}, mat64.NewSymDense(3, []float64{σV * σV, 0, 0, 0, σV * σV, 0, 0, 0, σV * σV}), seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	dispersed := make(Sample, len(s))
	for i, state := range s {
		R, V := state.RV()
		δR := rNoise.Rand(nil)
		δV := vNoise.Rand(nil)
		nR := make([]float64, 3)
		nV := make([]float64, 3)
		for j := 0; j < 3; j++ {
			nR[j] = R[j] + δR[j]
			nV[j] = V[j] + δV[j]
		}
		dispersed[i] = SpacecraftState{state.DT, *NewOrbitFromRV(nR, nV, state.Orbit.Origin)}
	}
	return dispersed
}
