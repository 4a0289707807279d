package astrofit

import (
	"fmt"
	"math"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// UnknownParameterError reports a free parameter name which the builder does
// not support.
type UnknownParameterError struct {
	Name string
}

func (e UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter '%s'", e.Name)
}

// PropagatorConverter fits the model of a propagator builder onto a reference
// trajectory, by adjusting the initial Cartesian state and the requested free
// model parameters until the weighted residuals are minimized. It converts,
// for example, a numerically integrated trajectory into the best matching
// analytical propagator.
//
// A converter is stateful: RMS, Evaluations and AdaptedPropagator report on
// the latest fit. It is not safe for concurrent use.
type PropagatorConverter struct {
	builder       PropagatorBuilder
	maxIterations int
	optimizer     *LevenbergMarquardt
	logger        kitlog.Logger
	sample        Sample
	onlyPosition  bool
	rms           float64
	adapted       Propagator
}

// NewPropagatorConverter returns a converter for the given builder. The
// threshold is the absolute cost decrease under which the fit is declared
// converged, and maxIterations bounds each optimization phase.
func NewPropagatorConverter(builder PropagatorBuilder, threshold float64, maxIterations int) *PropagatorConverter {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "fit")
	return &PropagatorConverter{builder: builder, maxIterations: maxIterations,
		optimizer: NewLevenbergMarquardt(threshold), logger: klog}
}

// ConvertPropagator samples the source propagator over the time span and fits
// the builder's model onto the sampled states, using both positions and
// velocities. It returns the adapted propagator.
func (c *PropagatorConverter) ConvertPropagator(source Propagator, timeSpan time.Duration, nbPoints int, freeParameters ...string) (Propagator, error) {
	if err := c.checkParameters(freeParameters); err != nil {
		return nil, err
	}
	states, err := CreateSample(source, timeSpan, nbPoints)
	if err != nil {
		return nil, err
	}
	return c.fit(states, false, freeParameters)
}

// Convert fits the builder's model onto the provided states. With onlyPosition
// set, velocities are ignored by the fit.
func (c *PropagatorConverter) Convert(states Sample, onlyPosition bool, freeParameters ...string) (Propagator, error) {
	if err := c.checkParameters(freeParameters); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("cannot fit an empty sample")
	}
	return c.fit(states, onlyPosition, freeParameters)
}

// RMS returns the root mean square of the unweighted residuals of the latest fit.
func (c *PropagatorConverter) RMS() float64 {
	return c.rms
}

// Evaluations returns the cumulative number of model evaluations spent by this
// converter, warm-up phases included.
func (c *PropagatorConverter) Evaluations() int {
	return c.optimizer.Evaluations()
}

// AdaptedPropagator returns the propagator built from the latest fit, or nil.
func (c *PropagatorConverter) AdaptedPropagator() Propagator {
	return c.adapted
}

// checkParameters rejects free names absent from the builder's catalog before
// any sampling or model evaluation happens.
func (c *PropagatorConverter) checkParameters(freeParameters []string) error {
	available := c.builder.AvailableParameters()
	for _, name := range freeParameters {
		supported := false
		for _, avail := range available {
			if avail == name {
				supported = true
				break
			}
		}
		if !supported {
			return UnknownParameterError{name}
		}
	}
	return nil
}

// fit runs the two phase optimization: a warm-up on a tiny leading sub-sample
// to pull the guess into the convergence basin cheaply, then a refinement over
// the full sample starting from the warm-up optimum.
func (c *PropagatorConverter) fit(states Sample, onlyPosition bool, freeParameters []string) (Propagator, error) {
	c.sample = states
	c.onlyPosition = onlyPosition
	c.adapted = nil
	c.rms = math.NaN()
	c.builder.SetFreeParameters(freeParameters...)
	date := states[0].DT

	// Initial guess: Cartesian state of the first sample point, then the
	// builder's current value for each free parameter.
	initial := make([]float64, 6+len(freeParameters))
	R, V := states[0].RV()
	copy(initial[0:3], R)
	copy(initial[3:6], V)
	for i, name := range freeParameters {
		initial[6+i] = c.builder.ParameterValue(name)
	}

	// With velocities a single point pins the state; position-only needs two.
	warmupLen := 1
	if onlyPosition {
		warmupLen = 2
	}
	point := initial
	if warmupLen < len(states) {
		var err error
		point, err = c.optimize(states[:warmupLen], onlyPosition, date, point)
		if err != nil {
			return nil, err
		}
	}
	point, err := c.optimize(states, onlyPosition, date, point)
	if err != nil {
		return nil, err
	}

	value, err := c.objective(states, onlyPosition, date)(point)
	if err != nil {
		return nil, err
	}
	target, _ := BuildTargets(states, onlyPosition)
	sum := 0.0
	for i := range target {
		r := target[i] - value[i]
		sum += r * r
	}
	c.rms = math.Sqrt(sum / float64(len(target)))
	c.logger.Log("level", "info", "rms", c.rms, "evals", c.optimizer.Evaluations(), "points", len(states))

	c.adapted, err = c.builder.BuildPropagator(date, point)
	if err != nil {
		return nil, err
	}
	return c.adapted, nil
}

// optimize runs one optimization phase over the given states.
func (c *PropagatorConverter) optimize(states Sample, onlyPosition bool, date time.Time, guess []float64) ([]float64, error) {
	target, weight := BuildTargets(states, onlyPosition)
	return c.optimizer.Optimize(c.maxIterations, c.objective(states, onlyPosition, date), target, weight, guess)
}

// objective returns the model function of the fit: build a propagator from the
// candidate parameter vector and evaluate it at every sample epoch, in the
// target vector's layout. Model failures surface as-is.
func (c *PropagatorConverter) objective(states Sample, onlyPosition bool, date time.Time) ObjectiveFunc {
	size := 6
	if onlyPosition {
		size = 3
	}
	return func(point []float64) ([]float64, error) {
		prop, err := c.builder.BuildPropagator(date, point)
		if err != nil {
			return nil, err
		}
		value := make([]float64, 0, len(states)*size)
		for _, state := range states {
			propagated, err := prop.Propagate(state.DT)
			if err != nil {
				return nil, err
			}
			R, V := propagated.RV()
			value = append(value, R...)
			if !onlyPosition {
				value = append(value, V...)
			}
		}
		return value, nil
	}
}
