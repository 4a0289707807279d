package astrofit

import (
	"fmt"
	"time"
)

// PropagatorBuilder constructs a configured propagator from a reference date
// and a flat parameter vector [x y z vx vy vz p1...pk], where the trailing
// values map to the free parameters in the order they were declared.
type PropagatorBuilder interface {
	Centre() CelestialObject
	AvailableParameters() []string
	ParameterValue(name string) float64
	SetFreeParameters(names ...string)
	BuildPropagator(dt time.Time, parameters []float64) (Propagator, error)
}

// KeplerianPropagatorBuilder builds analytical two-body propagators. Its only
// adjustable model parameter is the gravitational parameter μ.
type KeplerianPropagatorBuilder struct {
	centre CelestialObject
	params Parameters
	free   []string
}

// NewKeplerianPropagatorBuilder returns a builder of analytical propagators
// about the given centre.
func NewKeplerianPropagatorBuilder(centre CelestialObject) *KeplerianPropagatorBuilder {
	return &KeplerianPropagatorBuilder{centre: centre,
		params: Parameters{NewParameter("μ", centre.GM(), false)}}
}

// Centre returns the central body whose inertial frame states are expressed in.
func (b *KeplerianPropagatorBuilder) Centre() CelestialObject {
	return b.centre
}

// AvailableParameters lists the names which may be set free.
func (b *KeplerianPropagatorBuilder) AvailableParameters() []string {
	return b.params.Names()
}

// ParameterValue returns the current value of the named parameter, or 0 if unknown.
func (b *KeplerianPropagatorBuilder) ParameterValue(name string) float64 {
	if p := b.params.Find(name); p != nil {
		return p.Value()
	}
	return 0
}

// SetFreeParameters declares which parameters are adjusted by the fit.
func (b *KeplerianPropagatorBuilder) SetFreeParameters(names ...string) {
	b.free = names
	for _, p := range b.params {
		p.SetEstimated(false)
	}
	for _, name := range names {
		if p := b.params.Find(name); p != nil {
			p.SetEstimated(true)
		}
	}
}

// BuildPropagator materializes a propagator from the flat parameter vector.
func (b *KeplerianPropagatorBuilder) BuildPropagator(dt time.Time, parameters []float64) (Propagator, error) {
	centre, err := applyFreeParameters(b.centre, b.free, parameters)
	if err != nil {
		return nil, err
	}
	orbit := NewOrbitFromRV(parameters[0:3], parameters[3:6], centre)
	return NewKeplerianPropagator(orbit, dt), nil
}

// NumericalPropagatorBuilder builds RK4 propagators with Jn perturbations.
// Adjustable model parameters: μ, J2 and J3.
type NumericalPropagatorBuilder struct {
	centre CelestialObject
	perts  Perturbations
	step   time.Duration
	params Parameters
	free   []string
}

// NewNumericalPropagatorBuilder returns a builder of numerical propagators
// about the given centre.
func NewNumericalPropagatorBuilder(centre CelestialObject, perts Perturbations, step time.Duration) *NumericalPropagatorBuilder {
	return &NumericalPropagatorBuilder{centre: centre, perts: perts, step: step,
		params: Parameters{
			NewParameter("μ", centre.GM(), false),
			NewParameter("J2", centre.J2, false),
			NewParameter("J3", centre.J3, false),
		}}
}

// Centre returns the central body whose inertial frame states are expressed in.
func (b *NumericalPropagatorBuilder) Centre() CelestialObject {
	return b.centre
}

// AvailableParameters lists the names which may be set free.
func (b *NumericalPropagatorBuilder) AvailableParameters() []string {
	return b.params.Names()
}

// ParameterValue returns the current value of the named parameter, or 0 if unknown.
func (b *NumericalPropagatorBuilder) ParameterValue(name string) float64 {
	if p := b.params.Find(name); p != nil {
		return p.Value()
	}
	return 0
}

// SetFreeParameters declares which parameters are adjusted by the fit.
func (b *NumericalPropagatorBuilder) SetFreeParameters(names ...string) {
	b.free = names
	for _, p := range b.params {
		p.SetEstimated(false)
	}
	for _, name := range names {
		if p := b.params.Find(name); p != nil {
			p.SetEstimated(true)
		}
	}
}

// BuildPropagator materializes a propagator from the flat parameter vector.
func (b *NumericalPropagatorBuilder) BuildPropagator(dt time.Time, parameters []float64) (Propagator, error) {
	centre, err := applyFreeParameters(b.centre, b.free, parameters)
	if err != nil {
		return nil, err
	}
	orbit := NewOrbitFromRV(parameters[0:3], parameters[3:6], centre)
	return NewNumericalPropagator(orbit, dt, b.perts, b.step), nil
}

// applyFreeParameters overrides the centre's model constants with the trailing
// entries of the flat parameter vector, by free name order.
func applyFreeParameters(centre CelestialObject, free []string, parameters []float64) (CelestialObject, error) {
	if len(parameters) != 6+len(free) {
		return centre, fmt.Errorf("parameter vector has %d entries, expected %d", len(parameters), 6+len(free))
	}
	for i, name := range free {
		val := parameters[6+i]
		switch name {
		case "μ":
			if val <= 0 {
				return centre, fmt.Errorf("non-physical gravitational parameter μ=%f", val)
			}
			centre.μ = val
		case "J2":
			centre.J2 = val
		case "J3":
			centre.J3 = val
		default:
			return centre, fmt.Errorf("unsupported free parameter '%s'", name)
		}
	}
	return centre, nil
}
