package astrofit

// Parameter is a single named scalar that an estimation process may adjust.
// Ordering and equality are evaluated only with respect to name, so sorted
// collections of parameters are sorted lexicographically.
type Parameter struct {
	name      string
	value     float64
	estimated bool
}

// NewParameter returns a parameter with the given name and initial value. If
// estimated is set, the parameter is free to be adjusted.
func NewParameter(name string, value float64, estimated bool) *Parameter {
	return &Parameter{name, value, estimated}
}

// Name returns the name of this parameter.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the current value.
func (p *Parameter) Value() float64 {
	return p.value
}

// SetValue updates the current value.
func (p *Parameter) SetValue(value float64) {
	p.value = value
}

// Estimated returns whether this parameter is adjusted or fixed.
func (p *Parameter) Estimated() bool {
	return p.estimated
}

// SetEstimated configures the estimation status.
func (p *Parameter) SetEstimated(estimated bool) {
	p.estimated = estimated
}

// Equals returns whether both parameters share the same name.
func (p *Parameter) Equals(o *Parameter) bool {
	return o != nil && p.name == o.name
}

// Parameters implements sort.Interface over a parameter list, by name.
type Parameters []*Parameter

func (p Parameters) Len() int           { return len(p) }
func (p Parameters) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p Parameters) Less(i, j int) bool { return p[i].name < p[j].name }

// Names returns the parameter names, in list order.
func (p Parameters) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.name
	}
	return names
}

// Find returns the parameter with the given name, or nil.
func (p Parameters) Find(name string) *Parameter {
	for _, param := range p {
		if param.name == name {
			return param
		}
	}
	return nil
}
