package astrofit

// BuildTargets converts a sample of states into the flat target vector of the
// fit and its matching weight vector. The layout per state is [x y z] when
// onlyPosition is set and [x y z vx vy vz] otherwise, concatenated in sample
// order.
//
// Position components always get a weight of 1. Velocity components get
// v·|r|²/μ, the same scalar for all three components of a point: this
// vis-viva scale normalizes the influence of velocity residuals against
// position residuals.
func BuildTargets(states Sample, onlyPosition bool) (target, weight []float64) {
	size := 6
	if onlyPosition {
		size = 3
	}
	target = make([]float64, len(states)*size)
	weight = make([]float64, len(states)*size)

	k := 0
	for _, state := range states {
		R, V := state.RV()
		for i := 0; i < 3; i++ {
			target[k] = R[i]
			weight[k] = 1
			k++
		}
		if !onlyPosition {
			// Velocity weight relative to position.
			r2 := R[0]*R[0] + R[1]*R[1] + R[2]*R[2]
			vWeight := norm(V) * r2 / state.Mu()
			for i := 0; i < 3; i++ {
				target[k] = V[i]
				weight[k] = vWeight
				k++
			}
		}
	}
	return target, weight
}
