// Package localize implements the Monte-Carlo particle-filter localizer:
// prediction from odometry, weight update from range readings, and
// systematic resampling when the effective sample size collapses.
package localize

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/sense"
)

// Particle is one hypothesis of the robot's pose, weighted by how well it
// explains the most recent sensor readings.
type Particle struct {
	Pose   geom.Pose
	Weight float32
}

// Params holds the filter's tunables, fixed at construction per spec.md.
type Params struct {
	N                  int     // particle count
	MotionSigmaX       float32
	MotionSigmaY       float32
	MotionSigmaTheta   float32
	MeasurementSigma   float32
	InitialSpreadM     float32 // default initialize() spread radius
	InitialThetaSpread float32 // default initialize() theta spread (+/-)
}

// DefaultParams returns spec.md's default tunables.
func DefaultParams() Params {
	return Params{
		N:                  100,
		MotionSigmaX:       0.05,
		MotionSigmaY:       0.05,
		MotionSigmaTheta:   0.1,
		MeasurementSigma:   0.1,
		InitialSpreadM:     0.5,
		InitialThetaSpread: 0.05 * math32.Pi,
	}
}

// Filter is a particle filter over planar pose. N is held constant across
// every resample; particle headings are canonicalized whenever read via
// EstimatedPose.
type Filter struct {
	params    Params
	particles []Particle
	rng       *rand.Rand
}

// New creates a filter with the given parameters. N must be positive.
func New(params Params, rng *rand.Rand) (*Filter, error) {
	if params.N <= 0 {
		return nil, ErrInvalidParticleCount
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Filter{params: params, rng: rng}, nil
}

// Initialize seeds N particles uniformly around pose within spreadRadius
// on x/y and the params' theta spread on heading, with equal weights.
func (f *Filter) Initialize(pose geom.Pose, spreadRadius float32) {
	n := f.params.N
	f.particles = make([]Particle, n)
	thetaSpread := f.params.InitialThetaSpread
	weight := 1.0 / float32(n)
	for i := range f.particles {
		f.particles[i] = Particle{
			Pose: geom.Pose{
				X:     pose.X + f.uniform(-spreadRadius/2, spreadRadius/2),
				Y:     pose.Y + f.uniform(-spreadRadius/2, spreadRadius/2),
				Theta: geom.Canonicalize(pose.Theta + f.uniform(-thetaSpread, thetaSpread)),
			},
			Weight: weight,
		}
	}
}

// uniform draws a float32 uniformly from [lo, hi).
func (f *Filter) uniform(lo, hi float32) float32 {
	return lo + float32(f.rng.Float64())*(hi-lo)
}

// Predict advances every particle by the odometry delta plus independent
// uniform noise scaled by the motion sigmas. deltaPosition is the raw 3D
// world-frame position delta; per spec.md's planar-to-world mapping, its Z
// component is used as the planar Y delta. Weights are unchanged.
func (f *Filter) Predict(deltaPosition geom.Vector3, deltaTheta float32) {
	sx, sy, sth := f.params.MotionSigmaX, f.params.MotionSigmaY, f.params.MotionSigmaTheta
	for i := range f.particles {
		p := &f.particles[i].Pose
		p.X += deltaPosition.X + f.uniform(-0.5, 0.5)*sx
		p.Y += deltaPosition.Z + f.uniform(-0.5, 0.5)*sy
		p.Theta = geom.Canonicalize(p.Theta + deltaTheta + f.uniform(-0.5, 0.5)*sth)
	}
}

// Update reweights particles against a batch of sensor readings, then
// normalizes and resamples if the effective sample size has collapsed.
// An empty reading list leaves weights untouched.
func (f *Filter) Update(readings []sense.Reading) {
	if len(readings) == 0 {
		return
	}

	sigma := f.params.MeasurementSigma
	variance := sigma * sigma
	for i := range f.particles {
		p := &f.particles[i]
		var sumSqErr float32
		for _, r := range readings {
			expected := expectedDistance(p.Pose, r.Planar())
			e := expected - r.Distance
			sumSqErr += e * e
		}
		// weight ~ exp(-sum(err^2)/2*sigma^2): the corrected form, where a
		// good match (small error) pushes the exponent toward zero and
		// the weight toward its prior value, rather than the source's
		// sign-flipped exp(-sum(g)) which shrinks weights on a good match.
		p.Weight *= math32.Exp(-sumSqErr / (2 * variance))
	}

	f.normalize()

	if f.effectiveSampleSize() < float32(f.params.N)/2 {
		f.resample()
	}
}

// expectedDistance returns the distance a particle at pose p would expect
// to measure to a hit at planar point q.
func expectedDistance(p geom.Pose, q geom.PlanarPoint) float32 {
	dx := q.X - p.X
	dy := q.Y - p.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// normalize divides every weight by their sum. If the sum underflows to
// zero, every weight resets to 1/N per spec.md's NumericalDegeneracy
// policy.
func (f *Filter) normalize() {
	var sum float32
	for _, p := range f.particles {
		sum += p.Weight
	}
	if sum == 0 {
		uniform := 1.0 / float32(len(f.particles))
		for i := range f.particles {
			f.particles[i].Weight = uniform
		}
		return
	}
	for i := range f.particles {
		f.particles[i].Weight /= sum
	}
}

// effectiveSampleSize returns N_eff = 1 / sum(w^2).
func (f *Filter) effectiveSampleSize() float32 {
	var sumSq float32
	for _, p := range f.particles {
		sumSq += p.Weight * p.Weight
	}
	if sumSq == 0 {
		return 0
	}
	return 1 / sumSq
}

// resample performs systematic resampling: build the cumulative weight
// CDF, draw N independent uniforms in [0, 1), and for each draw clone the
// particle at the first index whose CDF exceeds it.
func (f *Filter) resample() {
	n := len(f.particles)
	cdf := make([]float32, n)
	var running float32
	for i, p := range f.particles {
		running += p.Weight
		cdf[i] = running
	}

	next := make([]Particle, n)
	uniform := 1.0 / float32(n)
	for i := 0; i < n; i++ {
		draw := float32(f.rng.Float64())
		idx := searchCDF(cdf, draw)
		next[i] = Particle{Pose: f.particles[idx].Pose, Weight: uniform}
	}
	f.particles = next
}

// searchCDF returns the first index whose cumulative weight exceeds draw.
func searchCDF(cdf []float32, draw float32) int {
	for i, v := range cdf {
		if draw < v {
			return i
		}
	}
	return len(cdf) - 1
}

// EstimatedPose returns the weighted mean pose: a weighted mean of (x, y)
// and the circular mean of theta via atan2(sum w*sin, sum w*cos), which
// keeps the returned heading canonical by construction.
func (f *Filter) EstimatedPose() geom.Pose {
	var x, y, sinSum, cosSum float32
	for _, p := range f.particles {
		x += p.Weight * p.Pose.X
		y += p.Weight * p.Pose.Y
		sinSum += p.Weight * math32.Sin(p.Pose.Theta)
		cosSum += p.Weight * math32.Cos(p.Pose.Theta)
	}
	return geom.Pose{X: x, Y: y, Theta: geom.Canonicalize(math32.Atan2(sinSum, cosSum))}
}

// Particles returns a snapshot copy of the current particle set, for
// diagnostics and tests.
func (f *Filter) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}
