// Package vfh implements vector-field-histogram reactive obstacle
// avoidance: a polar density histogram over nearby sensor readings,
// smoothed and searched for low-density "valleys" aligned with the goal.
package vfh

import (
	"github.com/chewxy/math32"

	"github.com/itohio/navstack/nav/geom"
	"github.com/itohio/navstack/nav/sense"
)

// Params holds the VFH's fixed tunables.
type Params struct {
	NumSectors    int
	SafeDistance  float32
	MaxRange      float32
	TargetWeight  float32 // alpha
	HeadingWeight float32 // beta
	ValleyThresh  float32 // tau
	Kernel        []float32
}

// DefaultParams returns the navigation stack's default VFH tunables.
func DefaultParams() Params {
	return Params{
		NumSectors:    72,
		SafeDistance:  1.0,
		MaxRange:      5.0,
		TargetWeight:  0.5,
		HeadingWeight: 0.3,
		ValleyThresh:  0.3,
		Kernel:        []float32{0.1, 0.2, 0.4, 0.2, 0.1},
	}
}

func (p Params) sectorSize() float32 {
	return 2 * math32.Pi / float32(p.NumSectors)
}

// VFH holds the tunables for direction selection; it carries no
// per-tick state.
type VFH struct {
	params Params
}

// New returns a VFH with the given parameters.
func New(params Params) *VFH {
	return &VFH{params: params}
}

// FindBestDirection builds a density histogram from readings within
// MaxRange, smooths it circularly, finds the lowest-density valleys, and
// returns the valley angle best aligned with targetAngle and the robot's
// current heading. If no valley exists, it returns the current heading
// unchanged (currentVelocity's bearing).
func (v *VFH) FindBestDirection(readings []sense.Reading, targetAngle float32, currentVelocity geom.PlanarPoint) float32 {
	h := v.buildHistogram(readings)
	s := v.smooth(h)
	valleys := v.valleys(s)

	currentAngle := math32.Atan2(currentVelocity.Y, currentVelocity.X)
	if len(valleys) == 0 {
		return currentAngle
	}

	best := valleys[0]
	bestScore := v.valleyScore(best, targetAngle, currentAngle)
	for _, candidate := range valleys[1:] {
		score := v.valleyScore(candidate, targetAngle, currentAngle)
		if score < bestScore {
			best, bestScore = candidate, score
		}
	}
	return best
}

func (v *VFH) valleyScore(angle, targetAngle, currentAngle float32) float32 {
	return v.params.TargetWeight*math32.Abs(geom.AngleDiff(angle, targetAngle)) +
		v.params.HeadingWeight*math32.Abs(geom.AngleDiff(angle, currentAngle))
}

// buildHistogram accumulates a density value per sector: readings closer
// than SafeDistance contribute more, readings beyond it contribute
// (1 - 1) = 0.
func (v *VFH) buildHistogram(readings []sense.Reading) []float32 {
	n := v.params.NumSectors
	h := make([]float32, n)
	sectorSize := v.params.sectorSize()

	for _, r := range readings {
		if r.Distance > v.params.MaxRange {
			continue
		}
		planar := r.Planar()
		angle := math32.Atan2(planar.Y, planar.X)
		angle = math32.Mod(math32.Mod(angle, 2*math32.Pi)+2*math32.Pi, 2*math32.Pi)
		sector := int(angle / sectorSize)
		if sector >= n {
			sector = n - 1
		}
		weight := 1 - minFloat32(r.Distance/v.params.SafeDistance, 1)
		h[sector] += weight
	}
	return h
}

// smooth applies the fixed kernel circularly: S[i] = sum_k kernel[k]*H[(i+k-center) mod n].
func (v *VFH) smooth(h []float32) []float32 {
	n := len(h)
	kernel := v.params.Kernel
	center := len(kernel) / 2
	s := make([]float32, n)
	for i := 0; i < n; i++ {
		var acc float32
		for k, weight := range kernel {
			idx := (i + k - center + n) % n
			acc += weight * h[idx]
		}
		s[i] = acc
	}
	return s
}

// valleys returns the center angle of every local-minimum sector under
// the valley threshold, using circular neighbor comparisons.
func (v *VFH) valleys(s []float32) []float32 {
	n := len(s)
	sectorSize := v.params.sectorSize()
	var out []float32
	for i := 0; i < n; i++ {
		prev := s[(i-1+n)%n]
		next := s[(i+1)%n]
		if s[i] < v.params.ValleyThresh && s[i] <= prev && s[i] <= next {
			angle := (float32(i) + 0.5) * sectorSize
			out = append(out, geom.Canonicalize(angle))
		}
	}
	return out
}

func minFloat32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
