package core

import (
	"math"
	"math/rand"
)

// maxRejectionAttempts bounds the rejection-sampling loops. The expected
// number of draws is about 2, so hitting the cap means the sampler is broken.
const maxRejectionAttempts = 1000

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// RandomRange returns a uniform value in [min, max)
func RandomRange(sampler Sampler, minVal, maxVal float64) float64 {
	return minVal + (maxVal-minVal)*sampler.Get1D()
}

// RandomVec3 returns a vector with each component uniform in [0, 1)
func RandomVec3(sampler Sampler) Vec3 {
	return NewVec3(sampler.Get1D(), sampler.Get1D(), sampler.Get1D())
}

// RandomVec3InRange returns a vector with each component uniform in [min, max)
func RandomVec3InRange(sampler Sampler, minVal, maxVal float64) Vec3 {
	return NewVec3(
		RandomRange(sampler, minVal, maxVal),
		RandomRange(sampler, minVal, maxVal),
		RandomRange(sampler, minVal, maxVal),
	)
}

// RandomInUnitSphere returns a uniform point strictly inside the unit ball
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for i := 0; i < maxRejectionAttempts; i++ {
		// Generate random point in [-1,1]³ cube
		p := RandomVec3InRange(sampler, -1, 1)
		// Accept if inside unit sphere
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
	return Vec3{}
}

// RandomUnitVector returns a uniform direction on the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	a := RandomRange(sampler, 0, 2*math.Pi)
	z := RandomRange(sampler, -1, 1)
	r := math.Sqrt(1 - z*z)
	return NewVec3(r*math.Cos(a), r*math.Sin(a), z)
}

// RandomInHemisphere returns a point in the unit ball on the same side as normal
func RandomInHemisphere(sampler Sampler, normal Vec3) Vec3 {
	inUnitSphere := RandomInUnitSphere(sampler)
	if inUnitSphere.Dot(normal) > 0 {
		return inUnitSphere
	}
	return inUnitSphere.Negate()
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for i := 0; i < maxRejectionAttempts; i++ {
		// Generate random point in [-1,1] x [-1,1] square
		p := NewVec3(RandomRange(sampler, -1, 1), RandomRange(sampler, -1, 1), 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
	return Vec3{}
}
