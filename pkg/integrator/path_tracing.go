package integrator

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// TMin is the smallest ray parameter accepted as a hit. It keeps scattered
// rays from re-hitting the surface they start on (shadow acne).
const TMin = 0.001

// PathTracingIntegrator implements depth-limited unidirectional path tracing
type PathTracingIntegrator struct {
	MaxDepth   int        // Maximum number of bounces before a path returns black
	Background Background // Color for rays that escape the scene
}

// NewPathTracingIntegrator creates a path tracer with the default sky
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		MaxDepth:   maxDepth,
		Background: DefaultBackground(),
	}
}

// RayColor implements the Integrator interface
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3 {
	return pt.trace(ray, world, pt.MaxDepth, sampler)
}

// RayColor traces ray through world with the default sky and at most depth bounces
func RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Vec3 {
	pt := PathTracingIntegrator{Background: DefaultBackground()}
	return pt.trace(ray, world, depth, sampler)
}

// trace follows a single path, carrying the product of attenuations so far
// instead of recursing once per bounce
func (pt *PathTracingIntegrator) trace(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)

	for ; depth > 0; depth-- {
		hit, isHit := world.Hit(ray, TMin, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(pt.Background.Color(ray))
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Bounce limit reached, no more light is gathered
	return core.Vec3{}
}
