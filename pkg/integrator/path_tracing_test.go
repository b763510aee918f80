package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// MockMaterial implements material.Material for testing
type MockMaterial struct {
	scatterFn func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool)
}

func (m *MockMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return m.scatterFn(rayIn, hit)
}

// MockShape implements geometry.Shape for testing
type MockShape struct {
	calls int
	hitFn func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}

func (m *MockShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	m.calls++
	return m.hitFn(ray, tMin, tMax)
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

// createDiffuseWorld builds a small diffuse sphere resting on a huge ground sphere
func createDiffuseWorld() *geometry.ShapeList {
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	return geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, gray),
	)
}

func TestRayColor_ZeroDepthIsBlack(t *testing.T) {
	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)),
	}
	worlds := map[string]geometry.Shape{
		"empty":   geometry.NewShapeList(),
		"diffuse": createDiffuseWorld(),
	}

	for name, world := range worlds {
		for _, ray := range rays {
			for _, depth := range []int{0, -3} {
				color := RayColor(ray, world, depth, core.NewSeededSampler(1))
				if !color.Equals(core.Vec3{}) {
					t.Errorf("%s world, depth %d: expected black, got %v", name, depth, color)
				}
			}
		}
	}
}

func TestRayColor_SkyGradient(t *testing.T) {
	world := geometry.NewShapeList()

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight down is white", core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1)},
		{"straight up is sky blue", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"horizon is halfway", core.NewVec3(0, 0, -5), core.NewVec3(0.75, 0.85, 1.0)},
		{"direction length does not matter", core.NewVec3(0, 10, 0), core.NewVec3(0.5, 0.7, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			color := RayColor(ray, world, 50, core.NewSeededSampler(1))
			if !vecNear(color, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, color)
			}
		})
	}
}

func TestRayColor_AbsorptionIsBlack(t *testing.T) {
	absorber := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
			return material.ScatterResult{}, false
		},
	}
	world := geometry.NewShapeList(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, absorber))

	color := RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, 10, core.NewSeededSampler(1))
	if !color.Equals(core.Vec3{}) {
		t.Errorf("Expected black for absorbed ray, got %v", color)
	}
}

func TestRayColor_AttenuationMultipliesSky(t *testing.T) {
	attenuation := core.NewVec3(0.5, 0.25, 1.0)
	bounceUp := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
			return material.ScatterResult{
				Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
				Attenuation: attenuation,
			}, true
		},
	}

	// Only the downward camera ray hits; the scattered ray escapes upward
	shape := &MockShape{
		hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
			if ray.Direction.Y < 0 {
				return &material.HitRecord{
					Point:     core.NewVec3(0, 0, 0),
					Normal:    core.NewVec3(0, 1, 0),
					T:         1.0,
					FrontFace: true,
					Material:  bounceUp,
				}, true
			}
			return nil, false
		},
	}

	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	color := RayColor(ray, shape, 5, core.NewSeededSampler(1))

	expected := attenuation.MultiplyVec(core.NewVec3(0.5, 0.7, 1.0))
	if !vecNear(color, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, color)
	}

	// Depth 1 allows the hit but not the escape
	color = RayColor(ray, shape, 1, core.NewSeededSampler(1))
	if !color.Equals(core.Vec3{}) {
		t.Errorf("Expected black with depth 1, got %v", color)
	}
}

func TestRayColor_DepthBoundsIntersections(t *testing.T) {
	mirror := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord) (material.ScatterResult, bool) {
			return material.ScatterResult{
				Scattered:   core.NewRay(hit.Point, rayIn.Direction.Negate()),
				Attenuation: core.NewVec3(1, 1, 1),
			}, true
		},
	}
	trap := &MockShape{
		hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
			return &material.HitRecord{T: 1, Normal: core.NewVec3(0, 1, 0), Material: mirror}, true
		},
	}

	color := RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0)), trap, 7, nil)
	if !color.Equals(core.Vec3{}) {
		t.Errorf("A path that never escapes should be black, got %v", color)
	}
	if trap.calls != 7 {
		t.Errorf("Expected 7 intersection tests, got %d", trap.calls)
	}
}

func TestRayColor_UsesShadowAcneBound(t *testing.T) {
	var seenMin, seenMax float64
	shape := &MockShape{
		hitFn: func(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
			seenMin, seenMax = tMin, tMax
			return nil, false
		},
	}

	RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), shape, 1, nil)
	if seenMin != TMin {
		t.Errorf("Expected tMin %f, got %f", TMin, seenMin)
	}
	if !math.IsInf(seenMax, 1) {
		t.Errorf("Expected unbounded tMax, got %f", seenMax)
	}
}

// recursiveRayColor is the textbook recursive form, used as a reference
func recursiveRayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}
	hit, isHit := world.Hit(ray, TMin, math.Inf(1))
	if !isHit {
		return DefaultBackground().Color(ray)
	}
	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}
	return scatter.Attenuation.MultiplyVec(recursiveRayColor(scatter.Scattered, world, depth-1, sampler))
}

func TestRayColor_MatchesRecursiveForm(t *testing.T) {
	glass := material.NewDielectric(1.5)
	world := geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
	)
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})

	for i := 0; i < 100; i++ {
		s, tt := float64(i%10)/9, float64(i/10)/9
		ray := camera.GetRay(s, tt, nil)

		loop := RayColor(ray, world, 50, core.NewSeededSampler(int64(i)))
		reference := recursiveRayColor(ray, world, 50, core.NewSeededSampler(int64(i)))
		if !vecNear(loop, reference, 1e-12) {
			t.Fatalf("Ray %d: loop %v differs from recursion %v", i, loop, reference)
		}
	}
}

func TestRayColor_DiffuseSceneEndToEnd(t *testing.T) {
	world := createDiffuseWorld()
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   16.0 / 9.0,
		FocusDistance: 1,
	})

	ray := camera.GetRay(0.5, 0.5, nil)
	hit, isHit := world.Hit(ray, TMin, math.Inf(1))
	if !isHit {
		t.Fatal("Center ray should hit the small sphere")
	}
	if math.Abs(hit.T-0.5) > 1e-9 {
		t.Errorf("Expected t=0.5, got %f", hit.T)
	}
	if hit.Point.Subtract(core.NewVec3(0, 0, -0.5)).Length() > 1e-9 {
		t.Errorf("Expected hit point (0,0,-0.5), got %v", hit.Point)
	}
	if world.Shapes[0].(*geometry.Sphere).Material != hit.Material {
		t.Error("Expected the small sphere's material, not the ground's")
	}

	// Averaged color is a gray fraction of the sky: never brighter than it
	sampler := core.NewSeededSampler(42)
	var sum core.Vec3
	const samples = 200
	for i := 0; i < samples; i++ {
		sum = sum.Add(RayColor(ray, world, 50, sampler))
	}
	mean := sum.Divide(samples)
	if mean.X <= 0 || mean.X >= 1 || mean.Z > 1 {
		t.Errorf("Unexpected average color %v", mean)
	}
	if mean.Z < mean.X {
		t.Errorf("Sky light should keep blue >= red on a gray surface, got %v", mean)
	}
}

func TestPathTracingIntegrator_CustomBackground(t *testing.T) {
	pt := NewPathTracingIntegrator(10)
	pt.Background = Background{Top: core.NewVec3(1, 0, 0), Bottom: core.NewVec3(0, 0, 1)}

	var integrator Integrator = pt
	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), geometry.NewShapeList(), nil)
	if !vecNear(color, core.NewVec3(1, 0, 0), 1e-12) {
		t.Errorf("Expected custom top color, got %v", color)
	}
}
