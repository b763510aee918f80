package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, math.Inf(-1), math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_TangentIsMiss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, math.Inf(-1), math.Inf(1)); isHit {
		t.Errorf("Zero discriminant should be a miss, got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_NearAndFarRoots(t *testing.T) {
	const d, r = 3.0, 0.5
	sphere := NewSphere(core.NewVec3(0, 0, 0), r, nil)
	ray := core.NewRay(core.NewVec3(0, 0, d), core.NewVec3(0, 0, -1))

	tests := []struct {
		name      string
		tMin      float64
		tMax      float64
		expectedT float64
	}{
		{"near root", 0.001, math.Inf(1), d - r},
		{"far root when near is below tMin", d - r + 0.1, math.Inf(1), d + r},
		{"negative tMin still prefers the near root", -10, math.Inf(1), d - r},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.Point.Subtract(ray.At(hit.T)).Length() > 1e-12 {
				t.Errorf("Hit point %v does not match ray.At(t)", hit.Point)
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Roots are t=1 and t=3
	tests := []struct {
		name string
		tMin float64
		tMax float64
	}{
		{"tMax before near root", 0.001, 0.5},
		{"tMin after far root", 3.5, 1000.0},
		{"open interval excludes both roots", 1.0, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax); isHit {
				t.Errorf("Expected miss, but got hit at t=%f", hit.T)
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
		{
			name:           "non-unit direction scales t",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -2),
			expectedT:      0.5,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_NegativeRadiusFlipsNormal(t *testing.T) {
	glass := material.NewDielectric(1.5)
	sphere := NewSphere(core.NewVec3(0, 0, 0), -1.0, glass)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Inverted sphere should still be hit")
	}
	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", hit.T)
	}

	// Outward normal points inwards, so the ray arrives from the "inside"
	if hit.FrontFace {
		t.Error("Expected back face hit on inverted sphere")
	}
	if hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Normal should still face the incoming ray, got %v", hit.Normal)
	}
	if hit.Material != glass {
		t.Error("Hit record should reference the sphere's material")
	}
}

func TestSphere_Hit_UnitNormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, -2, 3), 2.5, nil)
	sampler := core.NewSeededSampler(42)

	for i := 0; i < 500; i++ {
		origin := sphere.Center.Add(core.RandomUnitVector(sampler).Multiply(10))
		target := sphere.Center.Add(core.RandomInUnitSphere(sampler).Multiply(2))
		ray := core.NewRay(origin, target.Subtract(origin))

		hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
		if !isHit {
			t.Fatalf("Ray aimed inside the sphere should hit: %v", ray)
		}
		if math.Abs(hit.Normal.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit normal, got length %f", hit.Normal.Length())
		}
		if hit.Normal.Dot(ray.Direction) > 0 {
			t.Fatalf("Normal %v should oppose the ray direction %v", hit.Normal, ray.Direction)
		}
	}
}
