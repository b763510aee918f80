package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// recordingShape records the tMax it was queried with
type recordingShape struct {
	inner   Shape
	lastMax float64
}

func (r *recordingShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	r.lastMax = tMax
	return r.inner.Hit(ray, tMin, tMax)
}

func TestShapeList_ClosestHitWins(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(1, 0, 0))
	far := material.NewLambertian(core.NewVec3(0, 0, 1))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	orders := map[string][]Shape{
		"near first": {
			NewSphere(core.NewVec3(0, 0, -2), 0.5, near),
			NewSphere(core.NewVec3(0, 0, -5), 0.5, far),
		},
		"far first": {
			NewSphere(core.NewVec3(0, 0, -5), 0.5, far),
			NewSphere(core.NewVec3(0, 0, -2), 0.5, near),
		},
	}

	for name, shapes := range orders {
		t.Run(name, func(t *testing.T) {
			list := NewShapeList(shapes...)
			hit, isHit := list.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit")
			}
			if math.Abs(hit.T-1.5) > 1e-9 {
				t.Errorf("Expected t=1.5, got %f", hit.T)
			}
			if hit.Material != near {
				t.Error("Expected the nearer sphere's material")
			}
		})
	}
}

func TestShapeList_ShrinksWindow(t *testing.T) {
	first := &recordingShape{inner: NewSphere(core.NewVec3(0, 0, -2), 0.5, nil)}
	second := &recordingShape{inner: NewSphere(core.NewVec3(0, 0, -5), 0.5, nil)}
	list := NewShapeList(first, second)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, isHit := list.Hit(ray, 0.001, 100); !isHit {
		t.Fatal("Expected hit")
	}

	if first.lastMax != 100 {
		t.Errorf("First shape should see the caller's tMax, got %f", first.lastMax)
	}
	if math.Abs(second.lastMax-1.5) > 1e-9 {
		t.Errorf("Second shape should see the shrunken tMax 1.5, got %f", second.lastMax)
	}
}

func TestShapeList_EmptyAndMiss(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	empty := NewShapeList()
	if _, isHit := empty.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Empty list should never report a hit")
	}

	list := NewShapeList()
	list.Add(NewSphere(core.NewVec3(0, 0, -2), 0.5, nil))
	if list.Len() != 1 {
		t.Errorf("Expected 1 shape, got %d", list.Len())
	}
	if hit, isHit := list.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Errorf("Expected miss, got hit at t=%f", hit.T)
	}
}
