package renderer

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// testScene is a minimal Scene for renderer tests
type testScene struct {
	camera     *geometry.Camera
	world      *geometry.ShapeList
	background integrator.Background
}

func (s *testScene) GetCamera() *geometry.Camera { return s.camera }
func (s *testScene) GetWorld() geometry.Shape { return s.world }
func (s *testScene) GetBackground() integrator.Background { return s.background }

func newTestCamera(width, height int) *geometry.Camera {
	return geometry.NewCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: float64(width) / float64(height),
	})
}

// newEmptyScene returns a scene where every ray sees the sky
func newEmptyScene(width, height int) *testScene {
	return &testScene{
		camera:     newTestCamera(width, height),
		world:      geometry.NewShapeList(),
		background: integrator.DefaultBackground(),
	}
}

// newDiffuseScene returns the classic diffuse sphere resting on a huge ground sphere
func newDiffuseScene(width, height int) *testScene {
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	return &testScene{
		camera: newTestCamera(width, height),
		world: geometry.NewShapeList(
			geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray),
			geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, gray),
		),
		background: integrator.DefaultBackground(),
	}
}
