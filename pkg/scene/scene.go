package scene

import (
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.ShapeList // Objects in the scene
	Background     integrator.Background
	SamplingConfig SamplingConfig
}

// Limits on scene image settings
const (
	MaxImageDimension = 8192 // Largest width or height in pixels
	MinAspectRatio    = 0.1
	MaxAspectRatio    = 10.0
)

// SamplingConfig contains the settings a scene recommends rendering with
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns the settings used when a scene leaves them out
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate checks that the image size is bounded and the sample counts are positive
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Width > MaxImageDimension:
		return fmt.Errorf("width must be between 1 and %d, got %d", MaxImageDimension, c.Width)
	case c.Height <= 0 || c.Height > MaxImageDimension:
		return fmt.Errorf("height must be between 1 and %d, got %d", MaxImageDimension, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("samples_per_pixel must be positive, got %d", c.SamplesPerPixel)
	case c.MaxDepth <= 0:
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// HeightForWidth returns the image height matching width at the given aspect ratio
func HeightForWidth(width int, aspectRatio float64) int {
	return max(1, int(float64(width)/aspectRatio))
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *geometry.Camera {
	return s.Camera
}

// GetWorld returns the aggregate of every object in the scene
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackground returns the gradient seen by escaping rays
func (s *Scene) GetBackground() integrator.Background {
	return s.Background
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// SetWidth changes the output width, keeping the camera's aspect ratio
func (s *Scene) SetWidth(width int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = HeightForWidth(width, s.CameraConfig.AspectRatio)
}
