package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

func pinholeConfig() CameraConfig {
	return CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90.0,
		AspectRatio:   1.0,
		Aperture:      0.0,
		FocusDistance: 1.0,
	}
}

func TestCamera_GetRay_Pinhole(t *testing.T) {
	camera := NewCamera(pinholeConfig())

	tests := []struct {
		name              string
		s, t              float64
		expectedDirection core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-1, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(1, 1, -1)},
		{"lower right", 1, 0, core.NewVec3(1, -1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Pinhole cameras never touch the sampler
			ray := camera.GetRay(tt.s, tt.t, nil)
			if !ray.Origin.Equals(core.NewVec3(0, 0, 0)) {
				t.Errorf("Expected origin at camera center, got %v", ray.Origin)
			}
			if ray.Direction.Subtract(tt.expectedDirection).Length() > 1e-9 {
				t.Errorf("Expected direction %v, got %v", tt.expectedDirection, ray.Direction)
			}
		})
	}
}

func TestCamera_AspectRatio(t *testing.T) {
	config := pinholeConfig()
	config.AspectRatio = 2.0
	camera := NewCamera(config)

	ray := camera.GetRay(1, 0.5, nil)
	expected := core.NewVec3(2, 0, -1)
	if ray.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected direction %v, got %v", expected, ray.Direction)
	}
}

func TestCamera_FocusDistanceScalesViewport(t *testing.T) {
	config := pinholeConfig()
	config.FocusDistance = 4.0
	camera := NewCamera(config)

	ray := camera.GetRay(0, 0, nil)
	expected := core.NewVec3(-4, -4, -4)
	if ray.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected direction %v, got %v", expected, ray.Direction)
	}
}

func TestCamera_AutoFocusDistance(t *testing.T) {
	config := pinholeConfig()
	config.LookAt = core.NewVec3(0, 0, -3)
	config.FocusDistance = 0
	camera := NewCamera(config)

	ray := camera.GetRay(0.5, 0.5, nil)
	if ray.Direction.Subtract(core.NewVec3(0, 0, -3)).Length() > 1e-9 {
		t.Errorf("Auto focus should place the focus plane at the look-at point, got %v", ray.Direction)
	}
}

func TestCamera_ApertureConvergesOnFocusPlane(t *testing.T) {
	config := CameraConfig{
		Center:        core.NewVec3(3, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.5,
		FocusDistance: 2.0,
	}
	camera := NewCamera(config)
	lensless := config
	lensless.Aperture = 0
	pinhole := NewCamera(lensless)
	sampler := core.NewSeededSampler(42)

	// All lens rays for a given (s, t) pass through the same focus-plane point
	target := pinhole.GetRay(0.3, 0.7, nil).At(1)
	for i := 0; i < 200; i++ {
		ray := camera.GetRay(0.3, 0.7, sampler)
		if ray.Origin.Subtract(config.Center).Length() > config.Aperture/2+1e-9 {
			t.Fatalf("Ray origin %v is outside the lens", ray.Origin)
		}
		if ray.At(1).Subtract(target).Length() > 1e-9 {
			t.Fatalf("Ray does not pass through the focus point: %v vs %v", ray.At(1), target)
		}
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := pinholeConfig()
	merged := MergeCameraConfig(base, CameraConfig{VFov: 20, Aperture: 0.1})

	if merged.VFov != 20 || merged.Aperture != 0.1 {
		t.Errorf("Override fields not applied: %+v", merged)
	}
	if merged.Center != base.Center || merged.LookAt != base.LookAt || merged.AspectRatio != base.AspectRatio {
		t.Errorf("Zero override fields should keep base values: %+v", merged)
	}
	if math.Abs(merged.FocusDistance-base.FocusDistance) > 0 {
		t.Errorf("Expected focus distance %f, got %f", base.FocusDistance, merged.FocusDistance)
	}
}
