package scene

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
	"github.com/df07/go-sphere-raytracer/pkg/material"
)

// Material type names accepted in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// SceneFile is the YAML description of a scene
type SceneFile struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description,omitempty"`
	Camera      CameraSpec              `yaml:"camera"`
	Sampling    SamplingSpec            `yaml:"sampling"`
	Background  *BackgroundSpec         `yaml:"background,omitempty"` // Default sky when omitted
	Materials   map[string]MaterialSpec `yaml:"materials"`
	Spheres     []SphereSpec            `yaml:"spheres"`
}

// CameraSpec describes the camera. Vectors are [x, y, z] lists.
type CameraSpec struct {
	LookFrom      []float64 `yaml:"look_from"`
	LookAt        []float64 `yaml:"look_at"`
	Up            []float64 `yaml:"up,omitempty"`
	VFov          float64   `yaml:"vfov"`
	AspectRatio   float64   `yaml:"aspect_ratio"`
	Aperture      float64   `yaml:"aperture,omitempty"`
	FocusDistance float64   `yaml:"focus_distance,omitempty"` // 0 focuses on look_at
}

// SamplingSpec holds the recommended render settings
type SamplingSpec struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height,omitempty"` // Derived from aspect_ratio when 0
	SamplesPerPixel int `yaml:"samples_per_pixel"`
	MaxDepth        int `yaml:"max_depth"`
}

// BackgroundSpec is the sky gradient
type BackgroundSpec struct {
	Top    []float64 `yaml:"top"`
	Bottom []float64 `yaml:"bottom"`
}

// MaterialSpec is one named entry of the material table
type MaterialSpec struct {
	Type            string    `yaml:"type"`
	Albedo          []float64 `yaml:"albedo,omitempty"`
	Fuzz            float64   `yaml:"fuzz,omitempty"`
	RefractiveIndex float64   `yaml:"refractive_index,omitempty"`
}

// SphereSpec places a sphere that references a material by name
type SphereSpec struct {
	Center   []float64 `yaml:"center"`
	Radius   float64   `yaml:"radius"`
	Material string    `yaml:"material"`
}

// newSceneFile returns a scene file with every optional setting at its default
func newSceneFile() *SceneFile {
	sampling := DefaultSamplingConfig()
	return &SceneFile{
		Camera: CameraSpec{
			Up:          []float64{0, 1, 0},
			VFov:        90,
			AspectRatio: 16.0 / 9.0,
		},
		Sampling: SamplingSpec{
			Width:           sampling.Width,
			SamplesPerPixel: sampling.SamplesPerPixel,
			MaxDepth:        sampling.MaxDepth,
		},
	}
}

// ParseSceneFile decodes a YAML scene description on top of the defaults
func ParseSceneFile(data []byte) (*SceneFile, error) {
	file := newSceneFile()
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("error parsing scene: %w", err)
	}
	return file, nil
}

// LoadSceneFile reads and decodes a YAML scene description
func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scene file: %w", err)
	}

	file, err := ParseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// SaveSceneFile writes a scene description as YAML, creating parent directories
func SaveSceneFile(file *SceneFile, path string) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("error serializing scene: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating scene directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing scene file: %w", err)
	}
	return nil
}

// Validate checks the description without building anything
func (f *SceneFile) Validate() error {
	_, err := f.Build()
	return err
}

// Build validates the description and constructs the scene.
// Every material is created once and shared by the spheres that name it.
func (f *SceneFile) Build() (*Scene, error) {
	cameraConfig, err := f.cameraConfig()
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	if err := validateCamera(cameraConfig); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	sampling, err := f.samplingConfig(cameraConfig.AspectRatio)
	if err != nil {
		return nil, fmt.Errorf("sampling: %w", err)
	}

	background := integrator.DefaultBackground()
	if f.Background != nil {
		if background.Top, err = toVec3(f.Background.Top); err != nil {
			return nil, fmt.Errorf("background top: %w", err)
		}
		if background.Bottom, err = toVec3(f.Background.Bottom); err != nil {
			return nil, fmt.Errorf("background bottom: %w", err)
		}
	}

	materials, err := f.buildMaterials()
	if err != nil {
		return nil, err
	}

	s := &Scene{
		Name:           f.Name,
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          geometry.NewShapeList(),
		Background:     background,
		SamplingConfig: sampling,
	}

	for i, sphere := range f.Spheres {
		center, err := toVec3(sphere.Center)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: center: %w", i, err)
		}
		// Negative radii are allowed; they flip the normal for hollow shells
		if sphere.Radius == 0 || !isFinite(sphere.Radius) {
			return nil, fmt.Errorf("sphere %d: radius must be finite and non-zero, got %g", i, sphere.Radius)
		}
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: unknown material %q", i, sphere.Material)
		}
		s.AddSphere(center, sphere.Radius, mat)
	}

	return s, nil
}

// ApplyCameraOverride replaces the camera settings named by the non-zero fields of override.
// A new aspect ratio also resets an explicit height so it follows the width again.
func (f *SceneFile) ApplyCameraOverride(override geometry.CameraConfig) error {
	base, err := f.cameraConfig()
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	merged := geometry.MergeCameraConfig(base, override)
	f.Camera = CameraSpec{
		LookFrom:      fromVec3(merged.Center),
		LookAt:        fromVec3(merged.LookAt),
		Up:            fromVec3(merged.Up),
		VFov:          merged.VFov,
		AspectRatio:   merged.AspectRatio,
		Aperture:      merged.Aperture,
		FocusDistance: merged.FocusDistance,
	}
	if override.AspectRatio != 0 {
		f.Sampling.Height = 0
	}
	return nil
}

// cameraConfig converts the camera description without range checks
func (f *SceneFile) cameraConfig() (geometry.CameraConfig, error) {
	lookFrom, err := toVec3(f.Camera.LookFrom)
	if err != nil {
		return geometry.CameraConfig{}, fmt.Errorf("look_from: %w", err)
	}
	lookAt, err := toVec3(f.Camera.LookAt)
	if err != nil {
		return geometry.CameraConfig{}, fmt.Errorf("look_at: %w", err)
	}
	up, err := toVec3(f.Camera.Up)
	if err != nil {
		return geometry.CameraConfig{}, fmt.Errorf("up: %w", err)
	}

	return geometry.CameraConfig{
		Center:        lookFrom,
		LookAt:        lookAt,
		Up:            up,
		VFov:          f.Camera.VFov,
		AspectRatio:   f.Camera.AspectRatio,
		Aperture:      f.Camera.Aperture,
		FocusDistance: f.Camera.FocusDistance,
	}, nil
}

// validateCamera rejects configurations that would produce NaN or degenerate rays
func validateCamera(c geometry.CameraConfig) error {
	switch {
	case !isFiniteVec(c.Center):
		return fmt.Errorf("look_from must be finite, got %v", c.Center)
	case !isFiniteVec(c.LookAt):
		return fmt.Errorf("look_at must be finite, got %v", c.LookAt)
	case !isFiniteVec(c.Up):
		return fmt.Errorf("up must be finite, got %v", c.Up)
	case c.Center.Equals(c.LookAt):
		return fmt.Errorf("look_from and look_at must differ")
	case c.LookAt.Subtract(c.Center).Cross(c.Up).NearZero():
		return fmt.Errorf("up must not be parallel to the view direction")
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("vfov must be in (0, 180), got %g", c.VFov)
	case !(c.AspectRatio >= MinAspectRatio && c.AspectRatio <= MaxAspectRatio):
		return fmt.Errorf("aspect_ratio must be in [%g, %g], got %g", MinAspectRatio, MaxAspectRatio, c.AspectRatio)
	case !(c.Aperture >= 0) || math.IsInf(c.Aperture, 1):
		return fmt.Errorf("aperture must be finite and non-negative, got %g", c.Aperture)
	case !(c.FocusDistance >= 0) || math.IsInf(c.FocusDistance, 1):
		return fmt.Errorf("focus_distance must be finite and non-negative, got %g", c.FocusDistance)
	}
	return nil
}

func (f *SceneFile) samplingConfig(aspectRatio float64) (SamplingConfig, error) {
	s := f.Sampling
	if s.Height < 0 {
		return SamplingConfig{}, fmt.Errorf("height must not be negative, got %d", s.Height)
	}

	config := SamplingConfig{
		Width:           s.Width,
		Height:          s.Height,
		SamplesPerPixel: s.SamplesPerPixel,
		MaxDepth:        s.MaxDepth,
	}
	if config.Height == 0 && s.Width > 0 {
		config.Height = HeightForWidth(s.Width, aspectRatio)
	}
	if err := config.Validate(); err != nil {
		return SamplingConfig{}, err
	}
	return config, nil
}

// buildMaterials creates the shared material table, in name order so errors are stable
func (f *SceneFile) buildMaterials() (map[string]material.Material, error) {
	names := make([]string, 0, len(f.Materials))
	for name := range f.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	materials := make(map[string]material.Material, len(names))
	for _, name := range names {
		mat, err := f.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}
	return materials, nil
}

func (m MaterialSpec) build() (material.Material, error) {
	switch m.Type {
	case MaterialLambertian:
		albedo, err := toAlbedo(m.Albedo)
		if err != nil {
			return nil, fmt.Errorf("albedo: %w", err)
		}
		return material.NewLambertian(albedo), nil
	case MaterialMetal:
		albedo, err := toAlbedo(m.Albedo)
		if err != nil {
			return nil, fmt.Errorf("albedo: %w", err)
		}
		if !(m.Fuzz >= 0) || math.IsInf(m.Fuzz, 1) {
			return nil, fmt.Errorf("fuzz must be finite and non-negative, got %g", m.Fuzz)
		}
		return material.NewMetal(albedo, m.Fuzz), nil
	case MaterialDielectric:
		if !(m.RefractiveIndex > 0) || math.IsInf(m.RefractiveIndex, 1) {
			return nil, fmt.Errorf("refractive_index must be finite and positive, got %g", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	case "":
		return nil, fmt.Errorf("missing type")
	default:
		return nil, fmt.Errorf("unknown type %q", m.Type)
	}
}

// toAlbedo reads a reflectance, which must not add energy on a bounce
func toAlbedo(values []float64) (core.Vec3, error) {
	albedo, err := toVec3(values)
	if err != nil {
		return core.Vec3{}, err
	}
	for i, c := range values {
		if c < 0 || c > 1 {
			return core.Vec3{}, fmt.Errorf("component %d must be in [0, 1], got %g", i, c)
		}
	}
	return albedo, nil
}

func toVec3(values []float64) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(values))
	}
	for i, c := range values {
		if !isFinite(c) {
			return core.Vec3{}, fmt.Errorf("component %d must be finite, got %g", i, c)
		}
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

// ParseVec3 reads a vector written as "x,y,z"
func ParseVec3(text string) (core.Vec3, error) {
	parts := strings.Split(text, ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid vector %q: %w", text, err)
		}
		values[i] = v
	}

	v, err := toVec3(values)
	if err != nil {
		return core.Vec3{}, fmt.Errorf("invalid vector %q: %w", text, err)
	}
	return v, nil
}

func fromVec3(v core.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func isFiniteVec(v core.Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}
