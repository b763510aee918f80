package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/integrator"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate reports configuration values the renderer cannot work with
func (c SamplingConfig) Validate() error {
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *geometry.Camera
	GetWorld() geometry.Shape
	GetBackground() integrator.Background
}

// Raytracer renders a scene on the calling goroutine
type Raytracer struct {
	scene      Scene
	width      int
	height     int
	config     SamplingConfig
	integrator integrator.Integrator
	sampler    core.Sampler
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, width, height int) *Raytracer {
	rt := &Raytracer{
		scene:   scene,
		width:   width,
		height:  height,
		sampler: core.NewSeededSampler(42), // Deterministic for testing
	}
	rt.SetSamplingConfig(DefaultSamplingConfig())
	return rt
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
	rt.integrator = &integrator.PathTracingIntegrator{
		MaxDepth:   config.MaxDepth,
		Background: rt.scene.GetBackground(),
	}
}

// SetSampler replaces the random source used by RenderPass
func (rt *Raytracer) SetSampler(sampler core.Sampler) {
	rt.sampler = sampler
}

// RenderPass renders the whole image with multi-sampling
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	pixelStats := newPixelStatsGrid(rt.width, rt.height)
	bounds := image.Rect(0, 0, rt.width, rt.height)

	stats := rt.RenderBounds(bounds, pixelStats, rt.sampler, rt.config.SamplesPerPixel)
	return rt.assembleImage(pixelStats), stats
}

// RenderBounds tops up every pixel inside bounds to targetSamples samples.
// Bounds are in image coordinates, where row 0 is the top of the picture.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	camera := rt.scene.GetCamera()
	world := rt.scene.GetWorld()

	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples, // Start with max, will be reduced
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		// Camera t runs bottom to top
		j := rt.height - 1 - y
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[y][i]
			samplesUsed := 0
			for ps.SampleCount < targetSamples {
				s := (float64(i) + sampler.Get1D()) / float64(rt.width)
				t := (float64(j) + sampler.Get1D()) / float64(rt.height)

				ray := camera.GetRay(s, t, sampler)
				ps.AddSample(rt.integrator.RayColor(ray, world, sampler))
				samplesUsed++
			}
			updateStats(&stats, samplesUsed)
		}
	}

	finalizeStats(&stats)
	return stats
}

// assembleImage converts accumulated pixel statistics into an 8-bit image
func (rt *Raytracer) assembleImage(pixelStats [][]PixelStats) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	for y := 0; y < rt.height; y++ {
		for x := 0; x < rt.width; x++ {
			img.SetRGBA(x, y, Vec3ToColor(pixelStats[y][x].GetColor()))
		}
	}
	return img
}

// Vec3ToColor converts an averaged linear color to 8-bit RGBA:
// gamma 2 (square root), clamp to [0, 0.999], then scale by 256
func Vec3ToColor(colorVec core.Vec3) color.RGBA {
	return color.RGBA{
		R: channelToByte(colorVec.X),
		G: channelToByte(colorVec.Y),
		B: channelToByte(colorVec.Z),
		A: 255,
	}
}

func channelToByte(x float64) uint8 {
	// Also catches NaN
	if !(x > 0) {
		return 0
	}
	return uint8(256 * math.Min(math.Sqrt(x), 0.999))
}
