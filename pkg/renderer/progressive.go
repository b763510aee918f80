package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize           int   // Size of each tile (64x64 recommended)
	InitialSamples     int   // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int   // Maximum total samples per pixel
	MaxPasses          int   // Maximum number of passes
	Seed               int64 // Base seed for the per-tile random sources
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:           64,
		InitialSamples:     1,
		MaxSamplesPerPixel: 100,
		MaxPasses:          5,
		Seed:               42,
	}
}

// Validate reports configuration values the progressive renderer cannot work with
func (c ProgressiveConfig) Validate() error {
	if c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	if c.MaxPasses <= 0 {
		return fmt.Errorf("max passes must be positive, got %d", c.MaxPasses)
	}
	if c.InitialSamples <= 0 || c.InitialSamples > c.MaxSamplesPerPixel {
		return fmt.Errorf("initial samples must be in [1, %d], got %d", c.MaxSamplesPerPixel, c.InitialSamples)
	}
	return nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// ProgressiveRaytracer refines an image over several passes, visiting tiles in order.
// Every tile owns its random source, so the output depends only on the seed.
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile        // Tile management
	pixelStats    [][]PixelStats // Accumulated samples (global image coordinates)
	raytracer     *Raytracer     // Base raytracer for actual rendering
	logger        core.Logger    // Logger for rendering output
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(scene Scene, width, height int, config ProgressiveConfig, sampling SamplingConfig, logger core.Logger) *ProgressiveRaytracer {
	raytracer := NewRaytracer(scene, width, height)
	raytracer.SetSamplingConfig(sampling)

	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &ProgressiveRaytracer{
		width:      width,
		height:     height,
		config:     config,
		tiles:      NewTileGrid(width, height, config.TileSize, config.Seed),
		pixelStats: newPixelStatsGrid(width, height),
		raytracer:  raytracer,
		logger:     logger,
	}
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		return pr.config.MaxSamplesPerPixel
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	return pr.config.InitialSamples + (passNumber-1)*samplesPerPass
}

// RenderPass tops every tile up to the sample target of the given pass
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (*image.RGBA, RenderStats, error) {
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Printf("Pass %d: Target %d samples per pixel (%d tiles)...\n",
		passNumber, targetSamples, len(pr.tiles))

	for _, tile := range pr.tiles {
		if err := ctx.Err(); err != nil {
			return nil, RenderStats{}, err
		}
		pr.raytracer.RenderBounds(tile.Bounds, pr.pixelStats, tile.Sampler, targetSamples)
		tile.PassesCompleted++
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// Render runs passes until MaxPasses or MaxSamplesPerPixel is reached.
// onPass is called after each pass; returning an error stops rendering.
// The final image is returned even when onPass is nil.
func (pr *ProgressiveRaytracer) Render(ctx context.Context, onPass func(PassResult) error) (*image.RGBA, RenderStats, error) {
	pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

	var img *image.RGBA
	var stats RenderStats

	for pass := 1; pass <= pr.config.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
			return img, stats, err
		}

		startTime := time.Now()

		var err error
		img, stats, err = pr.RenderPass(ctx, pass)
		if err != nil {
			pr.logger.Printf("Rendering cancelled during pass %d\n", pass)
			return img, stats, fmt.Errorf("pass %d: %w", pass, err)
		}

		actualSamples := int(stats.AverageSamples)
		pr.logger.Printf("Pass %d completed in %v (actual: %d samples/pixel)\n",
			pass, time.Since(startTime), actualSamples)

		isLast := pass == pr.config.MaxPasses || actualSamples >= pr.config.MaxSamplesPerPixel
		if onPass != nil {
			if err := onPass(PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}); err != nil {
				return img, stats, fmt.Errorf("pass %d callback: %w", pass, err)
			}
		}

		if isLast {
			break
		}
	}

	return img, stats, nil
}

// assembleCurrentImage creates an image from the current state of the pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))

	stats := RenderStats{
		TotalPixels: pr.width * pr.height,
		MaxSamples:  targetSamples,
		MinSamples:  pr.config.MaxSamplesPerPixel, // Start high, will be reduced
	}

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y][x]
			img.SetRGBA(x, y, Vec3ToColor(pixel.GetColor()))
			updateStats(&stats, pixel.SampleCount)
		}
	}

	finalizeStats(&stats)
	return img, stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-specific random source for deterministic results
}

// NewTile creates a new tile whose random source is derived from seed and id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	id := 0

	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			bounds := image.Rect(x, y, min(x+tileSize, width), min(y+tileSize, height))
			tiles = append(tiles, NewTile(id, bounds, seed))
			id++
		}
	}

	return tiles
}
