package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/df07/go-sphere-raytracer/internal/logger"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType  string
	OutputPath string
	ExportPath string
	Width      int
	Samples    int
	MaxDepth   int
	Passes     int
	Seed       int64
	LookFrom   string  // Camera position override, "x,y,z"
	LookAt     string  // Camera target override, "x,y,z"
	VFov       float64 // Vertical field of view override in degrees
	Aperture   float64
	Focus      float64
	LogLevel   string
	LogFile    string
	List       bool
	Help       bool
}

func parseFlags(args []string) (Config, *flag.FlagSet, error) {
	var config Config
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)

	fs.StringVar(&config.SceneType, "scene", "default", "Built-in scene name or path to a .yaml scene file")
	fs.StringVar(&config.OutputPath, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	fs.StringVar(&config.ExportPath, "export", "", "Write the scene description as YAML to this path and exit")
	fs.IntVar(&config.Width, "width", 0, "Image width in pixels (0 = scene default, height follows the aspect ratio)")
	fs.IntVar(&config.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&config.MaxDepth, "depth", 0, "Maximum ray bounce depth (0 = scene default)")
	fs.IntVar(&config.Passes, "passes", 1, "Number of progressive passes")
	fs.Int64Var(&config.Seed, "seed", 42, "Random seed for sampling")
	fs.StringVar(&config.LookFrom, "look-from", "", "Camera position as x,y,z (default: scene camera)")
	fs.StringVar(&config.LookAt, "look-at", "", "Camera target as x,y,z (default: scene camera)")
	fs.Float64Var(&config.VFov, "vfov", 0, "Vertical field of view in degrees (0 = scene default)")
	fs.Float64Var(&config.Aperture, "aperture", 0, "Lens aperture (0 = scene default)")
	fs.Float64Var(&config.Focus, "focus", 0, "Focus distance (0 = scene default)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&config.LogFile, "log-file", "", "Also write logs to this file")
	fs.BoolVar(&config.List, "list", false, "List available scenes and exit")
	fs.BoolVar(&config.Help, "help", false, "Show help information")

	err := fs.Parse(args)
	return config, fs, err
}

func main() {
	config, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if config.Help {
		showHelp(fs)
		return
	}

	log := logger.NewLogger(config.LogLevel)
	if config.LogFile != "" {
		log, err = logger.NewMultiLogger(config.LogLevel, config.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Close()

	if config.List {
		if err := listScenes(); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filename, err := run(ctx, config, log)
	if err != nil {
		stop()
		log.Fatalf("%v", err)
	}
	if filename != "" {
		log.Infof("Render saved as %s", filename)
	}
}

func showHelp(fs *flag.FlagSet) {
	fmt.Println("Sphere Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	if err := listScenes(); err != nil {
		fmt.Printf("Error listing scenes: %v\n", err)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

func listScenes() error {
	scenes, err := scene.ListScenes()
	fmt.Println("Available scenes:")
	for _, info := range scenes {
		fmt.Printf("  %-24s %s\n", info.ID, info.Description)
	}
	return err
}

// cameraOverride collects the camera flags. Unset flags leave the scene camera alone.
func cameraOverride(config Config) (geometry.CameraConfig, error) {
	override := geometry.CameraConfig{
		VFov:          config.VFov,
		Aperture:      config.Aperture,
		FocusDistance: config.Focus,
	}

	var err error
	if config.LookFrom != "" {
		if override.Center, err = scene.ParseVec3(config.LookFrom); err != nil {
			return override, fmt.Errorf("look-from: %w", err)
		}
	}
	if config.LookAt != "" {
		if override.LookAt, err = scene.ParseVec3(config.LookAt); err != nil {
			return override, fmt.Errorf("look-at: %w", err)
		}
	}
	return override, nil
}

// lookupSceneFile loads the scene description with the camera flags applied
func lookupSceneFile(config Config) (*scene.SceneFile, error) {
	if config.SceneType == "" {
		return nil, fmt.Errorf("no scene given")
	}

	override, err := cameraOverride(config)
	if err != nil {
		return nil, err
	}

	f, err := scene.LookupSceneFile(config.SceneType)
	if err != nil {
		return nil, err
	}
	if err := f.ApplyCameraOverride(override); err != nil {
		return nil, err
	}
	return f, nil
}

// createScene builds the requested scene and applies command line overrides
func createScene(config Config) (*scene.Scene, error) {
	if config.SceneType == "" {
		return nil, fmt.Errorf("no scene given")
	}

	override, err := cameraOverride(config)
	if err != nil {
		return nil, err
	}

	s, err := scene.CreateScene(config.SceneType, override)
	if err != nil {
		return nil, err
	}

	if config.Width > 0 {
		s.SetWidth(config.Width)
	}
	if config.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = config.Samples
	}
	if config.MaxDepth > 0 {
		s.SamplingConfig.MaxDepth = config.MaxDepth
	}
	if err := s.SamplingConfig.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// outputPath returns where the render is written
func outputPath(config Config, sceneName string, now time.Time) string {
	if config.OutputPath != "" {
		return config.OutputPath
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", scene.SceneSlug(sceneName), fmt.Sprintf("render_%s.png", timestamp))
}

// run renders the configured scene and returns the written file name.
// With ExportPath set it writes the scene description instead and returns "".
func run(ctx context.Context, config Config, log *logger.Logger) (string, error) {
	if config.ExportPath != "" {
		f, err := lookupSceneFile(config)
		if err != nil {
			return "", err
		}
		if err := f.Validate(); err != nil {
			return "", err
		}
		if err := scene.SaveSceneFile(f, config.ExportPath); err != nil {
			return "", err
		}
		log.Infof("Scene %q exported to %s", config.SceneType, config.ExportPath)
		return "", nil
	}

	s, err := createScene(config)
	if err != nil {
		return "", err
	}

	sampling := renderer.SamplingConfig{
		SamplesPerPixel: s.SamplingConfig.SamplesPerPixel,
		MaxDepth:        s.SamplingConfig.MaxDepth,
	}
	if err := sampling.Validate(); err != nil {
		return "", err
	}

	progressive := renderer.DefaultProgressiveConfig()
	progressive.MaxSamplesPerPixel = sampling.SamplesPerPixel
	progressive.MaxPasses = config.Passes
	progressive.Seed = config.Seed
	if err := progressive.Validate(); err != nil {
		return "", err
	}

	width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
	log.Infof("Rendering %q at %dx%d, %d samples per pixel, max depth %d, %d spheres",
		s.Name, width, height, sampling.SamplesPerPixel, sampling.MaxDepth, s.GetPrimitiveCount())

	pr := renderer.NewProgressiveRaytracer(s, width, height, progressive, sampling, log)

	startTime := time.Now()
	img, stats, err := pr.Render(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}

	log.Infof("Render completed in %v", time.Since(startTime))
	log.Infof("Samples per pixel: %.1f (range %d - %d)",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)
	log.Debugf("Average luminance: %.3f", renderer.CalculateAverageLuminance(img))

	filename := outputPath(config, s.Name, time.Now())
	if err := savePNG(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

func savePNG(filename string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}
