package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sphere-raytracer/internal/logger"
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Parameter limits shared by the render endpoints
const (
	minWidth   = 16
	maxWidth   = 2000
	maxSamples = 10000
	maxDepth   = 500
	maxPasses  = 100

	maxVFov          = 179.0
	maxAperture      = 10.0
	maxFocusDistance = 10000.0
)

// Server handles web requests for the sphere raytracer
type Server struct {
	port int
	log  *logger.Logger
}

// NewServer creates a new web server. A nil logger logs INFO and above to stdout.
func NewServer(port int, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewLogger("info")
	}
	return &Server{port: port, log: log}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string `json:"scene"`    // Scene ID from /api/scenes
	Width    int    `json:"width"`    // Image width, 0 = scene default
	Samples  int    `json:"samples"`  // Samples per pixel, 0 = scene default
	MaxDepth int    `json:"maxDepth"` // Maximum bounce depth, 0 = scene default
	Passes   int    `json:"passes"`   // Number of progressive passes
	Seed     int64  `json:"seed"`     // Base random seed

	// Non-zero fields replace the scene camera's settings
	Camera geometry.CameraConfig `json:"camera"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   int64(stats.TotalSamples),
		AverageSamples: stats.AverageSamples,
		MaxSamples:     stats.MaxSamples,
		MinSamples:     stats.MinSamples,
		MaxSamplesUsed: stats.MaxSamplesUsed,
	}
}

// Handler returns the router for all endpoints
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRenderImage)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Infof("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the scenes that can be rendered
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListScenes()
	if err != nil {
		s.log.Warnf("Scene listing incomplete: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": scenes})
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(&RenderRequest{Scene: sceneName})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sceneObj.SamplingConfig
	camera := sceneObj.CameraConfig
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene":   sceneName,
		"spheres": sceneObj.GetPrimitiveCount(),
		"camera": map[string]interface{}{
			"lookFrom":      vecArray(camera.Center),
			"lookAt":        vecArray(camera.LookAt),
			"vfov":          camera.VFov,
			"aspectRatio":   camera.AspectRatio,
			"aperture":      camera.Aperture,
			"focusDistance": camera.FocusDistance,
		},
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
		},
		"limits": map[string]interface{}{
			"width":         map[string]int{"min": minWidth, "max": maxWidth},
			"samples":       map[string]int{"min": 1, "max": maxSamples},
			"depth":         map[string]int{"min": 1, "max": maxDepth},
			"passes":        map[string]int{"min": 1, "max": maxPasses},
			"vfov":          map[string]float64{"min": 0, "max": maxVFov},
			"aperture":      map[string]float64{"min": 0, "max": maxAperture},
			"focusDistance": map[string]float64{"min": 0, "max": maxFocusDistance},
		},
	})
}

// handleRenderImage renders the requested scene and responds with a PNG
func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r, 1)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	raytracer, err := newProgressiveRaytracer(sceneObj, req, NewWebLogger(renderID(), nil, s.log))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	startTime := time.Now()
	img, stats, err := raytracer.Render(r.Context(), nil)
	if err != nil {
		s.log.Errorf("Render of %q aborted: %v", req.Scene, err)
		writeJSONError(w, http.StatusServiceUnavailable, fmt.Sprintf("Render error: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.log.Errorf("Encoding render of %q failed: %v", req.Scene, err)
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(time.Since(startTime).Milliseconds(), 10))
	w.Header().Set("X-Samples-Per-Pixel", strconv.FormatFloat(stats.AverageSamples, 'f', 1, 64))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request, defaultPasses int) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	// Zero means "use the scene's own setting"
	var err error
	if req.Width, err = parseIntParam(query, "width", 0, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(query, "passes", defaultPasses, 1, maxPasses); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", 42, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	if req.Camera.VFov, err = parseFloatParam(query, "vfov", 0, maxVFov); err != nil {
		return nil, err
	}
	if req.Camera.Aperture, err = parseFloatParam(query, "aperture", 0, maxAperture); err != nil {
		return nil, err
	}
	if req.Camera.FocusDistance, err = parseFloatParam(query, "focus_distance", 0, maxFocusDistance); err != nil {
		return nil, err
	}
	if value := query.Get("look_from"); value != "" {
		if req.Camera.Center, err = scene.ParseVec3(value); err != nil {
			return nil, fmt.Errorf("look_from: %w", err)
		}
	}
	if value := query.Get("look_at"); value != "" {
		if req.Camera.LookAt, err = scene.ParseVec3(value); err != nil {
			return nil, fmt.Errorf("look_at: %w", err)
		}
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses an optional float parameter; a missing value is 0
func parseFloatParam(values url.Values, key string, min, max float64) (float64, error) {
	value := values.Get(key)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if !(parsed >= min && parsed <= max) {
		return 0, fmt.Errorf("%s must be between %g and %g, got: %s", key, min, max, value)
	}
	return parsed, nil
}

// createScene builds a listed scene and applies the request overrides.
// Only scenes returned by /api/scenes are accepted, so clients cannot load arbitrary files.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	scenes, err := scene.ListScenes()
	if err != nil {
		s.log.Warnf("Scene listing incomplete: %v", err)
	}

	known := false
	for _, info := range scenes {
		if info.ID == req.Scene {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("unknown scene: %s", req.Scene)
	}

	sceneObj, err := scene.CreateScene(req.Scene, req.Camera)
	if err != nil {
		return nil, err
	}

	if req.Width > 0 {
		sceneObj.SetWidth(req.Width)
	}
	if req.Samples > 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.Samples
	}
	if req.MaxDepth > 0 {
		sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	}
	if err := sceneObj.SamplingConfig.Validate(); err != nil {
		return nil, err
	}
	return sceneObj, nil
}

// newProgressiveRaytracer configures a renderer for the request
func newProgressiveRaytracer(sceneObj *scene.Scene, req *RenderRequest, logger core.Logger) (*renderer.ProgressiveRaytracer, error) {
	sampling := renderer.SamplingConfig{
		SamplesPerPixel: sceneObj.SamplingConfig.SamplesPerPixel,
		MaxDepth:        sceneObj.SamplingConfig.MaxDepth,
	}
	if err := sampling.Validate(); err != nil {
		return nil, err
	}

	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = sampling.SamplesPerPixel
	config.MaxPasses = req.Passes
	config.Seed = req.Seed
	if err := config.Validate(); err != nil {
		return nil, err
	}

	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	return renderer.NewProgressiveRaytracer(sceneObj, width, height, config, sampling, logger), nil
}

func renderID() string {
	return fmt.Sprintf("render-%d", time.Now().UnixNano())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
