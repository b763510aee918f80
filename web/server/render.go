package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// handleRenderStream renders progressively, streaming every pass with SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r, renderer.DefaultProgressiveConfig().MaxPasses)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 100)
	raytracer, err := newProgressiveRaytracer(sceneObj, req, NewWebLogger(renderID(), consoleChan, s.log))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.setSSEHeaders(w)

	// Use request context to detect client disconnection
	ctx := r.Context()
	startTime := time.Now()

	_, _, err = raytracer.Render(ctx, func(result renderer.PassResult) error {
		if err := s.flushConsole(w, consoleChan); err != nil {
			return err
		}

		imageData, err := imageToBase64PNG(result.Image)
		if err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}

		return s.sendSSEUpdate(w, ProgressUpdate{
			PassNumber:  result.PassNumber,
			TotalPasses: req.Passes,
			ImageData:   imageData,
			Stats:       newStats(result.Stats),
			IsComplete:  result.IsLast,
			ElapsedMs:   time.Since(startTime).Milliseconds(),
		})
	})

	s.flushConsole(w, consoleChan)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Render error: %v", err))
		return
	}

	s.sendSSEEvent(w, "complete", "Rendering completed")
}

// setSSEHeaders prepares the response for server-sent events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// flushConsole forwards every buffered log message as a console event
func (s *Server) flushConsole(w http.ResponseWriter, consoleChan <-chan ConsoleMessage) error {
	for {
		select {
		case msg := <-consoleChan:
			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			if err := s.sendSSEEvent(w, "console", string(data)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEUpdate sends a progress update via SSE
func (s *Server) sendSSEUpdate(w http.ResponseWriter, update ProgressUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, "progress", string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if flusher, ok := w.(http.Flusher); ok {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		return nil
	}
	return fmt.Errorf("streaming not supported")
}
