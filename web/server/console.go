package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	serverLog   core.Logger
}

// NewWebLogger creates a new web logger for a specific render.
// Messages are also written to serverLog when it is not nil. A nil channel skips the web console.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, serverLog core.Logger) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		serverLog:   serverLog,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.serverLog != nil {
		wl.serverLog.Printf("[%s] %s", wl.renderID, strings.TrimRight(message, "\n"))
	}

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			RenderID:  wl.renderID,
			Message:   message,
			Timestamp: time.Now(),
			Level:     levelOf(message),
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// levelOf guesses a console level from the message text
func levelOf(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error"):
		return "error"
	case strings.Contains(lower, "cancel"), strings.Contains(lower, "warning"):
		return "warning"
	default:
		return "info"
	}
}
