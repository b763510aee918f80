package main

import (
	"flag"

	"github.com/df07/go-sphere-raytracer/internal/logger"
	"github.com/df07/go-sphere-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "Also write logs to this file")
	flag.Parse()

	log := logger.NewLogger(*logLevel)
	if *logFile != "" {
		var err error
		if log, err = logger.NewMultiLogger(*logLevel, *logFile); err != nil {
			logger.NewLogger(*logLevel).Fatalf("Error opening log file: %v", err)
		}
	}
	defer log.Close()

	log.Infof("Sphere Raytracer Web Server, scenes listed at http://localhost:%d/api/scenes", *port)

	if err := server.NewServer(*port, log).Start(); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
