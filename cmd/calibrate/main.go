package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/smartpark-vision/parking-monitor/internal/calibration"
	"github.com/smartpark-vision/parking-monitor/internal/config"
	"github.com/smartpark-vision/parking-monitor/internal/detector"
	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/selection"
	"github.com/smartpark-vision/parking-monitor/internal/store"
)

var (
	// Command-line flags
	imagePath     = flag.String("image", "reference.jpg", "Reference image of the fully occupied lot")
	slotsPath     = flag.String("slots", "slots.json", "Slot registry output file")
	annotatedPath = flag.String("annotated", "reference_annotated.jpg", "Annotated image output (empty disables)")
	areaID        = flag.String("area", "", "Parking area ID (skips the interactive prompt)")
	logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error, silent)")
	logColor      = flag.Bool("log-color", true, "Enable colored log output")
)

func main() {
	flag.Parse()

	// Initialize logger
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, *logColor)

	logger.Info("Main", "Slot calibration starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	st, err := store.Connect(store.Credentials{
		URL:      cfg.SupabaseURL,
		Key:      cfg.SupabaseKey,
		Email:    cfg.UserEmail,
		Password: cfg.UserPassword,
	})
	if err != nil {
		log.Fatalf("Backend connection error: %v", err)
	}

	ctx := context.Background()

	var provider selection.Provider
	if *areaID != "" {
		provider = &selection.Fixed{AreaID: *areaID}
	} else {
		provider = &selection.Terminal{In: os.Stdin, Out: os.Stdout}
	}
	choice, err := selection.Resolve(ctx, st, provider)
	if err != nil {
		log.Fatalf("Area selection error: %v", err)
	}

	records, err := calibration.Run(ctx, st, choice.Area.ID, calibration.Options{
		ImagePath:     *imagePath,
		RegistryPath:  *slotsPath,
		AnnotatedPath: *annotatedPath,
		Detector: detector.Config{
			ModelPath:       cfg.ModelPath,
			ConfigPath:      cfg.ConfigPath,
			ConfidenceFloor: cfg.ConfidenceFloor,
			VehicleClasses:  cfg.VehicleClasses,
		},
	})
	if err != nil {
		log.Fatalf("Calibration error: %v", err)
	}

	logger.Info("Main", "Calibrated %d slots for %q, registry written to %s",
		len(records), choice.Area.Name, *slotsPath)
}
