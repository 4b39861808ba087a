package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"

	"github.com/smartpark-vision/parking-monitor/internal/batcher"
	"github.com/smartpark-vision/parking-monitor/internal/config"
	"github.com/smartpark-vision/parking-monitor/internal/detector"
	"github.com/smartpark-vision/parking-monitor/internal/heartbeat"
	"github.com/smartpark-vision/parking-monitor/internal/logger"
	"github.com/smartpark-vision/parking-monitor/internal/metrics"
	"github.com/smartpark-vision/parking-monitor/internal/monitor"
	"github.com/smartpark-vision/parking-monitor/internal/occupancy"
	"github.com/smartpark-vision/parking-monitor/internal/registry"
	"github.com/smartpark-vision/parking-monitor/internal/selection"
	"github.com/smartpark-vision/parking-monitor/internal/statusapi"
	"github.com/smartpark-vision/parking-monitor/internal/store"
	"github.com/smartpark-vision/parking-monitor/internal/video"
)

var (
	// Command-line flags
	videoPath   = flag.String("video", "parking.mp4", "Video source (file, device, or stream URL)")
	slotsPath   = flag.String("slots", "slots.json", "Slot registry file")
	areaID      = flag.String("area", "", "Parking area ID (skips the interactive prompt)")
	httpAddr    = flag.String("http", ":8082", "Status server address (empty disables)")
	metricsAddr = flag.String("metrics", ":9090", "Metrics server address (empty disables)")
	display     = flag.Bool("display", false, "Show annotated frames in a window")
	maxFrames   = flag.Uint64("max-frames", 0, "Stop after this many frames (0 = run forever)")
	logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error, silent)")
	logColor    = flag.Bool("log-color", true, "Enable colored log output")
)

func main() {
	flag.Parse()

	// Initialize logger
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.Init(level, os.Stderr, *logColor)

	logger.Info("Main", "Parking monitor starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	slots, err := registry.Load(*slotsPath)
	if err != nil {
		log.Fatalf("Slot registry error: %v", err)
	}
	logger.Info("Main", "%d slots loaded from %s", len(slots), *slotsPath)

	st, err := store.Connect(store.Credentials{
		URL:      cfg.SupabaseURL,
		Key:      cfg.SupabaseKey,
		Email:    cfg.UserEmail,
		Password: cfg.UserPassword,
	})
	if err != nil {
		log.Fatalf("Backend connection error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	choice, err := resolveArea(ctx, st)
	if err != nil {
		log.Fatalf("Area selection error: %v", err)
	}

	det, err := detector.NewYOLO(detector.Config{
		ModelPath:       cfg.ModelPath,
		ConfigPath:      cfg.ConfigPath,
		ConfidenceFloor: cfg.ConfidenceFloor,
		VehicleClasses:  cfg.VehicleClasses,
	})
	if err != nil {
		log.Fatalf("Detector error: %v", err)
	}
	defer det.Close()

	source, err := video.Open(*videoPath)
	if err != nil {
		log.Fatalf("Video source error: %v", err)
	}
	defer source.Close()

	m := metrics.New()
	clk := clock.New()
	states := occupancy.NewStateMap(slots)
	b := batcher.New(st, states, cfg.FlushInterval, clk, m)
	hb := heartbeat.New(st, choice.SystemID, choice.Area.Name, cfg.HeartbeatInterval, clk, m)

	var holder *statusapi.Holder
	if *httpAddr != "" {
		holder = statusapi.NewHolder()
		statusSrv := statusapi.NewServer(*httpAddr, choice.SystemID, choice.Area.Name, holder)
		go func() {
			logger.Info("Main", "Status server on %s", *httpAddr)
			if err := statusSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Main", "Status server error: %v", err)
			}
		}()
		defer statusSrv.Shutdown(context.Background())
	}

	if *metricsAddr != "" {
		go func() {
			logger.Info("Main", "Metrics server on %s", *metricsAddr)
			if err := m.StartServer(*metricsAddr); err != nil {
				logger.Error("Main", "Metrics server error: %v", err)
			}
		}()
	}

	// Cancel the loop on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Main", "Received %s, shutting down...", sig)
		cancel()
	}()

	mon := monitor.New(monitor.Config{
		AreaID:          choice.Area.ID,
		IoUThreshold:    cfg.IoUThreshold,
		FrameSkip:       cfg.FrameSkip,
		ConfidenceFloor: cfg.ConfidenceFloor,
		VehicleClasses:  cfg.VehicleClasses,
		MaxFrames:       *maxFrames,
		Display:         *display,
	}, source, det, slots, states, b, hb, m, holder, clk)

	if err := mon.Run(ctx); err != nil {
		log.Fatalf("Monitor error: %v", err)
	}

	logger.Info("Main", "Monitor stopped")
}

// resolveArea picks the parking area: the -area flag for unattended
// runs, otherwise the interactive terminal prompt.
func resolveArea(ctx context.Context, st store.Store) (selection.Choice, error) {
	var provider selection.Provider
	if *areaID != "" {
		provider = &selection.Fixed{AreaID: *areaID}
	} else {
		provider = &selection.Terminal{In: os.Stdin, Out: os.Stdout}
	}
	return selection.Resolve(ctx, st, provider)
}
