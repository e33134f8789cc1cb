// divevis-demo runs the TUI against an in-process fake backend with a few
// sample dives, so it works without the real prediction service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/config"
	"github.com/ngmaloney/divevis/internal/database"
	"github.com/ngmaloney/divevis/internal/fakebackend"
	"github.com/ngmaloney/divevis/internal/history"
	"github.com/ngmaloney/divevis/internal/logging"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/presets"
	"github.com/ngmaloney/divevis/internal/ui"
)

// measure is shorthand for the typed-in measures of the sample dives.
var measure = models.MeasureOf

// sampleDives are shown on the map at startup
var sampleDives = []models.DiveRecord{
	{ID: "demo-1", Lat: 49.1690, Lon: -2.1740, Date: "2024-05-18T09:40:00", Depth: measure("8"), BreathHoldTime: measure("45"), Visibility: measure("6"), WaterTemp: measure("13"), Notes: "Portelet reef, light swell"},
	{ID: "demo-2", Lat: 49.2500, Lon: -2.0800, Date: "2024-06-02T11:15:00", Depth: measure("12"), TideHeight: measure("2.1"), Visibility: measure("9"), WaterTemp: measure("14"), OutsideTemp: measure("19"), Notes: "Bouley Bay pier, wrasse everywhere"},
	{ID: "demo-3", Lat: 49.1760, Lon: -2.2330, Date: "2024-06-21T07:30:00", Depth: measure("0"), Visibility: measure("4"), Notes: "Snorkel only, green water"},
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error running demo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()

	logger, err := logging.New(logging.Config{Level: "debug", File: "divevis-demo.log", Format: "console"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Fake backend on a free local port
	fake := fakebackend.New(logger)
	fake.Seed(sampleDives...)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting fake backend: %w", err)
	}
	srv := &http.Server{Handler: fake, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Fake backend stopped", zap.Error(err))
		}
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	baseURL := "http://" + ln.Addr().String()
	logger.Info("Fake backend listening", zap.String("url", baseURL))

	// Throwaway database for presets and history
	dir, err := os.MkdirTemp("", "divevis-demo")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	db, err := database.Open(filepath.Join(dir, "demo.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := presets.NewRepository(db)
	if _, err := repo.Provision(cfg.Presets); err != nil {
		return err
	}

	client := api.NewHTTPClient(api.Config{BaseURL: baseURL, Timeout: cfg.Backend.Timeout()}, logger)
	ctrl := ui.NewController(client, ui.Options{
		Page:    ui.PageFromConfig(cfg.Panels),
		Center:  models.Coords{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
		Zoom:    cfg.Map.Zoom,
		Presets: repo,
		History: history.NewRecorder(db),
		Logger:  logger,
	})
	return ui.Run(ctrl)
}
