package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/divelog"
	"github.com/ngmaloney/divevis/internal/models"
	"github.com/ngmaloney/divevis/internal/prediction"
	"github.com/ngmaloney/divevis/internal/render"
	"github.com/ngmaloney/divevis/internal/ui"
	"github.com/ngmaloney/divevis/internal/weather"
)

// =============================================================================
// TUI
// =============================================================================

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive terminal UI (default)",
		Action: runTUI,
	}
}

func runTUI(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	ctrl := ui.NewController(e.client, ui.Options{
		Page:    ui.PageFromConfig(e.cfg.Panels),
		Center:  models.Coords{Lat: e.cfg.Map.CenterLat, Lon: e.cfg.Map.CenterLon},
		Zoom:    e.cfg.Map.Zoom,
		Presets: e.presets,
		History: e.history,
		Logger:  e.logger,
	})
	return ui.Run(ctrl)
}

// =============================================================================
// PREDICT
// =============================================================================

func predictCommand() *cli.Command {
	flags := make([]cli.Flag, 0, len(prediction.Fields))
	for _, field := range prediction.Fields {
		flags = append(flags, &cli.StringFlag{
			Name:  strings.ReplaceAll(field.Key, "_", "-"),
			Usage: field.Label,
		})
	}

	return &cli.Command{
		Name:   "predict",
		Usage:  "Predict visibility; with --lat and --lon missing values are fetched by the backend",
		Flags:  flags,
		Action: runPredict,
	}
}

func runPredict(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	form := prediction.NewForm()
	for _, field := range prediction.Fields {
		form.Set(field.Key, c.String(strings.ReplaceAll(field.Key, "_", "-")))
	}

	ctx, cancel := context.WithTimeout(c.Context, e.cfg.Backend.Timeout())
	defer cancel()

	if req, err := form.Request(); err == nil {
		fmt.Fprintln(os.Stderr, prediction.StatusLine(req))
	}
	outcome := prediction.Submit(ctx, e.client, form)
	return e.finish(models.SourceForm, outcome)
}

// finish prints an outcome, records successful predictions and turns
// failures into a non-zero exit
func (e *env) finish(source string, outcome prediction.Outcome) error {
	fmt.Println(outcome.Text())
	if outcome.Prediction != nil && source != "" {
		if err := e.history.Record(source, *outcome.Prediction); err != nil {
			e.logger.Warn("Failed to record prediction", zap.Error(err))
		}
	}
	if outcome.Err != nil {
		e.logger.Debug("Command failed", zap.Error(outcome.Err))
		return cli.Exit("", 1)
	}
	return nil
}

// =============================================================================
// WEATHER
// =============================================================================

func weatherCommand() *cli.Command {
	return &cli.Command{
		Name:  "weather",
		Usage: "Show current weather at a location, optionally predicting from it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lat", Usage: "Latitude"},
			&cli.StringFlag{Name: "lon", Usage: "Longitude"},
			&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "Use the coordinates of a saved preset"},
			&cli.BoolFlag{Name: "predict", Usage: "Predict visibility using the current wind"},
			&cli.BoolFlag{Name: "stormglass", Usage: "Predict visibility from fetched marine data only"},
			&cli.BoolFlag{Name: "auto-turbidity", Usage: "Let the backend estimate turbidity (with --stormglass)"},
		},
		Action: runWeather,
	}
}

func runWeather(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	coords := weather.Coordinates{Lat: c.String("lat"), Lon: c.String("lon")}
	if name := c.String("preset"); name != "" {
		list, err := e.presets.List()
		if err != nil {
			return err
		}
		found := false
		for _, p := range list {
			if strings.EqualFold(p.Name, name) {
				coords = coords.ApplyPreset(models.FormatNumber(p.Latitude), models.FormatNumber(p.Longitude))
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no preset named %q", name)
		}
	}

	// Two calls may run back to back.
	ctx, cancel := context.WithTimeout(c.Context, 2*e.cfg.Backend.Timeout())
	defer cancel()

	switch {
	case c.Bool("stormglass"):
		fmt.Fprintln(os.Stderr, weather.StatusStormglass)
		return e.finish(models.SourceStormglass, weather.StormglassPredict(ctx, e.client, coords, c.Bool("auto-turbidity")))
	case c.Bool("predict"):
		fmt.Fprintln(os.Stderr, weather.StatusChained)
		return e.finish(models.SourceWeather, weather.WeatherThenPredict(ctx, e.client, coords))
	default:
		return e.finish("", weather.FetchWeather(ctx, e.client, coords))
	}
}

// =============================================================================
// DIVES & LOGBOOK
// =============================================================================

func divesCommand() *cli.Command {
	return &cli.Command{
		Name:   "dives",
		Usage:  "List logged dives, newest first",
		Action: runDives,
	}
}

func runDives(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(c.Context, e.cfg.Backend.Timeout())
	defer cancel()

	log := divelog.New(e.client, models.Coords{Lat: e.cfg.Map.CenterLat, Lon: e.cfg.Map.CenterLon}, e.cfg.Map.Zoom, e.logger)
	log.Load(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(render.DiveColumns, "\t"))
	for _, row := range log.Rows() {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	fmt.Fprintln(os.Stderr, log.Status)
	return nil
}

func logbookCommand() *cli.Command {
	return &cli.Command{
		Name:   "logbook",
		Usage:  "Print the dive logbook",
		Action: runLogbook,
	}
}

func runLogbook(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(c.Context, e.cfg.Backend.Timeout())
	defer cancel()

	for _, line := range divelog.LoadLogbook(ctx, e.client, time.Local) {
		fmt.Println(line)
	}
	return nil
}

// =============================================================================
// PRESETS & HISTORY
// =============================================================================

func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "Manage saved locations",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved locations",
				Action: runPresetsList,
			},
			{
				Name:      "import",
				Usage:     "Import dive sites from a point shapefile (.shp or .zip)",
				ArgsUsage: "<path>",
				Action:    runPresetsImport,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved location",
				ArgsUsage: "<name>",
				Action:    runPresetsDelete,
			},
		},
	}
}

func runPresetsList(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	list, err := e.presets.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No presets saved.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Name\tLat\tLon\tSource")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, render.Coordinate(p.Latitude), render.Coordinate(p.Longitude), p.Source)
	}
	return w.Flush()
}

func runPresetsImport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: divevis presets import <path>", 2)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.presets.Import(c.Args().First(), e.logger)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d preset(s)\n", n)
	return nil
}

func runPresetsDelete(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: divevis presets delete <name>", 2)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.presets.Delete(c.Args().First()); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", c.Args().First())
	return nil
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent successful predictions",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "How many entries to show"},
		},
		Action: runHistory,
	}
}

func runHistory(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.history.Latest(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No predictions recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "When\tSource\tRegion\tLocation\tVisibility (m)\tData")
	for _, h := range entries {
		location := render.NotAvailable
		if h.Lat != nil && h.Lon != nil {
			location = render.LatLon(*h.Lat, *h.Lon)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.CreatedAt.Local().Format("2006-01-02 15:04"),
			h.Source, h.Region, location,
			render.Fixed(h.VisibilityM, 2), h.DataSource)
	}
	return w.Flush()
}
