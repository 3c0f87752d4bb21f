package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pthm-cable/quadstar/components"
	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/mapgen"
	"github.com/pthm-cable/quadstar/pathfind"
	"github.com/pthm-cable/quadstar/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mapPath := flag.String("map", "", "ASCII map file (empty = generate)")
	kind := flag.String("kind", "", "Generator kind: random, cave or clear (empty = use config)")
	size := flag.Int("size", 0, "Generated map side length, power of two (0 = use config)")
	walls := flag.Float64("walls", -1, "Wall frequency in [0,1] (negative = use config)")
	seed := flag.Uint64("seed", 0, "Generator seed (0 = use config)")
	startFlag := flag.String("start", "", "Start cell as x,y (empty = top-left)")
	goalFlag := flag.String("goal", "", "Goal cell as x,y (empty = bottom-right)")
	heuristic := flag.String("heuristic", "", "Heuristic name (empty = use config)")
	render := flag.Bool("render", false, "Print the map with the path drawn over it")
	exportPath := flag.String("export", "", "Write the result as JSON to this file")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *kind != "" {
		cfg.Map.Kind = *kind
	}
	if *size > 0 {
		cfg.Map.Size = *size
	}
	if *walls >= 0 {
		cfg.Map.WallFrequency = *walls
	}
	if *seed != 0 {
		cfg.Map.Seed = *seed
	}
	if *heuristic != "" {
		cfg.Search.Heuristic = *heuristic
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, *mapPath, *startFlag, *goalFlag, *render, *exportPath); err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, mapPath, startFlag, goalFlag string, render bool, exportPath string) error {
	var (
		rows [][]uint8
		err  error
	)
	if mapPath != "" {
		rows, err = mapgen.ParseFile(mapPath)
		if err != nil {
			return err
		}
	}
	side := cfg.Map.Size
	if rows != nil {
		side = len(rows)
	}

	start, err := parsePoint(startFlag, components.Point{})
	if err != nil {
		return fmt.Errorf("parsing -start: %w", err)
	}
	goal, err := parsePoint(goalFlag, components.Point{X: side - 1, Y: side - 1})
	if err != nil {
		return fmt.Errorf("parsing -goal: %w", err)
	}

	if rows == nil {
		rows, err = mapgen.Generate(mapgen.Params{
			Kind:          cfg.Map.Kind,
			Size:          cfg.Map.Size,
			WallFrequency: cfg.Map.WallFrequency,
			NoiseScale:    cfg.Map.NoiseScale,
			Seed:          cfg.Map.Seed,
			Keep:          []components.Point{start, goal},
		})
		if err != nil {
			return err
		}
	}

	h, err := pathfind.HeuristicByName(cfg.Search.Heuristic)
	if err != nil {
		return err
	}
	if w := cfg.Search.HeuristicWeight; w != 0 && w != 1 {
		h = pathfind.Weighted(h, w)
	}

	p, err := pathfind.New(rows,
		pathfind.WithMaxExpansions(cfg.Search.MaxExpansions),
		pathfind.WithMapOptions(pathfind.WithNodeCapacity(cfg.Search.NodeCapacity)),
	)
	if err != nil {
		return fmt.Errorf("building planner: %w", err)
	}

	began := time.Now()
	res, err := p.FindPath(start, goal, h)
	elapsed := time.Since(began)
	if err != nil && !errors.Is(err, pathfind.ErrExpansionLimit) {
		return err
	}

	m := p.Map()
	slog.Info("search complete",
		"size", m.Width(),
		"start", start.String(),
		"goal", goal.String(),
		"heuristic", cfg.Search.Heuristic,
		"found", res.Found,
		"cost", res.Cost,
		"steps", len(res.Path),
		"expanded", res.Expanded,
		"obstacles", m.ObstacleCount(),
		"walk_blocks", m.WalkableBlocks(),
		"compression", m.CompressionRate(),
		"elapsed_us", elapsed.Microseconds(),
	)

	if render {
		fmt.Print(mapgen.Format(rows, res.Path))
	}

	if exportPath != "" {
		export := telemetry.PathExport{
			Size:      m.Width(),
			Start:     start,
			Goal:      goal,
			Heuristic: cfg.Search.Heuristic,
			Found:     res.Found,
			Cost:      res.Cost,
			Expanded:  res.Expanded,
			Steps:     res.Path,
		}
		if err := telemetry.WriteJSON(exportPath, export); err != nil {
			return err
		}
	}
	return err
}

// parsePoint reads "x,y". An empty string yields def.
func parsePoint(s string, def components.Point) (components.Point, error) {
	if s == "" {
		return def, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return components.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return components.Point{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return components.Point{}, err
	}
	return components.Point{X: x, Y: y}, nil
}
