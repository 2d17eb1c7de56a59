// Command analyze prints quick, human-readable facts about level files:
// dimensions, crate and target counts and the length of a shortest solution.
// It can also print a solution or dump a level as its label grid.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/solver"
)

const defaultLimit = 2_000_000

// LevelAnalysis summarizes one level file
type LevelAnalysis struct {
	File         string   `json:"file"`
	Name         string   `json:"name"`
	Height       int      `json:"height"`
	Width        int      `json:"width"`
	Crates       int      `json:"crates"`
	Targets      int      `json:"targets"`
	OnTarget     int      `json:"on_target"`
	Solved       bool     `json:"solved"`
	LimitReached bool     `json:"limit_reached,omitempty"`
	Moves        []string `json:"moves"`
	Expanded     int      `json:"expanded"`
	DurationMs   int64    `json:"duration_ms"`
}

func loadBoard(path string) (*engine.LevelConfig, *engine.GameState, error) {
	config, err := engine.LoadLevelConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	board, err := config.NewGame()
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return config, board, nil
}

func analyzeLevel(path string, limit int) (*LevelAnalysis, error) {
	config, board, err := loadBoard(path)
	if err != nil {
		return nil, err
	}

	search := solver.Search(board, solver.Options{MaxExpanded: limit})
	moves := make([]string, len(search.Moves))
	for i, dir := range search.Moves {
		moves[i] = string(dir)
	}

	return &LevelAnalysis{
		File:         filepath.Base(path),
		Name:         config.Name,
		Height:       board.Height(),
		Width:        board.Width(),
		Crates:       len(board.Crates()),
		Targets:      len(board.Targets()),
		OnTarget:     board.CratesOnTargets(),
		Solved:       search.Solved,
		LimitReached: search.LimitReached,
		Moves:        moves,
		Expanded:     search.Expanded,
		DurationMs:   search.Duration.Milliseconds(),
	}, nil
}

func printAnalysis(w io.Writer, a *LevelAnalysis) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", a.File)
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Height, a.Width)
	fmt.Fprintf(w, "Crates: %d, Targets: %d, On target: %d\n", a.Crates, a.Targets, a.OnTarget)

	switch {
	case a.Solved:
		fmt.Fprintf(w, "✅ Shortest solution: %d moves (%d states, %dms)\n", len(a.Moves), a.Expanded, a.DurationMs)
	case a.LimitReached:
		fmt.Fprintf(w, "⚠️  Search stopped after %d states without a solution\n", a.Expanded)
	default:
		fmt.Fprintf(w, "❌ Unsolvable (%d reachable states)\n", a.Expanded)
	}
}

// levelPaths returns args, or every level file of dir when args is empty
func levelPaths(args []string, dir string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var paths []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no level files in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func newApp(w io.Writer) *cli.Command {
	limitFlag := func() cli.Flag {
		return &cli.IntFlag{
			Name:  "limit",
			Value: defaultLimit,
			Usage: "maximum states expanded per search (0 = unlimited)",
		}
	}

	return &cli.Command{
		Name:   "analyze",
		Usage:  "inspect and solve level files",
		Writer: w,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "print dimensions, counts and solution length of levels",
				ArgsUsage: "[files...]",
				Flags: []cli.Flag{
					limitFlag(),
					&cli.StringFlag{Name: "dir", Value: "levels", Usage: "level directory used when no files are given"},
					&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					paths, err := levelPaths(cmd.Args().Slice(), cmd.String("dir"))
					if err != nil {
						return err
					}

					var results []*LevelAnalysis
					for _, path := range paths {
						if err := ctx.Err(); err != nil {
							return err
						}
						analysis, err := analyzeLevel(path, cmd.Int("limit"))
						if err != nil {
							fmt.Fprintf(w, "Error: %v\n", err)
							continue
						}
						results = append(results, analysis)
					}

					if cmd.Bool("json") {
						enc := json.NewEncoder(w)
						enc.SetIndent("", "  ")
						return enc.Encode(results)
					}
					for _, a := range results {
						printAnalysis(w, a)
					}
					return nil
				},
			},
			{
				Name:      "solve",
				Usage:     "print a shortest solution of a level",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{limitFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("solve expects exactly one level file")
					}
					analysis, err := analyzeLevel(cmd.Args().First(), cmd.Int("limit"))
					if err != nil {
						return err
					}
					switch {
					case analysis.Solved:
						fmt.Fprintln(w, strings.Join(analysis.Moves, ","))
						return nil
					case analysis.LimitReached:
						return fmt.Errorf("search stopped after %d states", analysis.Expanded)
					}
					return fmt.Errorf("level %s has no solution", analysis.Name)
				},
			},
			{
				Name:      "dump",
				Usage:     "print a level as its label grid",
				ArgsUsage: "<file>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("dump expects exactly one level file")
					}
					_, board, err := loadBoard(cmd.Args().First())
					if err != nil {
						return err
					}
					data, err := json.Marshal(board.Dump())
					if err != nil {
						return err
					}
					fmt.Fprintln(w, string(data))
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
