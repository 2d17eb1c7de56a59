// Command validate checks the level files in a directory and prints a report.
// Files are never modified. For each .json/.yaml/.yml level it checks:
//   - the file parses and has a name and exactly one of layout or level
//   - the grid is rectangular, uses known labels and has exactly one player
//   - crate and target counts match, since a level is won only when every crate is on a target
//   - every crate and target can be reached by the player, ignoring crates
//   - the level is solvable within a bounded breadth-first search
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/solver"
)

// DefaultSearchLimit bounds the solvability check per level
const DefaultSearchLimit = 500_000

// ValidationResult captures the outcome of validating a single file.
// Valid is false as soon as one error is recorded; warnings never
// invalidate a level.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateLevel loads and validates a single level file
func validateLevel(filePath string, searchLimit int) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseLevelConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid level: %v", err)
		return result
	}

	board, err := config.NewGame()
	if err != nil {
		result.fail("Invalid level: %v", err)
		return result
	}

	crates, targets := len(board.Crates()), len(board.Targets())
	switch {
	case targets == 0:
		result.warn("Level has no targets and can never be won")
	case crates != targets:
		result.fail("Crate count does not match target count: %d crates for %d targets", crates, targets)
	}

	if !result.Valid {
		return result
	}

	for _, msg := range unreachableCells(board) {
		result.fail("%s", msg)
	}

	if result.Valid && targets > 0 {
		checkSolvable(&result, board, searchLimit)
	}

	result.info("✓ Name: %s", config.Name)
	result.info("✓ Grid: %dx%d", board.Height(), board.Width())
	result.info("✓ Crates: %d, Targets: %d, On target: %d", crates, targets, board.CratesOnTargets())

	return result
}

// checkSolvable runs a bounded search from the initial board
func checkSolvable(result *ValidationResult, board *engine.GameState, limit int) {
	search := solver.Search(board, solver.Options{MaxExpanded: limit})
	switch {
	case search.Solved:
		result.info("✓ Solvable in %d moves (%d states explored)", len(search.Moves), search.Expanded)
	case search.LimitReached:
		result.warn("Solvability unknown: search stopped after %d states", search.Expanded)
	default:
		result.fail("Unsolvable: no winning state among %d reachable states", search.Expanded)
	}
}

// unreachableCells flood fills from the player over every walkable non-wall
// cell, treating crates as passable, and reports crates and targets that the
// fill never touches. Such a crate can never be pushed and such a target can
// never be covered.
func unreachableCells(board *engine.GameState) []string {
	visited := map[engine.Position]bool{board.Player(): true}
	queue := []engine.Position{board.Player()}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions() {
			delta, _ := dir.Delta()
			next := current.Add(delta)
			if visited[next] || !board.Walkable(next) || board.IsWall(next) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	var problems []string
	for _, crate := range board.Crates() {
		if !visited[crate] {
			problems = append(problems, fmt.Sprintf("Unreachable crate at %s", crate))
		}
	}
	for _, target := range board.Targets() {
		if !visited[target] {
			problems = append(problems, fmt.Sprintf("Unreachable target at %s", target))
		}
	}
	return problems
}

// levelFiles lists the level files of dir in name order
func levelFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResult(result ValidationResult) {
	fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Println("✅ VALID")
	} else {
		fmt.Println("❌ INVALID")
	}
	for _, err := range result.Errors {
		fmt.Println("  ❌ " + err)
	}
	for _, warning := range result.Warnings {
		fmt.Println("  ⚠️  " + warning)
	}
	if result.Valid {
		for _, info := range result.Info {
			fmt.Println("  " + info)
		}
	}
}

// main scans the level directory, validates every file, prints a concise
// report and exits with non-zero status if any level is invalid.
func main() {
	dir := flag.String("dir", "../levels", "Directory containing level files")
	limit := flag.Int("limit", DefaultSearchLimit, "Maximum states expanded by the solvability check (0 = unlimited)")
	flag.Parse()

	files, err := levelFiles(*dir)
	if err != nil {
		fmt.Printf("Error finding level files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No level files found in %s\n", *dir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file, *limit)
		printResult(result)
		if !result.Valid {
			allValid = false
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All levels are valid!")
	} else {
		fmt.Println("❌ Some levels have errors")
		os.Exit(1)
	}
}
