package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/fsutil"
)

// ErrNoScripts is returned when the given paths hold no file any loader
// understands.
var ErrNoScripts = errors.New("no script files found")

// Loader is the interface for a format-specific script loader.
type Loader interface {
	// Extensions lists the file name suffixes this loader reads, e.g. ".hcl".
	Extensions() []string
	// LoadFile parses a single file into a partial model.
	LoadFile(ctx context.Context, path string) (*Model, error)
}

// Load reads every script under paths (files or directories), picking the
// loader by extension, and merges the per-file models in path order. A
// directory is walked recursively and its files are read in lexical order.
func Load(ctx context.Context, loaders []Loader, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	byExt := make(map[string]Loader)
	var exts []string
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			byExt[strings.ToLower(ext)] = l
			exts = append(exts, ext)
		}
	}

	files, err := fsutil.FindFiles(paths, exts...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoScripts, strings.Join(paths, ", "))
	}
	logger.Debug("Discovered script files.", "count", len(files))

	merged := &Model{}
	for _, file := range files {
		loader := byExt[strings.ToLower(filepath.Ext(file))]
		m, err := loader.LoadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		if err := merged.merge(m, file); err != nil {
			return nil, err
		}
	}
	logger.Debug("Script loading complete.", "programs", len(merged.Programs), "has_rules", merged.Rules != nil, "has_puzzle", merged.Puzzle != nil)
	return merged, nil
}

func (m *Model) merge(other *Model, file string) error {
	if other.Rules != nil {
		if m.Rules != nil {
			return fmt.Errorf("%s: rules are defined more than once", file)
		}
		m.Rules = other.Rules
	}
	if other.Player != nil {
		if m.Player != nil {
			return fmt.Errorf("%s: player is defined more than once", file)
		}
		m.Player = other.Player
	}
	if other.Puzzle != nil {
		if m.Puzzle != nil {
			return fmt.Errorf("%s: puzzle is defined more than once", file)
		}
		m.Puzzle = other.Puzzle
	}
	for _, p := range other.Programs {
		if slices.ContainsFunc(m.Programs, func(q *Program) bool { return q.Name == p.Name }) {
			return fmt.Errorf("%s: program %q is defined more than once", file, p.Name)
		}
		m.Programs = append(m.Programs, p)
	}
	return nil
}

// Resolve fills in what the script left out: default rules, a non-privileged
// player, and the board size of a fixed puzzle. It then validates the rules.
func (m *Model) Resolve() error {
	if m.Rules == nil {
		r := DefaultRules()
		m.Rules = &r
	}
	if m.Player == nil {
		m.Player = &Player{}
	}
	if m.Puzzle != nil && m.Puzzle.Layout != nil && m.Puzzle.Layout.Size == 0 {
		m.Puzzle.Layout.Size = m.Rules.GridSize
	}
	return m.Rules.Validate()
}
