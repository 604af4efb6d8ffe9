package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/interpreter"
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/session"
)

// Result is the outcome of one scripted program.
type Result struct {
	Program  string
	Mode     program.Mode
	Outcome  interpreter.Outcome
	Reason   string
	Moves    int
	Commands int
	// Rejected counts the blocks the session refused, subtrees included.
	Rejected int
}

// play puts a fresh board in place, rebuilds the program block by block
// through the session edit operations and runs it.
func (a *App) play(ctx context.Context, s *session.Session, p *config.Program) (Result, error) {
	ctx = ctxlog.With(ctx, "program", p.Name)
	logger := ctxlog.FromContext(ctx)

	if err := a.installPuzzle(ctx, s); err != nil {
		return Result{}, err
	}
	for _, v := range s.Program() {
		if err := s.Remove(ctx, v.ID); err != nil {
			return Result{}, err
		}
	}

	if p.Mode != "" {
		m, err := program.ParseMode(p.Mode)
		if err != nil {
			return Result{}, err
		}
		if err := s.SetMode(ctx, m); err != nil {
			logger.Warn("Mode not switched, building in the current mode.", "wanted", m.String(), "mode", s.Mode().String())
		}
	}

	rejected := build(ctx, s, p.Blocks, program.Root)
	logger.Debug("Program built.", "blocks", len(s.Program()), "rejected", rejected)
	fmt.Fprintf(a.outW, "▶ %s (%s mode)\n", p.Name, s.Mode())

	r, err := s.Run(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Program:  p.Name,
		Mode:     s.Mode(),
		Outcome:  r.Outcome,
		Reason:   r.Reason,
		Moves:    r.Moves,
		Commands: r.Commands,
		Rejected: rejected,
	}, nil
}

// installPuzzle puts the script's puzzle on the board: the fixed layout, the
// seeded board, or a random one.
func (a *App) installPuzzle(ctx context.Context, s *session.Session) error {
	switch pz := a.model.Puzzle; {
	case pz != nil && pz.Layout != nil:
		return s.LoadPuzzle(ctx, *pz.Layout)
	case pz != nil && pz.Seed != nil:
		return s.GenerateSeeded(ctx, *pz.Seed)
	default:
		return s.Generate(ctx)
	}
}

// build inserts blocks under parent in order. A refused block is skipped
// together with its children; the count of skipped blocks is returned.
func build(ctx context.Context, s *session.Session, blocks []config.Block, parent program.ID) int {
	var rejected int
	for _, b := range blocks {
		id, err := s.Insert(ctx, b.Spec(), parent)
		if err != nil {
			rejected += b.Len()
			continue
		}
		rejected += build(ctx, s, b.Children, id)
	}
	return rejected
}
