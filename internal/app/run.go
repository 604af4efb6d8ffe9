package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/event"
	"github.com/specialistvlad/blockgridgo/internal/generator"
	"github.com/specialistvlad/blockgridgo/internal/interpreter"
	"github.com/specialistvlad/blockgridgo/internal/render"
	"github.com/specialistvlad/blockgridgo/internal/session"
	"github.com/specialistvlad/blockgridgo/internal/socketsink"
)

// Run plays every program of the script, in order, each on its own board.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.startHealthcheckServer()
	defer a.closeHealthCheckServer(ctx)

	sinks := []event.Sink{
		event.LogSink{},
		a.metrics,
		render.NewSink(a.outW, render.Renderer{Color: a.config.Color}, a.config.Trace),
	}
	if a.config.RelayURL != "" {
		relay, err := socketsink.Dial(ctx, socketsink.Options{URL: a.config.RelayURL, Namespace: a.config.RelayNamespace})
		if err != nil {
			return fmt.Errorf("failed to connect event relay: %w", err)
		}
		defer relay.Close()
		sinks = append(sinks, relay)
	}

	cfg, err := sessionConfig(a.model.Rules)
	if err != nil {
		return err
	}
	s, err := session.New(cfg,
		session.WithSink(event.Multi(sinks...)),
		session.WithPrivileged(a.model.Player.Privileged),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.logger.Info("🚀 Session started", "session", s.ID(), "programs", len(a.model.Programs), "mode", s.Mode().String())

	if len(a.model.Programs) == 0 {
		a.logger.Warn("No programs found in script, showing the puzzle only.")
		if err := a.installPuzzle(ctx, s); err != nil {
			return err
		}
		if snap, ok := s.Snapshot(); ok {
			fmt.Fprint(a.outW, render.Renderer{Color: a.config.Color}.Board(snap))
		}
		return nil
	}

	for _, p := range a.model.Programs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := a.play(ctx, s, p)
		if errors.Is(err, session.ErrLocked) {
			a.logger.Warn("Game locked, remaining programs are skipped.", "program", p.Name)
			break
		}
		if err != nil {
			return fmt.Errorf("program %q: %w", p.Name, err)
		}
		a.results = append(a.results, res)
	}

	a.logger.Info("🏁 Script finished", "score", s.Score(), "played", len(a.results))
	a.logger.Debug("App.Run method finished.")
	return nil
}

func sessionConfig(r *config.Rules) (session.Config, error) {
	modes, err := r.ParsedModes()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Generator: generator.Options{
			Size:        r.GridSize,
			Obstacles:   r.ObstacleCount,
			MaxAttempts: r.MaxGenerationAttempts,
		},
		MoveLimit: r.MoveLimit,
		Limits: interpreter.Limits{
			CommandLimit:      r.CommandLimit,
			PerConditionLimit: r.PerConditionLimit,
		},
		MaxAttempts: r.MaxAttemptsPerMode,
		Modes:       modes,
		StepDelay:   r.StepDelay,
	}, nil
}
