package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	converter *Converter
}

// NewLoader creates a new HCL script loader.
func NewLoader() *Loader {
	return &Loader{converter: NewConverter()}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string { return []string{".hcl"} }

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Rules    []*rulesBlock   `hcl:"rules,block"`
	Players  []*playerBlock  `hcl:"player,block"`
	Puzzles  []*puzzleBlock  `hcl:"puzzle,block"`
	Programs []*programBlock `hcl:"program,block"`
}

type rulesBlock struct {
	GridSize              *int     `hcl:"grid_size,optional"`
	ObstacleCount         *int     `hcl:"obstacle_count,optional"`
	MoveLimit             *int     `hcl:"move_limit,optional"`
	CommandLimit          *int     `hcl:"command_limit,optional"`
	PerConditionLimit     *int     `hcl:"per_condition_limit,optional"`
	MaxAttemptsPerMode    *int     `hcl:"max_attempts_per_mode,optional"`
	MaxGenerationAttempts *int     `hcl:"max_generation_attempts,optional"`
	StepDelay             *string  `hcl:"step_delay,optional"`
	Modes                 []string `hcl:"modes,optional"`
}

type playerBlock struct {
	Privileged bool `hcl:"privileged,optional"`
}

type puzzleBlock struct {
	Seed      *uint64        `hcl:"seed,optional"`
	Size      *int           `hcl:"size,optional"`
	Agent     hcl.Expression `hcl:"agent,optional"`
	Facing    *string        `hcl:"facing,optional"`
	Goal      hcl.Expression `hcl:"goal,optional"`
	Obstacles hcl.Expression `hcl:"obstacles,optional"`
}

type programBlock struct {
	Name string  `hcl:"name,label"`
	Mode *string `hcl:"mode,optional"`
	Body hcl.Body `hcl:",remain"`
}

// LoadFile implements config.Loader.
func (l *Loader) LoadFile(ctx context.Context, file string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing HCL script.", "file", file)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	if diags := uniqueBlocks(hclFile.Body, "rules", "player", "puzzle"); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	model := &config.Model{}
	var err error
	if len(root.Rules) == 1 {
		if model.Rules, err = translateRules(root.Rules[0]); err != nil {
			return nil, fmt.Errorf("%s: rules: %w", file, err)
		}
	}
	if len(root.Players) == 1 {
		model.Player = &config.Player{Privileged: root.Players[0].Privileged}
	}
	if len(root.Puzzles) == 1 {
		if model.Puzzle, err = l.translatePuzzle(ctx, root.Puzzles[0]); err != nil {
			return nil, fmt.Errorf("%s: puzzle: %w", file, err)
		}
	}
	for _, p := range root.Programs {
		prog, diags := l.translateProgram(ctx, p)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		model.Programs = append(model.Programs, prog)
	}

	logger.Debug("HCL script loaded.", "file", file, "programs", len(model.Programs))
	return model, nil
}

// uniqueBlocks reports every repetition of the named singleton blocks.
func uniqueBlocks(body hcl.Body, names ...string) hcl.Diagnostics {
	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil
	}
	var diags hcl.Diagnostics
	seen := make(map[string]bool, len(names))
	for _, block := range syntaxBody.Blocks {
		for _, name := range names {
			if block.Type != name {
				continue
			}
			if seen[name] {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"" + name + "\" block",
					Detail:   "Only one \"" + name + "\" block is allowed.",
					Subject:  block.DefRange().Ptr(),
				})
			}
			seen[name] = true
		}
	}
	return diags
}

func translateRules(b *rulesBlock) (*config.Rules, error) {
	r := config.DefaultRules()
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&r.GridSize, b.GridSize)
	setInt(&r.ObstacleCount, b.ObstacleCount)
	setInt(&r.MoveLimit, b.MoveLimit)
	setInt(&r.CommandLimit, b.CommandLimit)
	setInt(&r.PerConditionLimit, b.PerConditionLimit)
	setInt(&r.MaxAttemptsPerMode, b.MaxAttemptsPerMode)
	setInt(&r.MaxGenerationAttempts, b.MaxGenerationAttempts)
	if b.StepDelay != nil {
		d, err := time.ParseDuration(*b.StepDelay)
		if err != nil {
			return nil, fmt.Errorf("step_delay: %w", err)
		}
		r.StepDelay = d
	}
	if b.Modes != nil {
		r.Modes = b.Modes
	}
	return &r, nil
}

func (l *Loader) translatePuzzle(ctx context.Context, b *puzzleBlock) (*config.Puzzle, error) {
	var agent, goal []int
	var obstacles [][]int

	hasAgent, err := l.converter.DecodeExpr(ctx, b.Agent, &agent)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	hasGoal, err := l.converter.DecodeExpr(ctx, b.Goal, &goal)
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	if _, err := l.converter.DecodeExpr(ctx, b.Obstacles, &obstacles); err != nil {
		return nil, fmt.Errorf("obstacles: %w", err)
	}

	fixed := hasAgent || hasGoal
	switch {
	case b.Seed != nil && fixed:
		return nil, fmt.Errorf("seed cannot be combined with a fixed layout")
	case b.Seed != nil:
		return &config.Puzzle{Seed: b.Seed}, nil
	case !hasAgent || !hasGoal:
		return nil, fmt.Errorf("a fixed puzzle needs both agent and goal, or use seed")
	}

	size := 0
	if b.Size != nil {
		size = *b.Size
	}
	facing := ""
	if b.Facing != nil {
		facing = *b.Facing
	}
	layout, err := config.FixedLayout(size, agent, facing, goal, obstacles)
	if err != nil {
		return nil, err
	}
	return &config.Puzzle{Layout: layout}, nil
}
