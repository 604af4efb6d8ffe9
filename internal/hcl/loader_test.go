package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func load(t *testing.T, content string) (*config.Model, error) {
	t.Helper()
	return NewLoader().LoadFile(context.Background(), writeScript(t, content))
}

func TestLoadFile_FullScript(t *testing.T) {
	m, err := load(t, `
rules {
  move_limit = 12
  step_delay = "50ms"
  modes      = ["loop", "conditions"]
}

player {
  privileged = true
}

puzzle {
  size      = 5
  agent     = [0, 0]
  facing    = "down"
  goal      = [4, 4]
  obstacles = [[1, 1], [2, 2]]
}

program "straight" {
  forward {}
  turn_left {}
  forward {}
}

program "nested" {
  mode = "loop"
  repeat {
    count = 3
    forward {}
    until "obstacle_ahead" {
      turn_right {}
    }
  }
  repeat {}
}
`)
	require.NoError(t, err)

	want := config.DefaultRules()
	want.MoveLimit = 12
	want.StepDelay = 50 * time.Millisecond
	want.Modes = []string{"loop", "conditions"}
	assert.Equal(t, &want, m.Rules)

	assert.Equal(t, &config.Player{Privileged: true}, m.Player)

	require.NotNil(t, m.Puzzle)
	assert.Nil(t, m.Puzzle.Seed)
	assert.Equal(t, &world.Layout{
		Size:      5,
		Start:     world.Pose{Cell: world.Cell{X: 0, Y: 0}, Facing: world.Down},
		Goal:      world.Cell{X: 4, Y: 4},
		Obstacles: []world.Cell{{X: 1, Y: 1}, {X: 2, Y: 2}},
	}, m.Puzzle.Layout)

	wantPrograms := []*config.Program{
		{
			Name: "straight",
			Blocks: []config.Block{
				{Kind: program.Forward},
				{Kind: program.TurnLeft},
				{Kind: program.Forward},
			},
		},
		{
			Name: "nested",
			Mode: "loop",
			Blocks: []config.Block{
				{Kind: program.Repeat, Count: 3, Children: []config.Block{
					{Kind: program.Forward},
					{Kind: program.Conditional, Predicate: program.ObstacleAhead, Children: []config.Block{
						{Kind: program.TurnRight},
					}},
				}},
				{Kind: program.Repeat},
			},
		},
	}
	if diff := cmp.Diff(wantPrograms, m.Programs); diff != "" {
		t.Errorf("programs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_SeededPuzzle(t *testing.T) {
	m, err := load(t, `puzzle { seed = 42 }`)
	require.NoError(t, err)
	require.NotNil(t, m.Puzzle.Seed)
	assert.Equal(t, uint64(42), *m.Puzzle.Seed)
	assert.Nil(t, m.Puzzle.Layout)
	assert.Nil(t, m.Rules)
	assert.Empty(t, m.Programs)
}

func TestLoadFile_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		script string
		expect string
	}{
		{
			name:   "syntax",
			script: `program "x" {`,
			expect: "failed to parse HCL file",
		},
		{
			name:   "duplicate rules",
			script: "rules {}\nrules {}",
			expect: `Duplicate "rules" block`,
		},
		{
			name:   "unknown top-level block",
			script: `robot {}`,
			expect: "failed to decode HCL file",
		},
		{
			name:   "unknown command",
			script: "program \"x\" {\n  jump {}\n}",
			expect: "Unknown command block",
		},
		{
			name:   "until without condition",
			script: "program \"x\" {\n  until {\n    forward {}\n  }\n}",
			expect: "Wrong number of labels",
		},
		{
			name:   "unknown condition",
			script: "program \"x\" {\n  until \"sky_is_blue\" {\n    forward {}\n  }\n}",
			expect: "Unknown condition",
		},
		{
			name:   "command with children",
			script: "program \"x\" {\n  forward {\n    turn_left {}\n  }\n}",
			expect: "Unexpected nested block",
		},
		{
			name:   "stray argument",
			script: "program \"x\" {\n  speed = 3\n}",
			expect: "Unsupported argument",
		},
		{
			name:   "non-numeric count",
			script: "program \"x\" {\n  repeat {\n    count = \"many\"\n  }\n}",
			expect: "Invalid repeat count",
		},
		{
			name:   "bad delay",
			script: `rules { step_delay = "soon" }`,
			expect: "step_delay",
		},
		{
			name:   "seed and layout",
			script: "puzzle {\n  seed  = 1\n  agent = [0, 0]\n  goal  = [1, 1]\n}",
			expect: "seed cannot be combined",
		},
		{
			name:   "half a layout",
			script: `puzzle { agent = [0, 0] }`,
			expect: "needs both agent and goal",
		},
		{
			name:   "short coordinate",
			script: "puzzle {\n  agent = [0]\n  goal  = [1, 1]\n}",
			expect: "coordinate must be [x, y]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, tc.script)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expect)
		})
	}
}

func TestLoad_ThroughConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`rules { grid_size = 4 }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte("program \"p\" {\n  forward {}\n}"), 0o644))

	m, err := config.Load(context.Background(), []config.Loader{NewLoader()}, dir)
	require.NoError(t, err)
	require.NoError(t, m.Resolve())
	assert.Equal(t, 4, m.Rules.GridSize)
	require.Len(t, m.Programs, 1)
	assert.Equal(t, "p", m.Programs[0].Name)
}
