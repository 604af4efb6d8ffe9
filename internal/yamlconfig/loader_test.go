package yamlconfig

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

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func load(t *testing.T, content string) (*config.Model, error) {
	t.Helper()
	return NewLoader().LoadFile(context.Background(), writeScript(t, "script.yaml", content))
}

func TestLoadFile_FullScript(t *testing.T) {
	m, err := load(t, `
rules:
  move_limit: 12
  step_delay: 50ms
  modes: [loop, conditions]
player:
  privileged: true
puzzle:
  size: 5
  agent: [0, 0]
  facing: down
  goal: [4, 4]
  obstacles: [[1, 1], [2, 2]]
programs:
  - name: straight
    blocks: [forward, turn_left, forward]
  - name: nested
    mode: loop
    blocks:
      - repeat: 3
        do:
          - forward
          - until: obstacle_ahead
            do: [turn_right]
      - repeat: 0
`)
	require.NoError(t, err)

	want := config.DefaultRules()
	want.MoveLimit = 12
	want.StepDelay = 50 * time.Millisecond
	want.Modes = []string{"loop", "conditions"}
	assert.Equal(t, &want, m.Rules)

	assert.Equal(t, &config.Player{Privileged: true}, m.Player)

	require.NotNil(t, m.Puzzle)
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
	m, err := load(t, "puzzle:\n  seed: 42\n")
	require.NoError(t, err)
	require.NotNil(t, m.Puzzle.Seed)
	assert.Equal(t, uint64(42), *m.Puzzle.Seed)
	assert.Nil(t, m.Puzzle.Layout)
	assert.Nil(t, m.Rules)
}

func TestLoadFile_EmptyFile(t *testing.T) {
	m, err := load(t, "")
	require.NoError(t, err)
	assert.Nil(t, m.Rules)
	assert.Nil(t, m.Puzzle)
	assert.Empty(t, m.Programs)
}

func TestLoadFile_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		script string
		expect string
	}{
		{name: "syntax", script: "programs: [", expect: "failed to decode YAML file"},
		{name: "unknown top-level key", script: "robot: {}", expect: "field robot not found"},
		{name: "unknown command", script: "programs:\n  - name: x\n    blocks: [jump]", expect: `unknown command "jump"`},
		{name: "container as scalar", script: "programs:\n  - name: x\n    blocks: [repeat]", expect: "needs a mapping"},
		{name: "both keys", script: "programs:\n  - name: x\n    blocks:\n      - {repeat: 2, until: at_goal}", expect: "either repeat or until"},
		{name: "neither key", script: "programs:\n  - name: x\n    blocks:\n      - {do: [forward]}", expect: "expected a repeat or until key"},
		{name: "unknown condition", script: "programs:\n  - name: x\n    blocks:\n      - {until: sky_is_blue}", expect: `unknown condition "sky_is_blue"`},
		{name: "unnamed program", script: "programs:\n  - blocks: [forward]", expect: "has no name"},
		{name: "unknown rules key", script: "rules:\n  move_limt: 5", expect: "field move_limt not found"},
		{name: "bad delay", script: "rules:\n  step_delay: soon", expect: "rules"},
		{name: "seed and layout", script: "puzzle:\n  seed: 1\n  agent: [0, 0]\n  goal: [1, 1]", expect: "seed cannot be combined"},
		{name: "half a layout", script: "puzzle:\n  agent: [0, 0]", expect: "needs both agent and goal"},
		{name: "short coordinate", script: "puzzle:\n  agent: [0]\n  goal: [1, 1]", expect: "coordinate must be [x, y]"},
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
	writeFile := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	writeFile("rules.yml", "rules:\n  grid_size: 4\n  obstacle_count: 2\n")
	writeFile("play.yaml", "programs:\n  - name: go\n    blocks: [forward]\n")
	writeFile("notes.txt", "ignored")

	m, err := config.Load(context.Background(), []config.Loader{NewLoader()}, dir)
	require.NoError(t, err)
	require.NotNil(t, m.Rules)
	assert.Equal(t, 4, m.Rules.GridSize)
	assert.Equal(t, 2, m.Rules.ObstacleCount)
	require.Len(t, m.Programs, 1)
	assert.Equal(t, "go", m.Programs[0].Name)
}
