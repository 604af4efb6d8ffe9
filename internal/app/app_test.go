package app

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/blockgridgo/internal/hcl"
	"github.com/specialistvlad/blockgridgo/internal/interpreter"
	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/testutil"
	"github.com/specialistvlad/blockgridgo/internal/yamlconfig"
)

const lineBoard = `
rules {
  grid_size      = 3
  obstacle_count = 0
  step_delay     = "0s"
}

puzzle {
  agent = [0, 0]
  goal  = [2, 0]
}
`

func newTestApp(t *testing.T, out io.Writer, cfg Config) *App {
	t.Helper()
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	if c.LogLevel == "" {
		c.LogLevel = "debug"
	}
	a, err := NewApp(out, c, hcl.NewLoader(), yamlconfig.NewLoader())
	require.NoError(t, err)
	return a
}

func TestNewConfig_Validation(t *testing.T) {
	t.Parallel()
	neg := -time.Second
	testCases := []struct {
		name   string
		cfg    Config
		expect string
	}{
		{name: "no script", cfg: Config{}, expect: "ScriptPath"},
		{name: "negative delay", cfg: Config{ScriptPath: "x", StepDelay: &neg}, expect: "negative"},
		{name: "bad port", cfg: Config{ScriptPath: "x", HealthcheckPort: 70000}, expect: "port"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expect)
		})
	}
}

func TestNewApp_Overrides(t *testing.T) {
	t.Parallel()
	path := testutil.WriteScript(t, "game.hcl", lineBoard)
	seed := uint64(7)
	delay := time.Duration(0)

	a := newTestApp(t, io.Discard, Config{ScriptPath: path, Seed: &seed, StepDelay: &delay, Privileged: true})
	m := a.Model()
	require.NotNil(t, m.Puzzle.Seed)
	assert.Equal(t, seed, *m.Puzzle.Seed)
	assert.Nil(t, m.Puzzle.Layout, "a seed replaces the fixed layout")
	assert.Equal(t, time.Duration(0), m.Rules.StepDelay)
	assert.True(t, m.Player.Privileged)
}

func TestNewApp_Errors(t *testing.T) {
	t.Parallel()
	t.Run("missing path", func(t *testing.T) {
		_, err := NewApp(io.Discard, &Config{ScriptPath: "/does/not/exist.hcl"}, hcl.NewLoader())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load script")
	})
	t.Run("invalid rules", func(t *testing.T) {
		path := testutil.WriteScript(t, "bad.yaml", "rules:\n  grid_size: 1\n")
		_, err := NewApp(io.Discard, &Config{ScriptPath: path}, yamlconfig.NewLoader())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid script")
	})
}

func TestRun_PlaysProgramsInOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := testutil.WriteScript(t, "game.hcl", lineBoard+`
program "straight" {
  forward {}
  forward {}
}

program "short" {
  forward {}
}

program "loop too early" {
  mode = "loop"
  repeat {
    forward {}
  }
}
`)
	var out testutil.SafeBuffer
	a := newTestApp(t, &out, Config{ScriptPath: path})

	// --- Act ---
	require.NoError(t, a.Run(context.Background()))

	// --- Assert ---
	res := a.Results()
	require.Len(t, res, 3)

	assert.Equal(t, Result{Program: "straight", Mode: program.Basic, Outcome: interpreter.Won, Moves: 2, Commands: 2}, res[0])
	assert.Equal(t, Result{Program: "short", Mode: program.Basic, Outcome: interpreter.Lost, Reason: interpreter.ReasonNotAtGoal, Moves: 1, Commands: 1}, res[1])

	assert.Equal(t, interpreter.NoOp, res[2].Outcome, "basic mode refuses the repeat, leaving nothing to run")
	assert.Equal(t, 2, res[2].Rejected)

	log := out.String()
	assert.Contains(t, log, "▶ straight (basic mode)")
	assert.Contains(t, log, "🏆 solved")
	assert.Contains(t, log, "lost: program ended, not at goal")
	assert.Contains(t, log, "🏁 Script finished")
}

func TestRun_PrivilegedPlaysAnyMode(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := testutil.WriteScript(t, "game.hcl", lineBoard+`
program "loop" {
  mode = "loop"
  repeat {
    forward {}
  }
}
`)
	a := newTestApp(t, io.Discard, Config{ScriptPath: path, Privileged: true})

	// --- Act ---
	require.NoError(t, a.Run(context.Background()))

	// --- Assert ---
	require.Len(t, a.Results(), 1)
	r := a.Results()[0]
	assert.Equal(t, program.Loop, r.Mode)
	assert.Equal(t, interpreter.Won, r.Outcome)
	assert.Equal(t, 2, r.Moves)
	assert.Zero(t, r.Rejected)
}

func TestRun_StopsWhenLocked(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := testutil.WriteScript(t, "game.yaml", `
rules:
  grid_size: 3
  obstacle_count: 0
  step_delay: 0s
  max_attempts_per_mode: 1
  modes: [basic]
puzzle:
  agent: [0, 0]
  goal: [2, 0]
programs:
  - name: first
    blocks: [forward]
  - name: second
    blocks: [forward]
`)
	var out testutil.SafeBuffer
	a := newTestApp(t, &out, Config{ScriptPath: path})

	// --- Act ---
	require.NoError(t, a.Run(context.Background()))

	// --- Assert ---
	require.Len(t, a.Results(), 1)
	assert.Equal(t, "first", a.Results()[0].Program)
	assert.Contains(t, out.String(), "Game locked")
}

func TestRun_NoPrograms(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := testutil.WriteScript(t, "game.hcl", lineBoard)
	var out testutil.SafeBuffer
	a := newTestApp(t, &out, Config{ScriptPath: path})

	// --- Act ---
	require.NoError(t, a.Run(context.Background()))

	// --- Assert ---
	assert.Empty(t, a.Results())
	assert.Contains(t, out.String(), "> . G\n. . .\n. . .\nmoves 0/20\n")
}

func TestHealthMux(t *testing.T) {
	t.Parallel()
	path := testutil.WriteScript(t, "game.hcl", lineBoard)
	a := newTestApp(t, io.Discard, Config{ScriptPath: path})

	rec := httptest.NewRecorder()
	a.healthMux().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())

	rec = httptest.NewRecorder()
	a.healthMux().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "blockgrid_session_diagnostics_total")
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()
	var out testutil.SafeBuffer
	logger := newLogger("warn", "json", &out)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)

	assert.True(t, newLogger("nonsense", "text", io.Discard).Enabled(context.Background(), 0))
}
