package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/specialistvlad/blockgridgo/internal/program"
)

// ErrInvalidRules is returned when rules fail validation.
var ErrInvalidRules = errors.New("invalid rules")

var rulesValidate = validator.New(validator.WithRequiredStructEnabled())

// Rules are the tunable constants of the game.
type Rules struct {
	GridSize              int           `yaml:"grid_size" validate:"gte=2,lte=64"`
	ObstacleCount         int           `yaml:"obstacle_count" validate:"gte=0"`
	MoveLimit             int           `yaml:"move_limit" validate:"gte=1"`
	CommandLimit          int           `yaml:"command_limit" validate:"gte=1"`
	PerConditionLimit     int           `yaml:"per_condition_limit" validate:"gte=1"`
	MaxAttemptsPerMode    int           `yaml:"max_attempts_per_mode" validate:"gte=1"`
	MaxGenerationAttempts int           `yaml:"max_generation_attempts" validate:"gte=1"`
	StepDelay             time.Duration `yaml:"step_delay" validate:"gte=0"`
	Modes                 []string      `yaml:"modes" validate:"required,min=1,unique,dive,oneof=basic conditions loop"`
}

// DefaultRules returns the stock game: a 6x6 board with 10 obstacles, 20
// moves, 500 commands, 200 passes per condition block, 4 attempts per mode
// and a 600ms pause between steps.
func DefaultRules() Rules {
	return Rules{
		GridSize:              6,
		ObstacleCount:         10,
		MoveLimit:             20,
		CommandLimit:          500,
		PerConditionLimit:     200,
		MaxAttemptsPerMode:    4,
		MaxGenerationAttempts: 1000,
		StepDelay:             600 * time.Millisecond,
		Modes:                 []string{"basic", "conditions", "loop"},
	}
}

// Validate checks field ranges and that the obstacles fit on the board.
func (r *Rules) Validate() error {
	if err := rulesValidate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	if free := r.GridSize*r.GridSize - 2; r.ObstacleCount > free {
		return fmt.Errorf("%w: %d obstacles do not fit on a %dx%d board", ErrInvalidRules, r.ObstacleCount, r.GridSize, r.GridSize)
	}
	return nil
}

// ParsedModes converts the mode names into program modes.
func (r *Rules) ParsedModes() ([]program.Mode, error) {
	out := make([]program.Mode, 0, len(r.Modes))
	for _, name := range r.Modes {
		m, err := program.ParseMode(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
		}
		out = append(out, m)
	}
	return out, nil
}
