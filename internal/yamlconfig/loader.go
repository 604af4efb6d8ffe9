// Package yamlconfig provides the YAML implementation of config.Loader. It
// reads the same model as the HCL loader:
//
//	rules:
//	  move_limit: 20
//	  step_delay: 600ms
//	puzzle:
//	  seed: 42
//	programs:
//	  - name: zigzag
//	    mode: loop
//	    blocks:
//	      - repeat: 2
//	        do: [forward, turn_right]
//	      - until: at_goal
//	        do: [forward]
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/program"
)

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML script loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string { return []string{".yaml", ".yml"} }

type fileRoot struct {
	Rules    *yaml.Node     `yaml:"rules"`
	Player   *config.Player `yaml:"player"`
	Puzzle   *puzzleDoc     `yaml:"puzzle"`
	Programs []programDoc   `yaml:"programs"`
}

type puzzleDoc struct {
	Seed      *uint64 `yaml:"seed"`
	Size      int     `yaml:"size"`
	Agent     []int   `yaml:"agent"`
	Facing    string  `yaml:"facing"`
	Goal      []int   `yaml:"goal"`
	Obstacles [][]int `yaml:"obstacles"`
}

type programDoc struct {
	Name   string     `yaml:"name"`
	Mode   string     `yaml:"mode"`
	Blocks []blockDoc `yaml:"blocks"`
}

// blockDoc is either a bare command name or a mapping with a repeat or until
// key and a do list.
type blockDoc struct {
	block config.Block
}

func (b *blockDoc) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		k, err := program.ParseKind(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if !k.Atomic() {
			return fmt.Errorf("line %d: %s needs a mapping with a do list", node.Line, k)
		}
		b.block = config.Block{Kind: k}
		return nil

	case yaml.MappingNode:
		var raw struct {
			Repeat *int       `yaml:"repeat"`
			Until  *string    `yaml:"until"`
			Do     []blockDoc `yaml:"do"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		switch {
		case raw.Repeat != nil && raw.Until != nil:
			return fmt.Errorf("line %d: a block is either repeat or until, not both", node.Line)
		case raw.Repeat != nil:
			b.block = config.Block{Kind: program.Repeat, Count: *raw.Repeat}
		case raw.Until != nil:
			p, err := program.ParsePredicate(*raw.Until)
			if err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
			b.block = config.Block{Kind: program.Conditional, Predicate: p}
		default:
			return fmt.Errorf("line %d: expected a repeat or until key", node.Line)
		}
		for _, c := range raw.Do {
			b.block.Children = append(b.block.Children, c.block)
		}
		return nil

	default:
		return fmt.Errorf("line %d: a block must be a command name or a mapping", node.Line)
	}
}

// LoadFile implements config.Loader.
func (l *Loader) LoadFile(ctx context.Context, file string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing YAML script.", "file", file)

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
	}

	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
	}

	model := &config.Model{Player: root.Player}
	if root.Rules != nil {
		r := config.DefaultRules()
		if err := decodeStrict(root.Rules, &r); err != nil {
			return nil, fmt.Errorf("%s: rules: %w", file, err)
		}
		model.Rules = &r
	}
	if root.Puzzle != nil {
		if model.Puzzle, err = translatePuzzle(root.Puzzle); err != nil {
			return nil, fmt.Errorf("%s: puzzle: %w", file, err)
		}
	}
	for i, p := range root.Programs {
		if p.Name == "" {
			return nil, fmt.Errorf("%s: program %d has no name", file, i)
		}
		prog := &config.Program{Name: p.Name, Mode: p.Mode}
		for _, b := range p.Blocks {
			prog.Blocks = append(prog.Blocks, b.block)
		}
		model.Programs = append(model.Programs, prog)
	}

	logger.Debug("YAML script loaded.", "file", file, "programs", len(model.Programs))
	return model, nil
}

// decodeStrict decodes node onto out and rejects unknown keys. yaml.Node.Decode
// does not inherit KnownFields from the outer decoder.
func decodeStrict(node *yaml.Node, out any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func translatePuzzle(p *puzzleDoc) (*config.Puzzle, error) {
	fixed := p.Agent != nil || p.Goal != nil
	switch {
	case p.Seed != nil && fixed:
		return nil, fmt.Errorf("seed cannot be combined with a fixed layout")
	case p.Seed != nil:
		return &config.Puzzle{Seed: p.Seed}, nil
	case p.Agent == nil || p.Goal == nil:
		return nil, fmt.Errorf("a fixed puzzle needs both agent and goal, or use seed")
	}
	layout, err := config.FixedLayout(p.Size, p.Agent, p.Facing, p.Goal, p.Obstacles)
	if err != nil {
		return nil, err
	}
	return &config.Puzzle{Layout: layout}, nil
}
