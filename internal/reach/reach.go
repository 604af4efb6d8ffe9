package reach

import (
	"slices"

	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

// step is one edge of the search graph.
type step struct {
	from world.Pose
	cmd  program.Kind
}

// Reachable reports whether the goal can be reached from start.
func Reachable(b *world.Board, start world.Pose) bool {
	_, ok := search(b, start)
	return ok
}

// Solve returns a shortest command sequence, counted in commands with turns
// included, that brings the agent from start onto the goal.
func Solve(b *world.Board, start world.Pose) ([]program.Kind, bool) {
	parents, ok := search(b, start)
	if !ok {
		return nil, false
	}
	var path []program.Kind
	for cur := parents.end; cur != start; {
		s := parents.edges[cur]
		path = append(path, s.cmd)
		cur = s.from
	}
	slices.Reverse(path)
	return path, true
}

type tree struct {
	edges map[world.Pose]step
	end   world.Pose
}

func search(b *world.Board, start world.Pose) (tree, bool) {
	t := tree{edges: make(map[world.Pose]step)}
	if !b.InBounds(start.Cell) || b.IsObstacle(start.Cell) {
		return t, false
	}
	if start.Cell == b.Goal() {
		t.end = start
		return t, true
	}

	visited := map[world.Pose]struct{}{start: {}}
	queue := []world.Pose{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range successors(b, cur) {
			if _, seen := visited[next.to]; seen {
				continue
			}
			visited[next.to] = struct{}{}
			t.edges[next.to] = step{from: cur, cmd: next.cmd}
			if next.to.Cell == b.Goal() {
				t.end = next.to
				return t, true
			}
			queue = append(queue, next.to)
		}
	}
	return t, false
}

type edge struct {
	to  world.Pose
	cmd program.Kind
}

func successors(b *world.Board, p world.Pose) []edge {
	out := make([]edge, 0, 3)
	dx, dy := p.Facing.Delta()
	if ahead := p.Cell.Add(dx, dy); b.InBounds(ahead) && !b.IsObstacle(ahead) {
		out = append(out, edge{to: world.Pose{Cell: ahead, Facing: p.Facing}, cmd: program.Forward})
	}
	out = append(out,
		edge{to: world.Pose{Cell: p.Cell, Facing: p.Facing.TurnRight()}, cmd: program.TurnRight},
		edge{to: world.Pose{Cell: p.Cell, Facing: p.Facing.TurnLeft()}, cmd: program.TurnLeft},
	)
	return out
}
