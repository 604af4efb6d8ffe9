package program

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInsert(t *testing.T, p *Program, spec Spec, parent ID) *Node {
	t.Helper()
	n, err := p.Insert(spec, parent)
	require.NoError(t, err)
	return n
}

func TestInsert_AssignsMonotonicIDs(t *testing.T) {
	p := New()
	a := mustInsert(t, p, Command(Forward), Root)
	b := mustInsert(t, p, RepeatN(3), Root)
	c := mustInsert(t, p, Command(TurnLeft), b.ID())

	assert.Equal(t, ID(1), a.ID())
	assert.Equal(t, ID(2), b.ID())
	assert.Equal(t, ID(3), c.ID())

	require.True(t, p.Remove(c.ID()))
	d := mustInsert(t, p, Command(TurnRight), Root)
	assert.Equal(t, ID(4), d.ID(), "ids are never reused")
	assert.Equal(t, 3, p.Len())
}

func TestInsert_DefaultsAndClamping(t *testing.T) {
	p := New()
	assert.Equal(t, DefaultRepeatCount, mustInsert(t, p, RepeatN(0), Root).Count())
	assert.Equal(t, MaxRepeatCount, mustInsert(t, p, RepeatN(99), Root).Count())
	assert.Equal(t, MinRepeatCount, mustInsert(t, p, RepeatN(-4), Root).Count())
}

func TestInsert_Rejections(t *testing.T) {
	testCases := []struct {
		name   string
		build  func(t *testing.T, p *Program) ID
		spec   Spec
		expect error
	}{
		{
			name:   "repeat under repeat",
			build:  func(t *testing.T, p *Program) ID { return mustInsert(t, p, RepeatN(2), Root).ID() },
			spec:   RepeatN(2),
			expect: ErrNestedRepeat,
		},
		{
			name: "repeat under condition under repeat",
			build: func(t *testing.T, p *Program) ID {
				r := mustInsert(t, p, RepeatN(2), Root)
				return mustInsert(t, p, Until(AtGoal), r.ID()).ID()
			},
			spec:   RepeatN(2),
			expect: ErrNestedRepeat,
		},
		{
			name:   "condition under condition",
			build:  func(t *testing.T, p *Program) ID { return mustInsert(t, p, Until(ObstacleAhead), Root).ID() },
			spec:   Until(BoundaryAhead),
			expect: ErrNestedConditional,
		},
		{
			name:   "child of atomic",
			build:  func(t *testing.T, p *Program) ID { return mustInsert(t, p, Command(Forward), Root).ID() },
			spec:   Command(Forward),
			expect: ErrNotContainer,
		},
		{
			name:   "unknown parent",
			build:  func(t *testing.T, p *Program) ID { return 42 },
			spec:   Command(Forward),
			expect: ErrUnknownNode,
		},
		{
			name:   "condition without predicate",
			build:  func(t *testing.T, p *Program) ID { return Root },
			spec:   Spec{Kind: Conditional},
			expect: ErrInvalidSpec,
		},
		{
			name:   "unknown kind",
			build:  func(t *testing.T, p *Program) ID { return Root },
			spec:   Spec{Kind: Kind(77)},
			expect: ErrInvalidSpec,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New()
			parent := tc.build(t, p)
			before := p.Views()
			lenBefore := p.Len()

			n, err := p.Insert(tc.spec, parent)
			require.ErrorIs(t, err, tc.expect)
			assert.Nil(t, n)
			assert.Equal(t, lenBefore, p.Len())
			if diff := cmp.Diff(before, p.Views()); diff != "" {
				t.Errorf("tree changed after rejected insert (-before +after):\n%s", diff)
			}
		})
	}
}

func TestInsert_AllowedNesting(t *testing.T) {
	p := New()
	r := mustInsert(t, p, RepeatN(2), Root)
	c := mustInsert(t, p, Until(AtGoal), r.ID())
	mustInsert(t, p, Command(Forward), c.ID())

	u := mustInsert(t, p, Until(ObstacleAhead), Root)
	_, err := p.Insert(RepeatN(3), u.ID())
	require.NoError(t, err, "a repeat may live inside a condition block")
}

func TestRemove(t *testing.T) {
	p := New()
	r := mustInsert(t, p, RepeatN(2), Root)
	inner := mustInsert(t, p, Command(Forward), r.ID())
	mustInsert(t, p, Command(TurnLeft), Root)

	assert.True(t, p.Remove(inner.ID()))
	assert.Empty(t, r.Children())

	mustInsert(t, p, Command(Forward), r.ID())
	assert.True(t, p.Remove(r.ID()))
	assert.Equal(t, 1, p.Len(), "subtree is dropped from the index")
	_, ok := p.Find(inner.ID())
	assert.False(t, ok)

	assert.False(t, p.Remove(r.ID()), "second removal is a miss")
	assert.False(t, p.Remove(999))
}

func TestSetRepeatCount(t *testing.T) {
	p := New()
	r := mustInsert(t, p, RepeatN(2), Root)
	f := mustInsert(t, p, Command(Forward), Root)

	v, err := p.SetRepeatCount(r.ID(), 25)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = p.SetRepeatCount(r.ID(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = p.SetRepeatCount(f.ID(), 5)
	assert.ErrorIs(t, err, ErrNotRepeat)
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = p.SetRepeatCount(1234, 5)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestPrune(t *testing.T) {
	build := func(t *testing.T) *Program {
		p := New()
		mustInsert(t, p, Command(Forward), Root)
		r := mustInsert(t, p, RepeatN(3), Root)
		mustInsert(t, p, Command(TurnRight), r.ID())
		c := mustInsert(t, p, Until(ObstacleAhead), Root)
		r2 := mustInsert(t, p, RepeatN(2), c.ID())
		mustInsert(t, p, Command(Forward), r2.ID())
		mustInsert(t, p, Command(Forward), c.ID())
		return p
	}

	t.Run("leaving loop drops every repeat", func(t *testing.T) {
		p := build(t)
		removed := p.Prune(Conditions)
		assert.Equal(t, 2, removed)
		for _, n := range p.index {
			assert.NotEqual(t, Repeat, n.Kind())
		}
		assert.Equal(t, []View{
			{ID: 1, Kind: "forward"},
			{ID: 4, Kind: "conditional", Predicate: "obstacle_ahead", Children: []View{{ID: 7, Kind: "forward"}}},
		}, p.Views())
	})

	t.Run("basic drops both block kinds", func(t *testing.T) {
		p := build(t)
		p.Prune(Basic)
		assert.Equal(t, 1, p.Len())
		assert.Equal(t, []View{{ID: 1, Kind: "forward"}}, p.Views())
	})

	t.Run("leaving conditions drops every condition", func(t *testing.T) {
		p := build(t)
		assert.Equal(t, 1, p.Prune(Loop))
		_, ok := p.Find(4)
		assert.False(t, ok)
		_, ok = p.Find(6)
		assert.False(t, ok, "descendants of pruned blocks are gone too")
		assert.Equal(t, 3, p.Len())
	})
}

func TestFlatten(t *testing.T) {
	t.Run("expands repeats and inlines conditions once", func(t *testing.T) {
		p := New()
		mustInsert(t, p, Command(Forward), Root)
		r := mustInsert(t, p, RepeatN(2), Root)
		mustInsert(t, p, Command(TurnLeft), r.ID())
		c := mustInsert(t, p, Until(AtGoal), r.ID())
		mustInsert(t, p, Command(Forward), c.ID())

		got := slices.Collect(p.Flatten(0))
		assert.Equal(t, []Kind{Forward, TurnLeft, Forward, TurnLeft, Forward}, got)

		again := slices.Collect(p.Flatten(0))
		assert.Equal(t, got, again, "sequence is restartable")
	})

	t.Run("stops at the limit", func(t *testing.T) {
		p := New()
		r := mustInsert(t, p, RepeatN(20), Root)
		mustInsert(t, p, Command(Forward), r.ID())
		mustInsert(t, p, Command(TurnRight), r.ID())

		assert.Len(t, slices.Collect(p.Flatten(7)), 7)
		assert.Len(t, slices.Collect(p.Flatten(0)), 40)
	})

	t.Run("consumer can stop early", func(t *testing.T) {
		p := New()
		for range 5 {
			mustInsert(t, p, Command(Forward), Root)
		}
		seen := 0
		for range p.Flatten(0) {
			seen++
			if seen == 2 {
				break
			}
		}
		assert.Equal(t, 2, seen)
	})
}

func TestParseNames(t *testing.T) {
	k, err := ParseKind("turn_left")
	require.NoError(t, err)
	assert.Equal(t, TurnLeft, k)

	k, err = ParseKind("turnRight")
	require.NoError(t, err)
	assert.Equal(t, TurnRight, k)

	_, err = ParseKind("jump")
	assert.Error(t, err)

	pr, err := ParsePredicate("inclass")
	require.NoError(t, err)
	assert.Equal(t, AtGoal, pr)

	m, err := ParseMode("Loop")
	require.NoError(t, err)
	assert.Equal(t, Loop, m)

	assert.True(t, Loop.Allows(Repeat))
	assert.False(t, Loop.Allows(Conditional))
	assert.True(t, Conditions.Allows(Conditional))
	assert.True(t, Basic.Allows(Forward))
	assert.False(t, Basic.Allows(Repeat))
}
