// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package program holds the block program a player builds: a forest of
// command nodes (atomic moves and turns, repeat blocks, loop-until condition
// blocks) mutated only through structural edit operations.
//
// # Storage
//
// Nodes live in an arena indexed by id, so lookups for edits are O(1) while
// the parent/child links still describe a strict tree. Each node has exactly
// one owner, either its parent block or the root list. Removing a node
// destroys its whole subtree and drops every descendant from the index, so no
// id ever resolves to a detached node.
//
// # Nesting rules
//
// A repeat block may not appear anywhere below another repeat block, and a
// condition block may not appear anywhere below another condition block.
// Which kinds may be constructed at all is decided by the Mode; the session
// enforces that gate, the program only enforces structure.
package program
