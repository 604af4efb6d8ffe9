// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package world implements the grid world of a puzzle: the immutable board
// geometry (size, goal, obstacles) and the mutable agent pose with its move
// counter.
//
// Every operation returns an outcome value instead of failing. Forward moves
// are clamped to the board, obstacles reject a move without charging it, and
// turning is free. The interpreter and the reachability oracle both follow
// these rules; the oracle simply never charges for anything.
package world
