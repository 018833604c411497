// Package maze provides the grid model for the Reindeer Maze solver.
//
// The maze package implements:
//   - Parsing of text grids into an immutable Maze
//   - Cell kinds (open, wall, start, end) and their characters
//   - Positions and the four compass directions
//   - Fixed left/right rotation tables for directions
//   - ASCII rendering with optional path overlay
//
// Input Format:
//
// A maze is a rectangular block of text, one row per line:
//
//	#####
//	#..E#
//	#S###
//	#####
//
// 'S' marks the start, 'E' the end, '.' an open cell and '#' a wall. Every
// row must have the same width and the grid must contain exactly one start
// and one end. Any violation is reported as a construction error that can be
// matched with errors.Is against the Err* values of this package.
//
// Usage:
//
//	m, err := maze.ParseString(text)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	start, end := m.Start(), m.End()
//	if m.InBounds(pos) && !m.IsWall(pos) {
//		// pos is walkable
//	}
//
// Immutability:
//
// A Maze exposes no mutating operations after construction, so a single
// value can be shared by any number of concurrent readers.
package maze
