// Package errors provides unified error handling for the wirekit runtime.
// It implements a structured error type with machine-readable codes and
// detail maps, covering resolution faults, configuration problems, and
// lifecycle failures.
package errors
