// Package util provides generic utility functions for the wirekit runtime.
//
// It includes slice operations, pointer helpers, and map utilities shared
// by the registry, lifecycle, and diagnostics packages.
package util
