// Package engine is the orchestrator: it runs a registry of scanners
// against a project root, isolates their failures, and returns their rules
// in registration order regardless of completion order. This package is
// internal; external consumers should use the stable facade in pkg/core.
package engine
