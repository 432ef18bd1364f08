// Package airules provides the command-line interface for the airules tool.
// It configures subcommands (generate, init, watch, etc.), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/airules/airules/cmd/airules"
//	func main() { airules.Execute() }
package airules
