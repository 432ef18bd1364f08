// Package config loads airules configuration from local and global YAML
// files with precedence rules. It is internal; CLI code maps flags and
// files into engine and renderer settings.
package config
