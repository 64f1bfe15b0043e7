// Package levels ships the built-in level documents. They are plain
// YAML so a copy on disk (see the levels.dir setting) can override
// them during development with hot reload.
package levels

import "embed"

//go:embed *.yaml
var FS embed.FS
