package level

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidState is returned when a lifecycle method is called out
// of order, e.g. Update after Dispose. The previous state is always
// preserved.
var ErrInvalidState = errors.New("level: invalid lifecycle state")

// ConfigError reports component type references that could not be
// resolved against the registry. It carries the complete missing
// list, not just the first, so a broken level fails with everything
// the author needs to fix at once.
type ConfigError struct {
	LevelID string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("level %q: unresolved component types: %s",
		e.LevelID, strings.Join(e.Missing, ", "))
}

// FatalError aborts level construction: the terrain component (or a
// system marked required) is missing or failed to initialize. No
// partial scene is left attached after a FatalError.
type FatalError struct {
	LevelID string
	Stage   string
	Err     error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("level %q: fatal failure in %s: %v", e.LevelID, e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
