package recipe

import (
	"fmt"
	"strings"

	"github.com/kilnpkg/kiln/pkgs/ref"
)

// ConfigurationError reports a malformed recipe or a misuse of the
// lifecycle: a missing export path, an option outside its declared
// domain, a language standard below the recipe's minimum, or a stage
// invoked out of order. It is always fatal and is raised before any
// external process starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Configf returns a *ConfigurationError with a formatted reason.
func Configf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ResolutionError reports that the package store cannot satisfy an
// exact requirement pin. Pins are exact, so retrying without operator
// intervention cannot succeed; the error is fatal.
type ResolutionError struct {
	Ref       ref.Ref
	Available []string // versions present in the store, newest first
}

func (e *ResolutionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("cannot resolve %s: package not found in store", e.Ref)
	}
	return fmt.Sprintf("cannot resolve %s: available versions: %s",
		e.Ref, strings.Join(e.Available, ", "))
}

// ExternalToolError reports a non-zero exit from an external build-tool
// verb (configure/build/test/install). Artifacts already produced by
// prior stages remain valid.
type ExternalToolError struct {
	Tool string
	Args []string
	Err  error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}
