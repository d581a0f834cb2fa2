package boxauth

import (
	"fmt"
	"strings"
)

// ConfigurationError reports invalid or incomplete credential configuration.
// It carries every missing variable at once so an operator can fix the
// deployment in a single pass instead of replaying the server against one
// error at a time.
type ConfigurationError struct {
	Mode    AuthMode
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s authentication requires the following environment variables: %s",
			e.Mode, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s authentication configuration invalid: %s", e.Mode, e.Reason)
}

func newMissingError(mode AuthMode, missing []string) *ConfigurationError {
	return &ConfigurationError{Mode: mode, Missing: missing}
}

func newInvalidError(mode AuthMode, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Mode: mode, Reason: fmt.Sprintf(format, args...)}
}
