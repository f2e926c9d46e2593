package mines

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every [ConfigurationError].
var ErrConfiguration = errors.New("invalid game configuration")

type ConfigurationError struct {
	message string
}

func configErrorf(format string, args ...any) ConfigurationError {
	return ConfigurationError{fmt.Sprintf(format, args...)}
}

// [ConfigurationError] implements [error]
func (e ConfigurationError) Error() string {
	return ErrConfiguration.Error() + ": " + e.message
}

func (e ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
