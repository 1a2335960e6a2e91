package config

import "errors"

// ErrParsingConfig is returned when environment variables cannot be parsed
// into the target struct, typically due to a missing required variable or a
// value that does not fit the field type.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")
