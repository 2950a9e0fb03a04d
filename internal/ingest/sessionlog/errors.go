package sessionlog

import "errors"

// ErrInvalidLog is returned when a session log cannot be parsed.
var ErrInvalidLog = errors.New("invalid session log")
