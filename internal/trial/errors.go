package trial

import "errors"

// ErrInvalidTransition is returned when an action is attempted while the
// trial is in a state that forbids it (stop with nothing opened, any action
// after reveal, opening past the last box).
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidConfig is returned by New when the config is structurally
// out of range.
var ErrInvalidConfig = errors.New("invalid config")
