package core

import (
	"time"
)

// Clock abstracts wall-clock reads so expiry behavior is deterministic under
// test. Production code passes SystemClock; tests pass a fake they control.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock reads the process wall clock.
var SystemClock Clock = systemClock{}
