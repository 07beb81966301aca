package util

import (
	"time"

	"golang.org/x/sys/unix"
)

// TraceClock maps tcp_probe timestamps to UTC wall time.
//
// tcp_probe stamps each line with seconds since the probe was armed.
// Anchoring the arm moment against CLOCK_MONOTONIC gives a stable base even
// if the wall clock steps during the run.
//
// This is "good enough" for run summaries and allows correlating
// trace lines with logs.
type TraceClock struct {
	baseMonoNs uint64
	baseWall   time.Time
}

func NewTraceClock() (*TraceClock, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return nil, err
	}
	return &TraceClock{baseMonoNs: uint64(ts.Nano()), baseWall: time.Now().UTC()}, nil
}

// At converts a trace-relative stamp in seconds to UTC wall time.
func (c *TraceClock) At(sec float64) time.Time {
	if sec <= 0 {
		return c.baseWall
	}
	return c.baseWall.Add(time.Duration(sec * float64(time.Second)))
}

func (c *TraceClock) Base() time.Time {
	return c.baseWall
}
