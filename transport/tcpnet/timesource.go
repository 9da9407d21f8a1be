package tcpnet

import "time"

// WallClock is a transport.TimeSource backed by the process clock, for
// embedders that mobilize Transport against real sockets instead of the
// dummy package's hand-advanced clock.
type WallClock struct {
	start time.Time
}

// NewWallClock returns a WallClock reading seconds since its own
// construction.
func NewWallClock() WallClock {
	return WallClock{start: time.Now()}
}

func (w WallClock) GetCurrentTime() float64 {
	return time.Since(w.start).Seconds()
}
