package inter

import (
	"time"
)

// Timestamp is a unix time in nanoseconds. Timestamps are informational: no
// ordering decision is ever derived from them.
type Timestamp uint64

// Clock supplies timestamps for new transactions and blocks.
type Clock func() Timestamp

// Now is the wall-clock Clock.
func Now() Timestamp {
	return FromTime(time.Now())
}

func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time converts the timestamp back to time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

func (t Timestamp) String() string {
	return t.Time().UTC().Format(time.RFC3339Nano)
}
