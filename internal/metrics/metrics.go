package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

// Outbound counts provider calls made by one HTTP client.
// Rejected calls never reached the network (rate limiter or open circuit).
type Outbound struct {
	Requests Counter
	Failures Counter
	Rejected Counter
}

type OutboundSnapshot struct {
	Requests uint64 `json:"requests"`
	Failures uint64 `json:"failures"`
	Rejected uint64 `json:"rejected"`
}

func (o *Outbound) Snapshot() OutboundSnapshot {
	if o == nil {
		return OutboundSnapshot{}
	}
	return OutboundSnapshot{
		Requests: o.Requests.Load(),
		Failures: o.Failures.Load(),
		Rejected: o.Rejected.Load(),
	}
}

type Timer struct {
	start time.Time
}

func StartTimer() Timer {
	return Timer{start: time.Now()}
}

func (t Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
