package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), c.Load())
}

func TestOutboundSnapshot(t *testing.T) {
	t.Run("Counts", func(t *testing.T) {
		var o Outbound
		o.Requests.Inc()
		o.Requests.Inc()
		o.Failures.Inc()
		o.Rejected.Inc()

		assert.Equal(t, OutboundSnapshot{Requests: 2, Failures: 1, Rejected: 1}, o.Snapshot())
	})

	t.Run("Nil", func(t *testing.T) {
		var o *Outbound
		assert.Equal(t, OutboundSnapshot{}, o.Snapshot())
	})
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Elapsed(), time.Millisecond)
}
