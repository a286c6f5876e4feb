package utils

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tomb "gopkg.in/tomb.v2"
)

func TestWorkerPoolProcessesEveryTask(t *testing.T) {
	pool := NewWorkerPool(3)
	var processed int64

	var tb tomb.Tomb
	tb.Go(func() error {
		pool.Setup(&tb, func(_ *tomb.Tomb, task any) error {
			n := task.(int)
			atomic.AddInt64(&processed, int64(n))
			return nil
		})
		<-tb.Dying()
		return nil
	})

	for i := 1; i <= 5; i++ {
		pool.AddTask(i)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&processed) == 15
	}, time.Second, time.Millisecond, "expected all tasks summed to 15")

	tb.Kill(nil)
	_ = tb.Wait()
}
