package plagiarism

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	wg    *sync.WaitGroup
	count *atomic.Int64
}

func (j countingJob) Execute(context.Context) error {
	defer j.wg.Done()
	j.count.Add(1)
	return nil
}

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPoolWithSize(context.Background(), 3)
	defer pool.Close()
	assert.Equal(t, 3, pool.Size())

	var wg sync.WaitGroup
	var count atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, pool.Submit(countingJob{wg: &wg, count: &count}))
	}
	wg.Wait()

	assert.Equal(t, int64(50), count.Load())
}

func TestWorkerPoolClose(t *testing.T) {
	pool := NewWorkerPoolWithSize(context.Background(), 0)
	assert.Equal(t, 1, pool.Size())

	pool.Close()
	pool.Close()

	var wg sync.WaitGroup
	var count atomic.Int64
	err := pool.Submit(countingJob{wg: &wg, count: &count})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWorkerPoolUsesCPUs(t *testing.T) {
	pool := NewWorkerPool(context.Background())
	defer pool.Close()
	assert.GreaterOrEqual(t, pool.Size(), 1)
}
