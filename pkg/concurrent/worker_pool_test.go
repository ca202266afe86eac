package concurrent

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesEveryJob(t *testing.T) {
	wp := NewWorkerPool[int, int](4, 100)
	for i := 0; i < 100; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Start(func(job int) int { return job * job })
	wp.Wait()

	got := make([]int, 0, 100)
	for r := range wp.CollectResults() {
		got = append(got, r)
	}
	sort.Ints(got)

	require.Len(t, got, 100)
	for i := 0; i < 100; i++ {
		require.Equal(t, i*i, got[i])
	}
}

func TestWorkerPoolNoJobs(t *testing.T) {
	wp := NewWorkerPool[int, int](2, 0)
	wp.Close()
	wp.Start(func(job int) int { return job })
	wp.Wait()

	count := 0
	for range wp.CollectResults() {
		count++
	}
	require.Zero(t, count)
}
