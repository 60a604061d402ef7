// ABOUTME: Tests for the worker pool
// ABOUTME: Verifies every submitted task runs before Wait returns

package pool

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	p := NewWorkerPool(4, 8)
	defer p.Close()

	var count atomic.Int64
	for range 100 {
		p.Submit(func() { count.Add(1) })
	}

	p.Wait()

	if got := count.Load(); got != 100 {
		t.Errorf("Expected 100 tasks to run, got %d", got)
	}
}

func TestWorkerPoolDefaultsToNumCPU(t *testing.T) {
	p := NewWorkerPool(0, 1)
	defer p.Close()

	if p.Workers() < 1 {
		t.Errorf("Expected at least one worker, got %d", p.Workers())
	}
}
