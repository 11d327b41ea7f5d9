//go:build !integration

package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestScheduler_RunsJobUntilStopped(t *testing.T) {
	l := zerolog.New(io.Discard)
	var runs int32
	job := JobFunc(func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&runs, 1)
		if n == 2 {
			return 0, errors.New("transient")
		}
		return 1, nil
	})
	s := NewScheduler("test", 5*time.Millisecond, job, &l)
	s.Start(context.Background())
	s.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if got := atomic.LoadInt32(&runs); got < 3 {
		t.Fatalf("expected at least 3 runs, got %d", got)
	}
	after := atomic.LoadInt32(&runs)
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&runs) != after {
		t.Error("expected no runs after stop")
	}
}
