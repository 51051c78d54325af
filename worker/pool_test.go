package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitRunsJob(t *testing.T) {
	p := New(1, func(ctx context.Context, j Job) (Result, error) {
		return Result{X: j.X, Y: j.Y, Text: "captured"}, nil
	})
	defer p.Close()

	done := make(chan Result, 1)
	ok := p.Submit(context.Background(), Job{X: 10, Y: 20}, func(res Result, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- res
	})
	if !ok {
		t.Fatal("Submit on an idle pool should succeed")
	}

	select {
	case res := <-done:
		if res.X != 10 || res.Y != 20 || res.Text != "captured" {
			t.Errorf("result = %+v", res)
		}
	case <-time.After(time.Second):
		t.Fatal("job never completed")
	}
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	p := New(1, func(ctx context.Context, j Job) (Result, error) {
		<-block
		return Result{}, nil
	})
	defer func() {
		close(block)
		p.Close()
	}()

	submit := func() bool {
		return p.Submit(context.Background(), Job{}, func(Result, error) {})
	}

	// First job occupies the worker, second fills the 1-slot queue.
	if !submit() {
		t.Fatal("first submit should succeed")
	}
	// Give the worker a moment to dequeue the first job.
	time.Sleep(50 * time.Millisecond)
	if !submit() {
		t.Fatal("second submit should land in the queue")
	}

	// Queue is now full; further submits drop.
	if submit() {
		t.Error("third submit should be dropped")
	}
}

func TestErrorReachesCallback(t *testing.T) {
	sentinel := errors.New("capture failed")
	p := New(1, func(ctx context.Context, j Job) (Result, error) {
		return Result{}, sentinel
	})
	defer p.Close()

	done := make(chan error, 1)
	p.Submit(context.Background(), Job{}, func(res Result, err error) {
		done <- err
	})

	select {
	case err := <-done:
		if !errors.Is(err, sentinel) {
			t.Errorf("err = %v, expected sentinel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}

func TestDeadlineCutsOffSlowJob(t *testing.T) {
	release := make(chan struct{})
	p := New(1, func(ctx context.Context, j Job) (Result, error) {
		<-release
		return Result{Text: "too late"}, nil
	})
	defer func() {
		close(release)
		p.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	p.Submit(ctx, Job{}, func(res Result, err error) {
		done <- err
	})

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, expected deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("deadline never fired")
	}
}
