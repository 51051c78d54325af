package eventloop

import (
	"context"
	"log"
	"time"

	"context-spotlight/gesture"
	"context-spotlight/popup"
	"context-spotlight/worker"
)

const defaultDeadline = 10 * time.Second

// Loop is the single-goroutine coordinator between the gesture detector, the
// capture-and-match worker pool and the popup sink. Gesture signals arrive on
// a channel, never as direct calls, so the detector's handlers can never be
// re-entered from UI work.
type Loop struct {
	signals  chan gesture.Signal
	results  chan outcome
	pool     *worker.Pool
	sink     popup.Sink
	busy     bool
	deadline time.Duration
}

type outcome struct {
	res worker.Result
	err error
}

// New creates an event loop delivering results to sink.
func New(pool *worker.Pool, sink popup.Sink) *Loop {
	return &Loop{
		signals:  make(chan gesture.Signal, 8),
		results:  make(chan outcome, 1),
		pool:     pool,
		sink:     sink,
		deadline: defaultDeadline,
	}
}

// SetDeadline overrides the per-trigger capture deadline.
func (l *Loop) SetDeadline(d time.Duration) {
	if d > 0 {
		l.deadline = d
	}
}

// SignalSink returns the channel the gesture detector emits into.
func (l *Loop) SignalSink() chan<- gesture.Signal {
	return l.signals
}

// Run processes signals and results until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-l.signals:
			switch sig.Kind {
			case gesture.SignalShowPopup:
				l.handleTrigger(ctx, sig.X, sig.Y)
			case gesture.SignalHidePopup:
				l.sink.Hide()
			}
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleTrigger(ctx context.Context, x, y float64) {
	if l.busy {
		log.Printf("Eventloop: busy, ignoring trigger")
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	submitted := l.pool.Submit(jobCtx, worker.Job{X: x, Y: y}, func(res worker.Result, err error) {
		cancel()
		l.results <- outcome{res: res, err: err}
	})
	if !submitted {
		cancel()
		log.Printf("Eventloop: worker queue full, dropping trigger")
		return
	}
	l.busy = true
}

func (l *Loop) handleResult(o outcome) {
	l.busy = false
	if o.err != nil {
		log.Printf("Eventloop: capture failed: %v", o.err)
		return
	}
	if len(o.res.Actions) == 0 {
		log.Printf("Eventloop: no matching rules for captured text")
		return
	}
	l.sink.ShowAt(o.res)
}
