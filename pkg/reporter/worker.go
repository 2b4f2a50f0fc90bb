package reporter

import (
	"context"
)

type worker struct {
	id       int
	reporter *Reporter
	batch    []string
}

// work drains the queue until ctx is done. A batch is flushed when it is full, or when the queue
// is observed empty. An idle worker blocks on the queue instead of polling it.
func (w *worker) work(ctx context.Context) {
	queue := w.reporter.queue
	for {
		select {
		case line := <-queue:
			w.add(line)
			continue
		default:
		}

		w.flush()

		select {
		case <-ctx.Done():
			w.drain()
			return
		case line := <-queue:
			w.add(line)
		}
	}
}

func (w *worker) add(line string) {
	w.batch = append(w.batch, line)
	if len(w.batch) >= w.reporter.flushThreshold {
		w.flush()
	}
}

// drain empties the queue without blocking and flushes what is left.
func (w *worker) drain() {
	queue := w.reporter.queue
	for {
		select {
		case line := <-queue:
			w.add(line)
		default:
			w.flush()
			return
		}
	}
}

func (w *worker) flush() {
	if len(w.batch) == 0 {
		return
	}
	w.reporter.flush(w.id, w.batch)
	// The batch is cleared after the send attempt whatever its outcome.
	w.batch = w.batch[:0]
}
