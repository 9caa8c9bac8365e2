package input

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"
)

// ErrorBackoff is how long Stream waits before reading again after a
// failed read.
const ErrorBackoff = 5 * time.Millisecond

// BatchReader is a blocking producer of raw events, such as Reader.
type BatchReader interface {
	ReadBatch() ([]Event, error)
}

// Stream reads batches from r on its own goroutine and delivers them on
// the returned channel. Batches with no events and no error are not sent.
// A read error is delivered as its own batch and reading resumes after
// ErrorBackoff. The channel is closed at end of input, when the reader
// reports it has been closed, or when ctx is done. A read that is blocked
// when ctx is cancelled is abandoned, not interrupted.
func Stream(ctx context.Context, r BatchReader) <-chan Batch {
	out := make(chan Batch)
	go func() {
		defer close(out)
		for {
			events, err := r.ReadBatch()
			if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
				if len(events) > 0 {
					select {
					case out <- Batch{Events: events}:
					case <-ctx.Done():
					}
				}
				return
			}
			if len(events) > 0 || err != nil {
				select {
				case out <- Batch{Events: events, Err: err}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil && !errors.Is(err, ErrShortRecord) {
				if !backoff(ctx) {
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return out
}

func backoff(ctx context.Context) bool {
	t := time.NewTimer(ErrorBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
