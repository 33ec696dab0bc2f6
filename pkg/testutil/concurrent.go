package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"campuscard/internal/sentinel"
	dErrors "campuscard/pkg/domain-errors"
)

// ConcurrentResult counts outcomes of a concurrent run by card error class.
type ConcurrentResult struct {
	Successes   int32
	NotCached   int32
	Rejections  int32
	NotFounds   int32
	Unavailable int32
	Errors      int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.NotCached + r.Rejections + r.NotFounds + r.Unavailable + r.Errors
}

// RunConcurrent calls fn from n goroutines at once and classifies each
// returned error. Both sentinel store errors and service domain codes are
// recognized.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		counts  [6]atomic.Int32
		classOf = func(err error) int {
			switch {
			case err == nil:
				return 0
			case dErrors.HasCode(err, dErrors.CodeNotCached):
				return 1
			case dErrors.HasCode(err, dErrors.CodeSecurityRejected):
				return 2
			case errors.Is(err, sentinel.ErrNotFound), dErrors.HasCode(err, dErrors.CodeNotFound):
				return 3
			case errors.Is(err, sentinel.ErrUnavailable), dErrors.HasCode(err, dErrors.CodeStoreUnavailable):
				return 4
			default:
				return 5
			}
		}
	)
	for i := range n {
		wg.Go(func() {
			<-start
			counts[classOf(fn(i))].Add(1)
		})
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes:   counts[0].Load(),
		NotCached:   counts[1].Load(),
		Rejections:  counts[2].Load(),
		NotFounds:   counts[3].Load(),
		Unavailable: counts[4].Load(),
		Errors:      counts[5].Load(),
	}
}
