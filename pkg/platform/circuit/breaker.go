// Package circuit provides a two-state circuit breaker.
package circuit

import "sync"

// State is the breaker position.
type State int

const (
	// StateClosed lets calls through to the primary path.
	StateClosed State = iota
	// StateOpen sends callers to their fallback.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Transition reports a state change caused by the last recorded result.
type Transition int

const (
	NoChange Transition = iota
	Opened
	Closed
)

// Breaker counts consecutive failures. It opens after failureThreshold
// failures in a row and closes again after successThreshold successes in a
// row while open.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the breaker. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive successes that close it again. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool { return b.State() == StateOpen }

// Record feeds the outcome of one primary call into the breaker.
func (b *Breaker) Record(ok bool) Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !ok {
		b.successes = 0
		b.failures++
		if b.state == StateClosed && b.failures >= b.failureThreshold {
			b.state = StateOpen
			return Opened
		}
		return NoChange
	}

	if b.state == StateClosed {
		b.failures = 0
		return NoChange
	}
	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.failures = 0
		b.successes = 0
		return Closed
	}
	return NoChange
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
