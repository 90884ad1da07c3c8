package stream

import "sync"

// Subscription delivers a Value's publishes on C in publish order.
//
// Publishes are buffered in an unbounded queue and handed to C by a pump
// goroutine, so the publisher never waits for the reader.
type Subscription[T any] struct {
	id    uint64
	owner *Value[T]

	mu      sync.Mutex
	pending []T
	signal  chan struct{} // buffered, size 1; coalesces wakeups
	out     chan T
	done    chan struct{}
	once    sync.Once
}

func newSubscription[T any](owner *Value[T], id uint64) *Subscription[T] {
	s := &Subscription[T]{
		id:     id,
		owner:  owner,
		signal: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

// C is closed after Close.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close detaches the subscription. Queued values that were not yet received
// are dropped.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.owner.detach(s.id)
		close(s.done)
	})
}

func (s *Subscription[T]) push(value T) {
	s.mu.Lock()
	s.pending = append(s.pending, value)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) drain() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.pending
	s.pending = nil
	return batch
}

func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}
		for _, value := range s.drain() {
			select {
			case s.out <- value:
			case <-s.done:
				return
			}
		}
	}
}
