package pubsub

import "sync"

const (
	// TopicRelative carries the JSON snapshot of every processed tick.
	TopicRelative = "relative"
	// TopicSessionStarted fires once per inactive to active transition.
	TopicSessionStarted = "session-started"
)

// PubSub fans values out to topic subscribers. Each subscriber holds at most
// one pending value; Publish replaces it rather than waiting for a slow
// reader, so the publisher is never blocked.
type PubSub[T any] struct {
	mu   sync.Mutex
	subs map[string][]chan T
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T, 1)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Unsubscribe removes and closes ch.
func (ps *PubSub[T]) Unsubscribe(topic string, ch <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subs := ps.subs[topic]
	for i, c := range subs {
		if c == ch {
			close(c)
			ps.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- data:
		default:
			// drop the stale value, keep the latest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- data:
			default:
			}
		}
	}
}

// Close closes every subscription.
func (ps *PubSub[T]) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for topic, subs := range ps.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(ps.subs, topic)
	}
}
