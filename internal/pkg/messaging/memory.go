package messaging

import (
	"context"
	"io"
	"sync"
)

const memoryBuffer = 64

// Memory is an in-process bus. Each group receives a message once (round
// robin across its members); consumers without a group each get a copy.
// Delivery is at most once and nothing survives a restart.
type Memory struct {
	mu     sync.Mutex
	subs   map[string][]*memorySub
	next   map[string]int
	closed bool
}

type memorySub struct {
	group string
	ch    chan *memoryMessage
}

// NewMemory returns an empty bus.
func NewMemory() *Memory {
	return &Memory{subs: map[string][]*memorySub{}, next: map[string]int{}}
}

// Close stops accepting publishes.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Publish hands msg to the current subscribers of destination. With no
// subscribers the message is dropped, as on a plain NATS subject.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}

	targets, err := m.targets(destination)
	if err != nil {
		return err
	}

	headers := make(map[string]string, len(msg.Headers))
	for k, v := range msg.Headers {
		headers[k] = v
	}

	for _, sub := range targets {
		select {
		case sub.ch <- &memoryMessage{source: destination, body: msg.Body, key: msg.Key, headers: headers}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) targets(destination string) ([]*memorySub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}

	var out []*memorySub
	groups := map[string][]*memorySub{}
	for _, sub := range m.subs[destination] {
		if sub.group == "" {
			out = append(out, sub)
			continue
		}
		groups[sub.group] = append(groups[sub.group], sub)
	}

	for group, members := range groups {
		key := destination + "\x00" + group
		out = append(out, members[m.next[key]%len(members)])
		m.next[key]++
	}
	return out, nil
}

// Consume registers a subscriber and serves it until ctx is done.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	sub := &memorySub{group: co.group, ch: make(chan *memoryMessage, memoryBuffer)}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	defer m.remove(source, sub)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case msg := <-sub.ch:
					dispatch(ctx, DriverMemory, handler, msg, &msg.responder, co.autoAck)
				case <-ctx.Done():
					return
				}
			}
		})
	}
	wg.Wait()

	return ctx.Err()
}

func (m *Memory) remove(source string, sub *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[source]
	for i := range subs {
		if subs[i] == sub {
			m.subs[source] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type memoryMessage struct {
	responder
	source  string
	body    []byte
	key     []byte
	headers map[string]string
}

func (m *memoryMessage) Body() []byte               { return m.body }
func (m *memoryMessage) Key() []byte                { return m.key }
func (m *memoryMessage) Source() string             { return m.source }
func (m *memoryMessage) Header(key string) string   { return m.headers[key] }
func (m *memoryMessage) Ack(context.Context) error  { m.first(); return nil }
func (m *memoryMessage) Nack(context.Context) error { m.first(); return nil }
