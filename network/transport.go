package network

import (
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownPeer = errors.New("unknown peer")

// Handler consumes events delivered to one peer.
type Handler func(Event) error

// Transport delivers events to peers. Send returns once the peer has
// processed the event, which gives the round its delivery barrier.
type Transport interface {
	Register(peerID string, h Handler)
	Send(peerID string, ev Event) error
}

// LocalTransport delivers events to in-process handlers. Every event is
// encoded and decoded on the way, so handlers only ever see what a wire would
// have carried.
type LocalTransport struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewLocalTransport() *LocalTransport {
	return &LocalTransport{
		handlers: make(map[string]Handler),
	}
}

func (t *LocalTransport) Register(peerID string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[peerID] = h
}

func (t *LocalTransport) Send(peerID string, ev Event) error {
	t.mu.RLock()
	h, ok := t.handlers[peerID]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, peerID)
	}

	raw, err := ev.MarshalBinary()
	if err != nil {
		return err
	}
	delivered, err := UnmarshalEvent(raw)
	if err != nil {
		return err
	}
	return h(delivered)
}
