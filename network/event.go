package network

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/utils/cser"
)

// EventKind tags what an Event carries.
type EventKind uint8

const (
	// EventTransaction carries a canonical transaction encoding.
	EventTransaction EventKind = iota + 1
	// EventBlock carries a canonical block encoding.
	EventBlock
	// EventNoBlock announces that the round produced no block. It has no payload.
	EventNoBlock
)

var ErrUnknownEvent = errors.New("unknown event kind")

func (k EventKind) String() string {
	switch k {
	case EventTransaction:
		return "tx"
	case EventBlock:
		return "block"
	case EventNoBlock:
		return "noblock"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is the unit a Transport delivers to a peer.
type Event struct {
	Kind    EventKind
	Payload []byte
}

// TxEvent wraps tx.
func TxEvent(tx *inter.Transaction) (Event, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventTransaction, Payload: raw}, nil
}

// BlockEvent wraps b, or announces an empty round when b is nil.
func BlockEvent(b *inter.Block) (Event, error) {
	if b == nil {
		return Event{Kind: EventNoBlock}, nil
	}
	raw, err := b.MarshalBinary()
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventBlock, Payload: raw}, nil
}

// MarshalBinary encodes the event envelope: u8 kind | u32 len | payload.
func (e Event) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		w.U8(uint8(e.Kind))
		w.SliceBytes(e.Payload)
		return nil
	})
}

// UnmarshalEvent decodes an event envelope.
func UnmarshalEvent(raw []byte) (Event, error) {
	var e Event
	err := cser.UnmarshalBinaryAdapter(raw, func(r *cser.Reader) error {
		e.Kind = EventKind(r.U8())
		if e.Kind < EventTransaction || e.Kind > EventNoBlock {
			return fmt.Errorf("%w: %d", ErrUnknownEvent, e.Kind)
		}
		e.Payload = r.SliceBytes()
		return nil
	})
	return e, err
}
