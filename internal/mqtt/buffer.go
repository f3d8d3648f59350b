package mqtt

import "log"

// message is a serialized publish held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a bounded FIFO of messages queued while the broker is
// unreachable. When full, the oldest message is dropped.
// Not safe for concurrent use.
type outbox struct {
	msgs    []message
	start   int
	n       int
	dropped int
}

func newOutbox(limit int) *outbox {
	if limit < 1 {
		limit = 1
	}
	return &outbox{msgs: make([]message, limit)}
}

func (o *outbox) add(m message) {
	limit := len(o.msgs)
	if o.n == limit {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", limit)
		}
		o.dropped++
		o.msgs[o.start] = m
		o.start = (o.start + 1) % limit
		return
	}
	o.msgs[(o.start+o.n)%limit] = m
	o.n++
}

// take removes and returns every queued message, oldest first.
func (o *outbox) take() []message {
	if o.n == 0 {
		return nil
	}
	out := make([]message, 0, o.n)
	for i := range o.n {
		out = append(out, o.msgs[(o.start+i)%len(o.msgs)])
	}
	if o.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while offline", o.dropped)
	}
	clear(o.msgs)
	o.start, o.n, o.dropped = 0, 0, 0
	return out
}

func (o *outbox) len() int {
	return o.n
}
