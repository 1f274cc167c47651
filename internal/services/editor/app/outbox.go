package server

import "sync"

// outboxCapacity bounds frames queued for one connection. A client that
// falls this far behind is disconnected.
const outboxCapacity = 256

// outbox queues outbound frames for one connection and writes them from a
// single goroutine, so engine notifications never wait on the socket.
type outbox struct {
	write func(frame any) error
	// fail runs on the writer goroutine after a write error or an overflow.
	fail func(reason string)

	frames   chan any
	full     chan struct{}
	fullOnce sync.Once
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newOutbox(capacity int, write func(frame any) error, fail func(reason string)) *outbox {
	return &outbox{
		write:  write,
		fail:   fail,
		frames: make(chan any, capacity),
		full:   make(chan struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (o *outbox) start() {
	go o.run()
}

// send queues frame without blocking.
func (o *outbox) send(frame any) {
	select {
	case o.frames <- frame:
	default:
		o.fullOnce.Do(func() { close(o.full) })
	}
}

// close writes what is still queued and waits for the writer to exit.
func (o *outbox) close() {
	o.stopOnce.Do(func() { close(o.stop) })
	<-o.done
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		select {
		case frame := <-o.frames:
			if err := o.write(frame); err != nil {
				o.fail("write failed")
				return
			}
		case <-o.full:
			o.fail("outbox full")
			return
		case <-o.stop:
			o.flush()
			return
		}
	}
}

func (o *outbox) flush() {
	for {
		select {
		case frame := <-o.frames:
			if err := o.write(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
