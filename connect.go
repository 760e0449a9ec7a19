package ssebridge

import "github.com/kbukum/ssebridge/logger"

// Connect subscribes to the event stream at url and returns the receiver
// that its events are delivered to.
//
// On native builds the stream is read by a background goroutine and
// reconnects according to WithReconnect. In the browser the platform
// EventSource owns the connection. An error is returned only when the
// subscription could not be set up at all; every later failure arrives
// as an Error event.
func Connect(url string, opts ...Option) (*Receiver, error) {
	return connect(url, nil, opts)
}

// ConnectWithWakeup is Connect with a function that is called right before
// each event is queued. Event-loop hosts use it to schedule a poll.
func ConnectWithWakeup(url string, wakeUp func(), opts ...Option) (*Receiver, error) {
	return connect(url, wakeUp, opts)
}

func connect(url string, wakeUp func(), opts []Option) (*Receiver, error) {
	o := newOptions(opts)
	r, publish := newReceiver(wakeUp, o)
	log := r.log.WithFields(logger.Fields(logger.FieldURL, url, logger.FieldBackend, backendName))

	stop, err := dial(url, publish, o, log, r.release)
	if err != nil {
		log.WithError(err).Warn("connect failed")
		r.mb.close()
		return nil, err
	}
	r.attach(stop)
	log.Info("connecting")
	return r, nil
}
