package ssebridge

import (
	"maps"
	"time"

	"github.com/kbukum/ssebridge/logger"
	"github.com/kbukum/ssebridge/observability"
	"github.com/kbukum/ssebridge/resilience"
	"github.com/kbukum/ssebridge/version"
)

// Option configures Connect, ConnectWithWakeup and NewReceiver.
type Option func(*options)

type options struct {
	log             *logger.Logger
	metrics         *observability.Metrics
	capacity        int
	overflow        OverflowPolicy
	headers         map[string]string
	userAgent       string
	timeout         time.Duration
	reconnect       *resilience.RetryConfig
	withCredentials bool
}

func newOptions(opts []Option) *options {
	defaultRetry := resilience.DefaultRetryConfig()
	o := &options{
		reconnect: &defaultRetry,
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get(componentName)
	}
	return o
}

const componentName = "ssebridge"

// WithLogger sets the logger used for connection diagnostics.
// Defaults to the global logger tagged with component "ssebridge".
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records event, drop and connection counts on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCapacity bounds the mailbox to n queued events. When it is full the
// policy decides which event is discarded. n <= 0 keeps it unbounded.
func WithCapacity(n int, policy OverflowPolicy) Option {
	return func(o *options) {
		o.capacity = n
		o.overflow = policy
	}
}

// WithHeaders adds request headers to the stream request. Native only;
// EventSource does not accept custom headers.
func WithHeaders(h map[string]string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		maps.Copy(o.headers, h)
	}
}

// WithUserAgent overrides the User-Agent of the stream request, which
// defaults to ssebridge/<version>. Native only.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithTimeout bounds connection setup and the wait for response headers.
// It never limits how long an established stream stays open. Native only.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithReconnect sets the reconnect policy of the native stream. A nil
// config disables reconnecting: the first stream end or failure closes
// the receiver's stream with a Closed event.
func WithReconnect(cfg *resilience.RetryConfig) Option {
	return func(o *options) { o.reconnect = cfg }
}

// WithCredentials asks the browser to send cookies and auth headers on
// cross-origin streams. Web only.
func WithCredentials(enabled bool) Option {
	return func(o *options) { o.withCredentials = enabled }
}
