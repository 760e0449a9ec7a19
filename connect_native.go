//go:build !(js && wasm)

package ssebridge

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/ssebridge/errors"
	"github.com/kbukum/ssebridge/httpclient"
	"github.com/kbukum/ssebridge/logger"
	"github.com/kbukum/ssebridge/observability"
)

const backendName = "native"

// dial validates rawURL and starts a goroutine that drains the HTTP stream
// into publish. The returned func cancels that goroutine; done runs when
// the goroutine exits for any reason.
func dial(rawURL string, publish Handler, o *options, log *logger.Logger, done func()) (stop func(), err error) {
	_, span := observability.StartSpan(context.Background(), observability.SpanStreamConnect,
		attribute.String(observability.AttrBackend, backendName),
		attribute.String(observability.AttrURL, rawURL),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err = validateStreamURL(rawURL); err != nil {
		return nil, err
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:   o.timeout,
		Headers:   o.headers,
		UserAgent: o.userAgent,
	})
	if err != nil {
		return nil, errors.InvalidConfig(err.Error()).WithCause(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := newHTTPStream(client, rawURL, o.reconnect, o.metrics, log)
	go drain(ctx, s, publish, log, done)
	return cancel, nil
}

func validateStreamURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.InvalidURL(rawURL, err.Error()).WithCause(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.InvalidURL(rawURL, "scheme must be http or https")
	}
	if u.Host == "" {
		return errors.InvalidURL(rawURL, "missing host")
	}
	return nil
}
