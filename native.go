//go:build !(js && wasm)

package ssebridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/ssebridge/errors"
	"github.com/kbukum/ssebridge/httpclient"
	"github.com/kbukum/ssebridge/httpclient/sse"
	"github.com/kbukum/ssebridge/logger"
	"github.com/kbukum/ssebridge/observability"
	"github.com/kbukum/ssebridge/resilience"
)

type frameKind int

const (
	// frameOpen marks a (re)established connection.
	frameOpen frameKind = iota
	frameEvent
	frameComment
)

// frame is one item produced by a stream.
type frame struct {
	kind frameKind
	typ  string
	data string
	id   string
}

// stream is a pull-based event source. Next blocks until a frame, a
// recoverable error, or the end of the stream (io.EOF) is available.
// After io.EOF or a context error the stream is finished.
type stream interface {
	Next(ctx context.Context) (frame, error)
	Close() error
}

// drain pulls frames from s and publishes them until the stream ends,
// the receiver is closed or ctx is cancelled. done runs once drain returns.
func drain(ctx context.Context, s stream, publish Handler, log *logger.Logger, done func()) {
	defer done()
	defer s.Close()
	start := time.Now()

	for {
		f, err := s.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Debug("stream cancelled")
				return
			}
			if stderrors.Is(err, io.EOF) {
				log.Info("stream ended", logger.DurationFields("stream", time.Since(start)))
				publish(Closed())
				return
			}
			desc := err.Error()
			fields := logger.Fields(logger.FieldError, desc)
			if appErr, ok := errors.AsAppError(err); ok {
				fields[logger.FieldErrorCode] = string(appErr.Code)
				fields[logger.FieldRetryable] = appErr.Retryable
				if appErr.Cause != nil {
					desc = appErr.Cause.Error()
				}
			}
			log.Warn("error streaming events", fields)
			if publish(ErrorEvent(fmt.Sprintf("error streaming events: %s", desc))) == Break {
				return
			}
			continue
		}

		var flow ControlFlow
		switch f.kind {
		case frameOpen:
			log.Info("stream opened")
			flow = publish(Opened())
		case frameEvent:
			log.Debug("got an event", logger.Fields(logger.FieldEventType, f.typ, logger.FieldEventID, f.id))
			flow = publish(Message(f.data))
		case frameComment:
			log.Debug("got a comment", logger.Fields("comment", f.data))
			continue
		}
		if flow == Break {
			return
		}
	}
}

// httpStream reads a stream over HTTP and reconnects with backoff after the
// server closes it or a retryable failure occurs. Each new connection
// resends the last event id, unless the server cleared it with an empty
// id field. Failures are returned as *errors.AppError.
type httpStream struct {
	client  *httpclient.Client
	url     string
	backoff *resilience.Backoff
	metrics *observability.Metrics
	log     *logger.Logger

	resp   *httpclient.StreamResponse
	lastID string
	wait   time.Duration
	done   bool
}

func newHTTPStream(client *httpclient.Client, url string, reconnect *resilience.RetryConfig, metrics *observability.Metrics, log *logger.Logger) *httpStream {
	s := &httpStream{
		client:  client,
		url:     url,
		metrics: metrics,
		log:     log,
	}
	if reconnect != nil {
		s.backoff = resilience.NewBackoff(*reconnect)
	}
	return s
}

func (s *httpStream) Next(ctx context.Context) (frame, error) {
	for {
		if s.done {
			return frame{}, io.EOF
		}

		if s.resp == nil {
			if err := resilience.Sleep(ctx, s.wait); err != nil {
				s.done = true
				return frame{}, err
			}
			s.wait = 0
			if err := s.open(ctx); err != nil {
				if ctx.Err() != nil {
					s.done = true
					return frame{}, ctx.Err()
				}
				if httpclient.IsNoContent(err) {
					// 204 asks the client to stop reconnecting
					s.log.Info("server ended the stream with 204")
					s.done = true
					continue
				}
				appErr := errors.ConnectionFailed(s.url, err)
				appErr.Retryable = httpclient.IsRetryable(err)
				s.fail(ctx, appErr)
				return frame{}, appErr
			}
			return frame{kind: frameOpen}, nil
		}

		ev, err := s.resp.SSE.Next()
		if err != nil {
			_ = s.resp.Close()
			s.resp = nil
			if ctx.Err() != nil {
				s.done = true
				return frame{}, ctx.Err()
			}
			if stderrors.Is(err, io.EOF) {
				// server closed a healthy stream: reconnect without an error event
				s.fail(ctx, errors.Stream(err))
				continue
			}
			appErr := errors.Stream(err)
			s.fail(ctx, appErr)
			return frame{}, appErr
		}

		// the reader was seeded with lastID, so an empty id here means the server cleared it
		s.lastID = ev.ID
		if ev.Retry > 0 && s.backoff != nil {
			s.backoff.SetInitial(ev.Retry)
		}
		if ev.Kind == sse.KindComment {
			return frame{kind: frameComment, data: ev.Comment}, nil
		}
		return frame{kind: frameEvent, typ: ev.Event, data: ev.Data, id: ev.ID}, nil
	}
}

// open performs one connection attempt inside a dial span.
func (s *httpStream) open(ctx context.Context) error {
	attempt := 0
	if s.backoff != nil {
		attempt = s.backoff.Attempt()
	}
	spanCtx, span := observability.StartSpan(ctx, observability.SpanStreamDial,
		attribute.String(observability.AttrURL, s.url),
		attribute.Int(observability.AttrAttempt, attempt),
		attribute.Bool(observability.AttrResumed, s.lastID != ""),
	)

	resp, err := s.client.DoStream(spanCtx, httpclient.Request{URL: s.url, LastEventID: s.lastID})
	if err != nil {
		observability.EndSpan(span, err)
		s.log.WithContext(spanCtx).Debug("dial failed", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	span.SetAttributes(attribute.Int(observability.AttrStatus, resp.StatusCode))
	observability.EndSpan(span, nil)
	s.resp = resp
	if s.backoff != nil {
		s.backoff.Reset()
	}
	s.log.WithContext(spanCtx).Debug("dial succeeded", logger.Fields(logger.FieldStatus, resp.StatusCode))
	return nil
}

// fail schedules a reconnect for err or finishes the stream when the error
// is terminal or the reconnect budget is spent.
func (s *httpStream) fail(ctx context.Context, err *errors.AppError) {
	if s.backoff == nil || !err.Retryable {
		s.done = true
		return
	}
	delay, ok := s.backoff.Next(err)
	if !ok {
		s.log.Info("giving up reconnecting", logger.Fields(logger.FieldAttempt, s.backoff.Attempt()))
		s.done = true
		return
	}
	s.wait = delay
	s.metrics.RecordReconnect(ctx, s.backoff.Attempt())
	s.log.Debug("reconnect scheduled", logger.Fields(
		logger.FieldAttempt, s.backoff.Attempt(),
		logger.FieldBackoff, delay.Milliseconds(),
	))
}

func (s *httpStream) Close() error {
	if s.resp == nil {
		return nil
	}
	err := s.resp.Close()
	s.resp = nil
	return err
}
