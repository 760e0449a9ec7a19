// Package observability exports traces and metrics of event stream
// receivers over OTLP HTTP.
//
//	tel, err := observability.Setup(ctx, observability.Config{Endpoint: "localhost:4318", Insecure: true, SampleRate: 1})
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	rx, err := ssebridge.Connect(url, ssebridge.WithMetrics(tel.Metrics))
//
// Native receivers open an sse.connect span per Connect call and an
// sse.dial span per connection attempt on the global tracer provider.
package observability
