// Package ssebridge subscribes to a Server-Sent Events stream and delivers
// its lifecycle and messages through a single non-blocking mailbox.
//
// The same API works on native builds, where the stream is read over HTTP
// by a goroutine, and in the browser (GOOS=js GOARCH=wasm), where the
// platform EventSource pushes events through JavaScript callbacks. Either
// way the caller polls:
//
//	rx, err := ssebridge.Connect("https://example.com/events")
//	if err != nil {
//	    return err
//	}
//	defer rx.Close()
//
//	for {
//	    if ev, ok := rx.TryRecv(); ok {
//	        fmt.Println("Received", ev)
//	    }
//	    // do other work
//	}
//
// Hosts with their own event loop (UI frameworks, game loops) pass a
// wake-up function that is called right before each event is queued:
//
//	rx, err := ssebridge.ConnectWithWakeup(url, func() { ui.RequestRepaint() })
//
// Transport failures never surface as Go errors from TryRecv. They arrive
// as Error events, and a terminated stream yields a final Closed event.
// Only setup failures (a malformed URL on native, a missing or throwing
// EventSource in the browser) are returned from Connect.
package ssebridge
