package ssehub

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/ssebridge/logger"
)

// Stream is the gin handler that streams frames to one subscriber until
// the request ends or the hub stops.
func (h *Hub) Stream(c *gin.Context) {
	w := c.Writer

	// long-lived response: lift any server write deadline
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.log.Debug("could not clear write deadline", logger.Fields(logger.FieldError, err.Error()))
	}

	sub := &client{id: uuid.NewString(), frames: make(chan Frame, h.buffer)}
	if !h.add(sub) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "hub stopped"})
		return
	}
	defer h.remove(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	w.WriteHeaderNow()
	w.Flush()

	h.log.Debug("subscriber connected", logger.Fields(
		logger.FieldConnectionID, sub.id,
		"last_event_id", c.GetHeader("Last-Event-ID"),
		"client_ip", c.ClientIP(),
	))

	var keepAlive <-chan time.Time
	if h.keepAlive > 0 {
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		keepAlive = ticker.C
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case f, ok := <-sub.frames:
			if !ok {
				return
			}
			if err := WriteFrame(w, f); err != nil {
				return
			}
			w.Flush()

		case <-keepAlive:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			w.Flush()
		}
	}
}

// lineBreaks turns CRLF and lone CR into LF, the only separator WriteFrame emits.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// fieldValue strips line breaks from a single-line field so it cannot
// start another field.
var fieldValue = strings.NewReplacer("\r", "", "\n", "")

// WriteFrame encodes f in the event stream wire format. Multi-line data is
// split across several data lines. Line breaks in ID and Event are removed.
func WriteFrame(w io.Writer, f Frame) error {
	var b strings.Builder
	if id := fieldValue.Replace(f.ID); id != "" {
		b.WriteString("id: " + id + "\n")
	}
	if event := fieldValue.Replace(f.Event); event != "" {
		b.WriteString("event: " + event + "\n")
	}
	if f.Retry > 0 {
		fmt.Fprintf(&b, "retry: %d\n", f.Retry.Milliseconds())
	}
	for _, line := range strings.Split(lineBreaks.Replace(f.Data), "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
