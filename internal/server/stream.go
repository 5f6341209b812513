package server

import (
	"fmt"
	"net/http"
	"time"
)

// JPEGSource supplies preview frames. Watch registers interest so the producer only
// encodes while someone is watching; the returned func releases it.
type JPEGSource interface {
	Latest() (jpeg []byte, seq uint64)
	Watch() (release func())
}

// StreamHandler serves MJPEG preview frames.
type StreamHandler struct {
	source   JPEGSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler polling source at about 15 FPS.
func NewStreamHandler(source JPEGSource) *StreamHandler {
	return &StreamHandler{source: source, interval: 66 * time.Millisecond}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	release := h.source.Watch()
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		buf, seq := h.source.Latest()
		if len(buf) == 0 || seq == sent {
			continue
		}
		sent = seq

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
