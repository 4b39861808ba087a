// Package statusapi exposes the local observation surface of a running
// monitor: a health check, occupancy snapshots, and an MJPEG preview of
// the annotated frames.
package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const mjpegBoundary = "frame"

// Server serves the status endpoints over plain HTTP.
type Server struct {
	holder     *Holder
	systemID   string
	location   string
	httpServer *http.Server
}

// NewServer returns a configured status server listening on addr.
func NewServer(addr, systemID, location string, holder *Holder) *Server {
	s := &Server{
		holder:   holder,
		systemID: systemID,
		location: location,
	}
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	return s
}

// Handler exposes the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/slots", s.handleSlots)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/stream", s.handleStream)
	return mux
}

// ListenAndServe blocks serving requests; run it on its own goroutine.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"system_id": s.systemID,
		"location":  s.location,
	})
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	slots := s.holder.Slots()
	if slots == nil {
		slots = []SlotInfo{}
	}
	writeJSON(w, map[string]any{
		"slots":     slots,
		"timestamp": float64(time.Now().Unix()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.holder.Stats())
}

// handleStream serves the annotated frames as multipart MJPEG, the
// same preview transport the original web monitor used.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	w.Header().Set("Cache-Control", "no-cache")

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			frame := s.holder.Frame()
			if frame == nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		_, _ = fmt.Fprintf(w, `{"error":%q}`, err.Error())
	}
}
