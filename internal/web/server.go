// Package web serves the dcc-button status page and its JSON views.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/dcc-button/internal/status"
)

// ButtonView is the compact /button.json document: the debounced line and
// the settings that shape it, without uptime, MQTT or counters.
type ButtonView struct {
	Pin          int    `json:"pin"`
	State        string `json:"state"`
	Ready        bool   `json:"ready"`
	LastChangeMs uint32 `json:"last_change_ms"`
	DebounceMs   int64  `json:"debounce_ms"`
	LongPressMs  int64  `json:"long_press_ms"`
	PullUp       bool   `json:"pull_up"`
	Invert       bool   `json:"invert"`
}

// NewButtonView projects a tracker snapshot onto a ButtonView.
func NewButtonView(snap status.Snapshot) ButtonView {
	return ButtonView{
		Pin:          snap.Config.Pin,
		State:        snap.StateOrUnknown(),
		Ready:        snap.Ready,
		LastChangeMs: snap.LastChangeMs,
		DebounceMs:   snap.Config.DebounceMs,
		LongPressMs:  snap.Config.LongPressMs,
		PullUp:       snap.Config.PullUp,
		Invert:       snap.Config.Invert,
	}
}

// Server serves the tracker's state over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("/", readOnly(s.handleIndex))
	mux.HandleFunc("/index.json", readOnly(s.handleStatus))
	mux.HandleFunc("/button.json", readOnly(s.handleButton))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// readOnly rejects anything but GET and HEAD; every view is a snapshot.
func readOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(NewButtonView(s.tracker.Snapshot()))
	if err != nil {
		log.Printf("web: encode button view: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
