package server

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/metrics"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/internal/translate"
)

//go:embed web
var webFS embed.FS

// Controller is the part of the orchestrator the panel drives.
type Controller interface {
	Current() result.Result
	History() []result.Result
	Submit(source string) bool
	TranslateText(ctx context.Context, text string) (result.Result, error)
	Subscribe() (<-chan result.Event, func())
}

// CommandMessage is sent by the panel over the WebSocket.
type CommandMessage struct {
	Type    string `json:"type"`
	Origin  string `json:"origin,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// EventMessage is pushed to the panel for every store event.
type EventMessage struct {
	Type       string `json:"type"`
	Origin     string `json:"origin"`
	Translated string `json:"translated"`
	Error      string `json:"error,omitempty"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// DataResponse is the body of /data.json and /translate.json.
type DataResponse struct {
	Origin     string `json:"origin"`
	Translated string `json:"translated"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	// Prune old timestamps
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	ctrl    Controller
	metrics *metrics.Metrics

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// New creates a new server. m may be nil, in which case /metrics is not served.
func New(ctrl Controller, m *metrics.Metrics) *Server {
	return &Server{
		ctrl:    ctrl,
		metrics: m,
		conns:   make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServerFS(static))

	// WebSocket endpoint
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	// JSON API
	mux.HandleFunc("GET /data.json", s.handleData)
	mux.HandleFunc("GET /translate.json", s.handleTranslate)
	mux.HandleFunc("GET /sites.json", s.handleSites)
	mux.HandleFunc("GET /history.json", s.handleHistory)
	mux.HandleFunc("POST /api/capture", s.handleCapture)

	var h http.Handler = mux
	if s.metrics != nil {
		h = s.metrics.Instrument(mux)
	}
	// Apply middleware: metrics -> trace -> CORS
	h = corsMiddleware(trace.Middleware(h))

	if s.metrics == nil {
		return h
	}
	root := http.NewServeMux()
	root.Handle("GET /metrics", s.metrics.Handler())
	root.Handle("/", h)
	return root
}

// Connections reports the number of open WebSocket connections.
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.CodeOf(err) {
	case apperr.InvalidArgument:
		status = http.StatusBadRequest
	case apperr.Busy:
		status = http.StatusConflict
	case apperr.Cancelled, apperr.Timeout:
		status = http.StatusGatewayTimeout
	case apperr.Unavailable:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, ErrorMessage{Type: "error", Error: err.Error()})
}

// origin reads the origin query parameter, falling back to the current text.
func (s *Server) origin(r *http.Request) (string, error) {
	origin := r.URL.Query().Get("origin")
	if strings.TrimSpace(origin) == "" {
		origin = s.ctrl.Current().Origin
	}
	if len(origin) > MaxOriginBytes {
		return "", apperr.Newf(apperr.InvalidArgument, "origin longer than %d bytes", MaxOriginBytes)
	}
	return origin, nil
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	cur := s.ctrl.Current()
	writeJSON(w, http.StatusOK, DataResponse{Origin: cur.Origin, Translated: cur.Translated})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	origin, err := s.origin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), TranslateTimeout)
	defer cancel()

	res, err := s.ctrl.TranslateText(ctx, origin)
	if err != nil {
		trace.Logger(ctx).Warn("manual translation failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DataResponse{Origin: res.Origin, Translated: res.Translated})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	origin, err := s.origin(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translate.Sites(origin))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.History())
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if !s.ctrl.Submit("panel") {
		writeError(w, apperr.New(apperr.Busy, "a capture is already pending"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		trace.Logger(r.Context()).Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	// Get trace context from HTTP upgrade request
	baseCtx, cancel := context.WithCancel(r.Context())
	defer cancel()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	events, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()
	go s.push(baseCtx, conn, events)

	cur := s.ctrl.Current()
	_ = s.write(baseCtx, conn, EventMessage{Type: string(result.EventResult), Origin: cur.Origin, Translated: cur.Translated})

	rl := &rateLimiter{}
	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		// Check rate limit
		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = s.write(baseCtx, conn, ErrorMessage{Type: "error", Error: "rate limit exceeded"})
			continue
		}

		var cmd CommandMessage
		if err := json.Unmarshal(msg, &cmd); err != nil {
			continue
		}

		ctx := baseCtx
		if tc, ok := trace.ExtractFromJSON(msg); ok {
			ctx = trace.WithContext(ctx, tc)
		} else {
			ctx, _ = trace.EnsureContext(ctx)
		}
		s.handleCommand(ctx, conn, cmd)
	}
}

func (s *Server) handleCommand(ctx context.Context, conn *websocket.Conn, cmd CommandMessage) {
	log := trace.Logger(ctx)
	switch cmd.Type {
	case "capture":
		if !s.ctrl.Submit("panel") {
			_ = s.write(ctx, conn, ErrorMessage{Type: "error", Error: "a capture is already pending"})
		}
	case "translate":
		if len(cmd.Origin) > MaxOriginBytes || strings.TrimSpace(cmd.Origin) == "" {
			_ = s.write(ctx, conn, ErrorMessage{Type: "error", Error: "invalid origin"})
			return
		}
		// The result reaches this connection through its subscription.
		go func() {
			ctx, cancel := context.WithTimeout(ctx, TranslateTimeout)
			defer cancel()
			if _, err := s.ctrl.TranslateText(ctx, cmd.Origin); err != nil {
				log.Warn("manual translation failed", "error", err)
				_ = s.write(ctx, conn, ErrorMessage{Type: "error", Error: err.Error()})
			}
		}()
	default:
		log.Debug("unknown websocket command", "type", cmd.Type)
	}
}

// push forwards store events until ctx ends or the subscription closes.
func (s *Server) push(ctx context.Context, conn *websocket.Conn, events <-chan result.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			msg := EventMessage{
				Type:       string(evt.Kind),
				Origin:     evt.Result.Origin,
				Translated: evt.Result.Translated,
				Error:      evt.Error,
			}
			if err := s.write(ctx, conn, msg); err != nil {
				trace.Logger(ctx).Debug("websocket push failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
