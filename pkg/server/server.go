package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"lingoscope/pkg/render"
	"lingoscope/pkg/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// /ws is guarded by the token instead
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Options struct {
	// PasswordHash is a bcrypt hash. Empty disables login and token checks.
	PasswordHash string
	Secret       []byte
	TokenTTL     time.Duration
	DotSyntax    bool
}

// Server exposes a debugger session to websocket clients.
type Server struct {
	session *session.Session
	opts    Options
	log     *slog.Logger

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(resp Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(resp)
}

func New(sess *session.Session, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	return &Server{
		session: sess,
		opts:    opts,
		log:     logger,
		clients: make(map[string]*client),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.PasswordHash == "" {
		http.Error(w, "login disabled", http.StatusNotFound)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !VerifyPassword(s.opts.PasswordHash, body.Password) {
		s.log.Warn("login failed", "remote", r.RemoteAddr)
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	token, err := SignToken("debugger", s.opts.Secret, s.opts.TokenTTL)
	if err != nil {
		s.log.Error("signing token", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) authorize(r *http.Request) error {
	if s.opts.PasswordHash == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	_, err := VerifyToken(token, s.opts.Secret)
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.authorize(r); err != nil {
		s.log.Warn("websocket rejected", "remote", r.RemoteAddr, "err", err)
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{id: ulid.Make().String(), conn: conn}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.log.Info("client connected", "client", c.id, "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		conn.Close()
		s.log.Info("client disconnected", "client", c.id)
	}()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read failed", "client", c.id, "err", err)
			}
			return
		}

		resp := s.dispatch(r.Context(), req)
		if resp.Error != "" {
			s.log.Warn("message error", "client", c.id, "op", req.Op, "err", resp.Error)
		}
		if err := c.send(resp); err != nil {
			s.log.Warn("write failed", "client", c.id, "err", err)
			return
		}

		if resp.Error == "" && (req.Op == "pause" || req.Op == "resume") {
			s.broadcast(c.id, Response{Op: req.Op + "d", Frame: resp.Frame})
		}
	}
}

// broadcast sends resp to every client but the sender.
func (s *Server) broadcast(from string, resp Response) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for id, c := range s.clients {
		if id != from {
			clients = append(clients, c)
		}
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(resp); err != nil {
			s.log.Warn("broadcast failed", "client", c.id, "err", err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	resp := Response{Op: req.Op}

	var err error
	switch req.Op {
	case "render":
		var mode render.Mode
		if mode, err = render.ParseMode(req.Mode); err != nil {
			break
		}
		dot := s.opts.DotSyntax
		if req.Dot != nil {
			dot = *req.Dot
		}
		var events []render.Event
		if events, err = s.session.Render(req.ref(), mode, dot); err == nil {
			resp.Events = events
			resp.Text = render.Text(events)
		}

	case "toggle":
		resp.ID, resp.Set, err = s.session.ToggleBreakpoint(ctx, req.Handler, req.Container, req.Offset)
		resp.Breakpoints = s.session.ListFunctionBreakpoints()

	case "enable":
		err = s.session.SetEnabled(ctx, req.ID, req.Enabled)
		resp.Breakpoints = s.session.ListFunctionBreakpoints()

	case "remove":
		err = s.session.Remove(ctx, req.ID)
		resp.Breakpoints = s.session.ListFunctionBreakpoints()

	case "breakpoints":
		resp.Breakpoints = s.session.ListFunctionBreakpoints()

	case "pause":
		if err = s.session.Pause(req.ref(), req.PC); err == nil {
			if frame, ok := s.session.PausedFrame(); ok {
				resp.Frame = &frame
			}
		}

	case "resume":
		s.session.Resume()

	case "handlers":
		resp.Handlers = s.session.Handlers()

	default:
		err = fmt.Errorf("unknown op %q", req.Op)
	}

	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
