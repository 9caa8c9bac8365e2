// Package status serves the running game over HTTP: Prometheus metrics, a
// JSON view of the screen and a websocket that pushes the view whenever it
// changes.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/plus3/tetris/display"
	"github.com/plus3/tetris/loop"
	"github.com/plus3/tetris/tetris"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// State is the JSON view of a frame.
type State struct {
	// Board has one string per row, top first: '.' for a free cell and the
	// type letter for a filled one.
	Board   []string    `json:"board"`
	Score   int         `json:"score"`
	Next    string      `json:"next,omitempty"`
	Level   int         `json:"level"`
	Pause   string      `json:"pause"`
	Cleared int         `json:"cleared"`
	Loop    *loop.Stats `json:"loop,omitempty"`
}

// StateOf converts a snapshot.
func StateOf(s display.Snapshot) State {
	st := State{
		Board:   make([]string, tetris.Height),
		Score:   s.Score.Value(),
		Level:   s.Level,
		Pause:   s.Pause.String(),
		Cleared: s.Cleared,
	}
	if s.HasNext {
		st.Next = s.Next.String()
	}
	row := make([]byte, tetris.Width)
	for r := range tetris.Height {
		for c := range tetris.Width {
			row[c] = '.'
			if t := s.Grid[r][c]; t != display.Empty {
				row[c] = tetris.Type(t).String()[0]
			}
		}
		st.Board[r] = string(row)
	}
	return st
}

// Server routes the status endpoints.
type Server struct {
	frame    *display.Frame
	gatherer prometheus.Gatherer
	stats    func() loop.Stats
	interval time.Duration
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLoopStats adds loop statistics to every state.
func WithLoopStats(stats func() loop.Stats) Option {
	return func(s *Server) {
		s.stats = stats
	}
}

// WithInterval sets how often /live checks the frame for changes.
func WithInterval(d time.Duration) Option {
	return func(s *Server) {
		s.interval = d
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New returns a server exposing frame and the metrics in gatherer.
func New(frame *display.Frame, gatherer prometheus.Gatherer, opts ...Option) *Server {
	s := &Server{
		frame:    frame,
		gatherer: gatherer,
		interval: 50 * time.Millisecond,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/state", s.handleState)
	r.GET("/live", s.handleLive)
	s.router = r
	return s
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("status request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (s *Server) state() State {
	st := StateOf(s.frame.Snapshot())
	if s.stats != nil {
		ls := s.stats()
		st.Loop = &ls
	}
	return st
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.state())
}

// handleLive sends the state once on connect and again each time the
// frame changes, until the client goes away.
func (s *Server) handleLive(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var last []byte
	for {
		view := StateOf(s.frame.Snapshot())
		msg, err := json.Marshal(view)
		if err != nil {
			s.logger.Error("encode state", "error", err)
			return
		}
		if !bytes.Equal(msg, last) {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			last = msg
		}

		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("status server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
