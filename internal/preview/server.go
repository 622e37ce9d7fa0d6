package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/route2video/internal/director"
	"github.com/ivlev/route2video/internal/metrics"
	"github.com/ivlev/route2video/internal/render"
	"github.com/ivlev/route2video/internal/system"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the preview binds to localhost
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// SessionFactory builds a fresh canvas and player for one client, so two
// browser tabs never share animation state.
type SessionFactory func() (*render.Canvas, *director.Player, error)

// Server streams live preview frames over a websocket and serves the control
// page. One session per connection.
type Server struct {
	factory SessionFactory
	fps     int
	metrics *metrics.Collector
	log     *slog.Logger
}

func NewServer(factory SessionFactory, fps int, m *metrics.Collector) *Server {
	if fps <= 0 {
		fps = 30
	}
	return &Server{
		factory: factory,
		fps:     fps,
		metrics: m,
		log:     slog.Default(),
	}
}

// Handler builds the route table; split out so tests can mount it.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.page)
	r.GET("/ws", s.stream)
	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("preview server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) page(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(previewHTML))
}

func (s *Server) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	s.metrics.PreviewConnected()
	defer s.metrics.PreviewDisconnected()

	s.runSession(c.Request.Context(), conn)
}

type controlMsg struct {
	Action string `json:"action"`
}

func (s *Server) runSession(ctx context.Context, conn *websocket.Conn) {
	canvas, player, err := s.factory()
	if err != nil {
		s.log.Error("preview session init failed", "err", err)
		return
	}

	commands := make(chan string, 4)
	g, ctx := errgroup.WithContext(ctx)

	// Closing the socket is what unblocks a parked ReadJSON once the other
	// pump fails or the request context ends.
	g.Go(func() error {
		<-ctx.Done()
		conn.Close()
		return nil
	})

	// Read pump: control messages from the page.
	g.Go(func() error {
		for {
			var msg controlMsg
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log.Debug("preview read pump closed", "err", err)
				}
				return err
			}
			select {
			case commands <- msg.Action:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	// Write pump: fixed-rate frames. Sole writer on the connection.
	g.Go(func() error {
		ticker := time.NewTicker(time.Second / time.Duration(s.fps))
		defer ticker.Stop()
		buf := new(bytes.Buffer)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cmd := <-commands:
				switch cmd {
				case "pause":
					player.Pause()
				case "play":
					player.Resume()
				case "restart":
					freshCanvas, freshPlayer, err := s.factory()
					if err != nil {
						s.log.Warn("preview restart failed", "err", err)
						continue
					}
					canvas, player = freshCanvas, freshPlayer
				}
			case now := <-ticker.C:
				player.Advance(now)
				img, err := canvas.Snapshot(ctx)
				if err != nil {
					return err
				}
				buf.Reset()
				encodeErr := png.Encode(buf, img)
				if rgba, ok := img.(*image.RGBA); ok {
					system.PutImage(rgba)
				}
				if encodeErr != nil {
					return encodeErr
				}
				if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
					return err
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Debug("preview session ended", "err", err)
	}
}
