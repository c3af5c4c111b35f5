package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 16384,
}

// Server exposes the hub over HTTP: /ws for the scan stream, /healthz for
// liveness.
type Server struct {
	hub  *Hub
	http *http.Server
}

// NewServer builds a server listening on addr once started.
func NewServer(hub *Hub, addr string) *Server {
	s := &Server{hub: hub}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	s.hub.log.WithField("remote", conn.RemoteAddr().String()).Info("telemetry client connected")
	c := s.hub.register(conn)
	defer func() {
		s.hub.unregister(c)
		s.hub.log.Info("telemetry client disconnected")
	}()

	// Read pump: subscribers send nothing meaningful, but the read loop
	// notices closed connections.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Start serves until ctx is canceled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
