package logicdb

import (
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	clog "github.com/vilterp/logicdb/pkg/log"
	"go.uber.org/zap"
)

type Server struct {
	solver     *Solver
	httpServer *http.Server

	mu               sync.Mutex
	connections      map[connectionID]*connection
	nextConnectionID int
}

func NewServer(solver *Solver, addr string) *Server {
	server := &Server{
		solver:      solver,
		connections: map[connectionID]*connection{},
	}
	server.httpServer = &http.Server{Addr: addr, Handler: server.Handler()}
	return server
}

// Handler serves questions at /ws, metrics at /metrics, and pprof.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(s.solver.Registry(), promhttp.HandlerOpts{}),
	)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(_ *http.Request) bool { return true },
	}
	mux.HandleFunc("/ws", func(resp http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(resp, req, nil)
		if err != nil {
			clog.L().Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		s.addConnection(conn)
	})

	return mux
}

// addConnection serves questions on wsConn until it closes.
func (s *Server) addConnection(wsConn *websocket.Conn) {
	s.mu.Lock()
	conn := newConnection(wsConn, s, s.nextConnectionID)
	s.nextConnectionID++
	s.connections[conn.id] = conn
	s.mu.Unlock()

	s.solver.metrics.openConnections.Inc()
	conn.handleRequests()
}

func (s *Server) removeConn(conn *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[conn.id]; !ok {
		return
	}
	delete(s.connections, conn.id)
	s.solver.metrics.openConnections.Dec()
}

func (s *Server) ListenAndServe() error {
	clog.L().Info("serving HTTP", zap.String("addr", "http://"+s.httpServer.Addr+"/"))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Close() error {
	clog.L().Info("closing websocket connections...")
	s.mu.Lock()
	for _, conn := range s.connections {
		conn.clientConn.Close()
	}
	s.mu.Unlock()
	clog.L().Info("closing http server...")
	if err := s.httpServer.Close(); err != nil {
		return err
	}
	clog.L().Info("bye!")
	return nil
}
