// Package api is the HTTP surface: submit a room-creation job, poll its
// result, observe the queue. All responses are JSON; everything except the
// liveness, health, and metrics endpoints sits behind the bearer token.
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eroom-dev/eroom/pkg/queue"
	"github.com/eroom-dev/eroom/pkg/store"
)

// tokenEnv names the env var holding the shared bearer token.
const tokenEnv = "EROOM_PRIVATE_KEY"

// Server is the API server. Construct with NewServer, then Start.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	store      *store.Store
	manager    *queue.Manager
	token      string
}

// NewServer builds the server and its routes.
func NewServer(token string, st *store.Store, manager *queue.Manager) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		store:   st,
		manager: manager,
		token:   token,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.rootHandler)
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/metrics", s.metricsHandler())

	auth := s.engine.Group("/", s.requireAuth())
	auth.GET("/queue/status", s.queueStatusHandler)
	auth.POST("/room/create", s.createRoomHandler)
	auth.GET("/room/result", s.roomResultHandler)
}

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ResolveAuthToken returns the shared bearer token: EROOM_PRIVATE_KEY when
// set, otherwise a random per-process token. The generated token is logged
// so an operator can still reach the protected routes.
func ResolveAuthToken() string {
	if t := os.Getenv(tokenEnv); t != "" {
		return t
	}

	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("api: reading random bytes: " + err.Error())
	}
	token := hex.EncodeToString(b[:])
	slog.Warn("EROOM_PRIVATE_KEY not set, generated a per-process token", "token", token)
	return token
}
