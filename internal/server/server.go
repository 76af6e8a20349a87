package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"tech-dispatch/internal/app"
)

const (
	sessionKey      = "sid"
	pruneInterval   = 10 * time.Minute
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	wire     *app.Wire
	router   *gin.Engine
	limiters *limiters
	logger   *log.Logger
}

func New(w *app.Wire, logger *log.Logger) *Server {
	cfg := w.Config.Server

	s := &Server{
		wire:     w,
		limiters: newLimiters(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst),
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.SessionName, store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/download-template", s.downloadTemplate)

	api := r.Group("/api")
	{
		api.GET("/session", s.getSession)
		api.POST("/session/submit", s.rateLimited, s.submit)
		api.POST("/session/reset", s.reset)
		api.GET("/session/map", s.getMap)
		api.GET("/session/export", s.exportAssignment)

		api.GET("/technicians", s.listTechnicians)
		api.GET("/technicians/nearby", s.nearbyTechnicians)
		api.PUT("/technicians/:name/status", s.setTechnicianStatus)
	}

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.wire.Config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.pruneSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Dispatch server running on port %s", s.wire.Config.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Println("Shutting down dispatch server...")
	return srv.Shutdown(shutdownCtx)
}

// pruneSessions drops sessions whose cookie would have expired anyway.
func (s *Server) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.wire.Sessions.Prune(s.wire.Config.Server.SessionMaxAge); n > 0 {
				s.logger.Printf("Pruned %d idle sessions", n)
			}
			s.limiters.retain(func(id string) bool { return s.wire.Sessions.Get(id) != nil })
		}
	}
}
