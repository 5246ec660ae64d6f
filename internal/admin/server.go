// Package admin serves relay status over HTTP: health, counters, configured
// targets and Prometheus metrics.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/tzspd/internal/dispatch"
	"github.com/danmuck/tzspd/internal/observability"
	"github.com/danmuck/tzspd/internal/target"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Source exposes the relay state shown by the admin surface.
type Source interface {
	Stats() dispatch.Stats
	Targets() target.List
}

type Server struct {
	addr    string
	router  *gin.Engine
	source  Source
	started time.Time
	version string
}

type targetView struct {
	PortStart uint16 `json:"port_start"`
	PortEnd   uint16 `json:"port_end"`
	Sensor    string `json:"sensor,omitempty"`
	Spec      string `json:"spec"`
}

func New(addr string, corsOrigins []string, version string, source Source) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	if origins := normalizeOrigins(corsOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		addr:    addr,
		router:  r,
		source:  source,
		started: time.Now(),
		version: version,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "tzspd",
			"version": s.version,
		})
	})
	s.router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.source.Stats())
	})
	s.router.GET("/targets", func(c *gin.Context) {
		list := s.source.Targets()
		out := make([]targetView, 0, len(list))
		for _, t := range list {
			v := targetView{PortStart: t.PortStart, PortEnd: t.PortEnd, Spec: t.String()}
			if t.Sensor != nil {
				v.Sensor = strings.ToUpper(t.Sensor.String())
			}
			out = append(out, v)
		}
		c.JSON(http.StatusOK, out)
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("admin: listen %s: %w", s.addr, err)
	}
	return s.serveListener(ctx, ln)
}

func (s *Server) serveListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("admin.Server.Serve listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("admin: shutdown: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("admin: serve: %w", err)
	}
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		out = append(out, o)
	}
	return out
}
