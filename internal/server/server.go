// Package server is the HTTP surface of the portfolio: the page itself, the
// htmx endpoints that drive reveals and theme toggles, and the admin pages.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/dev-portfolio/internal/config"
	"github.com/Zachkp/dev-portfolio/internal/page"
	"github.com/Zachkp/dev-portfolio/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const themeCookie = "theme"

// Server holds the dependencies of every handler.
type Server struct {
	cfg   config.Config
	views *page.Views
	store *store.Store
	log   *zap.Logger

	adminToken string
}

// New builds a Server. st may be nil, which disables analytics and admin.
func New(cfg config.Config, views *page.Views, st *store.Store, log *zap.Logger) (*Server, error) {
	token, err := store.Token()
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, views: views, store: st, log: log, adminToken: token}

	if st != nil {
		log.Info("admin access available", zap.String("path", "/admin/login"))
		if cfg.GinMode == gin.DebugMode {
			log.Debug("admin token (dev only)", zap.String("token", token))
		}
	}
	return s, nil
}

// Templates parses the embedded page and fragment templates.
func Templates() (*template.Template, error) {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// Handler wires every route.
func (s *Server) Handler() (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.visitorTracking(), s.index)
	r.GET("/healthz", s.health)
	r.GET("/privacy", s.privacy)

	views := r.Group("/views/:view")
	views.GET("/reveal/:target", s.reveal)
	views.POST("/theme", s.toggleTheme)
	views.POST("/close", s.closeView)

	if s.store != nil {
		s.setupAdminRoutes(r)
	}
	return r, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (s *Server) Serve(ctx context.Context) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
