package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/dev-portfolio/internal/page"
	"github.com/Zachkp/dev-portfolio/internal/store"
)

const viewKey = "view_id"

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Error("request", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		log.Debug("request", fields...)
	}
}

// visitorTracking records the page load after the handler has opened a view.
// Do Not Track is respected and the client address is stored hashed.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if s.store == nil || c.GetHeader("DNT") == "1" {
			return
		}
		viewID := c.GetString(viewKey)
		ip, ua, path := c.ClientIP(), c.GetHeader("User-Agent"), c.Request.URL.Path
		s.store.Go(func(ctx context.Context) {
			if err := s.store.RecordVisit(ctx, ip, ua, path, viewID); err != nil {
				s.log.Warn("error recording visitor", zap.Error(err))
			}
		})
	}
}

// RecordReveals returns a reveal hook that stores every first reveal. Writes
// run in the background and are drained by st.Close.
func RecordReveals(st *store.Store, log *zap.Logger) page.RevealFunc {
	return func(v *page.View, comp page.Component) {
		viewID, target := v.ID, comp.ID()
		st.Go(func(ctx context.Context) {
			if err := st.RecordReveal(ctx, viewID, target); err != nil {
				log.Warn("error recording reveal", zap.Error(err), zap.String("target", target))
			}
		})
	}
}
