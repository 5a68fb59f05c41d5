package server

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

// adminCredentials falls back to admin/admin123 only in debug mode.
func (s *Server) adminCredentials() (user, pass string, ok bool) {
	user, pass = s.cfg.AdminUsername, s.cfg.AdminPassword
	if user != "" && pass != "" {
		return user, pass, true
	}
	if s.cfg.GinMode != gin.DebugMode {
		return "", "", false
	}
	if user == "" {
		user = "admin"
		s.log.Warn("using default admin username, set ADMIN_USERNAME")
	}
	if pass == "" {
		pass = "admin123"
		s.log.Warn("using default admin password, set ADMIN_PASSWORD")
	}
	return user, pass, true
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || !equal(token, s.adminToken) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		user, pass, ok := s.adminCredentials()
		hashed := s.store.HashIP(c.ClientIP())
		if !ok || !equal(c.PostForm("username"), user) || !equal(c.PostForm("password"), pass) {
			s.log.Warn("failed admin login", zap.String("client", hashed))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Invalid credentials"})
			return
		}
		c.SetCookie(adminCookie, s.adminToken, 3600*24, "/admin", "", false, true)
		s.log.Info("admin login", zap.String("client", hashed))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.log.Error("loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Failed to load statistics"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{"stats": stats, "liveViews": s.views.Len()})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats, "live_views": s.views.Len()})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=portfolio-stats.json")
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		s.store.Go(s.Cleanup)
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup initiated"})
	})
}

// Cleanup drops analytics past the retention window.
func (s *Server) Cleanup(ctx context.Context) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Cleanup(ctx, s.cfg.Retention); err != nil {
		s.log.Error("privacy cleanup", zap.Error(err))
	}
}
