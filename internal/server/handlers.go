package server

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/dev-portfolio/internal/page"
	"github.com/Zachkp/dev-portfolio/internal/reveal"
	"github.com/Zachkp/dev-portfolio/internal/theme"
)

type tokensData struct {
	CSS template.CSS
	OOB bool
}

func tokensFor(m theme.Mode, oob bool) tokensData {
	return tokensData{CSS: template.CSS(theme.TokensFor(m).CSS()), OOB: oob}
}

type indexData struct {
	*page.View
	Tokens tokensData
}

type themeData struct {
	View   *page.View
	Tokens tokensData
}

func (s *Server) index(c *gin.Context) {
	cookie, _ := c.Cookie(themeCookie)
	mode := theme.Preferred(cookie, c.GetHeader("Sec-CH-Prefers-Color-Scheme"))

	v := s.views.Open(mode)
	c.Set(viewKey, v.ID)

	c.Header("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html", indexData{View: v, Tokens: tokensFor(mode, false)})
}

// reveal handles an intersection report from the client and answers with the
// component's fragment for the resulting state.
func (s *Server) reveal(c *gin.Context) {
	ratio := 1.0
	if q := c.Query("ratio"); q != "" {
		r, err := strconv.ParseFloat(q, 64)
		if err != nil || r < 0 || r > 1 {
			c.String(http.StatusBadRequest, "ratio must be a number in [0,1]")
			return
		}
		ratio = r
	}

	v, ok := s.views.Get(c.Param("view"))
	if !ok {
		// swept, evicted or closed: the page is still showing, so hand back
		// the revealed fragment rather than leave it hidden
		comp, ok := s.views.Revealed(c.Param("view"), c.Param("target"))
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.HTML(http.StatusOK, comp.Template(), comp)
		return
	}
	comp, ok := v.Dispatch(reveal.Entry{Target: c.Param("target"), Ratio: ratio})
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.HTML(http.StatusOK, comp.Template(), comp)
}

func (s *Server) toggleTheme(c *gin.Context) {
	v, ok := s.views.Get(c.Param("view"))
	if !ok {
		// stale page: flip the cookie and let the client load a fresh view
		cookie, _ := c.Cookie(themeCookie)
		mode := theme.Preferred(cookie, "").Toggle()
		s.setThemeCookie(c, mode)
		c.Header("HX-Refresh", "true")
		c.Status(http.StatusNoContent)
		return
	}

	mode := v.Theme.Toggle()
	s.setThemeCookie(c, mode)
	c.Header("HX-Trigger", `{"theme-changed":"`+string(mode)+`"}`)
	c.HTML(http.StatusOK, "theme-response", themeData{View: v, Tokens: tokensFor(mode, true)})
}

// setThemeCookie writes a session cookie; it is gone when the browser closes.
func (s *Server) setThemeCookie(c *gin.Context, m theme.Mode) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(themeCookie, string(m), 0, "/", "", false, true)
}

func (s *Server) closeView(c *gin.Context) {
	if s.views.Close(c.Param("view")) {
		s.log.Debug("view torn down by client", zap.String("view", c.Param("view")))
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "views": s.views.Len()})
}

func (s *Server) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"retention": s.cfg.Retention.String(),
	})
}
