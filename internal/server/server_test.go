package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zachkp/dev-portfolio/internal/config"
	"github.com/Zachkp/dev-portfolio/internal/content"
	"github.com/Zachkp/dev-portfolio/internal/page"
	"github.com/Zachkp/dev-portfolio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t     *testing.T
	views *page.Views
	store *store.Store
	h     http.Handler
}

func newHarness(t *testing.T, withStore bool) *harness {
	t.Helper()
	p, err := content.Default()
	require.NoError(t, err)

	cfg := config.Config{
		Port:          "0",
		GinMode:       gin.TestMode,
		AdminUsername: "owner",
		AdminPassword: "s3cret",
		Retention:     365 * 24 * time.Hour,
	}

	var st *store.Store
	var opts []page.Option
	if withStore {
		st, err = store.Open(context.Background(), ":memory:", zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		opts = append(opts, page.WithRevealHook(RecordReveals(st, zap.NewNop())))
	}
	views := page.NewViews(page.NewLive(p), zap.NewNop(), opts...)

	s, err := New(cfg, views, st, zap.NewNop())
	require.NoError(t, err)
	h, err := s.Handler()
	require.NoError(t, err)
	return &harness{t: t, views: views, store: st, h: h}
}

func (h *harness) do(method, target string, body url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("DNT", "1")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

var closeURL = regexp.MustCompile(`data-close-url="/views/([^/"]+)/close"`)

func (h *harness) openPage(cookies ...*http.Cookie) (string, string) {
	h.t.Helper()
	rec := h.do(http.MethodGet, "/", nil, cookies...)
	require.Equal(h.t, http.StatusOK, rec.Code)
	m := closeURL.FindStringSubmatch(rec.Body.String())
	require.Len(h.t, m, 2, "view id not found in page")
	return m[1], rec.Body.String()
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIndexRendersEverySectionHidden(t *testing.T) {
	h := newHarness(t, false)
	_, body := h.openPage()

	assert.Contains(t, body, `<html lang="en" class="light">`)
	assert.Contains(t, body, "Tejas Sidhwani")
	assert.Contains(t, body, `id="skill-web-development"`)
	assert.Contains(t, body, `id="project-papersprint" class="project snap reversed"`)
	assert.Contains(t, body, `id="project-threadify" class="project snap"`)
	assert.Contains(t, body, `data-reveal="load"`)
	assert.Contains(t, body, `data-delay="300"`)
	assert.Contains(t, body, `data-root-margin="0px 0px -100px 0px"`)
	assert.NotContains(t, body, `data-phase="revealed"`)
	assert.Contains(t, body, `<style id="theme-tokens">:root{`)
	assert.Contains(t, body, `<div class="card lift" data-testid="card-skill-database">`)
	assert.Contains(t, body, `<div class="card lift lift-high" data-testid="card-award-innovatex">`)

	// navbar, hero, skills, projects, awards, footer in that order
	order := []string{`id="navbar"`, `id="hero"`, `id="skills"`, `id="projects"`, `id="awards"`, `id="footer"`}
	last := -1
	for _, marker := range order {
		i := strings.Index(body, marker)
		require.Greater(t, i, last, marker)
		last = i
	}
	assert.Equal(t, 1, h.views.Len())
}

func TestRevealFlow(t *testing.T) {
	h := newHarness(t, false)
	id, _ := h.openPage()
	base := "/views/" + id + "/reveal/"

	rec := h.do(http.MethodGet, base+"skill-database?ratio=0.05", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-phase="hidden"`)

	rec = h.do(http.MethodGet, base+"skill-database?ratio=0.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="skill-database"`)
	assert.Contains(t, body, `data-phase="revealed"`)
	assert.NotContains(t, body, "data-reveal=")
	assert.Contains(t, body, "opacity:1;transform:translate(0px,0px) scale(1);transition:opacity 0.6s ease-out 0.3s")

	rec = h.do(http.MethodGet, base+"skill-database?ratio=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-phase="revealed"`, "never hides again")
}

func TestRevealAwardsRendersCards(t *testing.T) {
	h := newHarness(t, false)
	id, _ := h.openPage()

	rec := h.do(http.MethodGet, "/views/"+id+"/reveal/awards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="award-innovatex"`)
	assert.Contains(t, body, `id="award-minithon-details"`)
	assert.Equal(t, 0, strings.Count(body, "opacity:0;"))
}

func TestRevealBadRequests(t *testing.T) {
	h := newHarness(t, false)
	id, _ := h.openPage()

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/views/"+id+"/reveal/hero?ratio=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/views/"+id+"/reveal/hero?ratio=1.5", nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodGet, "/views/"+id+"/reveal/unknown", nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodGet, "/views/missing/reveal/unknown", nil).Code)
}

func TestRevealAfterSweepShowsContent(t *testing.T) {
	h := newHarness(t, true)
	id, body := h.openPage()
	require.Contains(t, body, `id="skill-database" class="card-slot" style="opacity:0;`)
	require.Equal(t, 1, h.views.Sweep(-time.Second))

	rec := h.do(http.MethodGet, "/views/"+id+"/reveal/skill-database?ratio=0.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	frag := rec.Body.String()
	assert.Contains(t, frag, `id="skill-database" class="card-slot" style="opacity:1;`)
	assert.Contains(t, frag, `data-phase="revealed"`)
	assert.NotContains(t, frag, "data-reveal=")
	assert.NotContains(t, frag, "opacity:0;")

	rec = h.do(http.MethodGet, "/views/"+id+"/reveal/awards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "opacity:0;")

	assert.Equal(t, 0, h.views.Len(), "a gone view is not reopened")
	stats, err := h.store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReveals)
}

func TestCloseTearsDownView(t *testing.T) {
	h := newHarness(t, false)
	id, _ := h.openPage()

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/views/"+id+"/close", nil).Code)
	assert.Equal(t, 0, h.views.Len())
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/views/"+id+"/close", nil).Code)

	// a page restored after its close beacon still gets its content shown
	rec := h.do(http.MethodGet, "/views/"+id+"/reveal/hero", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="hero" class="hero snap" data-phase="revealed"`)
	assert.Equal(t, 0, h.views.Len())
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t, false)
	id, _ := h.openPage()

	rec := h.do(http.MethodPost, "/views/"+id+"/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-mode="dark"`)
	assert.Contains(t, body, `data-lucide="sun"`)
	assert.Contains(t, body, `<style id="theme-tokens" hx-swap-oob="true">`)
	assert.Equal(t, `{"theme-changed":"dark"}`, rec.Header().Get("HX-Trigger"))

	c := cookieNamed(rec, themeCookie)
	require.NotNil(t, c)
	assert.Equal(t, "dark", c.Value)
	assert.Zero(t, c.MaxAge, "session cookie only")

	rec = h.do(http.MethodPost, "/views/"+id+"/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-mode="light"`)
}

func TestThemeCookieSelectsInitialMode(t *testing.T) {
	h := newHarness(t, false)
	_, body := h.openPage(&http.Cookie{Name: themeCookie, Value: "dark"})
	assert.Contains(t, body, `<html lang="en" class="dark">`)
	assert.Contains(t, body, `data-lucide="sun"`)
}

func TestThemeToggleOnStaleView(t *testing.T) {
	h := newHarness(t, false)

	rec := h.do(http.MethodPost, "/views/gone/theme", nil, &http.Cookie{Name: themeCookie, Value: "dark"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	c := cookieNamed(rec, themeCookie)
	require.NotNil(t, c)
	assert.Equal(t, "light", c.Value)
}

func TestHealthAndStatic(t *testing.T) {
	h := newHarness(t, false)

	rec := h.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","views":0}`, rec.Body.String())

	rec = h.do(http.MethodGet, "/static/reveal.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "IntersectionObserver")
	assert.Contains(t, rec.Body.String(), "showStatic(el)")

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/privacy", nil).Code)
}

func TestAdminRequiresStore(t *testing.T) {
	h := newHarness(t, false)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/admin/login", nil).Code)
}

func TestAdminLoginAndDashboard(t *testing.T) {
	h := newHarness(t, true)

	rec := h.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = h.do(http.MethodPost, "/admin/login", url.Values{"username": {"owner"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodPost, "/admin/login", url.Values{"username": {"owner"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusFound, rec.Code)
	token := cookieNamed(rec, adminCookie)
	require.NotNil(t, token)

	rec = h.do(http.MethodGet, "/admin/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sections reached")

	rec = h.do(http.MethodGet, "/admin/api/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"live_views":0`)
}

func TestRevealsAreRecorded(t *testing.T) {
	h := newHarness(t, true)
	id, _ := h.openPage()

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/views/"+id+"/reveal/footer?ratio=0.2", nil).Code)

	assert.Eventually(t, func() bool {
		stats, err := h.store.Stats(context.Background())
		return err == nil && stats.TotalReveals == 1
	}, time.Second, 10*time.Millisecond)
}
