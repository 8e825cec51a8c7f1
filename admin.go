// admin.go - session-backed admin console over the portfolio API
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/Zachkp/portfolio-admin/internal/api"
	"github.com/Zachkp/portfolio-admin/internal/config"
	"github.com/Zachkp/portfolio-admin/internal/media"
	"github.com/Zachkp/portfolio-admin/internal/metrics"
	"github.com/Zachkp/portfolio-admin/internal/model"
	"github.com/Zachkp/portfolio-admin/internal/session"
	"github.com/Zachkp/portfolio-admin/internal/store"
)

const sessionCookie = "admin_session"

// Store actions worth an audit row. Reads are not audited.
var auditedActions = map[string]bool{
	"create":   true,
	"update":   true,
	"delete":   true,
	"save":     true,
	"upload":   true,
	"login":    true,
	"logout":   true,
	"register": true,
}

type console struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Store
	metrics  *metrics.Metrics

	mu     sync.Mutex
	stores map[string]*cachedStore
}

// cachedStore is one session's store plus the hashed address of the request
// currently driving it, which its audit rows are attributed to.
type cachedStore struct {
	st     *store.Store
	client atomic.Value
}

func (cs *cachedStore) hashedIP() string {
	ip, _ := cs.client.Load().(string)
	return ip
}

func newConsole(cfg config.Config, client *api.Client, sessions *session.Store, m *metrics.Metrics) *console {
	return &console{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		metrics:  m,
		stores:   map[string]*cachedStore{},
	}
}

// storeFor returns the session's cache, creating it on first use. Actions
// are audited under hashedIP until the next request of the session.
func (a *console) storeFor(sess *session.Session, hashedIP string) *store.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cs, ok := a.stores[sess.ID]; ok {
		cs.client.Store(hashedIP)
		return cs.st
	}

	id := sess.ID
	c := a.client.WithToken(sess.AccessToken, func() { a.drop(id) })
	cs := &cachedStore{st: store.New(store.ServicesFor(c))}
	cs.client.Store(hashedIP)
	cs.st.User.Restore(sess.User)
	cs.st.Subscribe(auditor(a.sessions, a.metrics, id, cs.hashedIP))

	a.stores[id] = cs
	a.metrics.SetActiveSessions(len(a.stores))
	return cs.st
}

func fixedClient(hashedIP string) func() string {
	return func() string { return hashedIP }
}

// drop forgets a session everywhere. Safe to call for unknown ids.
func (a *console) drop(id string) {
	a.mu.Lock()
	delete(a.stores, id)
	a.metrics.SetActiveSessions(len(a.stores))
	a.mu.Unlock()

	if err := a.sessions.Delete(context.Background(), id); err != nil {
		log.Error().Err(err).Msg("Error deleting session")
	}
}

// auditor logs and records store transitions for one session. client names
// the hashed address each row is attributed to.
func auditor(sessions *session.Store, m *metrics.Metrics, sessionID string, client func() string) func(store.Action) {
	return func(act store.Action) {
		m.ObserveAction(act.Slice, string(act.Phase))
		if act.Phase == store.Rejected {
			log.Warn().Str("action", act.Type).Str("target", act.Target).Str("error", act.Error).Msg("store action rejected")
			return
		}
		if act.Phase != store.Fulfilled || !auditedActions[act.Name] {
			return
		}
		err := sessions.Record(context.Background(), session.Entry{
			SessionID: sessionID,
			HashedIP:  client(),
			Action:    act.Type,
			Target:    act.Target,
		})
		if err != nil {
			log.Error().Err(err).Msg("Error recording audit entry")
		}
	}
}

// pruneStores drops caches whose session is gone from the database.
func (a *console) pruneStores(ctx context.Context) {
	a.mu.Lock()
	ids := make([]string, 0, len(a.stores))
	for id := range a.stores {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	for _, id := range ids {
		if _, err := a.sessions.Get(ctx, id); errors.Is(err, session.ErrNotFound) {
			a.mu.Lock()
			delete(a.stores, id)
			a.mu.Unlock()
		}
	}
	a.mu.Lock()
	a.metrics.SetActiveSessions(len(a.stores))
	a.mu.Unlock()
}

// cleanupLoop removes expired sessions and old audit rows until ctx ends.
func (a *console) cleanupLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if _, _, err := a.sessions.Cleanup(ctx, a.cfg.AuditRetention); err != nil {
			log.Error().Err(err).Msg("Error cleaning up sessions")
		}
		a.pruneStores(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *console) setSessionCookie(c *gin.Context, sess *session.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetCookie(sessionCookie, sess.ID, maxAge, "/admin", "", a.cfg.CookieSecure, true)
}

func (a *console) clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/admin", "", a.cfg.CookieSecure, true)
}

// Middleware to check admin authentication
func (a *console) sessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
			return
		}
		sess, err := a.sessions.Get(c.Request.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			a.drop(id)
			a.clearSessionCookie(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("Error loading session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		if !sess.User.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			return
		}

		c.Set("session", sess)
		c.Set("store", a.storeFor(sess, a.sessions.HashIP(c.ClientIP())))
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func storeOf(c *gin.Context) *store.Store {
	return c.MustGet("store").(*store.Store)
}

func sessionOf(c *gin.Context) *session.Session {
	return c.MustGet("session").(*session.Session)
}

// fail answers with the backend's status and the slice's error text.
func (a *console) fail(c *gin.Context, err error, msg string) {
	if msg == "" {
		msg = err.Error()
	}
	if errors.Is(err, api.ErrUnauthorized) {
		a.clearSessionCookie(c)
	}
	c.JSON(api.StatusCode(err), gin.H{"error": msg})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func newRouter(a *console) (*gin.Engine, error) {
	r := gin.New()
	// ClientIP feeds the audit hash, so forwarded headers only count from
	// configured proxies.
	if err := r.SetTrustedProxies(a.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), requestLogger())
	setupAdminRoutes(r, a)
	return r, nil
}

// Setup all admin routes
func setupAdminRoutes(r *gin.Engine, a *console) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{})))

	// Admin login handler
	r.POST("/admin/login", func(c *gin.Context) {
		var req model.LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		hashedIP := a.sessions.HashIP(c.ClientIP())

		st := store.New(store.ServicesFor(a.client))
		res, err := st.User.Login(c.Request.Context(), req)
		if err != nil {
			log.Warn().Str("client", hashedIP).Msg("Failed admin login attempt")
			if errors.Is(err, store.ErrNotAdmin) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
				return
			}
			c.JSON(api.StatusCode(err), gin.H{"error": st.User.State().Error})
			return
		}

		sess, err := a.sessions.Create(c.Request.Context(), res)
		if err != nil {
			log.Error().Err(err).Msg("Error creating session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		a.storeFor(sess, hashedIP)
		auditor(a.sessions, a.metrics, sess.ID, fixedClient(hashedIP))(store.Action{
			Type: "user/login/fulfilled", Slice: "user", Name: "login", Phase: store.Fulfilled, Target: req.Username,
		})

		a.setSessionCookie(c, sess)
		log.Info().Msgf("Admin login successful from %s", hashedIP)
		c.JSON(http.StatusOK, gin.H{"user": sess.User, "expires_at": sess.ExpiresAt})
	})

	// Admin logout
	r.POST("/admin/logout", func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		if id != "" {
			if sess, err := a.sessions.Get(c.Request.Context(), id); err == nil {
				st := a.storeFor(sess, a.sessions.HashIP(c.ClientIP()))
				if err := st.User.Logout(c.Request.Context()); err != nil {
					log.Error().Err(err).Msg("Backend logout failed")
				}
			}
			a.drop(id)
		}
		a.clearSessionCookie(c)
		log.Info().Msgf("Admin logout from %s", a.sessions.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin/api")
	adminGroup.Use(a.sessionAuth())

	adminGroup.GET("/me", func(c *gin.Context) {
		st := storeOf(c)
		user, err := st.User.GetMe(c.Request.Context())
		if err != nil {
			a.fail(c, err, st.User.State().Error)
			return
		}
		c.JSON(http.StatusOK, user)
	})

	adminGroup.GET("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionOf(c))
	})

	adminGroup.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, storeOf(c).Snapshot())
	})

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		st := storeOf(c)
		summary, err := st.Dashboard.FetchSummary(c.Request.Context())
		if err != nil {
			a.fail(c, err, st.Dashboard.State().Error)
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	adminGroup.GET("/audit", func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit <= 0 || limit > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		entries, err := a.sessions.Recent(c.Request.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("Error loading audit log")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load audit log"})
			return
		}
		c.JSON(http.StatusOK, entries)
	})

	setupProjectRoutes(adminGroup.Group("/projects"), a)
	setupContentRoutes(adminGroup, a)

	// Admin state export (for backups or analysis)
	r.GET("/admin/export/state", a.sessionAuth(), func(c *gin.Context) {
		c.Header("Content-Disposition", "attachment; filename=admin-state.json")
		log.Info().Msgf("Admin state exported by %s", a.sessions.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, storeOf(c).Snapshot())
	})
}

func setupProjectRoutes(g *gin.RouterGroup, a *console) {
	g.GET("", func(c *gin.Context) {
		st := storeOf(c)
		admin := c.DefaultQuery("scope", "admin") != "published"
		items, err := st.Projects.FetchAll(c.Request.Context(), admin)
		if err != nil {
			a.fail(c, err, st.Projects.State().Error)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.POST("", func(c *gin.Context) {
		var req model.ProjectRequest
		if !bindJSON(c, &req) {
			return
		}
		st := storeOf(c)
		p, err := st.Projects.Create(c.Request.Context(), req)
		if err != nil {
			a.fail(c, err, st.Projects.State().Error)
			return
		}
		c.JSON(http.StatusCreated, p)
	})

	g.GET("/by-slug/:slug", func(c *gin.Context) {
		st := storeOf(c)
		p, err := st.Projects.FetchBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			a.fail(c, err, st.Projects.State().Error)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	g.GET("/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		st := storeOf(c)
		p, err := st.Projects.FetchDetail(c.Request.Context(), id)
		if err != nil {
			a.fail(c, err, st.Projects.State().Error)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	g.PUT("/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req model.ProjectRequest
		if !bindJSON(c, &req) {
			return
		}
		st := storeOf(c)
		p, err := st.Projects.Update(c.Request.Context(), id, req)
		if err != nil {
			a.fail(c, err, st.Projects.State().Error)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		st := storeOf(c)
		if err := st.Projects.Delete(c.Request.Context(), id); err != nil {
			a.fail(c, err, st.Projects.State().Error)
			return
		}
		log.Info().Msgf("Project %d deleted by admin from %s", id, a.sessions.HashIP(c.ClientIP()))
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	})
}

func setupContentRoutes(g *gin.RouterGroup, a *console) {
	g.GET("/techstacks", func(c *gin.Context) {
		st := storeOf(c)
		items, err := st.TechStacks.FetchAll(c.Request.Context())
		if err != nil {
			a.fail(c, err, st.TechStacks.State().Error)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.POST("/techstacks", func(c *gin.Context) {
		var req model.TechStackRequest
		if !bindJSON(c, &req) {
			return
		}
		st := storeOf(c)
		t, err := st.TechStacks.Create(c.Request.Context(), req)
		if err != nil {
			a.fail(c, err, st.TechStacks.State().Error)
			return
		}
		c.JSON(http.StatusCreated, t)
	})

	g.DELETE("/techstacks/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		st := storeOf(c)
		if err := st.TechStacks.Delete(c.Request.Context(), id); err != nil {
			a.fail(c, err, st.TechStacks.State().Error)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tech stack deleted successfully"})
	})

	g.GET("/certificates", func(c *gin.Context) {
		st := storeOf(c)
		items, err := st.Certificates.FetchAll(c.Request.Context())
		if err != nil {
			a.fail(c, err, st.Certificates.State().Error)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.POST("/certificates", func(c *gin.Context) {
		var req model.CertificateRequest
		if !bindJSON(c, &req) {
			return
		}
		st := storeOf(c)
		cert, err := st.Certificates.Create(c.Request.Context(), req)
		if err != nil {
			a.fail(c, err, st.Certificates.State().Error)
			return
		}
		c.JSON(http.StatusCreated, cert)
	})

	g.GET("/seo", func(c *gin.Context) {
		pageURL := c.Query("url")
		if pageURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		st := storeOf(c)
		m, err := st.SEO.FetchByURL(c.Request.Context(), pageURL)
		if err != nil {
			a.fail(c, err, st.SEO.State().Error)
			return
		}
		if m == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	g.POST("/seo", func(c *gin.Context) {
		var m model.SeoMetadata
		if !bindJSON(c, &m) {
			return
		}
		st := storeOf(c)
		saved, err := st.SEO.Save(c.Request.Context(), m)
		if err != nil {
			a.fail(c, err, st.SEO.State().Error)
			return
		}
		c.JSON(http.StatusOK, saved)
	})

	g.POST("/media/upload", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		folder := c.PostForm("folder")
		if err := media.ValidateFolder(folder); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
			return
		}
		defer f.Close()

		contentType, body, err := media.Detect(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st := storeOf(c)
		url, err := st.Media.Upload(c.Request.Context(), fh.Filename, body, folder)
		if err != nil {
			a.fail(c, err, st.Media.State().Error)
			return
		}

		resp := gin.H{
			"url":         url,
			"contentType": contentType,
			"mediaType":   media.TypeFor(contentType),
		}
		if folder == media.FolderProjectGallery {
			resp["galleryItem"] = media.GalleryItem(url, contentType)
		}
		c.JSON(http.StatusOK, resp)
	})
}
