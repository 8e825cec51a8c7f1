package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio-admin/internal/api"
	"github.com/Zachkp/portfolio-admin/internal/config"
	"github.com/Zachkp/portfolio-admin/internal/metrics"
	"github.com/Zachkp/portfolio-admin/internal/model"
	"github.com/Zachkp/portfolio-admin/internal/session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// fakeBackend is an in-memory portfolio API. Usernames map to tokens as
// "tok-<username>"; "viewer" logs in with the USER role.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int64
	projects []model.Project
	stacks   []model.TechStack
	certs    []model.Certificate
	seo      map[string]model.SeoMetadata
	folders  []string
	revoked  atomic.Bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	b := &fakeBackend{nextID: 1, seo: map[string]model.SeoMetadata{}}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return b, api.New(api.Options{BaseURL: srv.URL + "/api"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) id() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		role := model.RoleAdmin
		if req.Username == "viewer" {
			role = "USER"
		}
		writeJSON(w, http.StatusOK, model.AuthResponse{
			AccessToken: "tok-" + req.Username,
			TokenType:   "Bearer",
			User:        model.User{ID: 1, Username: req.Username, Role: role},
		})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req model.RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, model.User{ID: 9, Username: req.Username, Email: req.Email, Role: "USER"})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer tok-")
		writeJSON(w, http.StatusOK, model.User{ID: 1, Username: name, Role: model.RoleAdmin})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []model.Project{}
		for _, p := range b.projects {
			if p.Published {
				out = append(out, p)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /api/projects/admin/all", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, append([]model.Project{}, b.projects...))
	})
	mux.HandleFunc("GET /api/projects/admin/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		for _, p := range b.projects {
			if p.ID == id {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Project not found"})
	})
	mux.HandleFunc("GET /api/projects/{slug}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, p := range b.projects {
			if p.Slug == r.PathValue("slug") {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Project not found"})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		var req model.ProjectRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		p := projectFrom(b.id(), req)
		b.projects = append(b.projects, p)
		writeJSON(w, http.StatusCreated, p)
	})
	mux.HandleFunc("PUT /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req model.ProjectRequest
		json.NewDecoder(r.Body).Decode(&req)
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, p := range b.projects {
			if p.ID == id {
				b.projects[i] = projectFrom(id, req)
				writeJSON(w, http.StatusOK, b.projects[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Project not found"})
	})
	mux.HandleFunc("DELETE /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, p := range b.projects {
			if p.ID == id {
				b.projects = append(b.projects[:i], b.projects[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Project not found"})
	})

	mux.HandleFunc("GET /api/tech-stacks", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, append([]model.TechStack{}, b.stacks...))
	})
	mux.HandleFunc("POST /api/tech-stacks", func(w http.ResponseWriter, r *http.Request) {
		var req model.TechStackRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		t := model.TechStack{ID: b.id(), Name: req.Name, IconURL: req.IconURL, Proficiency: req.Proficiency, Category: req.Category}
		b.stacks = append(b.stacks, t)
		writeJSON(w, http.StatusCreated, t)
	})
	mux.HandleFunc("DELETE /api/tech-stacks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/certificates", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, append([]model.Certificate{}, b.certs...))
	})
	mux.HandleFunc("POST /api/certificates", func(w http.ResponseWriter, r *http.Request) {
		var req model.CertificateRequest
		json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		c := model.Certificate{ID: b.id(), Name: req.Name, Organization: req.Organization, ImageURL: req.ImageURL}
		b.certs = append(b.certs, c)
		writeJSON(w, http.StatusCreated, c)
	})

	mux.HandleFunc("GET /api/seo", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		m, ok := b.seo[r.URL.Query().Get("url")]
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, m)
	})
	mux.HandleFunc("POST /api/seo", func(w http.ResponseWriter, r *http.Request) {
		var m model.SeoMetadata
		json.NewDecoder(r.Body).Decode(&m)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.seo[m.PageURL] = m
		writeJSON(w, http.StatusOK, m)
	})

	mux.HandleFunc("POST /api/media/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		_, fh, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "file is required"})
			return
		}
		folder := r.FormValue("folder")
		b.mu.Lock()
		b.folders = append(b.folders, folder)
		b.mu.Unlock()
		url := "https://cdn.example.com/" + folder + "/" + fh.Filename
		writeJSON(w, http.StatusOK, model.UploadResult{URL: url, SecureURL: url})
	})

	mux.HandleFunc("GET /api/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, model.DashboardSummary{
			Stats: model.DashboardStats{TotalProjects: int64(len(b.projects)), TotalViews: 12345},
		})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		public := strings.HasPrefix(r.URL.Path, "/api/auth/login") || strings.HasPrefix(r.URL.Path, "/api/auth/register")
		if !public && (b.revoked.Load() || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-")) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func projectFrom(id int64, req model.ProjectRequest) model.Project {
	return model.Project{
		ID:               id,
		Title:            req.Title,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		Thumbnail:        req.Thumbnail,
		Published:        req.Published,
		SortOrder:        req.SortOrder,
		TechStacks:       []model.TechStack{},
		MediaList:        []model.ProjectMedia{},
	}
}

func openSessions(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.Open(filepath.Join(t.TempDir(), "admin.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type consoleHarness struct {
	t       *testing.T
	backend *fakeBackend
	con     *console
	router  *gin.Engine

	// remoteAddr and forwardedFor apply to every request sent while set.
	remoteAddr   string
	forwardedFor string
}

func newConsoleHarness(t *testing.T) *consoleHarness {
	return newConsoleHarnessWith(t, config.Config{})
}

func newConsoleHarnessWith(t *testing.T, cfg config.Config) *consoleHarness {
	t.Helper()
	cfg.AuditRetention = time.Hour
	b, client := newFakeBackend(t)
	con := newConsole(cfg, client, openSessions(t), metrics.New())
	router, err := newRouter(con)
	require.NoError(t, err)
	return &consoleHarness{t: t, backend: b, con: con, router: router}
}

func (h *consoleHarness) do(method, path string, body io.Reader, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if h.remoteAddr != "" {
		req.RemoteAddr = h.remoteAddr
	}
	if h.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", h.forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *consoleHarness) doJSON(method, path string, v any, cookie *http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		require.NoError(h.t, err)
		body = bytes.NewReader(data)
	}
	return h.do(method, path, body, "application/json", cookie)
}

func (h *consoleHarness) login(username string) *http.Cookie {
	h.t.Helper()
	rec := h.doJSON(http.MethodPost, "/admin/login", model.LoginRequest{Username: username, Password: "pw"}, nil)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	h.t.Fatal("login did not set the session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	h := newConsoleHarness(t)
	rec := h.do(http.MethodGet, "/healthz", nil, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoginSetsCookieAndAudits(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/admin", cookie.Path)

	rec := h.do(http.MethodGet, "/admin/api/session", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), cookie.Value)
	assert.NotContains(t, rec.Body.String(), "tok-admin")

	entries, err := h.con.sessions.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user/login/fulfilled", entries[0].Action)
	assert.Equal(t, "admin", entries[0].Target)
}

func TestLoginFailures(t *testing.T) {
	h := newConsoleHarness(t)

	rec := h.doJSON(http.MethodPost, "/admin/login", model.LoginRequest{Username: "admin", Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bad credentials", decode[map[string]string](t, rec)["error"])

	rec = h.doJSON(http.MethodPost, "/admin/login", model.LoginRequest{Username: "viewer", Password: "pw"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = h.doJSON(http.MethodPost, "/admin/login", map[string]string{"username": "admin"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	h := newConsoleHarness(t)
	for _, path := range []string{"/admin/api/me", "/admin/api/projects", "/admin/api/state", "/admin/export/state"} {
		rec := h.do(http.MethodGet, path, nil, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := h.do(http.MethodGet, "/admin/api/me", nil, "", &http.Cookie{Name: sessionCookie, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session expired", decode[map[string]string](t, rec)["error"])
}

func TestProjectLifecycle(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.doJSON(http.MethodPost, "/admin/api/projects", model.ProjectRequest{Title: "Hello World", Published: true}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Project](t, rec)
	assert.Equal(t, "hello-world", created.Slug)

	rec = h.do(http.MethodGet, "/admin/api/projects", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Project](t, rec), 1)

	rec = h.do(http.MethodGet, "/admin/api/projects/by-slug/hello-world", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.Project](t, rec).ID)

	update := created.Request()
	update.Title = "Hello Go"
	rec = h.doJSON(http.MethodPut, "/admin/api/projects/"+strconv.FormatInt(created.ID, 10), update, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hello Go", decode[model.Project](t, rec).Title)

	rec = h.do(http.MethodDelete, "/admin/api/projects/"+strconv.FormatInt(created.ID, 10), nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/admin/api/state", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Project struct {
			Items []model.Project `json:"items"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Empty(t, state.Project.Items)

	rec = h.do(http.MethodGet, "/admin/api/audit?limit=10", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var actions []string
	for _, e := range decode[[]session.Entry](t, rec) {
		actions = append(actions, e.Action)
	}
	assert.Subset(t, actions, []string{"project/create/fulfilled", "project/update/fulfilled", "project/delete/fulfilled"})
}

func TestBackendErrorsPassThrough(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.do(http.MethodGet, "/admin/api/projects/99", nil, "", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", decode[map[string]string](t, rec)["error"])

	rec = h.do(http.MethodGet, "/admin/api/projects/abc", nil, "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/admin/api/audit?limit=0", nil, "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationRejectsBadPayloads(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.doJSON(http.MethodPost, "/admin/api/techstacks", model.TechStackRequest{Name: "Go", Category: "LANGUAGE"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.doJSON(http.MethodPost, "/admin/api/projects", model.ProjectRequest{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.doJSON(http.MethodPost, "/admin/api/seo", model.SeoMetadata{Title: "no page"}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevokedTokenDropsSession(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.do(http.MethodGet, "/admin/api/me", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	h.backend.revoked.Store(true)
	rec = h.do(http.MethodGet, "/admin/api/me", nil, "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := h.con.sessions.Get(t.Context(), cookie.Value)
	assert.ErrorIs(t, err, session.ErrNotFound)

	h.backend.revoked.Store(false)
	rec = h.do(http.MethodGet, "/admin/api/me", nil, "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.do(http.MethodPost, "/admin/logout", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/admin/api/state", nil, "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSeoRoutes(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.do(http.MethodGet, "/admin/api/seo?url=/about", nil, "", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.doJSON(http.MethodPost, "/admin/api/seo", model.SeoMetadata{PageURL: "/about", Title: "About me"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/admin/api/seo?url=/about", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "About me", decode[model.SeoMetadata](t, rec).Title)

	rec = h.do(http.MethodGet, "/admin/api/seo", nil, "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardPadsEmptyChart(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	rec := h.do(http.MethodGet, "/admin/api/dashboard", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[model.DashboardSummary](t, rec)
	assert.Equal(t, int64(12345), sum.Stats.TotalViews)
	require.Len(t, sum.ChartData, 7)
	for _, p := range sum.ChartData {
		assert.Zero(t, p.Views)
	}
}

func uploadBody(t *testing.T, folder, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("folder", folder))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestMediaUpload(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")

	body, ct := uploadBody(t, "projects/gallery", "shot.png", pngHeader)
	rec := h.do(http.MethodPost, "/admin/api/media/upload", body, ct, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		URL         string                    `json:"url"`
		ContentType string                    `json:"contentType"`
		MediaType   string                    `json:"mediaType"`
		GalleryItem model.ProjectMediaRequest `json:"galleryItem"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "https://cdn.example.com/projects/gallery/shot.png", res.URL)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, model.MediaImage, res.MediaType)
	assert.Equal(t, res.URL, res.GalleryItem.MediaURL)
	assert.Equal(t, []string{"projects/gallery"}, h.backend.folders)

	body, ct = uploadBody(t, "avatars", "me.png", pngHeader)
	rec = h.do(http.MethodPost, "/admin/api/media/upload", body, ct, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, h.backend.folders, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login("admin")
	h.do(http.MethodGet, "/admin/api/techstacks", nil, "", cookie)

	rec := h.do(http.MethodGet, "/metrics", nil, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `slice="techStack"`)
	assert.Contains(t, rec.Body.String(), "active_sessions 1")
}

func lastAuditEntry(t *testing.T, h *consoleHarness) session.Entry {
	t.Helper()
	entries, err := h.con.sessions.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestAuditUsesAddressOfEachRequest(t *testing.T) {
	h := newConsoleHarness(t)
	h.remoteAddr = "192.0.2.1:4000"
	cookie := h.login("admin")
	assert.Equal(t, h.con.sessions.HashIP("192.0.2.1"), lastAuditEntry(t, h).HashedIP)

	h.remoteAddr = "203.0.113.9:5000"
	rec := h.doJSON(http.MethodPost, "/admin/api/techstacks", model.TechStackRequest{Name: "Go", Category: model.CategoryBackend}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entry := lastAuditEntry(t, h)
	assert.Equal(t, "techStack/create/fulfilled", entry.Action)
	assert.Equal(t, h.con.sessions.HashIP("203.0.113.9"), entry.HashedIP)
}

func TestForwardedForIgnoredWithoutTrustedProxies(t *testing.T) {
	h := newConsoleHarness(t)
	h.remoteAddr = "203.0.113.9:5000"
	h.forwardedFor = "198.51.100.7"
	h.login("admin")

	assert.Equal(t, h.con.sessions.HashIP("203.0.113.9"), lastAuditEntry(t, h).HashedIP)
}

func TestForwardedForFromTrustedProxy(t *testing.T) {
	h := newConsoleHarnessWith(t, config.Config{TrustedProxies: []string{"10.0.0.0/8"}})
	h.remoteAddr = "10.1.2.3:5000"
	h.forwardedFor = "198.51.100.7"
	h.login("admin")

	assert.Equal(t, h.con.sessions.HashIP("198.51.100.7"), lastAuditEntry(t, h).HashedIP)
}

func TestRouterRejectsBadTrustedProxy(t *testing.T) {
	_, client := newFakeBackend(t)
	con := newConsole(config.Config{TrustedProxies: []string{"not-an-ip"}}, client, openSessions(t), metrics.New())
	_, err := newRouter(con)
	assert.Error(t, err)
}
