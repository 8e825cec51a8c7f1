package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

type AuthService struct{ c *Client }

func (c *Client) Auth() AuthService { return AuthService{c} }

func (s AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	var u model.User
	err := s.c.sendJSON(ctx, "auth.register", http.MethodPost, "/auth/register", req, &u)
	return u, err
}

func (s AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var res model.AuthResponse
	err := s.c.sendJSON(ctx, "auth.login", http.MethodPost, "/auth/login", req, &res)
	return res, err
}

func (s AuthService) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := s.c.get(ctx, "auth.me", "/auth/me", &u)
	return u, err
}

func (s AuthService) Logout(ctx context.Context) error {
	return s.c.sendJSON(ctx, "auth.logout", http.MethodPost, "/auth/logout", nil, nil)
}

type ProjectService struct{ c *Client }

func (c *Client) Projects() ProjectService { return ProjectService{c} }

// Published lists what visitors of the portfolio see.
func (s ProjectService) Published(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := s.c.get(ctx, "projects.published", "/projects", &out)
	return out, err
}

// AdminAll lists every project, drafts included.
func (s ProjectService) AdminAll(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := s.c.get(ctx, "projects.admin_all", "/projects/admin/all", &out)
	return out, err
}

func (s ProjectService) ByID(ctx context.Context, id int64) (model.Project, error) {
	var p model.Project
	err := s.c.get(ctx, "projects.by_id", fmt.Sprintf("/projects/admin/%d", id), &p)
	return p, err
}

func (s ProjectService) BySlug(ctx context.Context, slug string) (model.Project, error) {
	var p model.Project
	err := s.c.get(ctx, "projects.by_slug", "/projects/"+url.PathEscape(slug), &p)
	return p, err
}

func (s ProjectService) Create(ctx context.Context, req model.ProjectRequest) (model.Project, error) {
	var p model.Project
	err := s.c.sendJSON(ctx, "projects.create", http.MethodPost, "/projects", req, &p)
	return p, err
}

func (s ProjectService) Update(ctx context.Context, id int64, req model.ProjectRequest) (model.Project, error) {
	var p model.Project
	err := s.c.sendJSON(ctx, "projects.update", http.MethodPut, fmt.Sprintf("/projects/%d", id), req, &p)
	return p, err
}

func (s ProjectService) Delete(ctx context.Context, id int64) error {
	return s.c.sendJSON(ctx, "projects.delete", http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
}

type TechStackService struct{ c *Client }

func (c *Client) TechStacks() TechStackService { return TechStackService{c} }

func (s TechStackService) All(ctx context.Context) ([]model.TechStack, error) {
	var out []model.TechStack
	err := s.c.get(ctx, "techstacks.all", "/tech-stacks", &out)
	return out, err
}

func (s TechStackService) Create(ctx context.Context, req model.TechStackRequest) (model.TechStack, error) {
	var t model.TechStack
	err := s.c.sendJSON(ctx, "techstacks.create", http.MethodPost, "/tech-stacks", req, &t)
	return t, err
}

func (s TechStackService) Delete(ctx context.Context, id int64) error {
	return s.c.sendJSON(ctx, "techstacks.delete", http.MethodDelete, fmt.Sprintf("/tech-stacks/%d", id), nil, nil)
}

type CertificateService struct{ c *Client }

func (c *Client) Certificates() CertificateService { return CertificateService{c} }

func (s CertificateService) All(ctx context.Context) ([]model.Certificate, error) {
	var out []model.Certificate
	err := s.c.get(ctx, "certificates.all", "/certificates", &out)
	return out, err
}

func (s CertificateService) Create(ctx context.Context, req model.CertificateRequest) (model.Certificate, error) {
	var cert model.Certificate
	err := s.c.sendJSON(ctx, "certificates.create", http.MethodPost, "/certificates", req, &cert)
	return cert, err
}

type SeoService struct{ c *Client }

func (c *Client) SEO() SeoService { return SeoService{c} }

// ByURL returns nil without error when the page has no metadata yet.
func (s SeoService) ByURL(ctx context.Context, pageURL string) (*model.SeoMetadata, error) {
	var m *model.SeoMetadata
	err := s.c.get(ctx, "seo.by_url", "/seo?url="+url.QueryEscape(pageURL), &m)
	return m, err
}

// Save creates or replaces the metadata for m.PageURL.
func (s SeoService) Save(ctx context.Context, m model.SeoMetadata) (model.SeoMetadata, error) {
	var out model.SeoMetadata
	err := s.c.sendJSON(ctx, "seo.save", http.MethodPost, "/seo", m, &out)
	return out, err
}

type MediaService struct{ c *Client }

func (c *Client) Media() MediaService { return MediaService{c} }

// Upload streams one file to the backend, which forwards it to the asset
// host under folder.
func (s MediaService) Upload(ctx context.Context, filename string, r io.Reader, folder string) (model.UploadResult, error) {
	var res model.UploadResult

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return res, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return res, fmt.Errorf("copy %s: %w", filename, err)
	}
	if err := w.WriteField("folder", folder); err != nil {
		return res, fmt.Errorf("write folder field: %w", err)
	}
	if err := w.Close(); err != nil {
		return res, fmt.Errorf("close multipart body: %w", err)
	}

	err = s.c.exchange(ctx, "media.upload", http.MethodPost, "/media/upload", buf.Bytes(), w.FormDataContentType(), &res)
	return res, err
}

type DashboardService struct{ c *Client }

func (c *Client) Dashboard() DashboardService { return DashboardService{c} }

func (s DashboardService) Summary(ctx context.Context) (model.DashboardSummary, error) {
	var out model.DashboardSummary
	err := s.c.get(ctx, "dashboard.summary", "/dashboard/summary", &out)
	return out, err
}
