package store

import (
	"context"
	"io"
	"sync"

	"github.com/Zachkp/portfolio-admin/internal/api"
	"github.com/Zachkp/portfolio-admin/internal/model"
)

type fakeAuth struct {
	login  model.AuthResponse
	me     model.User
	err    error
	logout error
}

func (f *fakeAuth) Register(_ context.Context, req model.RegisterRequest) (model.User, error) {
	return model.User{ID: 2, Username: req.Username}, f.err
}
func (f *fakeAuth) Login(context.Context, model.LoginRequest) (model.AuthResponse, error) {
	return f.login, f.err
}
func (f *fakeAuth) Me(context.Context) (model.User, error) { return f.me, f.err }
func (f *fakeAuth) Logout(context.Context) error           { return f.logout }

type fakeProjects struct {
	mu        sync.Mutex
	published []model.Project
	all       []model.Project
	nextID    int64
	err       error
	block     chan struct{}
}

func (f *fakeProjects) Published(context.Context) ([]model.Project, error) {
	return f.published, f.err
}
func (f *fakeProjects) AdminAll(ctx context.Context) ([]model.Project, error) {
	if f.block != nil {
		<-f.block
	}
	return f.all, f.err
}
func (f *fakeProjects) ByID(_ context.Context, id int64) (model.Project, error) {
	for _, p := range f.all {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, &api.Error{Status: 404, Message: "Project not found"}
}
func (f *fakeProjects) BySlug(_ context.Context, slug string) (model.Project, error) {
	for _, p := range f.all {
		if p.Slug == slug {
			return p, nil
		}
	}
	return model.Project{}, &api.Error{Status: 404}
}
func (f *fakeProjects) Create(_ context.Context, req model.ProjectRequest) (model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Project{}, f.err
	}
	f.nextID++
	return model.Project{ID: f.nextID, Title: req.Title, Slug: req.Slug, Published: req.Published}, nil
}
func (f *fakeProjects) Update(_ context.Context, id int64, req model.ProjectRequest) (model.Project, error) {
	return model.Project{ID: id, Title: req.Title, Slug: req.Slug}, f.err
}
func (f *fakeProjects) Delete(context.Context, int64) error { return f.err }

type fakeTechStacks struct {
	items []model.TechStack
	err   error
}

func (f *fakeTechStacks) All(context.Context) ([]model.TechStack, error) { return f.items, f.err }
func (f *fakeTechStacks) Create(_ context.Context, req model.TechStackRequest) (model.TechStack, error) {
	return model.TechStack{ID: 100, Name: req.Name, Category: req.Category}, f.err
}
func (f *fakeTechStacks) Delete(context.Context, int64) error { return f.err }

type fakeCertificates struct {
	items []model.Certificate
	err   error
}

func (f *fakeCertificates) All(context.Context) ([]model.Certificate, error) { return f.items, f.err }
func (f *fakeCertificates) Create(_ context.Context, req model.CertificateRequest) (model.Certificate, error) {
	return model.Certificate{ID: 50, Name: req.Name, Organization: req.Organization}, f.err
}

type fakeSEO struct {
	page *model.SeoMetadata
	err  error
}

func (f *fakeSEO) ByURL(context.Context, string) (*model.SeoMetadata, error) { return f.page, f.err }
func (f *fakeSEO) Save(_ context.Context, m model.SeoMetadata) (model.SeoMetadata, error) {
	return m, f.err
}

type fakeMedia struct {
	got    string
	folder string
	err    error
}

func (f *fakeMedia) Upload(_ context.Context, filename string, r io.Reader, folder string) (model.UploadResult, error) {
	data, _ := io.ReadAll(r)
	f.got = filename + ":" + string(data)
	f.folder = folder
	return model.UploadResult{URL: "http://cdn/" + filename, SecureURL: "https://cdn/" + filename}, f.err
}

type fakeDashboard struct {
	summary model.DashboardSummary
	err     error
}

func (f *fakeDashboard) Summary(context.Context) (model.DashboardSummary, error) {
	return f.summary, f.err
}

type fixture struct {
	auth  *fakeAuth
	proj  *fakeProjects
	tech  *fakeTechStacks
	certs *fakeCertificates
	seo   *fakeSEO
	media *fakeMedia
	dash  *fakeDashboard
	store *Store
}

func newFixture() *fixture {
	f := &fixture{
		auth:  &fakeAuth{},
		proj:  &fakeProjects{},
		tech:  &fakeTechStacks{},
		certs: &fakeCertificates{},
		seo:   &fakeSEO{},
		media: &fakeMedia{},
		dash:  &fakeDashboard{},
	}
	f.store = New(Services{
		Auth:         f.auth,
		Projects:     f.proj,
		TechStacks:   f.tech,
		Certificates: f.certs,
		SEO:          f.seo,
		Media:        f.media,
		Dashboard:    f.dash,
	})
	return f
}
