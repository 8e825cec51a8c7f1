package store

import (
	"context"
	"strconv"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

type ProjectAPI interface {
	Published(ctx context.Context) ([]model.Project, error)
	AdminAll(ctx context.Context) ([]model.Project, error)
	ByID(ctx context.Context, id int64) (model.Project, error)
	BySlug(ctx context.Context, slug string) (model.Project, error)
	Create(ctx context.Context, req model.ProjectRequest) (model.Project, error)
	Update(ctx context.Context, id int64, req model.ProjectRequest) (model.Project, error)
	Delete(ctx context.Context, id int64) error
}

type ProjectState struct {
	Items          []model.Project `json:"items"`
	CurrentProject *model.Project  `json:"currentProject"`
	IsLoading      bool            `json:"isLoading"`
	Error          string          `json:"error,omitempty"`
}

type ProjectSlice struct {
	base
	svc     ProjectAPI
	items   []model.Project
	current *model.Project
}

func (s *ProjectSlice) State() ProjectState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProjectState{
		Items:          clone(s.items),
		CurrentProject: ptrClone(s.current),
		IsLoading:      s.loading(),
		Error:          s.err,
	}
}

// FetchAll replaces the list. admin selects every project instead of only
// published ones.
func (s *ProjectSlice) FetchAll(ctx context.Context, admin bool) ([]model.Project, error) {
	call := s.svc.Published
	target := "published"
	if admin {
		call = s.svc.AdminAll
		target = "admin"
	}
	return run(ctx, &s.base, "fetchAll", target, "Could not load projects", call,
		func(items []model.Project) { s.items = items }, nil)
}

func (s *ProjectSlice) FetchDetail(ctx context.Context, id int64) (model.Project, error) {
	return run(ctx, &s.base, "fetchDetail", strconv.FormatInt(id, 10), "Could not load project",
		func(ctx context.Context) (model.Project, error) { return s.svc.ByID(ctx, id) },
		func(p model.Project) { s.current = &p }, nil)
}

func (s *ProjectSlice) FetchBySlug(ctx context.Context, slug string) (model.Project, error) {
	return run(ctx, &s.base, "fetchBySlug", slug, "Could not load project",
		func(ctx context.Context) (model.Project, error) { return s.svc.BySlug(ctx, slug) },
		func(p model.Project) { s.current = &p }, nil)
}

// Create puts the new project at the head of the list.
func (s *ProjectSlice) Create(ctx context.Context, req model.ProjectRequest) (model.Project, error) {
	req.Normalize()
	return run(ctx, &s.base, "create", req.Slug, "Could not create project",
		func(ctx context.Context) (model.Project, error) { return s.svc.Create(ctx, req) },
		func(p model.Project) { s.items = prepend(s.items, p) }, nil)
}

func (s *ProjectSlice) Update(ctx context.Context, id int64, req model.ProjectRequest) (model.Project, error) {
	req.Normalize()
	return run(ctx, &s.base, "update", strconv.FormatInt(id, 10), "Could not update project",
		func(ctx context.Context) (model.Project, error) { return s.svc.Update(ctx, id, req) },
		func(p model.Project) {
			s.items = replaceByKey(s.items, p)
			if s.current != nil && s.current.ID == p.ID {
				s.current = &p
			}
		}, nil)
}

func (s *ProjectSlice) Delete(ctx context.Context, id int64) error {
	_, err := run(ctx, &s.base, "delete", strconv.FormatInt(id, 10), "Could not delete project",
		func(ctx context.Context) (int64, error) { return id, s.svc.Delete(ctx, id) },
		func(id int64) {
			s.items = removeByKey(s.items, id)
			if s.current != nil && s.current.ID == id {
				s.current = nil
			}
		}, nil)
	return err
}

func (s *ProjectSlice) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
