package store

import (
	"context"
	"strconv"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

type TechStackAPI interface {
	All(ctx context.Context) ([]model.TechStack, error)
	Create(ctx context.Context, req model.TechStackRequest) (model.TechStack, error)
	Delete(ctx context.Context, id int64) error
}

type TechStackState struct {
	Items     []model.TechStack `json:"items"`
	IsLoading bool              `json:"isLoading"`
	Error     string            `json:"error,omitempty"`
}

type TechStackSlice struct {
	base
	svc   TechStackAPI
	items []model.TechStack
}

func (s *TechStackSlice) State() TechStackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TechStackState{Items: clone(s.items), IsLoading: s.loading(), Error: s.err}
}

func (s *TechStackSlice) FetchAll(ctx context.Context) ([]model.TechStack, error) {
	return run(ctx, &s.base, "fetchAll", "", "Could not load tech stacks", s.svc.All,
		func(items []model.TechStack) { s.items = items }, nil)
}

// Create appends, unlike projects and certificates which go to the head.
func (s *TechStackSlice) Create(ctx context.Context, req model.TechStackRequest) (model.TechStack, error) {
	return run(ctx, &s.base, "create", req.Name, "Create failed",
		func(ctx context.Context) (model.TechStack, error) { return s.svc.Create(ctx, req) },
		func(t model.TechStack) { s.items = append(s.items, t) }, nil)
}

func (s *TechStackSlice) Delete(ctx context.Context, id int64) error {
	_, err := run(ctx, &s.base, "delete", strconv.FormatInt(id, 10), "Delete failed",
		func(ctx context.Context) (int64, error) { return id, s.svc.Delete(ctx, id) },
		func(id int64) { s.items = removeByKey(s.items, id) }, nil)
	return err
}
