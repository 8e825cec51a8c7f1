package store

import (
	"context"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

type SeoAPI interface {
	ByURL(ctx context.Context, pageURL string) (*model.SeoMetadata, error)
	Save(ctx context.Context, m model.SeoMetadata) (model.SeoMetadata, error)
}

type SeoState struct {
	CurrentSeo *model.SeoMetadata `json:"currentSeo"`
	IsLoading  bool               `json:"isLoading"`
	Error      string             `json:"error,omitempty"`
}

type SeoSlice struct {
	base
	svc     SeoAPI
	current *model.SeoMetadata
}

func (s *SeoSlice) State() SeoState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SeoState{CurrentSeo: ptrClone(s.current), IsLoading: s.loading(), Error: s.err}
}

// FetchByURL loads the metadata of one page. A page without metadata leaves
// currentSeo nil.
func (s *SeoSlice) FetchByURL(ctx context.Context, pageURL string) (*model.SeoMetadata, error) {
	return run(ctx, &s.base, "fetchByUrl", pageURL, "Could not load SEO metadata",
		func(ctx context.Context) (*model.SeoMetadata, error) { return s.svc.ByURL(ctx, pageURL) },
		func(m *model.SeoMetadata) { s.current = m }, nil)
}

func (s *SeoSlice) Save(ctx context.Context, m model.SeoMetadata) (model.SeoMetadata, error) {
	return run(ctx, &s.base, "save", m.PageURL, "Could not save SEO metadata",
		func(ctx context.Context) (model.SeoMetadata, error) { return s.svc.Save(ctx, m) },
		func(saved model.SeoMetadata) { s.current = &saved }, nil)
}

func (s *SeoSlice) Reset() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
