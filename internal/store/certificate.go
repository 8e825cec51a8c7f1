package store

import (
	"context"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

type CertificateAPI interface {
	All(ctx context.Context) ([]model.Certificate, error)
	Create(ctx context.Context, req model.CertificateRequest) (model.Certificate, error)
}

type CertificateState struct {
	Items              []model.Certificate `json:"items"`
	CurrentCertificate *model.Certificate  `json:"currentCertificate"`
	IsLoading          bool                `json:"isLoading"`
	Error              string              `json:"error,omitempty"`
}

type CertificateSlice struct {
	base
	svc     CertificateAPI
	items   []model.Certificate
	current *model.Certificate
}

func (s *CertificateSlice) State() CertificateState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CertificateState{
		Items:              clone(s.items),
		CurrentCertificate: ptrClone(s.current),
		IsLoading:          s.loading(),
		Error:              s.err,
	}
}

func (s *CertificateSlice) FetchAll(ctx context.Context) ([]model.Certificate, error) {
	return run(ctx, &s.base, "fetchAll", "", "Could not load certificates", s.svc.All,
		func(items []model.Certificate) { s.items = items }, nil)
}

func (s *CertificateSlice) Create(ctx context.Context, req model.CertificateRequest) (model.Certificate, error) {
	return run(ctx, &s.base, "create", req.Name, "Could not create certificate",
		func(ctx context.Context) (model.Certificate, error) { return s.svc.Create(ctx, req) },
		func(c model.Certificate) { s.items = prepend(s.items, c) }, nil)
}

func (s *CertificateSlice) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
