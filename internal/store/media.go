package store

import (
	"context"
	"io"

	"github.com/Zachkp/portfolio-admin/internal/media"
	"github.com/Zachkp/portfolio-admin/internal/model"
)

type MediaAPI interface {
	Upload(ctx context.Context, filename string, r io.Reader, folder string) (model.UploadResult, error)
}

type MediaState struct {
	IsUploading     bool   `json:"isUploading"`
	LastUploadedURL string `json:"lastUploadedUrl,omitempty"`
	Error           string `json:"error,omitempty"`
}

type MediaSlice struct {
	base
	svc  MediaAPI
	last string
}

func (s *MediaSlice) State() MediaState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MediaState{IsUploading: s.loading(), LastUploadedURL: s.last, Error: s.err}
}

// Upload sends one file to folder and returns its secure URL.
func (s *MediaSlice) Upload(ctx context.Context, filename string, r io.Reader, folder string) (string, error) {
	if err := media.ValidateFolder(folder); err != nil {
		return "", reject(&s.base, "upload", folder, err)
	}
	return run(ctx, &s.base, "upload", folder, "Upload failed",
		func(ctx context.Context) (string, error) {
			res, err := s.svc.Upload(ctx, filename, r, folder)
			return res.SecureURL, err
		},
		func(url string) { s.last = url }, nil)
}

func (s *MediaSlice) Clear() {
	s.mu.Lock()
	s.last = ""
	s.err = ""
	s.mu.Unlock()
}
