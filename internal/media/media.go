// Package media knows where uploads go on the asset host and what kind of
// gallery entry a file becomes.
package media

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

// Upload folders on the asset host.
const (
	FolderCertificates      = "certificates"
	FolderTechStacks        = "techstacks"
	FolderProjectThumbnails = "projects/thumbnails"
	FolderProjectGallery    = "projects/gallery"
)

var folders = map[string]bool{
	FolderCertificates:      true,
	FolderTechStacks:        true,
	FolderProjectThumbnails: true,
	FolderProjectGallery:    true,
}

// Folders lists the accepted upload folders.
func Folders() []string {
	return []string{FolderCertificates, FolderTechStacks, FolderProjectThumbnails, FolderProjectGallery}
}

func ValidateFolder(folder string) error {
	if !folders[folder] {
		return fmt.Errorf("unknown upload folder %q (want one of %s)", folder, strings.Join(Folders(), ", "))
	}
	return nil
}

// Detect sniffs r's content type. The returned reader replays the sniffed
// bytes, so it must be used in place of r.
func Detect(r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, 3072)
	head, err := br.Peek(3072)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, fmt.Errorf("sniff upload: %w", err)
	}
	return mimetype.Detect(head).String(), br, nil
}

// TypeFor maps a content type to a gallery media type.
func TypeFor(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return model.MediaVideo
	}
	return model.MediaImage
}

// GalleryItem is the project media entry for an uploaded file.
func GalleryItem(secureURL, contentType string) model.ProjectMediaRequest {
	return model.ProjectMediaRequest{
		MediaURL:  secureURL,
		MediaType: TypeFor(contentType),
		Thumbnail: false,
	}
}
