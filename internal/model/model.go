// Package model holds the wire types exchanged with the portfolio backend.
package model

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const RoleAdmin = "ADMIN"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the only role the console serves.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Fullname string `json:"fullname" form:"fullname"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	User        User   `json:"user"`
}

// Tech stack categories accepted by the backend.
const (
	CategoryFrontend = "FRONTEND"
	CategoryBackend  = "BACKEND"
	CategoryDatabase = "DATABASE"
	CategoryTool     = "TOOL"
	CategoryOthers   = "OTHERS"
)

type TechStack struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IconURL     string `json:"iconUrl"`
	Proficiency string `json:"proficiency"`
	Category    string `json:"category"`
}

func (t TechStack) Key() int64 { return t.ID }

type TechStackRequest struct {
	Name        string `json:"name" binding:"required"`
	IconURL     string `json:"iconUrl"`
	Proficiency string `json:"proficiency"`
	Category    string `json:"category" binding:"required,oneof=FRONTEND BACKEND DATABASE TOOL OTHERS"`
}

type Certificate struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Organization   string `json:"organization"`
	IssueDate      string `json:"issueDate"`
	ExpirationDate string `json:"expirationDate"`
	CredentialURL  string `json:"credentialUrl"`
	ImageURL       string `json:"imageUrl"`
}

func (c Certificate) Key() int64 { return c.ID }

type CertificateRequest struct {
	Name           string `json:"name" binding:"required"`
	Organization   string `json:"organization" binding:"required"`
	IssueDate      string `json:"issueDate"`
	ExpirationDate string `json:"expirationDate"`
	CredentialURL  string `json:"credentialUrl" binding:"omitempty,url"`
	ImageURL       string `json:"imageUrl"`
}

// Media types a project gallery entry can carry.
const (
	MediaImage = "IMAGE"
	MediaVideo = "VIDEO"
)

type ProjectMedia struct {
	ID        int64  `json:"id"`
	MediaURL  string `json:"mediaUrl"`
	MediaType string `json:"mediaType"`
	Thumbnail bool   `json:"thumbnail"`
}

type ProjectMediaRequest struct {
	MediaURL  string `json:"mediaUrl" binding:"required"`
	MediaType string `json:"mediaType" binding:"required,oneof=IMAGE VIDEO"`
	Thumbnail bool   `json:"thumbnail"`
}

type Project struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	ShortDescription string         `json:"shortDescription"`
	Content          string         `json:"content"`
	Thumbnail        string         `json:"thumbnail"`
	GithubURL        string         `json:"githubUrl"`
	DemoURL          string         `json:"demoUrl"`
	Published        bool           `json:"published"`
	SortOrder        int            `json:"sortOrder"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
	TechStacks       []TechStack    `json:"techStacks"`
	MediaList        []ProjectMedia `json:"mediaList"`
}

func (p Project) Key() int64 { return p.ID }

// Request rebuilds the payload that would recreate p, which is what an edit
// starts from.
func (p Project) Request() ProjectRequest {
	req := ProjectRequest{
		Title:            p.Title,
		Slug:             p.Slug,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		Thumbnail:        p.Thumbnail,
		GithubURL:        p.GithubURL,
		DemoURL:          p.DemoURL,
		Published:        p.Published,
		SortOrder:        p.SortOrder,
		TechStackIDs:     make([]int64, 0, len(p.TechStacks)),
		MediaList:        make([]ProjectMediaRequest, 0, len(p.MediaList)),
	}
	for _, t := range p.TechStacks {
		req.TechStackIDs = append(req.TechStackIDs, t.ID)
	}
	for _, m := range p.MediaList {
		req.MediaList = append(req.MediaList, ProjectMediaRequest{
			MediaURL:  m.MediaURL,
			MediaType: m.MediaType,
			Thumbnail: m.Thumbnail,
		})
	}
	return req
}

type ProjectRequest struct {
	Title            string                `json:"title" binding:"required"`
	Slug             string                `json:"slug"`
	ShortDescription string                `json:"shortDescription"`
	Content          string                `json:"content"`
	Thumbnail        string                `json:"thumbnail"`
	GithubURL        string                `json:"githubUrl,omitempty" binding:"omitempty,url"`
	DemoURL          string                `json:"demoUrl,omitempty" binding:"omitempty,url"`
	Published        bool                  `json:"published"`
	SortOrder        int                   `json:"sortOrder" binding:"gte=0"`
	TechStackIDs     []int64               `json:"techStackIds"`
	MediaList        []ProjectMediaRequest `json:"mediaList" binding:"dive"`
}

// Normalize fills derived fields before the request is sent.
func (r *ProjectRequest) Normalize() {
	if strings.TrimSpace(r.Slug) == "" {
		r.Slug = Slugify(r.Title)
	}
	if r.TechStackIDs == nil {
		r.TechStackIDs = []int64{}
	}
	if r.MediaList == nil {
		r.MediaList = []ProjectMediaRequest{}
	}
}

type SeoMetadata struct {
	PageURL      string `json:"pageUrl" binding:"required"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Keywords     string `json:"keywords"`
	OgImage      string `json:"ogImage"`
	CanonicalURL string `json:"canonicalUrl"`
	H1Override   string `json:"h1Override"`
}

type DashboardStats struct {
	TotalProjects     int64 `json:"totalProjects"`
	TotalCertificates int64 `json:"totalCertificates"`
	TotalViews        int64 `json:"totalViews"`
	TotalVisitors     int64 `json:"totalVisitors"`
}

// ChartPoint is one day of page views.
type ChartPoint struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

type DashboardSummary struct {
	Stats     DashboardStats `json:"stats"`
	ChartData []ChartPoint   `json:"chartData"`
}

type UploadResult struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
}

// Slugify lowercases title, strips diacritics and joins words with dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(title)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r == 'đ':
			r = 'd'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
