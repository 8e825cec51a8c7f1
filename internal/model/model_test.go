package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Portfolio Website":          "portfolio-website",
		"  Go + HTMX  ":              "go-htmx",
		"Hệ thống quản lý đơn hàng":  "he-thong-quan-ly-don-hang",
		"Café Finder v2.0":           "cafe-finder-v2-0",
		"---":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestProjectRequestNormalize(t *testing.T) {
	req := ProjectRequest{Title: "Terminal Mail Client"}
	req.Normalize()

	assert.Equal(t, "terminal-mail-client", req.Slug)
	assert.NotNil(t, req.TechStackIDs)
	assert.NotNil(t, req.MediaList)

	req = ProjectRequest{Title: "x", Slug: "kept"}
	req.Normalize()
	assert.Equal(t, "kept", req.Slug)
}

func TestProjectToRequest(t *testing.T) {
	p := Project{
		ID:         7,
		Title:      "Music TUI",
		Slug:       "music-tui",
		Published:  true,
		SortOrder:  2,
		TechStacks: []TechStack{{ID: 1, Name: "Go"}, {ID: 4, Name: "mpv"}},
		MediaList:  []ProjectMedia{{ID: 9, MediaURL: "https://cdn/x.mp4", MediaType: MediaVideo}},
	}

	req := p.Request()
	assert.Equal(t, []int64{1, 4}, req.TechStackIDs)
	require.Len(t, req.MediaList, 1)
	assert.Equal(t, MediaVideo, req.MediaList[0].MediaType)
	assert.True(t, req.Published)
	assert.Equal(t, 2, req.SortOrder)
}

func TestUploadResultDecodesSnakeCase(t *testing.T) {
	var res UploadResult
	require.NoError(t, json.Unmarshal([]byte(`{"url":"http://a","secure_url":"https://a"}`), &res))
	assert.Equal(t, "https://a", res.SecureURL)
}

func TestIsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}
