package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio-admin/internal/media"
	"github.com/Zachkp/portfolio-admin/internal/model"
	"github.com/Zachkp/portfolio-admin/internal/session"
	"github.com/Zachkp/portfolio-admin/internal/store"
)

// The CLI's login is pinned under this name in the session database.
const cliSession = "cli"

// Audit rows written by the CLI carry this instead of a hashed address.
const cliClient = "cli"

var errNotLoggedIn = errors.New("not logged in, run `portfolio-admin login` first")

// authed returns a store acting as the pinned CLI session.
func (a *app) authed(ctx context.Context) (*store.Store, error) {
	sess, err := a.sessions.Pinned(ctx, cliSession)
	if errors.Is(err, session.ErrNotFound) {
		return nil, errNotLoggedIn
	}
	if err != nil {
		return nil, err
	}
	c := a.client.WithToken(sess.AccessToken, func() {
		if err := a.sessions.Unpin(context.Background(), cliSession); err != nil {
			log.Error().Err(err).Msg("Error unpinning CLI session")
		}
	})
	st := store.New(store.ServicesFor(c))
	st.User.Restore(sess.User)
	st.Subscribe(auditor(a.sessions, a.metrics, sess.ID, fixedClient(cliClient)))
	return st, nil
}

// failed wraps err with the message the slice recorded for it.
func failed(msg string, err error) error {
	if msg == "" || strings.Contains(err.Error(), msg) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// render writes v in the selected output format. fill is only called for
// the table format.
func (a *app) render(v any, header []string, fill func(t *tablewriter.Table)) error {
	switch a.output {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so keys match the API's field names.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		t := tablewriter.NewWriter(a.out)
		t.SetAutoWrapText(false)
		t.SetBorder(false)
		if len(header) > 0 {
			t.SetHeader(header)
		}
		fill(t)
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
}

func (a *app) readPassword(prompt string) (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// upload sends the file at path to folder and returns its secure URL and
// sniffed content type.
func (a *app) upload(ctx context.Context, st *store.Store, path, folder string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	contentType, body, err := media.Detect(f)
	if err != nil {
		return "", "", err
	}
	url, err := st.Media.Upload(ctx, filepath.Base(path), body, folder)
	if err != nil {
		return "", "", failed(st.Media.State().Error, err)
	}
	return url, contentType, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func (a *app) registerCmd() *cobra.Command {
	var req model.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user account on the portfolio API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				pw, err := a.readPassword("Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}
			st := store.New(store.ServicesFor(a.client))
			u, err := st.User.Register(cmd.Context(), req)
			if err != nil {
				return failed(st.User.State().Error, err)
			}
			return a.render(u, userHeader, userRows(u))
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Fullname, "fullname", "", "display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var req model.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an admin",
		Long:  loginLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				pw, err := a.readPassword("Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}
			ctx := cmd.Context()
			st := store.New(store.ServicesFor(a.client))
			res, err := st.User.Login(ctx, req)
			if err != nil {
				if errors.Is(err, store.ErrNotAdmin) {
					return err
				}
				return failed(st.User.State().Error, err)
			}

			sess, err := a.sessions.Create(ctx, res)
			if err != nil {
				return err
			}
			if err := a.sessions.Pin(ctx, cliSession, sess.ID); err != nil {
				return err
			}
			auditor(a.sessions, a.metrics, sess.ID, fixedClient(cliClient))(store.Action{
				Type: "user/login/fulfilled", Slice: "user", Name: "login", Phase: store.Fulfilled, Target: req.Username,
			})
			fmt.Fprintf(a.out, "Logged in as %s, session expires %s\n", sess.User.Username, humanize.Time(sess.ExpiresAt))
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "admin username")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the CLI session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.authed(ctx)
			if errors.Is(err, errNotLoggedIn) {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			if err := st.User.Logout(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: backend logout failed: %v\n", err)
			}
			if err := a.sessions.Unpin(ctx, cliSession); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in admin as the API sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			u, err := st.User.GetMe(cmd.Context())
			if err != nil {
				return failed(st.User.State().Error, err)
			}
			return a.render(u, userHeader, userRows(u))
		},
	}
}

var (
	userHeader      = []string{"ID", "Username", "Name", "Email", "Role"}
	projectHeader   = []string{"ID", "Title", "Slug", "Published", "Order", "Tech", "Media"}
	techStackHeader = []string{"ID", "Name", "Category", "Proficiency"}
	certHeader      = []string{"ID", "Name", "Organization", "Issued", "Expires"}
)

func userRows(u model.User) func(t *tablewriter.Table) {
	return func(t *tablewriter.Table) {
		t.Append([]string{strconv.FormatInt(u.ID, 10), u.Username, u.Fullname, u.Email, u.Role})
	}
}

func projectRows(items ...model.Project) func(t *tablewriter.Table) {
	return func(t *tablewriter.Table) {
		for _, p := range items {
			names := make([]string, 0, len(p.TechStacks))
			for _, ts := range p.TechStacks {
				names = append(names, ts.Name)
			}
			t.Append([]string{
				strconv.FormatInt(p.ID, 10), p.Title, p.Slug, strconv.FormatBool(p.Published),
				strconv.Itoa(p.SortOrder), strings.Join(names, ","), strconv.Itoa(len(p.MediaList)),
			})
		}
	}
}

func techStackRows(items ...model.TechStack) func(t *tablewriter.Table) {
	return func(t *tablewriter.Table) {
		for _, ts := range items {
			t.Append([]string{strconv.FormatInt(ts.ID, 10), ts.Name, ts.Category, ts.Proficiency})
		}
	}
}

func certRows(items ...model.Certificate) func(t *tablewriter.Table) {
	return func(t *tablewriter.Table) {
		for _, c := range items {
			t.Append([]string{strconv.FormatInt(c.ID, 10), c.Name, c.Organization, c.IssueDate, c.ExpirationDate})
		}
	}
}

func (a *app) projectsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "projects", Aliases: []string{"project"}, Short: "Manage projects"}

	var published bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects, drafts included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			items, err := st.Projects.FetchAll(cmd.Context(), !published)
			if err != nil {
				return failed(st.Projects.State().Error, err)
			}
			return a.render(items, projectHeader, projectRows(items...))
		},
	}
	list.Flags().BoolVar(&published, "published", false, "only what visitors see")

	get := &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			var p model.Project
			if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
				p, err = st.Projects.FetchDetail(cmd.Context(), id)
			} else {
				p, err = st.Projects.FetchBySlug(cmd.Context(), args[0])
			}
			if err != nil {
				return failed(st.Projects.State().Error, err)
			}
			return a.render(p, projectHeader, projectRows(p))
		},
	}

	var (
		req       model.ProjectRequest
		draft     bool
		thumbnail string
		gallery   []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long:  projectsCreateLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.authed(ctx)
			if err != nil {
				return err
			}
			req.Published = !draft
			if thumbnail != "" {
				if req.Thumbnail, _, err = a.upload(ctx, st, thumbnail, media.FolderProjectThumbnails); err != nil {
					return err
				}
			}
			for _, path := range gallery {
				url, contentType, err := a.upload(ctx, st, path, media.FolderProjectGallery)
				if err != nil {
					return err
				}
				req.MediaList = append(req.MediaList, media.GalleryItem(url, contentType))
			}
			p, err := st.Projects.Create(ctx, req)
			if err != nil {
				return failed(st.Projects.State().Error, err)
			}
			return a.render(p, projectHeader, projectRows(p))
		},
	}
	create.Flags().StringVar(&req.Title, "title", "", "project title")
	create.Flags().StringVar(&req.Slug, "slug", "", "URL slug (derived from the title when empty)")
	create.Flags().StringVar(&req.ShortDescription, "description", "", "short description")
	create.Flags().StringVar(&req.Content, "content", "", "long-form content")
	create.Flags().StringVar(&req.GithubURL, "github", "", "repository URL")
	create.Flags().StringVar(&req.DemoURL, "demo", "", "live demo URL")
	create.Flags().IntVar(&req.SortOrder, "order", 0, "sort order")
	create.Flags().Int64SliceVar(&req.TechStackIDs, "tech", nil, "tech stack ids")
	create.Flags().BoolVar(&draft, "draft", false, "create unpublished")
	create.Flags().StringVar(&thumbnail, "thumbnail", "", "thumbnail image to upload")
	create.Flags().StringArrayVar(&gallery, "gallery", nil, "gallery image or video to upload (repeatable)")
	_ = create.MarkFlagRequired("title")

	setPublished := func(use, short string, value bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				st, err := a.authed(ctx)
				if err != nil {
					return err
				}
				p, err := st.Projects.FetchDetail(ctx, id)
				if err != nil {
					return failed(st.Projects.State().Error, err)
				}
				update := p.Request()
				update.Published = value
				if p, err = st.Projects.Update(ctx, id, update); err != nil {
					return failed(st.Projects.State().Error, err)
				}
				return a.render(p, projectHeader, projectRows(p))
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Projects.Delete(cmd.Context(), id); err != nil {
				return failed(st.Projects.State().Error, err)
			}
			fmt.Fprintf(a.out, "Deleted project %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, get, create,
		setPublished("publish", "Make a project visible", true),
		setPublished("unpublish", "Turn a project back into a draft", false),
		del)
	return cmd
}

func (a *app) techStacksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "techstacks", Aliases: []string{"techstack", "tech"}, Short: "Manage tech stack entries"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tech stack entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			items, err := st.TechStacks.FetchAll(cmd.Context())
			if err != nil {
				return failed(st.TechStacks.State().Error, err)
			}
			return a.render(items, techStackHeader, techStackRows(items...))
		},
	}

	var (
		req  model.TechStackRequest
		icon string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a tech stack entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req.Category = strings.ToUpper(req.Category)
			st, err := a.authed(ctx)
			if err != nil {
				return err
			}
			if icon != "" {
				if req.IconURL, _, err = a.upload(ctx, st, icon, media.FolderTechStacks); err != nil {
					return err
				}
			}
			t, err := st.TechStacks.Create(ctx, req)
			if err != nil {
				return failed(st.TechStacks.State().Error, err)
			}
			return a.render(t, techStackHeader, techStackRows(t))
		},
	}
	add.Flags().StringVar(&req.Name, "name", "", "technology name")
	add.Flags().StringVar(&req.Category, "category", model.CategoryFrontend, "FRONTEND, BACKEND, DATABASE, TOOL or OTHERS")
	add.Flags().StringVar(&req.Proficiency, "proficiency", "", "free-form proficiency label")
	add.Flags().StringVar(&icon, "icon", "", "icon file to upload")
	_ = add.MarkFlagRequired("name")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tech stack entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.TechStacks.Delete(cmd.Context(), id); err != nil {
				return failed(st.TechStacks.State().Error, err)
			}
			fmt.Fprintf(a.out, "Deleted tech stack %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func (a *app) certificatesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "certificates", Aliases: []string{"certificate", "certs"}, Short: "Manage certificates"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List certificates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			items, err := st.Certificates.FetchAll(cmd.Context())
			if err != nil {
				return failed(st.Certificates.State().Error, err)
			}
			return a.render(items, certHeader, certRows(items...))
		},
	}

	var (
		req   model.CertificateRequest
		image string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := a.authed(ctx)
			if err != nil {
				return err
			}
			if image != "" {
				if req.ImageURL, _, err = a.upload(ctx, st, image, media.FolderCertificates); err != nil {
					return err
				}
			}
			c, err := st.Certificates.Create(ctx, req)
			if err != nil {
				return failed(st.Certificates.State().Error, err)
			}
			return a.render(c, certHeader, certRows(c))
		},
	}
	add.Flags().StringVar(&req.Name, "name", "", "certificate name")
	add.Flags().StringVar(&req.Organization, "org", "", "issuing organization")
	add.Flags().StringVar(&req.IssueDate, "issued", "", "issue date (YYYY-MM-DD)")
	add.Flags().StringVar(&req.ExpirationDate, "expires", "", "expiration date (YYYY-MM-DD)")
	add.Flags().StringVar(&req.CredentialURL, "url", "", "credential verification URL")
	add.Flags().StringVar(&image, "image", "", "certificate image to upload")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("org")

	cmd.AddCommand(list, add)
	return cmd
}

func seoRows(m *model.SeoMetadata) func(t *tablewriter.Table) {
	return func(t *tablewriter.Table) {
		t.AppendBulk([][]string{
			{"Page", m.PageURL},
			{"Title", m.Title},
			{"Description", m.Description},
			{"Keywords", m.Keywords},
			{"OG image", m.OgImage},
			{"Canonical", m.CanonicalURL},
			{"H1", m.H1Override},
		})
	}
}

func (a *app) seoCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "seo", Short: "Manage per-page SEO metadata"}

	get := &cobra.Command{
		Use:   "get <page-url>",
		Short: "Show the SEO metadata of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			m, err := st.SEO.FetchByURL(cmd.Context(), args[0])
			if err != nil {
				return failed(st.SEO.State().Error, err)
			}
			if m == nil {
				fmt.Fprintf(a.out, "No SEO metadata for %s\n", args[0])
				return nil
			}
			return a.render(m, nil, seoRows(m))
		},
	}

	var in model.SeoMetadata
	set := &cobra.Command{
		Use:   "set <page-url>",
		Short: "Create or update the SEO metadata of a page",
		Long:  seoSetLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.authed(ctx)
			if err != nil {
				return err
			}
			current, err := st.SEO.FetchByURL(ctx, args[0])
			if err != nil {
				return failed(st.SEO.State().Error, err)
			}
			m := model.SeoMetadata{PageURL: args[0]}
			if current != nil {
				m = *current
				m.PageURL = args[0]
			}
			flags := cmd.Flags()
			for name, dst := range map[string]*string{
				"title":       &m.Title,
				"description": &m.Description,
				"keywords":    &m.Keywords,
				"og-image":    &m.OgImage,
				"canonical":   &m.CanonicalURL,
				"h1":          &m.H1Override,
			} {
				if flags.Changed(name) {
					*dst, _ = flags.GetString(name)
				}
			}
			saved, err := st.SEO.Save(ctx, m)
			if err != nil {
				return failed(st.SEO.State().Error, err)
			}
			return a.render(saved, nil, seoRows(&saved))
		},
	}
	set.Flags().StringVar(&in.Title, "title", "", "page title")
	set.Flags().StringVar(&in.Description, "description", "", "meta description")
	set.Flags().StringVar(&in.Keywords, "keywords", "", "comma-separated keywords")
	set.Flags().StringVar(&in.OgImage, "og-image", "", "Open Graph image URL")
	set.Flags().StringVar(&in.CanonicalURL, "canonical", "", "canonical URL")
	set.Flags().StringVar(&in.H1Override, "h1", "", "H1 override")

	cmd.AddCommand(get, set)
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show portfolio totals and the page view chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			sum, err := st.Dashboard.FetchSummary(cmd.Context())
			if err != nil {
				return failed(st.Dashboard.State().Error, err)
			}
			return a.render(sum, nil, func(t *tablewriter.Table) {
				t.AppendBulk([][]string{
					{"Total Projects", humanize.Comma(sum.Stats.TotalProjects), ""},
					{"Certificates", humanize.Comma(sum.Stats.TotalCertificates), ""},
					{"Total Views", humanize.Comma(sum.Stats.TotalViews), ""},
					{"Visitors", humanize.Comma(sum.Stats.TotalVisitors), ""},
				})
				var peak int64
				for _, p := range sum.ChartData {
					peak = max(peak, p.Views)
				}
				for _, p := range sum.ChartData {
					bar := 0
					if peak > 0 {
						bar = int(p.Views * 40 / peak)
					}
					t.Append([]string{p.Date, humanize.Comma(p.Views), strings.Repeat("#", bar)})
				}
			})
		},
	}
}

func (a *app) uploadCmd() *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a media file",
		Long:  uploadLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := media.ValidateFolder(folder); err != nil {
				return err
			}
			st, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			url, contentType, err := a.upload(cmd.Context(), st, args[0], folder)
			if err != nil {
				return err
			}
			res := map[string]string{"url": url, "contentType": contentType, "mediaType": media.TypeFor(contentType)}
			return a.render(res, []string{"URL", "Media"}, func(t *tablewriter.Table) {
				t.Append([]string{url, res["mediaType"]})
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "target folder: "+strings.Join(media.Folders(), ", "))
	_ = cmd.MarkFlagRequired("folder")
	return cmd
}

func (a *app) auditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent admin actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.sessions.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.render(entries, []string{"When", "Action", "Target", "Client"}, func(t *tablewriter.Table) {
				for _, e := range entries {
					t.Append([]string{humanize.Time(e.Timestamp), e.Action, e.Target, e.HashedIP})
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}
