package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "server-test-secret-with-enough-length"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), true)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		Env:            "test",
		JWTSecret:      testSecret,
		LoginURL:       "/auth/login/",
		AllowedOrigins: "*",
		FeatureFlags:   flags,
	}
	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	return &testEnv{server: s, app: s.App(), db: db}
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.server.Authenticator().IssueToken(user.ID, time.Hour)
	require.NoError(t, err)
	return token
}

// do sends a request; form, when non-nil, is sent urlencoded.
func (e *testEnv) do(t *testing.T, method, path, token string, form url.Values) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// doJSON sends body as a JSON request.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func pageObj(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	page, ok := body["page_obj"].(map[string]any)
	require.True(t, ok, "page_obj missing: %v", body)
	return page
}

func items(page map[string]any) []any {
	list, _ := page["object_list"].([]any)
	return list
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) createCategory(t *testing.T, slug string, published bool) *models.Category {
	t.Helper()
	c := &models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

type postOpt func(*models.Post)

func withTitle(title string) postOpt {
	return func(p *models.Post) { p.Title = title }
}

func withPubDate(at time.Time) postOpt {
	return func(p *models.Post) { p.PubDate = at }
}

func unpublished() postOpt {
	return func(p *models.Post) { p.IsPublished = false }
}

func (e *testEnv) createPost(t *testing.T, author *models.User, category *models.Category, opts ...postOpt) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       "post",
		Text:        "text",
		PubDate:     time.Now().UTC().Add(-time.Hour),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, e.db.Omit("Author", "Category", "Location").Create(p).Error)
	return p
}

func (e *testEnv) createComment(t *testing.T, author *models.User, post *models.Post, text string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{Text: text, AuthorID: author.ID, PostID: post.ID, CreatedAt: at}
	require.NoError(t, e.db.Omit("Author", "Post").Create(c).Error)
	return c
}
