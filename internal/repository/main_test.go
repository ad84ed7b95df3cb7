package repository

import (
	"fmt"
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB returns a migrated in-memory store. A single connection keeps
// every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), true)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createCategory(t *testing.T, db *gorm.DB, slug string, published bool) *models.Category {
	t.Helper()
	c := &models.Category{Title: slug, Slug: slug, IsPublished: published}
	require.NoError(t, db.Create(c).Error)
	return c
}

type postOpt func(*models.Post)

func createPost(t *testing.T, db *gorm.DB, author *models.User, category *models.Category, opts ...postOpt) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       "post",
		Text:        "text",
		PubDate:     baseTime.Add(-time.Hour),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Omit("Author", "Category", "Location").Create(p).Error)
	return p
}

func withTitle(format string, args ...any) postOpt {
	return func(p *models.Post) { p.Title = fmt.Sprintf(format, args...) }
}

func withPubDate(d time.Time) postOpt {
	return func(p *models.Post) { p.PubDate = d }
}

func unpublished() postOpt {
	return func(p *models.Post) { p.IsPublished = false }
}
