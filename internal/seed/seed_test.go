package seed

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

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

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeeder_Run(t *testing.T) {
	db := setupTestDB(t)
	s, err := NewSeeder(db, Options{Seed: 42, SkipBcrypt: true, Now: seedNow})
	require.NoError(t, err)

	res, err := s.Run(context.Background(), Counts{Users: 5, Categories: 4, Locations: 3, Posts: 30, Comments: 60})
	require.NoError(t, err)

	assert.EqualValues(t, 5, count(t, db, &models.User{}))
	assert.EqualValues(t, 4, count(t, db, &models.Category{}))
	assert.EqualValues(t, 3, count(t, db, &models.Location{}))
	assert.EqualValues(t, 30, count(t, db, &models.Post{}))
	assert.EqualValues(t, 60, count(t, db, &models.Comment{}))

	for _, c := range res.Comments {
		assert.NotZero(t, c.PostID)
		assert.False(t, c.CreatedAt.After(seedNow))
	}
	for _, p := range res.Posts {
		assert.NotZero(t, p.AuthorID)
		assert.NotEmpty(t, p.Title)
	}
}

func TestSeeder_Deterministic(t *testing.T) {
	usernames := func() []string {
		s, err := NewSeeder(setupTestDB(t), Options{Seed: 7, SkipBcrypt: true, Now: seedNow})
		require.NoError(t, err)
		res, err := s.Run(context.Background(), Counts{Users: 3})
		require.NoError(t, err)
		out := make([]string, 0, len(res.Users))
		for _, u := range res.Users {
			out = append(out, u.Username)
		}
		return out
	}

	assert.Equal(t, usernames(), usernames())
}

func TestSeeder_HashesPassword(t *testing.T) {
	db := setupTestDB(t)
	s, err := NewSeeder(db, Options{Seed: 1, Now: seedNow})
	require.NoError(t, err)

	res, err := s.Run(context.Background(), Counts{Users: 2})
	require.NoError(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, res.Users[0].ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(DefaultPassword)))
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupTestDB(t)
	s, err := NewSeeder(db, Options{Seed: 3, SkipBcrypt: true, Now: seedNow})
	require.NoError(t, err)

	_, err = s.Run(context.Background(), Counts{Users: 2, Categories: 1, Posts: 4, Comments: 4})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(context.Background()))

	assert.Zero(t, count(t, db, &models.Comment{}))
	assert.Zero(t, count(t, db, &models.Post{}))
	assert.Zero(t, count(t, db, &models.User{}))
}

func TestSeeder_RejectsOrphans(t *testing.T) {
	s, err := NewSeeder(setupTestDB(t), Options{SkipBcrypt: true})
	require.NoError(t, err)

	_, err = s.Run(context.Background(), Counts{Posts: 3})
	assert.Error(t, err)

	_, err = s.Run(context.Background(), Counts{Users: 1, Comments: 3})
	assert.Error(t, err)
}

func TestFactory_PubDateRange(t *testing.T) {
	f, err := NewFactory(Options{Seed: 9, SkipBcrypt: true, MaxDays: 10, Now: seedNow})
	require.NoError(t, err)
	author := &models.User{ID: 1}

	for i := 0; i < 200; i++ {
		post := f.BuildPost(author, nil, nil)
		assert.False(t, post.PubDate.Before(seedNow.Add(-10*24*time.Hour)))
		assert.False(t, post.PubDate.After(seedNow.Add(72*time.Hour)))
		assert.Nil(t, post.CategoryID)
	}
}
