package seed

import (
	"context"
	"errors"
	"fmt"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

const batchSize = 100

// Counts is how much data a run creates.
type Counts struct {
	Users      int
	Categories int
	Locations  int
	Posts      int
	Comments   int
}

// Result holds the entities a run created.
type Result struct {
	Users      []*models.User
	Categories []*models.Category
	Locations  []*models.Location
	Posts      []*models.Post
	Comments   []*models.Comment
}

// Seeder writes generated data to the database.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: factory}, nil
}

// ClearAll removes every row of the blog tables, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []interface{}{&models.Comment{}, &models.Post{}, &models.Location{}, &models.Category{}, &models.User{}}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates the requested amounts of data in one transaction.
func (s *Seeder) Run(ctx context.Context, counts Counts) (*Result, error) {
	if counts.Users <= 0 && (counts.Posts > 0 || counts.Comments > 0) {
		return nil, errors.New("posts and comments need at least one user")
	}
	if counts.Posts <= 0 && counts.Comments > 0 {
		return nil, errors.New("comments need at least one post")
	}

	res := &Result{}
	f := s.factory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < counts.Users; i++ {
			res.Users = append(res.Users, f.BuildUser())
		}
		if err := createAll(tx, res.Users); err != nil {
			return fmt.Errorf("users: %w", err)
		}

		for i := 0; i < counts.Categories; i++ {
			res.Categories = append(res.Categories, f.BuildCategory())
		}
		if err := createAll(tx, res.Categories); err != nil {
			return fmt.Errorf("categories: %w", err)
		}

		for i := 0; i < counts.Locations; i++ {
			res.Locations = append(res.Locations, f.BuildLocation())
		}
		if err := createAll(tx, res.Locations); err != nil {
			return fmt.Errorf("locations: %w", err)
		}

		for i := 0; i < counts.Posts; i++ {
			res.Posts = append(res.Posts, f.BuildPost(Pick(f, res.Users), res.Categories, res.Locations))
		}
		if err := createAll(tx.Omit("Author", "Category", "Location"), res.Posts); err != nil {
			return fmt.Errorf("posts: %w", err)
		}

		for i := 0; i < counts.Comments; i++ {
			res.Comments = append(res.Comments, f.BuildComment(Pick(f, res.Users), Pick(f, res.Posts)))
		}
		if err := createAll(tx.Omit("Author", "Post"), res.Comments); err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		"users", len(res.Users),
		"categories", len(res.Categories),
		"locations", len(res.Locations),
		"posts", len(res.Posts),
		"comments", len(res.Comments),
	)
	return res, nil
}

func createAll[T any](tx *gorm.DB, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}
