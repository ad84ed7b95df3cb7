package repository

import (
	"context"

	"blogicum/internal/cache"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository reads categories. Slug lookups cache the slug's id;
// the row, and with it is_published, always comes from the database.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return translate(err, "Category", category.Slug)
	}
	cache.Invalidate(ctx, cache.CategoryKey(category.Slug))
	return nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := findByUniqueCached[models.Category](ctx, r.db, cache.KindCategory, cache.CategoryKey(slug), cache.CategoryTTL, "slug", slug)
	if err != nil {
		return nil, translate(err, "Category", slug)
	}
	return category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err, "Category", id)
	}
	return &category, nil
}
