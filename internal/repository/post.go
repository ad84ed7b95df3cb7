package repository

import (
	"context"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const postColumnsWithCommentCount = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// PostQuery selects the posts of one listing page.
type PostQuery struct {
	// VisibleOnly applies the listing visibility rule evaluated at Now.
	VisibleOnly bool
	Now         time.Time
	// CategoryID and AuthorID narrow the listing when non-zero.
	CategoryID uint
	AuthorID   uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	// Count returns the number of posts matching q.
	Count(ctx context.Context, q PostQuery) (int64, error)
	// List returns one page of posts matching q, newest pub_date first,
	// each annotated with its comment_count.
	List(ctx context.Context, q PostQuery, limit, offset int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&post, id).Error
	if err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("title", "text", "pub_date", "is_published", "category_id", "location_id", "updated_at").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post and its comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

func (r *postRepository) filtered(ctx context.Context, q PostQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Post{})
	if q.VisibleOnly {
		db = db.Scopes(policy.ListingScope(q.Now))
	}
	if q.CategoryID != 0 {
		db = db.Where("posts.category_id = ?", q.CategoryID)
	}
	if q.AuthorID != 0 {
		db = db.Where("posts.author_id = ?", q.AuthorID)
	}
	return db
}

func (r *postRepository) Count(ctx context.Context, q PostQuery) (int64, error) {
	var total int64
	err := r.filtered(ctx, q).Count(&total).Error
	return total, err
}

func (r *postRepository) List(ctx context.Context, q PostQuery, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	err := r.filtered(ctx, q).
		Select(postColumnsWithCommentCount).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
