// Package service holds the blog's use cases: listings, post and comment
// mutations and profile editing.
package service

import (
	"context"
	"time"

	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/pagination"
	"blogicum/internal/policy"
	"blogicum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PostPage is one page of a post listing.
type PostPage = pagination.Page[*models.Post]

type PostService struct {
	posts      repository.PostRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	users      repository.UserRepository
	flags      *featureflags.Manager
	now        func() time.Time
}

type CreatePostInput struct {
	AuthorID uint
	Form     PostForm
}

// UpdatePostInput edits Post, which the caller has already loaded.
type UpdatePostInput struct {
	RequesterID uint
	Post        *models.Post
	Form        PostForm
}

type DeletePostInput struct {
	RequesterID uint
	Post        *models.Post
}

// PostDetail is what the post page shows.
type PostDetail struct {
	Post     *models.Post
	Comments []*models.Comment
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
	locations repository.LocationRepository,
	users repository.UserRepository,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		categories: categories,
		locations:  locations,
		users:      users,
		flags:      flags,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for visibility decisions.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

func (s *PostService) page(ctx context.Context, q repository.PostQuery, requested int) (PostPage, error) {
	total, err := s.posts.Count(ctx, q)
	if err != nil {
		return PostPage{}, err
	}
	number := pagination.Clamp(requested, total, pagination.PageSize)
	posts, err := s.posts.List(ctx, q, pagination.PageSize, pagination.Offset(number, pagination.PageSize))
	if err != nil {
		return PostPage{}, err
	}
	return pagination.New(posts, number, total, pagination.PageSize), nil
}

// Index lists every post visible right now.
func (s *PostService) Index(ctx context.Context, page int) (PostPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Index", attribute.Int("page", page))
	result, err := s.page(ctx, repository.PostQuery{VisibleOnly: true, Now: s.now()}, page)
	observability.EndSpan(span, err)
	return result, err
}

// CategoryPosts lists the visible posts of a published category. Unknown
// and unpublished categories are both NOT_FOUND.
func (s *PostService) CategoryPosts(ctx context.Context, slug string, page int) (*models.Category, PostPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CategoryPosts", attribute.String("category.slug", slug))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, PostPage{}, err
	}
	if !category.IsPublished {
		err = models.NewNotFoundError("Category", slug)
		return nil, PostPage{}, err
	}

	result, err := s.page(ctx, repository.PostQuery{VisibleOnly: true, Now: s.now(), CategoryID: category.ID}, page)
	if err != nil {
		return nil, PostPage{}, err
	}
	return category, result, nil
}

// ProfilePosts lists every post of username in any state. With the
// profile_owner_only flag on, viewers other than the owner get the listing
// rule instead.
func (s *PostService) ProfilePosts(ctx context.Context, username string, requesterID uint, page int) (*models.User, PostPage, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "ProfilePosts", attribute.String("profile.username", username))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	profile, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, PostPage{}, err
	}

	q := repository.PostQuery{AuthorID: profile.ID, Now: s.now()}
	if profile.ID != requesterID && s.flags.Enabled(featureflags.ProfileOwnerOnly, requesterID) {
		q.VisibleOnly = true
	}

	result, err := s.page(ctx, q, page)
	if err != nil {
		return nil, PostPage{}, err
	}
	return profile, result, nil
}

// GetPost loads a post for its author's mutations. No visibility rule
// applies; ownership is decided by the caller.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// GetPostDetail loads a post and its comments if requesterID may see it.
// Hidden posts are NOT_FOUND, exactly like absent ones.
func (s *PostService) GetPostDetail(ctx context.Context, id, requesterID uint) (*PostDetail, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "GetPostDetail", attribute.Int64("post.id", int64(id)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	opts := policy.DetailOptions{
		RequirePubDate: s.flags.Enabled(featureflags.DetailPubDateCheck, requesterID),
	}
	if !policy.VisibleInDetail(post, requesterID, s.now(), opts) {
		err = models.NewNotFoundError("Post", id)
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// resolveForm validates form and checks the referenced category and
// location exist.
func (s *PostService) resolveForm(ctx context.Context, form *PostForm) (*models.Post, error) {
	form.Normalize()
	if err := validateForm(form); err != nil {
		return nil, err
	}

	fields := &models.Post{
		Title:      form.Title,
		Text:       form.Text,
		CategoryID: optionalID(form.Category),
		LocationID: optionalID(form.Location),
	}

	if form.PubDate == "" {
		fields.PubDate = s.now()
	} else {
		fields.PubDate, _ = parsePubDate(form.PubDate)
	}

	invalid := map[string]string{}
	if fields.CategoryID != nil {
		category, err := s.categories.GetByID(ctx, *fields.CategoryID)
		switch {
		case models.HasCode(err, models.CodeNotFound):
			invalid["category"] = "Select a valid choice. That choice is not one of the available choices."
		case err != nil:
			return nil, err
		default:
			fields.Category = category
		}
	}
	if fields.LocationID != nil {
		location, err := s.locations.GetByID(ctx, *fields.LocationID)
		switch {
		case models.HasCode(err, models.CodeNotFound):
			invalid["location"] = "Select a valid choice. That choice is not one of the available choices."
		case err != nil:
			return nil, err
		default:
			fields.Location = location
		}
	}
	if len(invalid) > 0 {
		return nil, models.NewFieldValidationError(invalid)
	}
	return fields, nil
}

// CreatePost saves a new post authored by the requester.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if in.AuthorID == policy.Anonymous {
		err = models.NewUnauthorizedError("Authentication required")
		return nil, err
	}

	post, err := s.resolveForm(ctx, &in.Form)
	if err != nil {
		return nil, err
	}
	post.AuthorID = in.AuthorID
	post.IsPublished = true
	if in.Form.IsPublished != "" {
		post.IsPublished, _ = parseFormBool(in.Form.IsPublished)
	}

	if err = s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	post.Author = *author

	middleware.Logger.InfoContext(ctx, "post created", "post_id", post.ID, "author_id", post.AuthorID)
	return post, nil
}

// UpdatePost applies form to a post owned by the requester.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "UpdatePost")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if !policy.IsOwner(in.Post, in.RequesterID) {
		err = models.NewUnauthorizedError("Only the author can edit this post")
		return nil, err
	}

	fields, err := s.resolveForm(ctx, &in.Form)
	if err != nil {
		return nil, err
	}

	post := in.Post
	post.Title = fields.Title
	post.Text = fields.Text
	post.PubDate = fields.PubDate
	post.CategoryID, post.Category = fields.CategoryID, fields.Category
	post.LocationID, post.Location = fields.LocationID, fields.Location
	if in.Form.IsPublished != "" {
		post.IsPublished, _ = parseFormBool(in.Form.IsPublished)
	}

	if err = s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post owned by the requester together with its comments.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "DeletePost")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if !policy.IsOwner(in.Post, in.RequesterID) {
		err = models.NewUnauthorizedError("Only the author can delete this post")
		return err
	}

	if err = s.posts.Delete(ctx, in.Post.ID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "post deleted", "post_id", in.Post.ID, "author_id", in.Post.AuthorID)
	return nil
}
