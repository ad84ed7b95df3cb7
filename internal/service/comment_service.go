package service

import (
	"context"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/policy"
	"blogicum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Form     CommentForm
}

// UpdateCommentInput edits Comment, which the caller has already loaded.
type UpdateCommentInput struct {
	RequesterID uint
	Comment     *models.Comment
	Form        CommentForm
}

type DeleteCommentInput struct {
	RequesterID uint
	Comment     *models.Comment
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// AddComment attaches a comment to an existing post. A missing post is
// NOT_FOUND; invalid text is VALIDATION_ERROR and nothing is stored.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "AddComment", attribute.Int64("post.id", int64(in.PostID)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if in.AuthorID == policy.Anonymous {
		err = models.NewUnauthorizedError("Authentication required")
		return nil, err
	}

	if _, err = s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	in.Form.Normalize()
	if err = validateForm(&in.Form); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     in.Form.Text,
		AuthorID: in.AuthorID,
		PostID:   in.PostID,
	}
	if err = s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "comment added", "comment_id", comment.ID, "post_id", comment.PostID)
	return comment, nil
}

// GetComment loads commentID only if it belongs to postID.
func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// UpdateComment replaces the text of a comment owned by the requester.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "UpdateComment")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if !policy.IsOwner(in.Comment, in.RequesterID) {
		err = models.NewUnauthorizedError("Only the author can edit this comment")
		return nil, err
	}

	in.Form.Normalize()
	if err = validateForm(&in.Form); err != nil {
		return nil, err
	}

	in.Comment.Text = in.Form.Text
	if err = s.comments.Update(ctx, in.Comment); err != nil {
		return nil, err
	}
	return in.Comment, nil
}

// DeleteComment removes a comment owned by the requester.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "DeleteComment")
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if !policy.IsOwner(in.Comment, in.RequesterID) {
		err = models.NewUnauthorizedError("Only the author can delete this comment")
		return err
	}

	err = s.comments.Delete(ctx, in.Comment.ID)
	return err
}
