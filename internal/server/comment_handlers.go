package server

import (
	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment (protected).
// Invalid text is dropped and the requester lands on the post page as if the
// comment had been saved, unless comment_validation_feedback is on.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := middleware.UserID(c)

	var form service.CommentForm
	if bindForm(c, &form) != nil {
		form = service.CommentForm{}
	}
	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		AuthorID: userID,
		PostID:   postID,
		Form:     form,
	})

	switch {
	case err == nil:
		return redirectToPost(c, postID)
	case models.HasCode(err, models.CodeValidation):
		observability.CommentsRejected.Inc()
		if s.featureFlags.Enabled(featureflags.CommentValidationFeedback, userID) {
			return s.respondForm(c, err, form, postID)
		}
		return redirectToPost(c, postID)
	default:
		return s.respondError(c, err)
	}
}

// EditCommentForm handles GET /posts/:id/edit_comment/:comment_id (owner only)
func (s *Server) EditCommentForm(c *fiber.Ctx) error {
	comment := guardedComment(c)
	return c.JSON(fiber.Map{
		"form":    service.CommentForm{Text: comment.Text},
		"comment": comment,
	})
}

// EditComment handles POST /posts/:id/edit_comment/:comment_id (owner only)
func (s *Server) EditComment(c *fiber.Ctx) error {
	comment := guardedComment(c)

	var form service.CommentForm
	if err := bindForm(c, &form); err != nil {
		return s.respondForm(c, err, form, comment.PostID)
	}

	_, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		RequesterID: middleware.UserID(c),
		Comment:     comment,
		Form:        form,
	})
	if err != nil {
		return s.respondForm(c, err, form, comment.PostID)
	}

	return redirectToPost(c, comment.PostID)
}

// DeleteCommentForm handles GET /posts/:id/delete_comment/:comment_id (owner only)
func (s *Server) DeleteCommentForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"comment": guardedComment(c)})
}

// DeleteComment handles POST /posts/:id/delete_comment/:comment_id (owner only)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment := guardedComment(c)

	err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		RequesterID: middleware.UserID(c),
		Comment:     comment,
	})
	if err != nil {
		return s.respondForm(c, err, nil, comment.PostID)
	}

	return redirectToPost(c, comment.PostID)
}
