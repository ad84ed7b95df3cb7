package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/pagination"
	"blogicum/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Locals written by the ownership guard loaders.
const (
	localPost    = "post"
	localComment = "comment"
)

// parseID extracts a route parameter by name as a positive uint.
// Anything else names no entity, so on failure it writes a 404 and returns
// errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		_ = s.respondError(c, models.NewNotFoundError("Resource", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePage reads the 1-based page query parameter. Out-of-range values are
// clamped by the service.
func parsePage(c *fiber.Ctx) int {
	return pagination.ParseNumber(c.Query("page"))
}

// respondError maps a service error to its status and writes the standard
// error body.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	var appErr *models.AppError
	switch {
	case status == fiber.StatusNotFound && errors.As(err, &appErr):
		observability.NotFoundResponses.WithLabelValues(strings.ToLower(appErr.Resource)).Inc()
	case status == fiber.StatusInternalServerError:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(),
			"error", err,
		)
	}
	return models.RespondWithError(c, status, err)
}

// respondForm answers a failed form submission: field errors re-render the
// form with a 400, ownership failures redirect to the post, anything else
// goes through respondError.
func (s *Server) respondForm(c *fiber.Ctx, err error, form any, postID uint) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"form":   form,
				"errors": appErr.Fields,
				"error":  appErr.Message,
				"code":   appErr.Code,
			})
		case models.CodeUnauthorized:
			return redirectToPost(c, postID)
		}
	}
	return s.respondError(c, err)
}

// bindForm decodes a urlencoded, multipart or JSON body into out. An empty
// body leaves out at its zero value.
func bindForm(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid form data")
	}
	return nil
}

// isHTMLForm reports whether the body was submitted as an HTML form, where
// an unchecked checkbox is left out entirely.
func isHTMLForm(c *fiber.Ctx) bool {
	ct := string(c.Request().Header.ContentType())
	return strings.HasPrefix(ct, fiber.MIMEApplicationForm) || strings.HasPrefix(ct, fiber.MIMEMultipartForm)
}

func postPath(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func redirectToPost(c *fiber.Ctx, id uint) error {
	return c.Redirect(postPath(id), fiber.StatusFound)
}

func redirectToProfile(c *fiber.Ctx, username string) error {
	return c.Redirect(profilePath(username), fiber.StatusFound)
}

// ownedLoader resolves the entity a guarded route acts on and stores it in
// Locals for the handler. It returns the post the guard falls back to.
type ownedLoader func(c *fiber.Ctx) (policy.Owned, uint, error)

// OwnerRequired loads the route's entity and lets the request through only
// when the requester authored it. Everyone else is sent to the post page
// before any handler logic runs.
func (s *Server) OwnerRequired(entity string, load ownedLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owned, postID, err := load(c)
		if err != nil {
			if errors.Is(err, errResponseWritten) {
				return nil
			}
			return s.respondError(c, err)
		}
		if !policy.IsOwner(owned, middleware.UserID(c)) {
			observability.OwnershipDenials.WithLabelValues(entity).Inc()
			middleware.Logger.InfoContext(c.UserContext(), "ownership check failed",
				"entity", entity,
				"post_id", postID,
			)
			return redirectToPost(c, postID)
		}
		return c.Next()
	}
}

func (s *Server) loadPost(c *fiber.Ctx) (policy.Owned, uint, error) {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil, 0, err
	}
	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return nil, 0, err
	}
	c.Locals(localPost, post)
	return post, post.ID, nil
}

func (s *Server) loadComment(c *fiber.Ctx) (policy.Owned, uint, error) {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil, 0, err
	}
	commentID, err := s.parseID(c, "comment_id")
	if err != nil {
		return nil, 0, err
	}
	comment, err := s.commentService.GetComment(c.UserContext(), postID, commentID)
	if err != nil {
		return nil, 0, err
	}
	c.Locals(localComment, comment)
	return comment, postID, nil
}

func guardedPost(c *fiber.Ctx) *models.Post {
	post, _ := c.Locals(localPost).(*models.Post)
	return post
}

func guardedComment(c *fiber.Ctx) *models.Comment {
	comment, _ := c.Locals(localComment).(*models.Comment)
	return comment
}
