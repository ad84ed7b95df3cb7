package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.Index(c.UserContext(), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"page_obj": page})
}

// CategoryPosts handles GET /category/:slug
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	category, page, err := s.postService.CategoryPosts(c.UserContext(), c.Params("slug"), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"category": category,
		"page_obj": page,
	})
}

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.postService.GetPostDetail(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":     detail.Post,
		"comments": detail.Comments,
		"form":     service.CommentForm{},
	})
}

// CreatePostForm handles GET /posts/create
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"form": service.PostForm{IsPublished: "true"}})
}

// bindPostForm decodes the post form. For HTML form bodies a missing
// is_published is an unchecked box; JSON bodies leave it unchanged.
func bindPostForm(c *fiber.Ctx) (service.PostForm, error) {
	var form service.PostForm
	if err := bindForm(c, &form); err != nil {
		return form, err
	}
	if form.IsPublished == "" && isHTMLForm(c) {
		form.IsPublished = "false"
	}
	return form, nil
}

// CreatePost handles POST /posts/create (protected)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, err := bindPostForm(c)
	if err != nil {
		return s.respondForm(c, err, form, 0)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: middleware.UserID(c),
		Form:     form,
	})
	if err != nil {
		return s.respondForm(c, err, form, 0)
	}

	return redirectToProfile(c, post.Author.Username)
}

// EditPostForm handles GET /posts/:id/edit (owner only)
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	post := guardedPost(c)
	return c.JSON(fiber.Map{
		"form": service.PostFormFrom(post),
		"post": post,
	})
}

// EditPost handles POST /posts/:id/edit (owner only)
func (s *Server) EditPost(c *fiber.Ctx) error {
	post := guardedPost(c)

	form, err := bindPostForm(c)
	if err != nil {
		return s.respondForm(c, err, form, post.ID)
	}

	updated, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		RequesterID: middleware.UserID(c),
		Post:        post,
		Form:        form,
	})
	if err != nil {
		return s.respondForm(c, err, form, post.ID)
	}

	return redirectToPost(c, updated.ID)
}

// DeletePostForm handles GET /posts/:id/delete (owner only). The post is
// shown as a read-only form for confirmation.
func (s *Server) DeletePostForm(c *fiber.Ctx) error {
	post := guardedPost(c)
	return c.JSON(fiber.Map{
		"form": service.PostFormFrom(post),
		"post": post,
	})
}

// DeletePost handles POST /posts/:id/delete (owner only)
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post := guardedPost(c)

	err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		RequesterID: middleware.UserID(c),
		Post:        post,
	})
	if err != nil {
		return s.respondForm(c, err, nil, post.ID)
	}

	return redirectToProfile(c, post.Author.Username)
}
