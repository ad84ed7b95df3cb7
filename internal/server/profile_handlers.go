package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Profile handles GET /profile/:username
func (s *Server) Profile(c *fiber.Ctx) error {
	profile, page, err := s.postService.ProfilePosts(c.UserContext(), c.Params("username"), middleware.UserID(c), parsePage(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"profile":  profile,
		"page_obj": page,
	})
}

// EditProfileForm handles GET /profile/:username/edit (protected).
// The username in the path is ignored: requesters only edit themselves.
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"form": service.ProfileFormFrom(user)})
}

// EditProfile handles POST /profile/:username/edit (protected)
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var form service.ProfileForm
	if err := bindForm(c, &form); err != nil {
		return s.respondForm(c, err, form, 0)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: middleware.UserID(c),
		Form:   form,
	})
	if err != nil {
		return s.respondForm(c, err, form, 0)
	}

	return redirectToProfile(c, user.Username)
}
