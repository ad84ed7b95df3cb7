package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// PubDateLayouts are the accepted pub_date formats, tried in order.
var PubDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pubdate", func(fl validator.FieldLevel) bool {
		_, err := parsePubDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("formbool", func(fl validator.FieldLevel) bool {
		_, err := parseFormBool(fl.Field().String())
		return err == nil
	})
	return v
}

// PostForm is the create/edit post form. All values arrive as strings, the
// way HTML forms submit them.
type PostForm struct {
	Title string `form:"title" json:"title" validate:"required,max=256"`
	Text  string `form:"text" json:"text" validate:"required"`
	// PubDate empty means "now".
	PubDate string `form:"pub_date" json:"pub_date" validate:"omitempty,pubdate"`
	// IsPublished empty keeps the current value (true for new posts).
	IsPublished string `form:"is_published" json:"is_published" validate:"omitempty,formbool"`
	Category    string `form:"category" json:"category" validate:"omitempty,number"`
	Location    string `form:"location" json:"location" validate:"omitempty,number"`
}

// PostFormFrom prefills the form for editing post.
func PostFormFrom(post *models.Post) PostForm {
	form := PostForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate.UTC().Format("2006-01-02T15:04"),
		IsPublished: strconv.FormatBool(post.IsPublished),
	}
	if post.CategoryID != nil {
		form.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		form.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return form
}

// CommentForm is the add/edit comment form.
type CommentForm struct {
	Text string `form:"text" json:"text" validate:"required,max=10000"`
}

// ProfileForm is the edit profile form.
type ProfileForm struct {
	Username  string `form:"username" json:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=150"`
	Email     string `form:"email" json:"email" validate:"required,email,max=254"`
}

// ProfileFormFrom prefills the form from user.
func ProfileFormFrom(user *models.User) ProfileForm {
	return ProfileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

// Normalize trims surrounding whitespace the way form fields are cleaned.
func (f *PostForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.PubDate = strings.TrimSpace(f.PubDate)
	f.IsPublished = strings.TrimSpace(f.IsPublished)
	f.Category = strings.TrimSpace(f.Category)
	f.Location = strings.TrimSpace(f.Location)
}

func (f *CommentForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
}

func (f *ProfileForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
}

// validateForm runs the struct tags on form and turns failures into a
// VALIDATION_ERROR keyed by form field name.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}
	return models.NewFieldValidationError(lo.SliceToMap(verrs, func(fe validator.FieldError) (string, string) {
		return fe.Field(), fieldMessage(fe)
	}))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "pubdate":
		return "Enter a valid date/time."
	case "formbool":
		return "Enter a valid boolean."
	case "number":
		return "Select a valid choice."
	}
	return "Invalid value."
}

func parsePubDate(raw string) (time.Time, error) {
	for _, layout := range PubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseFormBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", raw)
}

// optionalID parses a validated numeric form value; empty and zero mean none.
func optionalID(raw string) *uint {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil
	}
	return lo.ToPtr(uint(id))
}
