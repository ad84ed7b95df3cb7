// Package seed provides helpers to create demo data for development
// databases. Nothing here runs in production code paths.
package seed

import (
	"fmt"
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options tunes the generated data.
type Options struct {
	// Seed makes a run reproducible; 0 picks a random one.
	Seed int64
	// SkipBcrypt stores the plain password, for fast local runs and tests.
	SkipBcrypt bool
	// MaxDays is how far back pub dates reach.
	MaxDays int
	// Now anchors generated dates; zero means time.Now.
	Now time.Time
}

// Factory builds unsaved domain entities with plausible content.
type Factory struct {
	faker        *gofakeit.Faker
	opts         Options
	passwordHash string
	seq          int
}

// NewFactory creates a Factory. The password hash is computed once and
// shared by every user it builds.
func NewFactory(opts Options) (*Factory, error) {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	hash := DefaultPassword
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		hash = string(hashed)
	}

	return &Factory{
		faker:        gofakeit.New(opts.Seed),
		opts:         opts,
		passwordHash: hash,
	}, nil
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

// chance reports true with the given percentage.
func (f *Factory) chance(percent int) bool {
	return f.faker.Number(1, 100) <= percent
}

// BuildUser returns a user with a unique username and email.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.next())
	user := &models.User{
		Username:  username,
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Email:     username + "@example.com",
		Password:  f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildCategory returns a category with a unique slug. Roughly one in five
// is left unpublished so hidden categories show up in dev data.
func (f *Factory) BuildCategory(overrides ...func(*models.Category)) *models.Category {
	word := strings.ToLower(f.faker.Word())
	category := &models.Category{
		Title:       strings.ToUpper(word[:1]) + word[1:],
		Description: f.faker.Sentence(12),
		Slug:        fmt.Sprintf("%s-%d", word, f.next()),
		IsPublished: f.chance(80),
	}
	for _, override := range overrides {
		override(category)
	}
	return category
}

// BuildLocation returns a location named after a city.
func (f *Factory) BuildLocation(overrides ...func(*models.Location)) *models.Location {
	location := &models.Location{
		Name:        f.faker.City(),
		IsPublished: f.chance(90),
	}
	for _, override := range overrides {
		override(location)
	}
	return location
}

// BuildPost returns a post by author. Category and location are picked from
// the given pools and may be left empty; a few posts are drafts or dated in
// the future.
func (f *Factory) BuildPost(author *models.User, categories []*models.Category, locations []*models.Location, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       strings.TrimSuffix(f.faker.Sentence(5), "."),
		Text:        f.faker.Paragraph(2, 4, 12, "\n\n"),
		PubDate:     f.pubDate(),
		IsPublished: f.chance(85),
		AuthorID:    author.ID,
	}
	if len(categories) > 0 && f.chance(90) {
		post.CategoryID = &categories[f.faker.Number(0, len(categories)-1)].ID
	}
	if len(locations) > 0 && f.chance(50) {
		post.LocationID = &locations[f.faker.Number(0, len(locations)-1)].ID
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// pubDate spreads dates over the last MaxDays, with about one in ten up to
// three days ahead.
func (f *Factory) pubDate() time.Time {
	if f.chance(10) {
		return f.opts.Now.Add(time.Duration(f.faker.Number(1, 72)) * time.Hour)
	}
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	return f.opts.Now.Add(-back)
}

// BuildComment returns a comment by author on post, created after the
// post's pub date.
func (f *Factory) BuildComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) *models.Comment {
	createdAt := post.PubDate.Add(time.Duration(f.faker.Number(1, 48*60)) * time.Minute)
	if createdAt.After(f.opts.Now) {
		createdAt = f.opts.Now
	}
	comment := &models.Comment{
		Text:      f.faker.Sentence(f.faker.Number(4, 20)),
		AuthorID:  author.ID,
		PostID:    post.ID,
		CreatedAt: createdAt,
	}
	for _, override := range overrides {
		override(comment)
	}
	return comment
}

// Pick returns a random element of items.
func Pick[T any](f *Factory, items []T) T {
	return items[f.faker.Number(0, len(items)-1)]
}
