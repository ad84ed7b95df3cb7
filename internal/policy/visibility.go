// Package policy holds the visibility and ownership rules for posts and
// comments. Everything here is a pure predicate over already loaded data,
// except ListingScope which expresses the listing rule as a query filter.
package policy

import (
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// Anonymous is the requester ID of an unauthenticated viewer.
const Anonymous uint = 0

// DetailOptions tunes the single-post rule.
type DetailOptions struct {
	// RequirePubDate adds the listing's pub_date <= now condition for
	// non-authors. Off by default: future-dated posts stay reachable by URL.
	RequirePubDate bool
}

// categoryPublished is false for posts without a category, matching the
// inner join the listing filter performs.
func categoryPublished(post *models.Post) bool {
	return post.Category != nil && post.Category.IsPublished
}

// VisibleInListing reports whether post may appear on the index, category
// and filtered profile pages. The author gets no exemption here.
func VisibleInListing(post *models.Post, now time.Time) bool {
	if post == nil {
		return false
	}
	return post.IsPublished && categoryPublished(post) && !post.PubDate.After(now)
}

// VisibleInDetail reports whether requesterID may open the post page.
// Authors always see their own posts.
func VisibleInDetail(post *models.Post, requesterID uint, now time.Time, opts DetailOptions) bool {
	if post == nil {
		return false
	}
	if requesterID != Anonymous && post.AuthorID == requesterID {
		return true
	}
	if !post.IsPublished || !categoryPublished(post) {
		return false
	}
	if opts.RequirePubDate && post.PubDate.After(now) {
		return false
	}
	return true
}

// ListingScope is VisibleInListing as a GORM scope over the posts table.
func ListingScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("categories.is_published = ?", true).
			Where("posts.pub_date <= ?", now)
	}
}
