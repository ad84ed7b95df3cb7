package models

import (
	"time"
)

// Post is a blog entry. Whether a post is visible is derived from
// IsPublished, PubDate and the category state; it is never stored.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"not null;index" json:"pub_date"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`
	LocationID  *uint     `gorm:"index" json:"location_id"`
	Location    *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location"`
	// CommentCount is not persisted; computed at query time
	CommentCount int       `gorm:"->;-:migration" json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// AuthorUserID implements policy.Owned.
func (p *Post) AuthorUserID() uint {
	if p == nil {
		return 0
	}
	return p.AuthorID
}
