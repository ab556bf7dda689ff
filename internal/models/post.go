package models

import "time"

// Post is a single authored text entry, optionally grouped and illustrated.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
	// Image is an opaque reference (URL) to uploaded media.
	Image string `gorm:"size:500" json:"image,omitempty"`
}

// PostPage is one page of an ordered feed.
type PostPage struct {
	Posts       []*Post `json:"posts"`
	Page        int     `json:"page"`
	PerPage     int     `json:"per_page"`
	Total       int64   `json:"total"`
	NumPages    int     `json:"num_pages"`
	HasNext     bool    `json:"has_next"`
	HasPrevious bool    `json:"has_previous"`
}

// NewPostPage fills the paging fields from the total row count.
func NewPostPage(posts []*Post, page, perPage int, total int64) *PostPage {
	if posts == nil {
		posts = []*Post{}
	}
	numPages := 0
	if perPage > 0 {
		numPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &PostPage{
		Posts:       posts,
		Page:        page,
		PerPage:     perPage,
		Total:       total,
		NumPages:    numPages,
		HasNext:     page < numPages,
		HasPrevious: page > 1,
	}
}
