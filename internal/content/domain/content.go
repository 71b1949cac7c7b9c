// Package domain holds the blog content model: posts, series, comments and likes.
package domain

import "time"

// Reading levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ValidLevel reports whether l is a known reading level.
func ValidLevel(l string) bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Series types.
const (
	SeriesTypeKnowledgeBase = "knowledge-base"
	SeriesTypeBookNotes     = "book-notes"
)

// ValidSeriesType reports whether t is a known series type.
func ValidSeriesType(t string) bool {
	return t == SeriesTypeKnowledgeBase || t == SeriesTypeBookNotes
}

// Post is a research article. English fields are optional translations.
type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	TitleEn     string    `json:"titleEn,omitempty"`
	Summary     string    `json:"summary"`
	SummaryEn   string    `json:"summaryEn,omitempty"`
	Content     string    `json:"content"`
	ContentEn   string    `json:"contentEn,omitempty"`
	Tags        []string  `json:"tags"`
	TagsEn      []string  `json:"tagsEn"`
	Level       string    `json:"level"`
	Published   bool      `json:"published"`
	Date        time.Time `json:"date"`
	ViewCount   int       `json:"viewCount"`
	SeriesID    *string   `json:"seriesId"`
	SeriesOrder *int      `json:"seriesOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SeriesPost is a post listed inside a series, with engagement counts.
type SeriesPost struct {
	Post
	LikeCount    int `json:"likeCount"`
	CommentCount int `json:"commentCount"`
}

// Series groups posts in reading order.
type Series struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	TitleEn       string    `json:"titleEn,omitempty"`
	Description   string    `json:"description,omitempty"`
	DescriptionEn string    `json:"descriptionEn,omitempty"`
	Type          string    `json:"type"`
	Level         string    `json:"level"`
	Published     bool      `json:"published"`
	PostCount     int       `json:"postCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SeriesDetail is a series with its published posts ordered by series order.
type SeriesDetail struct {
	Series
	Posts []SeriesPost `json:"posts"`
}

// Comment is a reader comment. Replies are one level deep.
type Comment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"postId"`
	ParentID  *string    `json:"parentId"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	Replies   []*Comment `json:"replies,omitempty"`
}

// TopLevel reports whether the comment is not a reply.
func (c *Comment) TopLevel() bool {
	return c.ParentID == nil
}

// LikeStatus is the like count of a post and whether the caller has liked it.
type LikeStatus struct {
	LikeCount int  `json:"likeCount"`
	Liked     bool `json:"liked"`
}
