package course

import "time"

// Course categories
const (
	Category1AS   = "1as"
	Category2AS   = "2as"
	Category3AS   = "3as"
	CategoryOther = "other"
)

// Categories lists every accepted course category.
var Categories = []string{Category1AS, Category2AS, Category3AS, CategoryOther}

// IsValidCategory reports whether c is one of Categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// CourseRating is the aggregate of every learner rating on the course.
type CourseRating struct {
	Average float64 `json:"average" gorm:"default:0"`
	Count   int     `json:"count" gorm:"default:0"`
}

// Course is the root of the content hierarchy.
type Course struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	Title           string       `json:"title" gorm:"not null"`
	Description     string       `json:"description" gorm:"type:text"`
	Thumbnail       string       `json:"thumbnail"`
	Category        string       `json:"category" gorm:"index;not null"`
	Module          string       `json:"module"` // free-text subject tag
	OwnerID         uint         `json:"owner_id" gorm:"index;not null"`
	IsPublished     bool         `json:"is_published" gorm:"not null"`
	PublishedAt     *time.Time   `json:"published_at"`
	IsActive        bool         `json:"is_active" gorm:"not null"`
	IsDeleted       bool         `json:"is_deleted" gorm:"index;not null"`
	DeletedAt       *time.Time   `json:"deleted_at,omitempty"`
	EnrollmentCount int          `json:"enrollment_count" gorm:"not null;default:0"`
	Rating          CourseRating `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsLive reports whether the course can be read and mutated.
func (c *Course) IsLive() bool {
	return c.IsActive && !c.IsDeleted
}

// IsEnrollable reports whether learners may enroll.
func (c *Course) IsEnrollable() bool {
	return c.IsLive() && c.IsPublished
}

// SetPublished applies a publish transition keeping PublishedAt in step with IsPublished.
func (c *Course) SetPublished(published bool, now time.Time) {
	c.IsPublished = published
	c.PublishedAt = publishedAt(published, c.PublishedAt, now)
}

// MarkDeleted soft-deletes the course.
func (c *Course) MarkDeleted(now time.Time) {
	c.IsDeleted = true
	c.IsActive = false
	c.DeletedAt = &now
}

func publishedAt(published bool, current *time.Time, now time.Time) *time.Time {
	if !published {
		return nil
	}
	if current != nil {
		return current
	}
	t := now
	return &t
}
