package course

import (
	"time"

	"gorm.io/datatypes"
)

// Prerequisite references another section of the same course.
type Prerequisite struct {
	SectionID          uint `json:"section_id"`
	CompletionRequired bool `json:"completion_required"`
}

// Section is an ordered chapter of a course.
type Section struct {
	ID            uint                              `json:"id" gorm:"primaryKey"`
	Title         string                            `json:"title" gorm:"not null"`
	Description   string                            `json:"description" gorm:"type:text"`
	CourseID      uint                              `json:"course_id" gorm:"not null;index;uniqueIndex:idx_sections_course_order,where:is_deleted = false"`
	OrderIndex    int                               `json:"order" gorm:"column:order_index;not null;uniqueIndex:idx_sections_course_order,where:is_deleted = false"`
	Duration      int                               `json:"duration"` // minutes
	IsPublished   bool                              `json:"is_published" gorm:"not null"`
	PublishedAt   *time.Time                        `json:"published_at"`
	IsFree        bool                              `json:"is_free" gorm:"not null"`
	IsRequired    bool                              `json:"is_required" gorm:"not null"`
	Prerequisites datatypes.JSONSlice[Prerequisite] `json:"prerequisites"`
	IsActive      bool                              `json:"is_active" gorm:"not null"`
	IsDeleted     bool                              `json:"is_deleted" gorm:"not null"`
	DeletedAt     *time.Time                        `json:"deleted_at,omitempty"`
	CreatedAt     time.Time                         `json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
}

func (s *Section) IsLive() bool {
	return s.IsActive && !s.IsDeleted
}

// SetPublished applies a publish transition keeping PublishedAt in step with IsPublished.
func (s *Section) SetPublished(published bool, now time.Time) {
	s.IsPublished = published
	s.PublishedAt = publishedAt(published, s.PublishedAt, now)
}

func (s *Section) MarkDeleted(now time.Time) {
	s.IsDeleted = true
	s.IsActive = false
	s.DeletedAt = &now
}

// RequiredPrerequisites returns ids of prerequisites that must be completed first.
func (s *Section) RequiredPrerequisites() []uint {
	var ids []uint
	for _, p := range s.Prerequisites {
		if p.CompletionRequired {
			ids = append(ids, p.SectionID)
		}
	}
	return ids
}
