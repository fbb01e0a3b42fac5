package course

import (
	"time"

	"gorm.io/datatypes"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// ProgressRating is a learner's rating of a section.
type ProgressRating struct {
	Value   *int       `json:"value"`
	Comment string     `json:"comment" gorm:"type:text"`
	RatedAt *time.Time `json:"rated_at"`
}

// Note is a learner note attached to a progress record.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Position  *int      `json:"position,omitempty"` // seconds into the media, if any
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks a resource of the section for later.
type Bookmark struct {
	ResourceID uint      `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Progress tracks one learner in one section of an enrolled course.
type Progress struct {
	ID                   uint                          `json:"id" gorm:"primaryKey"`
	UserID               uint                          `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_course_section"`
	CourseID             uint                          `json:"course_id" gorm:"not null;index;uniqueIndex:idx_progress_user_course_section"`
	SectionID            uint                          `json:"section_id" gorm:"not null;index;uniqueIndex:idx_progress_user_course_section"`
	ResourceID           *uint                         `json:"resource_id"`
	EnrolledAt           time.Time                     `json:"enrolled_at"`
	StartedAt            *time.Time                    `json:"started_at"`
	LastAccessedAt       time.Time                     `json:"last_accessed_at"`
	CompletedAt          *time.Time                    `json:"completed_at"`
	Completed            bool                          `json:"completed" gorm:"not null"`
	CompletionPercentage float64                       `json:"completion_percentage" gorm:"not null;default:0"`
	TimeSpent            int                           `json:"time_spent" gorm:"not null;default:0"` // seconds
	Score                *float64                      `json:"score"`
	Rating               ProgressRating                `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	Notes                datatypes.JSONSlice[Note]     `json:"notes"`
	Bookmarks            datatypes.JSONSlice[Bookmark] `json:"bookmarks"`
	CertificateIssued    bool                          `json:"certificate_issued" gorm:"not null"`
	CertificateIssuedAt  *time.Time                    `json:"certificate_issued_at"`
	CreatedAt            time.Time                     `json:"created_at"`
	UpdatedAt            time.Time                     `json:"updated_at"`
}

func (Progress) TableName() string { return "progress" }

// NewProgress returns the not-started record created at enrollment.
func NewProgress(userID, courseID, sectionID uint, now time.Time) Progress {
	return Progress{
		UserID:         userID,
		CourseID:       courseID,
		SectionID:      sectionID,
		EnrolledAt:     now,
		LastAccessedAt: now,
		Notes:          datatypes.JSONSlice[Note]{},
		Bookmarks:      datatypes.JSONSlice[Bookmark]{},
	}
}

// ClampPercentage bounds a percentage to [0,100].
func ClampPercentage(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// SetCompletion moves the record to pct, keeping Completed, CompletedAt and
// StartedAt consistent with it. Regression below 100 clears completion.
func (p *Progress) SetCompletion(pct float64, now time.Time) {
	pct = ClampPercentage(pct)
	p.CompletionPercentage = pct
	if pct > 0 && p.StartedAt == nil {
		started := now
		p.StartedAt = &started
	}
	if pct >= 100 {
		if !p.Completed || p.CompletedAt == nil {
			completed := now
			p.CompletedAt = &completed
		}
		p.Completed = true
	} else {
		p.Completed = false
		p.CompletedAt = nil
	}
	p.Touch(now)
}

// Touch records an access.
func (p *Progress) Touch(now time.Time) {
	p.LastAccessedAt = now
}

// SetRating stores a learner rating; callers validate the range.
func (p *Progress) SetRating(value int, comment string, now time.Time) {
	v := value
	ratedAt := now
	p.Rating = ProgressRating{Value: &v, Comment: comment, RatedAt: &ratedAt}
	p.Touch(now)
}

// IsValidRating reports whether v is within [MinRating, MaxRating].
func IsValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
