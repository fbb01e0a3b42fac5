package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

// Publishing limits
const (
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 1000
)

// PublishCheck is the outcome of validating a course for publication.
type PublishCheck struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

const issueNoPublishedResource = "must have at least one published resource"

// ValidateForPublishing reports every reason the course cannot be published yet.
func (s *Service) ValidateForPublishing(ctx context.Context, courseID uint) (*PublishCheck, error) {
	c, err := loadCourse(s.db.WithContext(ctx), courseID, false)
	if err != nil {
		return nil, apperrors.From(err)
	}
	check, err := checkPublishable(s.db.WithContext(ctx), c)
	if err != nil {
		return nil, apperrors.From(err)
	}
	return check, nil
}

func checkPublishable(tx *gorm.DB, c *courseModels.Course) (*PublishCheck, error) {
	published, err := countPublishedResources(tx, c.ID)
	if err != nil {
		return nil, err
	}

	var issues []string
	if published == 0 {
		issues = append(issues, issueNoPublishedResource)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(c.Title)); n < MinTitleLength || n > MaxTitleLength {
		issues = append(issues, fmt.Sprintf("title must be between %d and %d characters", MinTitleLength, MaxTitleLength))
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(c.Description)); n < MinDescriptionLength || n > MaxDescriptionLength {
		issues = append(issues, fmt.Sprintf("description must be between %d and %d characters", MinDescriptionLength, MaxDescriptionLength))
	}
	if !courseModels.IsValidCategory(c.Category) {
		issues = append(issues, "category must be one of "+strings.Join(courseModels.Categories, ", "))
	}

	return &PublishCheck{IsValid: len(issues) == 0, Issues: issues}, nil
}

func countPublishedResources(tx *gorm.DB, courseID uint) (int64, error) {
	var n int64
	err := tx.Model(&courseModels.Resource{}).
		Joins("JOIN sections ON sections.id = resources.section_id").
		Where("sections.course_id = ? AND sections.is_deleted = ?", courseID, false).
		Where("resources.is_published = ? AND resources.is_active = ? AND resources.is_deleted = ?", true, true, false).
		Count(&n).Error
	return n, err
}

// publishError turns a failed check into the error returned by a publish attempt.
func publishError(check *PublishCheck) error {
	issues := make([]apperrors.Issue, len(check.Issues))
	for i, msg := range check.Issues {
		issues[i] = apperrors.Issue{Field: "course", Message: msg}
	}
	return apperrors.Validation("course cannot be published: "+strings.Join(check.Issues, "; "), issues...).
		WithDetails(check)
}
