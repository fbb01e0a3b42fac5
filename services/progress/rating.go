package progress

import (
	"context"
	"fmt"
	"math"
	"strings"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

type RatingInput struct {
	UserID    uint
	CourseID  uint
	SectionID uint
	Rating    int
	Comment   string
}

// RateContent stores the learner's rating of a section and refreshes the
// course aggregate in the same transaction.
func (s *Service) RateContent(ctx context.Context, in RatingInput) (*courseModels.Progress, error) {
	if !courseModels.IsValidRating(in.Rating) {
		return nil, apperrors.Validation("invalid rating", apperrors.Issue{
			Field:   "rating",
			Message: fmt.Sprintf("must be between %d and %d", courseModels.MinRating, courseModels.MaxRating),
		})
	}

	var p *courseModels.Progress
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := liveSection(tx, in.CourseID, in.SectionID); err != nil {
			return err
		}
		var err error
		p, err = findProgress(tx, in.UserID, in.CourseID, in.SectionID)
		if err != nil {
			return err
		}
		p.SetRating(in.Rating, strings.TrimSpace(in.Comment), s.now())
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		return recomputeCourseRating(tx, in.CourseID)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RecomputeCourseRating rebuilds the course aggregate from every stored rating.
func (s *Service) RecomputeCourseRating(ctx context.Context, courseID uint) (*courseModels.CourseRating, error) {
	var rating courseModels.CourseRating
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := recomputeCourseRating(tx, courseID); err != nil {
			return err
		}
		var c courseModels.Course
		if err := tx.Select("rating_average", "rating_count").Where("id = ?", courseID).First(&c).Error; err != nil {
			return err
		}
		rating = c.Rating
		return nil
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NotFound("course")
		}
		return nil, err
	}
	return &rating, nil
}

// recomputeCourseRating sets the course average (one decimal) and count
// over the ratings of every progress record. No ratings means 0 and 0.
func recomputeCourseRating(tx *gorm.DB, courseID uint) error {
	var agg struct {
		RatingAverage *float64
		RatingCount   int64
	}
	if err := tx.Model(&courseModels.Progress{}).
		Select("AVG(rating_value) AS rating_average, COUNT(rating_value) AS rating_count").
		Where("course_id = ? AND rating_value IS NOT NULL", courseID).
		Scan(&agg).Error; err != nil {
		return err
	}

	average := 0.0
	if agg.RatingAverage != nil && agg.RatingCount > 0 {
		average = math.Round(*agg.RatingAverage*10) / 10
	}
	return tx.Model(&courseModels.Course{}).Where("id = ?", courseID).Updates(map[string]any{
		"rating_average": average,
		"rating_count":   agg.RatingCount,
	}).Error
}
