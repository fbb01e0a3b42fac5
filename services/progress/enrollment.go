package progress

import (
	"context"
	"errors"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

// Enrollment is the progress group created for one learner in one course.
type Enrollment struct {
	CourseID uint                    `json:"course_id"`
	UserID   uint                    `json:"user_id"`
	Progress []courseModels.Progress `json:"progress"`
}

// Enroll creates a not-started progress record for every published section
// of the course and bumps its enrollment count, all or nothing.
func (s *Service) Enroll(ctx context.Context, userID, courseID uint) (*Enrollment, error) {
	var rows []courseModels.Progress
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var c courseModels.Course
		if err := tx.Where("id = ?", courseID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("course")
			}
			return err
		}
		if !c.IsEnrollable() {
			return apperrors.NotFound("course")
		}

		var existing int64
		if err := progressGroup(tx, userID, courseID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("ALREADY_ENROLLED", "already enrolled in this course")
		}

		var sections []courseModels.Section
		if err := tx.Where("course_id = ? AND is_published = ? AND is_active = ? AND is_deleted = ?", courseID, true, true, false).
			Order("order_index asc").Find(&sections).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return apperrors.Validation("course has no published sections")
		}

		now := s.now()
		rows = make([]courseModels.Progress, len(sections))
		for i, sec := range sections {
			rows[i] = courseModels.NewProgress(userID, courseID, sec.ID, now)
		}
		if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
			return err
		}
		return tx.Model(&courseModels.Course{}).Where("id = ?", courseID).
			UpdateColumn("enrollment_count", gorm.Expr("enrollment_count + ?", 1)).Error
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			return nil, apperrors.Conflict("ALREADY_ENROLLED", "already enrolled in this course")
		}
		return nil, err
	}
	s.log.Info("Learner enrolled", "user_id", userID, "course_id", courseID, "sections", len(rows))
	return &Enrollment{CourseID: courseID, UserID: userID, Progress: rows}, nil
}

// Unenroll removes the learner's progress group, decrements the enrollment
// count and recomputes the course rating without their ratings.
func (s *Service) Unenroll(ctx context.Context, userID, courseID uint) error {
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&courseModels.Progress{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("enrollment")
		}
		if err := tx.Model(&courseModels.Course{}).Where("id = ?", courseID).
			UpdateColumn("enrollment_count", gorm.Expr("CASE WHEN enrollment_count > 0 THEN enrollment_count - 1 ELSE 0 END")).Error; err != nil {
			return err
		}
		return recomputeCourseRating(tx, courseID)
	})
	if err != nil {
		return err
	}
	s.log.Info("Learner unenrolled", "user_id", userID, "course_id", courseID)
	return nil
}
