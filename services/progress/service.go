package progress

import (
	"context"
	"errors"
	"time"

	"coursehub/apperrors"
	"coursehub/logger"
	courseModels "coursehub/models/course"
	"coursehub/notify"

	"gorm.io/gorm"
)

// Service tracks learners through enrolled courses.
type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewService(db *gorm.DB, notifier notify.Notifier, log *logger.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		db:       db,
		notifier: notifier,
		log:      log.With("service", "progress"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	return apperrors.From(err)
}

func findProgress(tx *gorm.DB, userID, courseID, sectionID uint) (*courseModels.Progress, error) {
	var p courseModels.Progress
	err := tx.Where("user_id = ? AND course_id = ? AND section_id = ?", userID, courseID, sectionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("progress")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func progressGroup(tx *gorm.DB, userID, courseID uint) *gorm.DB {
	return tx.Model(&courseModels.Progress{}).Where("user_id = ? AND course_id = ?", userID, courseID)
}

// liveSection loads a section of the course that is neither deleted nor inactive.
func liveSection(tx *gorm.DB, courseID, sectionID uint) (*courseModels.Section, error) {
	var sec courseModels.Section
	err := tx.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_active = ?", sectionID, courseID, false, true).First(&sec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("section")
	}
	if err != nil {
		return nil, err
	}
	return &sec, nil
}
