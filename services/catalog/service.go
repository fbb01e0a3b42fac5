package catalog

import (
	"context"
	"errors"
	"time"

	"coursehub/apperrors"
	"coursehub/logger"
	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/storage/assets"

	"gorm.io/gorm"
)

// Service owns the course content hierarchy: courses, sections, resources and quizzes.
type Service struct {
	db     *gorm.DB
	assets assets.Store
	log    *logger.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, store assets.Store, log *logger.Logger) *Service {
	if store == nil {
		store = assets.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		db:     db,
		assets: store,
		log:    log.With("service", "catalog"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// inTx runs fn in a transaction. Inside fn only tx may touch the database.
func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	return apperrors.From(err)
}

func loadCourse(tx *gorm.DB, id uint, liveOnly bool) (*courseModels.Course, error) {
	var c courseModels.Course
	q := tx.Where("id = ?", id)
	if liveOnly {
		q = q.Where("is_deleted = ? AND is_active = ?", false, true)
	}
	if err := q.First(&c).Error; err != nil {
		return nil, notFound(err, "course")
	}
	return &c, nil
}

func loadSection(tx *gorm.DB, id uint, liveOnly bool) (*courseModels.Section, error) {
	var sec courseModels.Section
	q := tx.Where("id = ?", id)
	if liveOnly {
		q = q.Where("is_deleted = ? AND is_active = ?", false, true)
	}
	if err := q.First(&sec).Error; err != nil {
		return nil, notFound(err, "section")
	}
	return &sec, nil
}

func loadResource(tx *gorm.DB, id uint, liveOnly bool) (*courseModels.Resource, error) {
	var r courseModels.Resource
	q := tx.Where("id = ?", id)
	if liveOnly {
		q = q.Where("is_deleted = ? AND is_active = ?", false, true)
	}
	if err := q.First(&r).Error; err != nil {
		return nil, notFound(err, "resource")
	}
	return &r, nil
}

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return err
}

func authorize(actor models.Principal, c *courseModels.Course) error {
	if !actor.CanManage(c.OwnerID) {
		return apperrors.Forbidden("only the course owner or an administrator can modify this course")
	}
	return nil
}

// managedCourse loads a live course the actor may modify.
func managedCourse(tx *gorm.DB, actor models.Principal, courseID uint) (*courseModels.Course, error) {
	c, err := loadCourse(tx, courseID, true)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, c); err != nil {
		return nil, err
	}
	return c, nil
}

// managedSection loads a live section together with its live, actor-managed course.
func managedSection(tx *gorm.DB, actor models.Principal, sectionID uint) (*courseModels.Section, *courseModels.Course, error) {
	sec, err := loadSection(tx, sectionID, true)
	if err != nil {
		return nil, nil, err
	}
	c, err := managedCourse(tx, actor, sec.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return sec, c, nil
}

func managedResource(tx *gorm.DB, actor models.Principal, resourceID uint) (*courseModels.Resource, *courseModels.Section, error) {
	r, err := loadResource(tx, resourceID, true)
	if err != nil {
		return nil, nil, err
	}
	sec, _, err := managedSection(tx, actor, r.SectionID)
	if err != nil {
		return nil, nil, err
	}
	return r, sec, nil
}

// visibleCourse loads a live course; unpublished courses are only visible to those who manage them.
func visibleCourse(tx *gorm.DB, viewer models.Principal, courseID uint) (*courseModels.Course, bool, error) {
	c, err := loadCourse(tx, courseID, true)
	if err != nil {
		return nil, false, err
	}
	manager := viewer.CanManage(c.OwnerID)
	if !c.IsPublished && !manager {
		return nil, false, apperrors.NotFound("course")
	}
	return c, manager, nil
}

// visibleSection loads a live section of a visible course and reports whether the viewer manages it.
func visibleSection(tx *gorm.DB, viewer models.Principal, sectionID uint) (*courseModels.Section, bool, error) {
	sec, err := loadSection(tx, sectionID, true)
	if err != nil {
		return nil, false, err
	}
	_, manager, err := visibleCourse(tx, viewer, sec.CourseID)
	if err != nil {
		return nil, false, err
	}
	return sec, manager, nil
}
