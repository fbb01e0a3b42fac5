package catalog

import (
	"context"
	"fmt"
	"strings"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SectionInput struct {
	Title         string
	Description   string
	Order         *int // explicit position; appended when nil
	Duration      int
	IsFree        bool
	IsRequired    *bool // defaults to true
	IsPublished   bool
	Prerequisites []courseModels.Prerequisite
}

type SectionChanges struct {
	Title         *string
	Description   *string
	Order         *int
	Duration      *int
	IsFree        *bool
	IsRequired    *bool
	IsPublished   *bool
	Prerequisites *[]courseModels.Prerequisite
}

func (s *Service) CreateSection(ctx context.Context, actor models.Principal, courseID uint, in SectionInput) (*courseModels.Section, error) {
	if err := validatePosition(in.Order); err != nil {
		return nil, err
	}

	var created courseModels.Section
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		c, err := managedCourse(tx, actor, courseID)
		if err != nil {
			return err
		}
		if err := validatePrerequisites(tx, c.ID, 0, in.Prerequisites); err != nil {
			return err
		}

		group := sectionSiblings(c.ID)
		next, err := group.nextOrder(tx)
		if err != nil {
			return err
		}

		required := true
		if in.IsRequired != nil {
			required = *in.IsRequired
		}
		created = courseModels.Section{
			Title:         strings.TrimSpace(in.Title),
			Description:   strings.TrimSpace(in.Description),
			CourseID:      c.ID,
			OrderIndex:    next,
			Duration:      in.Duration,
			IsFree:        in.IsFree,
			IsRequired:    required,
			Prerequisites: prerequisiteList(in.Prerequisites),
			IsActive:      true,
		}
		created.SetPublished(in.IsPublished, s.now())
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		if in.Order != nil && *in.Order < next {
			if err := group.moveTo(tx, created.ID, *in.Order); err != nil {
				return err
			}
			return tx.First(&created, created.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Section created", "section_id", created.ID, "course_id", created.CourseID, "order", created.OrderIndex)
	return &created, nil
}

func (s *Service) UpdateSection(ctx context.Context, actor models.Principal, id uint, ch SectionChanges) (*courseModels.Section, error) {
	if err := validatePosition(ch.Order); err != nil {
		return nil, err
	}

	var sec *courseModels.Section
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		sec, _, err = managedSection(tx, actor, id)
		if err != nil {
			return err
		}

		if ch.Title != nil {
			sec.Title = strings.TrimSpace(*ch.Title)
		}
		if ch.Description != nil {
			sec.Description = strings.TrimSpace(*ch.Description)
		}
		if ch.Duration != nil {
			sec.Duration = *ch.Duration
		}
		if ch.IsFree != nil {
			sec.IsFree = *ch.IsFree
		}
		if ch.IsRequired != nil {
			sec.IsRequired = *ch.IsRequired
		}
		if ch.IsPublished != nil {
			sec.SetPublished(*ch.IsPublished, s.now())
		}
		if ch.Prerequisites != nil {
			if err := validatePrerequisites(tx, sec.CourseID, sec.ID, *ch.Prerequisites); err != nil {
				return err
			}
			sec.Prerequisites = prerequisiteList(*ch.Prerequisites)
		}
		if err := tx.Save(sec).Error; err != nil {
			return err
		}

		if ch.Order != nil && *ch.Order != sec.OrderIndex {
			if err := sectionSiblings(sec.CourseID).moveTo(tx, sec.ID, *ch.Order); err != nil {
				return err
			}
			return tx.First(sec, sec.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sec, nil
}

// GetSection returns a live section of a visible course. Learners only see published sections.
func (s *Service) GetSection(ctx context.Context, viewer models.Principal, id uint) (*courseModels.Section, error) {
	sec, manager, err := visibleSection(s.db.WithContext(ctx), viewer, id)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if !manager && !sec.IsPublished {
		return nil, apperrors.NotFound("section")
	}
	return sec, nil
}

// ListSections returns the live sections of a course in order.
func (s *Service) ListSections(ctx context.Context, viewer models.Principal, courseID uint) ([]courseModels.Section, error) {
	db := s.db.WithContext(ctx)
	_, manager, err := visibleCourse(db, viewer, courseID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	sections, err := liveSections(db, courseID, !manager)
	if err != nil {
		return nil, apperrors.From(err)
	}
	return sections, nil
}

// ReorderSections moves the given sections and renumbers the rest of the course densely.
func (s *Service) ReorderSections(ctx context.Context, actor models.Principal, courseID uint, assignments []Assignment) ([]courseModels.Section, error) {
	var sections []courseModels.Section
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := managedCourse(tx, actor, courseID); err != nil {
			return err
		}
		if err := sectionSiblings(courseID).reorder(tx, assignments); err != nil {
			return err
		}
		var err error
		sections, err = liveSections(tx, courseID, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func liveSections(tx *gorm.DB, courseID uint, publishedOnly bool) ([]courseModels.Section, error) {
	q := tx.Where("course_id = ? AND is_deleted = ? AND is_active = ?", courseID, false, true)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	sections := []courseModels.Section{}
	err := q.Order("order_index asc").Find(&sections).Error
	return sections, err
}

func validatePosition(order *int) error {
	if order != nil && *order < 1 {
		return apperrors.Validation("order must be at least 1", apperrors.Issue{Field: "order", Message: "must be at least 1"})
	}
	return nil
}

// validatePrerequisites requires every prerequisite to be another live section of the same course.
func validatePrerequisites(tx *gorm.DB, courseID, selfID uint, prereqs []courseModels.Prerequisite) error {
	if len(prereqs) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(prereqs))
	seen := make(map[uint]bool, len(prereqs))
	for _, p := range prereqs {
		switch {
		case p.SectionID == 0:
			return apperrors.Validation("invalid prerequisite", apperrors.Issue{Field: "prerequisites", Message: "section_id is required"})
		case p.SectionID == selfID:
			return apperrors.Validation("invalid prerequisite", apperrors.Issue{Field: "prerequisites", Message: "a section cannot require itself"})
		case seen[p.SectionID]:
			return apperrors.Validation("invalid prerequisite", apperrors.Issue{Field: "prerequisites", Message: fmt.Sprintf("section %d is listed twice", p.SectionID)})
		}
		seen[p.SectionID] = true
		ids = append(ids, p.SectionID)
	}

	var found int64
	if err := tx.Model(&courseModels.Section{}).
		Where("id IN ? AND course_id = ? AND is_deleted = ?", ids, courseID, false).
		Count(&found).Error; err != nil {
		return err
	}
	if int(found) != len(ids) {
		return apperrors.Validation("invalid prerequisite", apperrors.Issue{Field: "prerequisites", Message: "prerequisites must be sections of the same course"})
	}
	return nil
}

func prerequisiteList(prereqs []courseModels.Prerequisite) datatypes.JSONSlice[courseModels.Prerequisite] {
	if prereqs == nil {
		return datatypes.JSONSlice[courseModels.Prerequisite]{}
	}
	return datatypes.JSONSlice[courseModels.Prerequisite](prereqs)
}
