package catalog

import (
	"context"
	"strings"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

type CourseInput struct {
	Title       string
	Description string
	Thumbnail   string
	Category    string
	Module      string
}

// CourseChanges is a partial update; nil fields are left as they are.
type CourseChanges struct {
	Title       *string
	Description *string
	Thumbnail   *string
	Category    *string
	Module      *string
	IsPublished *bool
}

type CourseFilter struct {
	Category string
	Module   string
	Search   string
	Page     int
	Limit    int
}

type CoursePage struct {
	Courses []courseModels.Course `json:"courses"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateCourse creates an unpublished course owned by the caller.
func (s *Service) CreateCourse(ctx context.Context, actor models.Principal, in CourseInput) (*courseModels.Course, error) {
	if !courseModels.IsValidCategory(in.Category) {
		return nil, apperrors.Validation("invalid category", apperrors.Issue{Field: "category", Message: "must be one of " + strings.Join(courseModels.Categories, ", ")})
	}

	c := courseModels.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		Category:    in.Category,
		Module:      strings.TrimSpace(in.Module),
		OwnerID:     actor.UserID,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, apperrors.From(err)
	}
	s.log.Info("Course created", "course_id", c.ID, "owner_id", c.OwnerID)
	return &c, nil
}

// GetCourse returns a live course. Unpublished courses are hidden from everyone but their managers.
func (s *Service) GetCourse(ctx context.Context, viewer models.Principal, id uint) (*courseModels.Course, error) {
	c, _, err := visibleCourse(s.db.WithContext(ctx), viewer, id)
	if err != nil {
		return nil, apperrors.From(err)
	}
	return c, nil
}

// ListCourses returns the published catalog.
func (s *Service) ListCourses(ctx context.Context, f CourseFilter) (*CoursePage, error) {
	page, limit := normalizePage(f.Page, f.Limit)

	q := s.db.WithContext(ctx).Model(&courseModels.Course{}).
		Where("is_published = ? AND is_active = ? AND is_deleted = ?", true, true, false)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Module != "" {
		q = q.Where("module = ?", f.Module)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperrors.From(err)
	}
	courses := []courseModels.Course{}
	if err := q.Order("published_at desc").Order("id desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, apperrors.From(err)
	}
	return &CoursePage{Courses: courses, Total: total, Page: page, Limit: limit}, nil
}

// ListManagedCourses returns the actor's own courses, or every course for administrators.
func (s *Service) ListManagedCourses(ctx context.Context, actor models.Principal) ([]courseModels.Course, error) {
	q := s.db.WithContext(ctx).Where("is_deleted = ?", false)
	if !actor.IsAdmin() {
		q = q.Where("owner_id = ?", actor.UserID)
	}
	courses := []courseModels.Course{}
	if err := q.Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, apperrors.From(err)
	}
	return courses, nil
}

// UpdateCourse applies changes. Switching IsPublished from false to true
// runs the publishing validator against the updated course first.
func (s *Service) UpdateCourse(ctx context.Context, actor models.Principal, id uint, ch CourseChanges) (*courseModels.Course, error) {
	var updated *courseModels.Course
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		c, err := managedCourse(tx, actor, id)
		if err != nil {
			return err
		}

		if ch.Title != nil {
			c.Title = strings.TrimSpace(*ch.Title)
		}
		if ch.Description != nil {
			c.Description = strings.TrimSpace(*ch.Description)
		}
		if ch.Thumbnail != nil {
			c.Thumbnail = strings.TrimSpace(*ch.Thumbnail)
		}
		if ch.Category != nil {
			if !courseModels.IsValidCategory(*ch.Category) {
				return apperrors.Validation("invalid category", apperrors.Issue{Field: "category", Message: "must be one of " + strings.Join(courseModels.Categories, ", ")})
			}
			c.Category = *ch.Category
		}
		if ch.Module != nil {
			c.Module = strings.TrimSpace(*ch.Module)
		}
		if ch.IsPublished != nil && *ch.IsPublished != c.IsPublished {
			if *ch.IsPublished {
				check, err := checkPublishable(tx, c)
				if err != nil {
					return err
				}
				if !check.IsValid {
					return publishError(check)
				}
			}
			c.SetPublished(*ch.IsPublished, s.now())
		}

		if err := tx.Save(c).Error; err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PublishCourse is UpdateCourse restricted to the publish flag.
func (s *Service) PublishCourse(ctx context.Context, actor models.Principal, id uint, published bool) (*courseModels.Course, error) {
	return s.UpdateCourse(ctx, actor, id, CourseChanges{IsPublished: &published})
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
