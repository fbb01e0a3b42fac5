package catalog

import (
	"context"
	"fmt"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

// DeletionStats counts what a hard delete removed. Failures counts child
// steps that failed and were skipped.
type DeletionStats struct {
	Sections        int `json:"sections"`
	Resources       int `json:"resources"`
	Quizzes         int `json:"quizzes"`
	AssetsAttempted int `json:"assets_attempted"`
	AssetsDeleted   int `json:"assets_deleted"`
	ProgressRecords int `json:"progress_records"`
	Failures        int `json:"failures"`
}

func (d *DeletionStats) add(o DeletionStats) {
	d.Sections += o.Sections
	d.Resources += o.Resources
	d.Quizzes += o.Quizzes
	d.AssetsAttempted += o.AssetsAttempted
	d.AssetsDeleted += o.AssetsDeleted
	d.ProgressRecords += o.ProgressRecords
	d.Failures += o.Failures
}

// DeleteCourse soft-deletes the course, or removes it with every descendant when hard is set.
func (s *Service) DeleteCourse(ctx context.Context, actor models.Principal, id uint, hard bool) (*DeletionStats, error) {
	db := s.db.WithContext(ctx)
	c, err := loadCourse(db, id, !hard)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if err := authorize(actor, c); err != nil {
		return nil, err
	}

	if !hard {
		c.MarkDeleted(s.now())
		if err := db.Save(c).Error; err != nil {
			return nil, apperrors.From(err)
		}
		s.log.Info("Course soft-deleted", "course_id", c.ID)
		return &DeletionStats{}, nil
	}

	stats, err := s.CascadeDeleteCourse(ctx, c)
	if err != nil {
		return &stats, apperrors.From(err)
	}
	return &stats, nil
}

// DeleteSection soft-deletes the section with its resources, or hard-deletes
// the subtree. Either way the remaining sections are renumbered.
func (s *Service) DeleteSection(ctx context.Context, actor models.Principal, id uint, hard bool) (*DeletionStats, error) {
	db := s.db.WithContext(ctx)
	sec, err := loadSection(db, id, !hard)
	if err != nil {
		return nil, apperrors.From(err)
	}
	c, err := loadCourse(db, sec.CourseID, false)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if err := authorize(actor, c); err != nil {
		return nil, err
	}

	if !hard {
		now := s.now()
		err := s.inTx(ctx, func(tx *gorm.DB) error {
			sec.MarkDeleted(now)
			if err := tx.Save(sec).Error; err != nil {
				return err
			}
			if err := tx.Model(&courseModels.Resource{}).
				Where("section_id = ? AND is_deleted = ?", sec.ID, false).
				Updates(map[string]any{"is_deleted": true, "is_active": false, "deleted_at": now}).Error; err != nil {
				return err
			}
			return sectionSiblings(sec.CourseID).compact(tx)
		})
		if err != nil {
			return nil, err
		}
		s.log.Info("Section soft-deleted", "section_id", sec.ID, "course_id", sec.CourseID)
		return &DeletionStats{}, nil
	}

	stats, err := s.CascadeDeleteSection(ctx, sec)
	if err != nil {
		return &stats, apperrors.From(err)
	}
	if err := s.inTx(ctx, func(tx *gorm.DB) error { return sectionSiblings(sec.CourseID).compact(tx) }); err != nil {
		s.log.Warn("Failed to renumber sections after delete", "course_id", sec.CourseID, "error", err)
		stats.Failures++
	}
	return &stats, nil
}

// DeleteResource soft- or hard-deletes a resource and renumbers its siblings.
func (s *Service) DeleteResource(ctx context.Context, actor models.Principal, id uint, hard bool) (*DeletionStats, error) {
	db := s.db.WithContext(ctx)
	r, err := loadResource(db, id, !hard)
	if err != nil {
		return nil, apperrors.From(err)
	}
	sec, err := loadSection(db, r.SectionID, false)
	if err != nil {
		return nil, apperrors.From(err)
	}
	c, err := loadCourse(db, sec.CourseID, false)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if err := authorize(actor, c); err != nil {
		return nil, err
	}

	if !hard {
		err := s.inTx(ctx, func(tx *gorm.DB) error {
			r.MarkDeleted(s.now())
			if err := tx.Save(r).Error; err != nil {
				return err
			}
			return resourceSiblings(r.SectionID).compact(tx)
		})
		if err != nil {
			return nil, err
		}
		s.log.Info("Resource soft-deleted", "resource_id", r.ID, "section_id", r.SectionID)
		return &DeletionStats{}, nil
	}

	stats, err := s.CascadeDeleteResource(ctx, r)
	if err != nil {
		return &stats, apperrors.From(err)
	}
	if err := s.inTx(ctx, func(tx *gorm.DB) error { return resourceSiblings(r.SectionID).compact(tx) }); err != nil {
		s.log.Warn("Failed to renumber resources after delete", "section_id", r.SectionID, "error", err)
		stats.Failures++
	}
	return &stats, nil
}

// CascadeDeleteResource removes a resource, its quizzes and its hosted asset.
// Quiz and asset failures are logged and counted; only failing to remove the
// resource row itself is returned.
func (s *Service) CascadeDeleteResource(ctx context.Context, r *courseModels.Resource) (DeletionStats, error) {
	var stats DeletionStats
	db := s.db.WithContext(ctx)
	log := s.log.With("resource_id", r.ID)

	if r.Type == courseModels.ResourceQuiz {
		res := db.Where("resource_id = ?", r.ID).Delete(&courseModels.Quiz{})
		if res.Error != nil {
			log.Warn("Failed to delete quizzes", "error", res.Error)
			stats.Failures++
		} else {
			stats.Quizzes += int(res.RowsAffected)
		}
	}

	if assetURL, ok := r.AssetURL(); ok && s.assets.Owns(assetURL) {
		stats.AssetsAttempted++
		if err := s.assets.Delete(ctx, assetURL); err != nil {
			log.Warn("Failed to delete hosted asset", "url", assetURL, "error", err)
			stats.Failures++
		} else {
			stats.AssetsDeleted++
		}
	}

	res := db.Delete(&courseModels.Resource{}, r.ID)
	if res.Error != nil {
		return stats, fmt.Errorf("delete resource %d: %w", r.ID, res.Error)
	}
	stats.Resources += int(res.RowsAffected)
	log.Info("Resource deleted", "quizzes", stats.Quizzes, "assets_deleted", stats.AssetsDeleted)
	return stats, nil
}

// CascadeDeleteSection removes every resource of the section, the section's
// progress records and the section itself. A failing resource is skipped.
func (s *Service) CascadeDeleteSection(ctx context.Context, sec *courseModels.Section) (DeletionStats, error) {
	var stats DeletionStats
	db := s.db.WithContext(ctx)
	log := s.log.With("section_id", sec.ID)

	var resources []courseModels.Resource
	if err := db.Where("section_id = ?", sec.ID).Order("order_index asc").Find(&resources).Error; err != nil {
		return stats, fmt.Errorf("list resources of section %d: %w", sec.ID, err)
	}
	for i := range resources {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		sub, err := s.CascadeDeleteResource(ctx, &resources[i])
		stats.add(sub)
		if err != nil {
			log.Warn("Failed to delete resource", "resource_id", resources[i].ID, "error", err)
			stats.Failures++
		}
	}

	res := db.Where("section_id = ?", sec.ID).Delete(&courseModels.Progress{})
	if res.Error != nil {
		log.Warn("Failed to delete progress records", "error", res.Error)
		stats.Failures++
	} else {
		stats.ProgressRecords += int(res.RowsAffected)
	}

	res = db.Delete(&courseModels.Section{}, sec.ID)
	if res.Error != nil {
		return stats, fmt.Errorf("delete section %d: %w", sec.ID, res.Error)
	}
	stats.Sections += int(res.RowsAffected)
	log.Info("Section deleted", "resources", stats.Resources, "failures", stats.Failures)
	return stats, nil
}

// CascadeDeleteCourse removes every section of the course, the remaining
// learner records and the course itself. A failing section is skipped.
func (s *Service) CascadeDeleteCourse(ctx context.Context, c *courseModels.Course) (DeletionStats, error) {
	var stats DeletionStats
	db := s.db.WithContext(ctx)
	log := s.log.With("course_id", c.ID)

	var sections []courseModels.Section
	if err := db.Where("course_id = ?", c.ID).Order("order_index asc").Find(&sections).Error; err != nil {
		return stats, fmt.Errorf("list sections of course %d: %w", c.ID, err)
	}
	for i := range sections {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		sub, err := s.CascadeDeleteSection(ctx, &sections[i])
		stats.add(sub)
		if err != nil {
			log.Warn("Failed to delete section", "section_id", sections[i].ID, "error", err)
			stats.Failures++
		}
	}

	res := db.Where("course_id = ?", c.ID).Delete(&courseModels.Progress{})
	if res.Error != nil {
		log.Warn("Failed to delete progress records", "error", res.Error)
		stats.Failures++
	} else {
		stats.ProgressRecords += int(res.RowsAffected)
	}

	if err := db.Where("course_id = ?", c.ID).Delete(&courseModels.Certificate{}).Error; err != nil {
		log.Warn("Failed to delete certificates", "error", err)
		stats.Failures++
	}

	if err := db.Delete(&courseModels.Course{}, c.ID).Error; err != nil {
		return stats, fmt.Errorf("delete course %d: %w", c.ID, err)
	}
	log.Info("Course deleted",
		"sections", stats.Sections,
		"resources", stats.Resources,
		"quizzes", stats.Quizzes,
		"assets_deleted", stats.AssetsDeleted,
		"failures", stats.Failures,
	)
	return stats, nil
}
