package catalog

import (
	"context"
	"strings"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"gorm.io/gorm"
)

type ResourceInput struct {
	Title       string
	Description string
	Type        courseModels.ResourceType
	Content     string
	Order       *int
	IsPublished bool
	IsFree      bool
	IsRequired  *bool // defaults to true
}

// ResourceChanges is a partial update. The type of a resource is fixed at creation.
type ResourceChanges struct {
	Title       *string
	Description *string
	Content     *string
	Order       *int
	IsPublished *bool
	IsFree      *bool
	IsRequired  *bool
}

// Interaction counters
const (
	InteractionView     = "view"
	InteractionLike     = "like"
	InteractionDownload = "download"
)

var interactionColumns = map[string]string{
	InteractionView:     "interactions_views",
	InteractionLike:     "interactions_likes",
	InteractionDownload: "interactions_downloads",
}

func (s *Service) CreateResource(ctx context.Context, actor models.Principal, sectionID uint, in ResourceInput) (*courseModels.Resource, error) {
	if err := validatePosition(in.Order); err != nil {
		return nil, err
	}
	if !in.Type.IsCreatable() {
		return nil, apperrors.Validation("unsupported resource type", apperrors.Issue{Field: "type", Message: "must be one of video, document, image, link, quiz"})
	}
	content, err := parseContent(in.Type, in.Content)
	if err != nil {
		return nil, err
	}

	var created courseModels.Resource
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		sec, _, err := managedSection(tx, actor, sectionID)
		if err != nil {
			return err
		}

		group := resourceSiblings(sec.ID)
		next, err := group.nextOrder(tx)
		if err != nil {
			return err
		}

		required := true
		if in.IsRequired != nil {
			required = *in.IsRequired
		}
		created = courseModels.Resource{
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
			SectionID:   sec.ID,
			Type:        in.Type,
			Content:     content.Raw(),
			OrderIndex:  next,
			IsPublished: in.IsPublished,
			IsFree:      in.IsFree,
			IsRequired:  required,
			IsActive:    true,
		}
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
	s.log.Info("Resource created", "resource_id", created.ID, "section_id", created.SectionID, "type", created.Type)
	return &created, nil
}

func (s *Service) UpdateResource(ctx context.Context, actor models.Principal, id uint, ch ResourceChanges) (*courseModels.Resource, error) {
	if err := validatePosition(ch.Order); err != nil {
		return nil, err
	}

	var r *courseModels.Resource
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		r, _, err = managedResource(tx, actor, id)
		if err != nil {
			return err
		}

		if ch.Title != nil {
			r.Title = strings.TrimSpace(*ch.Title)
		}
		if ch.Description != nil {
			r.Description = strings.TrimSpace(*ch.Description)
		}
		if ch.Content != nil {
			content, err := parseContent(r.Type, *ch.Content)
			if err != nil {
				return err
			}
			r.Content = content.Raw()
		}
		if ch.IsPublished != nil {
			r.IsPublished = *ch.IsPublished
		}
		if ch.IsFree != nil {
			r.IsFree = *ch.IsFree
		}
		if ch.IsRequired != nil {
			r.IsRequired = *ch.IsRequired
		}
		if err := tx.Save(r).Error; err != nil {
			return err
		}

		if ch.Order != nil && *ch.Order != r.OrderIndex {
			if err := resourceSiblings(r.SectionID).moveTo(tx, r.ID, *ch.Order); err != nil {
				return err
			}
			return tx.First(r, r.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetResource returns a live resource. Learners only see published resources of published sections.
func (s *Service) GetResource(ctx context.Context, viewer models.Principal, id uint) (*courseModels.Resource, error) {
	db := s.db.WithContext(ctx)
	r, err := loadResource(db, id, true)
	if err != nil {
		return nil, apperrors.From(err)
	}
	sec, manager, err := visibleSection(db, viewer, r.SectionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if !manager && (!sec.IsPublished || !r.IsPublished) {
		return nil, apperrors.NotFound("resource")
	}
	return r, nil
}

func (s *Service) ListResources(ctx context.Context, viewer models.Principal, sectionID uint) ([]courseModels.Resource, error) {
	db := s.db.WithContext(ctx)
	sec, manager, err := visibleSection(db, viewer, sectionID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if !manager && !sec.IsPublished {
		return nil, apperrors.NotFound("section")
	}
	resources, err := liveResources(db, []uint{sec.ID}, !manager)
	if err != nil {
		return nil, apperrors.From(err)
	}
	return resources, nil
}

func (s *Service) ReorderResources(ctx context.Context, actor models.Principal, sectionID uint, assignments []Assignment) ([]courseModels.Resource, error) {
	var resources []courseModels.Resource
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, _, err := managedSection(tx, actor, sectionID); err != nil {
			return err
		}
		if err := resourceSiblings(sectionID).reorder(tx, assignments); err != nil {
			return err
		}
		var err error
		resources, err = liveResources(tx, []uint{sectionID}, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// RecordInteraction bumps one engagement counter of a resource the viewer can see.
func (s *Service) RecordInteraction(ctx context.Context, viewer models.Principal, resourceID uint, kind string) (*courseModels.Resource, error) {
	column, ok := interactionColumns[kind]
	if !ok {
		return nil, apperrors.Validation("unknown interaction", apperrors.Issue{Field: "kind", Message: "must be one of view, like, download"})
	}
	if _, err := s.GetResource(ctx, viewer, resourceID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&courseModels.Resource{}).
		Where("id = ? AND is_deleted = ? AND is_active = ?", resourceID, false, true).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return nil, apperrors.From(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("resource")
	}
	r, err := loadResource(db, resourceID, true)
	if err != nil {
		return nil, apperrors.From(err)
	}
	return r, nil
}

// liveResources returns the live resources of the given sections ordered by section then position.
func liveResources(tx *gorm.DB, sectionIDs []uint, publishedOnly bool) ([]courseModels.Resource, error) {
	resources := []courseModels.Resource{}
	if len(sectionIDs) == 0 {
		return resources, nil
	}
	q := tx.Where("section_id IN ? AND is_deleted = ? AND is_active = ?", sectionIDs, false, true)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	err := q.Order("section_id asc").Order("order_index asc").Find(&resources).Error
	return resources, err
}

func parseContent(t courseModels.ResourceType, raw string) (courseModels.Content, error) {
	content, err := courseModels.ParseContent(t, raw)
	if err != nil {
		return nil, apperrors.Validation("invalid content", apperrors.Issue{Field: "content", Message: err.Error()})
	}
	return content, nil
}
