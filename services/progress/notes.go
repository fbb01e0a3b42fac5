package progress

import (
	"context"
	"strings"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SectionRef addresses one progress record.
type SectionRef struct {
	UserID    uint
	CourseID  uint
	SectionID uint
}

const maxNoteLength = 5000

func (s *Service) AddNote(ctx context.Context, ref SectionRef, content string, position *int) (*courseModels.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxNoteLength {
		return nil, apperrors.Validation("invalid note", apperrors.Issue{Field: "content", Message: "must be between 1 and 5000 characters"})
	}
	if position != nil && *position < 0 {
		return nil, apperrors.Validation("invalid note", apperrors.Issue{Field: "position", Message: "cannot be negative"})
	}

	var note courseModels.Note
	err := s.updateRecord(ctx, ref, func(_ *gorm.DB, p *courseModels.Progress) error {
		note = courseModels.Note{
			ID:        uuid.NewString(),
			Content:   content,
			Position:  position,
			CreatedAt: s.now(),
		}
		p.Notes = append(p.Notes, note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Service) DeleteNote(ctx context.Context, ref SectionRef, noteID string) error {
	return s.updateRecord(ctx, ref, func(_ *gorm.DB, p *courseModels.Progress) error {
		for i, n := range p.Notes {
			if n.ID == noteID {
				p.Notes = append(p.Notes[:i], p.Notes[i+1:]...)
				return nil
			}
		}
		return apperrors.NotFound("note")
	})
}

// AddBookmark marks a live resource of the section. Bookmarking twice is a no-op.
func (s *Service) AddBookmark(ctx context.Context, ref SectionRef, resourceID uint) (*courseModels.Progress, error) {
	var out *courseModels.Progress
	err := s.updateRecord(ctx, ref, func(tx *gorm.DB, p *courseModels.Progress) error {
		if err := requireSectionResource(tx, ref.SectionID, resourceID); err != nil {
			return err
		}
		for _, b := range p.Bookmarks {
			if b.ResourceID == resourceID {
				out = p
				return nil
			}
		}
		p.Bookmarks = append(p.Bookmarks, courseModels.Bookmark{ResourceID: resourceID, CreatedAt: s.now()})
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RemoveBookmark(ctx context.Context, ref SectionRef, resourceID uint) error {
	return s.updateRecord(ctx, ref, func(_ *gorm.DB, p *courseModels.Progress) error {
		for i, b := range p.Bookmarks {
			if b.ResourceID == resourceID {
				p.Bookmarks = append(p.Bookmarks[:i], p.Bookmarks[i+1:]...)
				return nil
			}
		}
		return apperrors.NotFound("bookmark")
	})
}

// updateRecord loads the progress record, applies fn and saves it in one transaction.
func (s *Service) updateRecord(ctx context.Context, ref SectionRef, fn func(tx *gorm.DB, p *courseModels.Progress) error) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		p, err := findProgress(tx, ref.UserID, ref.CourseID, ref.SectionID)
		if err != nil {
			return err
		}
		if err := fn(tx, p); err != nil {
			return err
		}
		p.Touch(s.now())
		return tx.Save(p).Error
	})
}
