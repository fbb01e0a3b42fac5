package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"
	"coursehub/notify"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressUpdate struct {
	UserID     uint
	CourseID   uint
	SectionID  uint
	Percentage float64
	TimeSpent  int   // seconds to add
	ResourceID *uint // last resource viewed
}

type CompletionInput struct {
	UserID    uint
	CourseID  uint
	SectionID uint
	Score     *float64
	UserEmail string
	UserName  string
}

type CompletionResult struct {
	Progress        courseModels.Progress     `json:"progress"`
	CourseCompleted bool                      `json:"course_completed"`
	Certificate     *courseModels.Certificate `json:"certificate,omitempty"`
	// NewlyIssued is set only on the call that issued the certificate.
	NewlyIssued bool `json:"newly_issued"`
}

// MissingPrerequisite names a section that must be completed first.
type MissingPrerequisite struct {
	SectionID uint   `json:"section_id"`
	Title     string `json:"title"`
}

const CodePrerequisitesNotMet = "PREREQUISITES_NOT_MET"

// UpdateProgress moves one section's completion, clamped to [0,100].
func (s *Service) UpdateProgress(ctx context.Context, in ProgressUpdate) (*courseModels.Progress, error) {
	if math.IsNaN(in.Percentage) {
		return nil, apperrors.Validation("invalid percentage", apperrors.Issue{Field: "percentage", Message: "must be a number"})
	}
	if in.TimeSpent < 0 {
		return nil, apperrors.Validation("invalid time spent", apperrors.Issue{Field: "time_spent", Message: "cannot be negative"})
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
		if in.ResourceID != nil {
			if err := requireSectionResource(tx, in.SectionID, *in.ResourceID); err != nil {
				return err
			}
			p.ResourceID = in.ResourceID
		}
		p.SetCompletion(in.Percentage, s.now())
		p.TimeSpent += in.TimeSpent
		return tx.Save(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MarkCompleted completes a section once its prerequisites are done. When
// that completes every required section of the course, a certificate is
// issued at most once and the learner is notified after commit.
func (s *Service) MarkCompleted(ctx context.Context, in CompletionInput) (*CompletionResult, error) {
	result := &CompletionResult{}
	var courseTitle string

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		sec, err := liveSection(tx, in.CourseID, in.SectionID)
		if err != nil {
			return err
		}
		p, err := findProgress(tx, in.UserID, in.CourseID, in.SectionID)
		if err != nil {
			return err
		}

		missing, err := missingPrerequisites(tx, in.UserID, in.CourseID, sec.RequiredPrerequisites())
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			titles := make([]string, len(missing))
			for i, m := range missing {
				titles[i] = m.Title
			}
			return apperrors.Conflict(CodePrerequisitesNotMet, "complete these sections first: "+strings.Join(titles, ", ")).
				WithDetails(missing)
		}

		now := s.now()
		p.SetCompletion(100, now)
		if in.Score != nil {
			score := *in.Score
			p.Score = &score
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		done, err := courseCompleted(tx, in.UserID, in.CourseID)
		if err != nil {
			return err
		}
		result.CourseCompleted = done
		if done {
			cert, issued, err := s.issueCertificate(tx, in.UserID, in.CourseID)
			if err != nil {
				return err
			}
			result.Certificate = cert
			result.NewlyIssued = issued
			if issued {
				var c courseModels.Course
				if err := tx.Select("title").Where("id = ?", in.CourseID).First(&c).Error; err == nil {
					courseTitle = c.Title
				}
			}
		}

		return tx.First(&result.Progress, p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if result.NewlyIssued {
		s.log.Info("Certificate issued", "user_id", in.UserID, "course_id", in.CourseID, "number", result.Certificate.CertificateNumber)
		notice := notify.CertificateNotice{
			Email:             in.UserEmail,
			Name:              in.UserName,
			CourseTitle:       courseTitle,
			CertificateNumber: result.Certificate.CertificateNumber,
			IssuedAt:          result.Certificate.IssuedAt,
		}
		if err := s.notifier.CertificateIssued(ctx, notice); err != nil {
			s.log.Warn("Failed to send certificate notice", "user_id", in.UserID, "course_id", in.CourseID, "error", err)
		}
	}
	return result, nil
}

// missingPrerequisites lists the required prerequisites still to be done.
// Prerequisites pointing at sections that are no longer live in the course
// are ignored.
func missingPrerequisites(tx *gorm.DB, userID, courseID uint, required []uint) ([]MissingPrerequisite, error) {
	if len(required) == 0 {
		return nil, nil
	}
	var live []courseModels.Section
	if err := tx.Select("id", "title").
		Where("id IN ? AND course_id = ? AND is_published = ? AND is_active = ? AND is_deleted = ?", required, courseID, true, true, false).
		Find(&live).Error; err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return nil, nil
	}
	titles := make(map[uint]string, len(live))
	ids := make([]uint, len(live))
	for i, sec := range live {
		titles[sec.ID] = sec.Title
		ids[i] = sec.ID
	}

	var completed []uint
	if err := progressGroup(tx, userID, courseID).
		Where("section_id IN ? AND completed = ?", ids, true).
		Pluck("section_id", &completed).Error; err != nil {
		return nil, err
	}
	done := make(map[uint]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	var missing []MissingPrerequisite
	for _, id := range required {
		if _, ok := titles[id]; ok && !done[id] {
			missing = append(missing, MissingPrerequisite{SectionID: id, Title: titles[id]})
			done[id] = true
		}
	}
	return missing, nil
}

// courseCompleted reports whether every required live section has a completed
// record. A course without required sections is never completed.
func courseCompleted(tx *gorm.DB, userID, courseID uint) (bool, error) {
	var required []uint
	if err := tx.Model(&courseModels.Section{}).
		Where("course_id = ? AND is_required = ? AND is_published = ? AND is_active = ? AND is_deleted = ?", courseID, true, true, true, false).
		Pluck("id", &required).Error; err != nil {
		return false, err
	}
	if len(required) == 0 {
		return false, nil
	}
	var completed int64
	if err := progressGroup(tx, userID, courseID).
		Where("section_id IN ? AND completed = ?", required, true).
		Count(&completed).Error; err != nil {
		return false, err
	}
	return int(completed) == len(required), nil
}

// issueCertificate flags the whole progress group and reports whether a new
// certificate was created. A certificate from an earlier enrollment is reused.
func (s *Service) issueCertificate(tx *gorm.DB, userID, courseID uint) (*courseModels.Certificate, bool, error) {
	var flagged int64
	if err := progressGroup(tx, userID, courseID).Where("certificate_issued = ?", true).Count(&flagged).Error; err != nil {
		return nil, false, err
	}

	var cert courseModels.Certificate
	created := false
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cert).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		cert = courseModels.Certificate{
			UserID:            userID,
			CourseID:          courseID,
			CertificateNumber: certificateNumber(),
			IssuedAt:          s.now(),
		}
		if err := tx.Create(&cert).Error; err != nil {
			return nil, false, err
		}
		created = true
	default:
		return nil, false, err
	}

	if flagged == 0 {
		if err := progressGroup(tx, userID, courseID).Updates(map[string]any{
			"certificate_issued":    true,
			"certificate_issued_at": cert.IssuedAt,
		}).Error; err != nil {
			return nil, false, err
		}
	}
	return &cert, created, nil
}

func certificateNumber() string {
	return fmt.Sprintf("CH-%s", strings.ToUpper(uuid.NewString()))
}

func requireSectionResource(tx *gorm.DB, sectionID, resourceID uint) error {
	var n int64
	if err := tx.Model(&courseModels.Resource{}).
		Where("id = ? AND section_id = ? AND is_deleted = ?", resourceID, sectionID, false).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("resource")
	}
	return nil
}
