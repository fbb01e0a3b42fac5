package progress

import (
	"context"
	"errors"
	"math"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// CourseProgress summarizes one learner's progress group.
type CourseProgress struct {
	CourseID          uint                    `json:"course_id"`
	TotalSections     int                     `json:"total_sections"`
	CompletedSections int                     `json:"completed_sections"`
	Percentage        float64                 `json:"percentage"`
	TimeSpent         int                     `json:"time_spent"`
	CertificateIssued bool                    `json:"certificate_issued"`
	Sections          []courseModels.Progress `json:"sections"`
}

// EnrollmentSummary is one row of a learner's enrollment list.
type EnrollmentSummary struct {
	Course   courseModels.Course `json:"course"`
	Progress CourseProgress      `json:"progress"`
}

// CourseStats is the instructor dashboard for one course. Learner figures
// cover current enrollments only.
type CourseStats struct {
	CourseID             uint    `json:"course_id"`
	Enrollments          int     `json:"enrollments"`
	ActiveLearners       int64   `json:"active_learners"`
	EnrolledThisMonth    int64   `json:"enrolled_this_month"`
	Completions          int64   `json:"completions"`
	CompletionsThisMonth int64   `json:"completions_this_month"`
	CompletionRate       float64 `json:"completion_rate"`
	RatingAverage        float64 `json:"rating_average"`
	RatingCount          int     `json:"rating_count"`
}

func (s *Service) CourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	var rows []courseModels.Progress
	if err := s.db.WithContext(ctx).
		Table("progress").
		Select("progress.*").
		Joins("JOIN sections ON sections.id = progress.section_id").
		Where("progress.user_id = ? AND progress.course_id = ?", userID, courseID).
		Order("sections.order_index asc").
		Find(&rows).Error; err != nil {
		return nil, apperrors.From(err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("enrollment")
	}
	summary := summarize(courseID, rows)
	return &summary, nil
}

// ListEnrollments returns every course the learner is enrolled in, most recent first.
func (s *Service) ListEnrollments(ctx context.Context, userID uint) ([]EnrollmentSummary, error) {
	db := s.db.WithContext(ctx)
	var rows []courseModels.Progress
	if err := db.Where("user_id = ?", userID).Order("enrolled_at desc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, apperrors.From(err)
	}

	var order []uint
	byCourse := make(map[uint][]courseModels.Progress)
	for _, p := range rows {
		if _, seen := byCourse[p.CourseID]; !seen {
			order = append(order, p.CourseID)
		}
		byCourse[p.CourseID] = append(byCourse[p.CourseID], p)
	}

	out := make([]EnrollmentSummary, 0, len(order))
	if len(order) == 0 {
		return out, nil
	}
	var courses []courseModels.Course
	if err := db.Where("id IN ?", order).Find(&courses).Error; err != nil {
		return nil, apperrors.From(err)
	}
	byID := make(map[uint]courseModels.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	for _, id := range order {
		c, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, EnrollmentSummary{Course: c, Progress: summarize(id, byCourse[id])})
	}
	return out, nil
}

func (s *Service) ListCertificates(ctx context.Context, userID uint) ([]courseModels.Certificate, error) {
	certs := []courseModels.Certificate{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("issued_at desc").Find(&certs).Error; err != nil {
		return nil, apperrors.From(err)
	}
	return certs, nil
}

// Stats reports enrollment and completion figures for a course the actor manages.
func (s *Service) Stats(ctx context.Context, actor models.Principal, courseID uint) (*CourseStats, error) {
	db := s.db.WithContext(ctx)
	var c courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("course")
		}
		return nil, apperrors.From(err)
	}
	if !actor.CanManage(c.OwnerID) {
		return nil, apperrors.Forbidden("only the course owner or an administrator can view course statistics")
	}

	monthStart := now.With(s.now()).BeginningOfMonth()
	stats := &CourseStats{
		CourseID:      c.ID,
		Enrollments:   c.EnrollmentCount,
		RatingAverage: c.Rating.Average,
		RatingCount:   c.Rating.Count,
	}

	if err := db.Model(&courseModels.Progress{}).Where("course_id = ?", courseID).
		Distinct("user_id").Count(&stats.ActiveLearners).Error; err != nil {
		return nil, apperrors.From(err)
	}
	if err := db.Model(&courseModels.Progress{}).
		Where("course_id = ? AND enrolled_at >= ?", courseID, monthStart).
		Distinct("user_id").Count(&stats.EnrolledThisMonth).Error; err != nil {
		return nil, apperrors.From(err)
	}
	if err := db.Model(&courseModels.Progress{}).
		Where("course_id = ? AND certificate_issued = ?", courseID, true).
		Distinct("user_id").Count(&stats.Completions).Error; err != nil {
		return nil, apperrors.From(err)
	}
	if err := db.Model(&courseModels.Progress{}).
		Where("course_id = ? AND certificate_issued = ? AND certificate_issued_at >= ?", courseID, true, monthStart).
		Distinct("user_id").Count(&stats.CompletionsThisMonth).Error; err != nil {
		return nil, apperrors.From(err)
	}
	if stats.ActiveLearners > 0 {
		stats.CompletionRate = math.Round(float64(stats.Completions)/float64(stats.ActiveLearners)*1000) / 10
	}
	return stats, nil
}

func summarize(courseID uint, rows []courseModels.Progress) CourseProgress {
	out := CourseProgress{CourseID: courseID, TotalSections: len(rows), Sections: rows}
	var total float64
	for _, p := range rows {
		total += p.CompletionPercentage
		out.TimeSpent += p.TimeSpent
		if p.Completed {
			out.CompletedSections++
		}
		if p.CertificateIssued {
			out.CertificateIssued = true
		}
	}
	if len(rows) > 0 {
		out.Percentage = math.Round(total/float64(len(rows))*10) / 10
	}
	return out
}
