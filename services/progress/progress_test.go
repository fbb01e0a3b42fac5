package progress

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"coursehub/apperrors"
	"coursehub/logger"
	"coursehub/models"
	courseModels "coursehub/models/course"
	"coursehub/notify"
	"coursehub/services/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	ownerID   uint = 10
	learnerID uint = 20
	otherID   uint = 21
)

type recordingNotifier struct {
	mu      sync.Mutex
	err     error
	notices []notify.CertificateNotice
}

func (r *recordingNotifier) CertificateIssued(_ context.Context, n notify.CertificateNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return r.err
}

func newTestService(t *testing.T, n notify.Notifier) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return NewService(db, n, logger.NewNop()), db
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) *apperrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr), "expected *apperrors.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind, appErr.Error())
	return appErr
}

type courseFixture struct {
	course   *courseModels.Course
	sections []*courseModels.Section
}

// seedCourse creates a published course with n published, required sections.
func seedCourse(t *testing.T, db *gorm.DB, n int) courseFixture {
	t.Helper()
	f := courseFixture{course: testutil.SeedCourse(t, db, ownerID, testutil.PublishedCourse)}
	for i := 1; i <= n; i++ {
		f.sections = append(f.sections, testutil.SeedSection(t, db, f.course.ID, i, testutil.PublishedSection))
	}
	return f
}

func reloadCourse(t *testing.T, db *gorm.DB, id uint) courseModels.Course {
	t.Helper()
	var c courseModels.Course
	require.NoError(t, db.First(&c, id).Error)
	return c
}

func TestEnroll_CreatesOneRecordPerPublishedSection(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 2)
	testutil.SeedSection(t, db, f.course.ID, 3) // draft
	testutil.SeedSection(t, db, f.course.ID, 4, testutil.PublishedSection, func(s *courseModels.Section) { s.IsDeleted = true })

	e, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)
	require.Len(t, e.Progress, 2)
	assert.Equal(t, f.sections[0].ID, e.Progress[0].SectionID)
	assert.Equal(t, f.sections[1].ID, e.Progress[1].SectionID)
	for _, p := range e.Progress {
		assert.False(t, p.Completed)
		assert.Zero(t, p.CompletionPercentage)
		assert.Nil(t, p.StartedAt)
	}
	assert.Equal(t, 1, reloadCourse(t, db, f.course.ID).EnrollmentCount)

	_, err = svc.Enroll(ctx, learnerID, f.course.ID)
	appErr := requireKind(t, err, apperrors.KindConflict)
	assert.Equal(t, "ALREADY_ENROLLED", appErr.Code)
	assert.Equal(t, 1, reloadCourse(t, db, f.course.ID).EnrollmentCount, "a rejected enrollment changes nothing")

	var rows int64
	require.NoError(t, db.Model(&courseModels.Progress{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}

func TestEnroll_Preconditions(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	draft := testutil.SeedCourse(t, db, ownerID)
	testutil.SeedSection(t, db, draft.ID, 1, testutil.PublishedSection)
	_, err := svc.Enroll(ctx, learnerID, draft.ID)
	requireKind(t, err, apperrors.KindNotFound)

	deleted := testutil.SeedCourse(t, db, ownerID, testutil.PublishedCourse, func(c *courseModels.Course) { c.IsDeleted = true })
	_, err = svc.Enroll(ctx, learnerID, deleted.ID)
	requireKind(t, err, apperrors.KindNotFound)

	_, err = svc.Enroll(ctx, learnerID, 9999)
	requireKind(t, err, apperrors.KindNotFound)

	empty := testutil.SeedCourse(t, db, ownerID, testutil.PublishedCourse)
	testutil.SeedSection(t, db, empty.ID, 1)
	_, err = svc.Enroll(ctx, learnerID, empty.ID)
	requireKind(t, err, apperrors.KindValidation)
	assert.Zero(t, reloadCourse(t, db, empty.ID).EnrollmentCount)
}

func TestUpdateProgress_RoundTrip(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 1)
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)
	ref := ProgressUpdate{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID}

	in := ref
	in.Percentage, in.TimeSpent = 40, 30
	p, err := svc.UpdateProgress(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 40.0, p.CompletionPercentage)
	assert.NotNil(t, p.StartedAt)
	assert.False(t, p.Completed)

	in.Percentage = 130
	p, err = svc.UpdateProgress(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.CompletionPercentage)
	assert.True(t, p.Completed)
	assert.NotNil(t, p.CompletedAt)

	in.Percentage = 50
	p, err = svc.UpdateProgress(ctx, in)
	require.NoError(t, err)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedAt)
	assert.Equal(t, 90, p.TimeSpent)

	in.TimeSpent = -1
	_, err = svc.UpdateProgress(ctx, in)
	requireKind(t, err, apperrors.KindValidation)

	in.TimeSpent, in.Percentage = 0, math.NaN()
	_, err = svc.UpdateProgress(ctx, in)
	requireKind(t, err, apperrors.KindValidation)

	other := ref
	other.UserID = otherID
	_, err = svc.UpdateProgress(ctx, other)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestUpdateProgress_TracksResource(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 2)
	r := testutil.SeedResource(t, db, f.sections[0].ID, 1, courseModels.ResourceLink, "https://example.com")
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)

	p, err := svc.UpdateProgress(ctx, ProgressUpdate{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID, Percentage: 10, ResourceID: &r.ID})
	require.NoError(t, err)
	require.NotNil(t, p.ResourceID)
	assert.Equal(t, r.ID, *p.ResourceID)

	_, err = svc.UpdateProgress(ctx, ProgressUpdate{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[1].ID, Percentage: 10, ResourceID: &r.ID})
	requireKind(t, err, apperrors.KindNotFound)
}

func TestMarkCompleted_RejectsUnmetPrerequisites(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 1)
	intro := f.sections[0]
	advanced := testutil.SeedSection(t, db, f.course.ID, 2, testutil.PublishedSection, func(s *courseModels.Section) {
		s.Title = "Advanced"
		s.Prerequisites = []courseModels.Prerequisite{{SectionID: intro.ID, CompletionRequired: true}}
	})
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)

	_, err = svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: advanced.ID})
	appErr := requireKind(t, err, apperrors.KindConflict)
	assert.Equal(t, CodePrerequisitesNotMet, appErr.Code)
	assert.Equal(t, []MissingPrerequisite{{SectionID: intro.ID, Title: intro.Title}}, appErr.Details)

	var stored courseModels.Progress
	require.NoError(t, db.Where("user_id = ? AND section_id = ?", learnerID, advanced.ID).First(&stored).Error)
	assert.False(t, stored.Completed, "a rejected completion leaves the record untouched")
	assert.Zero(t, stored.CompletionPercentage)

	_, err = svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: intro.ID})
	require.NoError(t, err)
	res, err := svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: advanced.ID})
	require.NoError(t, err)
	assert.True(t, res.Progress.Completed)
}

func TestMarkCompleted_OptionalPrerequisiteDoesNotBlock(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 1)
	next := testutil.SeedSection(t, db, f.course.ID, 2, testutil.PublishedSection, func(s *courseModels.Section) {
		s.Prerequisites = []courseModels.Prerequisite{{SectionID: f.sections[0].ID}}
	})
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)

	_, err = svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: next.ID})
	assert.NoError(t, err)
}

func TestMarkCompleted_IgnoresPrerequisiteOnRemovedSection(t *testing.T) {
	removals := map[string]func(db *gorm.DB, id uint) error{
		"soft": func(db *gorm.DB, id uint) error {
			return db.Model(&courseModels.Section{}).Where("id = ?", id).
				Updates(map[string]any{"is_deleted": true, "is_active": false}).Error
		},
		"hard": func(db *gorm.DB, id uint) error {
			return db.Delete(&courseModels.Section{}, id).Error
		},
	}
	for name, remove := range removals {
		t.Run(name, func(t *testing.T) {
			svc, db := newTestService(t, nil)
			ctx := context.Background()
			f := seedCourse(t, db, 1)
			intro := f.sections[0]
			advanced := testutil.SeedSection(t, db, f.course.ID, 2, testutil.PublishedSection, func(s *courseModels.Section) {
				s.Prerequisites = []courseModels.Prerequisite{{SectionID: intro.ID, CompletionRequired: true}}
			})
			_, err := svc.Enroll(ctx, learnerID, f.course.ID)
			require.NoError(t, err)
			require.NoError(t, remove(db, intro.ID))

			res, err := svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: advanced.ID})
			require.NoError(t, err)
			assert.True(t, res.Progress.Completed)
			assert.True(t, res.CourseCompleted)
			assert.True(t, res.NewlyIssued)
		})
	}
}

func TestProgressOperations_RejectDeletedSection(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 2)
	gone := f.sections[0]
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&courseModels.Section{}).Where("id = ?", gone.ID).
		Updates(map[string]any{"is_deleted": true, "is_active": false}).Error)

	_, err = svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: gone.ID})
	requireKind(t, err, apperrors.KindNotFound)
	_, err = svc.UpdateProgress(ctx, ProgressUpdate{UserID: learnerID, CourseID: f.course.ID, SectionID: gone.ID, Percentage: 50})
	requireKind(t, err, apperrors.KindNotFound)
	_, err = svc.RateContent(ctx, RatingInput{UserID: learnerID, CourseID: f.course.ID, SectionID: gone.ID, Rating: 5})
	requireKind(t, err, apperrors.KindNotFound)

	var stored courseModels.Progress
	require.NoError(t, db.Where("user_id = ? AND section_id = ?", learnerID, gone.ID).First(&stored).Error)
	assert.False(t, stored.Completed)
	assert.Zero(t, stored.CompletionPercentage)
	assert.Nil(t, stored.Rating.Value)
	assert.Zero(t, reloadCourse(t, db, f.course.ID).Rating.Count)
}

func TestMarkCompleted_IssuesCertificateOnce(t *testing.T) {
	n := &recordingNotifier{err: errors.New("mail down")}
	svc, db := newTestService(t, n)
	ctx := context.Background()
	f := seedCourse(t, db, 2)
	testutil.SeedSection(t, db, f.course.ID, 3, testutil.PublishedSection, func(s *courseModels.Section) { s.IsRequired = false })
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)

	in := CompletionInput{UserID: learnerID, CourseID: f.course.ID, UserEmail: "ada@example.com", UserName: "Ada"}

	in.SectionID = f.sections[0].ID
	res, err := svc.MarkCompleted(ctx, in)
	require.NoError(t, err)
	assert.False(t, res.CourseCompleted)
	assert.Nil(t, res.Certificate)

	score := 87.5
	in.SectionID, in.Score = f.sections[1].ID, &score
	res, err = svc.MarkCompleted(ctx, in)
	require.NoError(t, err, "a failing notifier does not fail completion")
	assert.True(t, res.CourseCompleted)
	assert.True(t, res.NewlyIssued)
	require.NotNil(t, res.Certificate)
	assert.Equal(t, score, *res.Progress.Score)
	assert.True(t, res.Progress.CertificateIssued)

	require.Len(t, n.notices, 1)
	assert.Equal(t, "ada@example.com", n.notices[0].Email)
	assert.Equal(t, f.course.Title, n.notices[0].CourseTitle)
	assert.Equal(t, res.Certificate.CertificateNumber, n.notices[0].CertificateNumber)

	var flagged int64
	require.NoError(t, db.Model(&courseModels.Progress{}).Where("user_id = ? AND certificate_issued = ?", learnerID, true).Count(&flagged).Error)
	assert.Equal(t, int64(3), flagged, "the whole progress group is flagged")

	again, err := svc.MarkCompleted(ctx, in)
	require.NoError(t, err)
	assert.True(t, again.CourseCompleted)
	assert.False(t, again.NewlyIssued)
	assert.Equal(t, res.Certificate.CertificateNumber, again.Certificate.CertificateNumber)
	assert.Len(t, n.notices, 1)

	certs, err := svc.ListCertificates(ctx, learnerID)
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestMarkCompleted_NoRequiredSectionsNoCertificate(t *testing.T) {
	n := &recordingNotifier{}
	svc, db := newTestService(t, n)
	ctx := context.Background()
	c := testutil.SeedCourse(t, db, ownerID, testutil.PublishedCourse)
	sec := testutil.SeedSection(t, db, c.ID, 1, testutil.PublishedSection, func(s *courseModels.Section) { s.IsRequired = false })
	_, err := svc.Enroll(ctx, learnerID, c.ID)
	require.NoError(t, err)

	res, err := svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: c.ID, SectionID: sec.ID})
	require.NoError(t, err)
	assert.False(t, res.CourseCompleted)
	assert.Nil(t, res.Certificate)
	assert.Empty(t, n.notices)
}

func TestRateContent_RecomputesCourseRating(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 2)
	for _, u := range []uint{learnerID, otherID} {
		_, err := svc.Enroll(ctx, u, f.course.ID)
		require.NoError(t, err)
	}

	rate := func(user, section uint, value int) {
		t.Helper()
		_, err := svc.RateContent(ctx, RatingInput{UserID: user, CourseID: f.course.ID, SectionID: section, Rating: value})
		require.NoError(t, err)
	}
	rate(learnerID, f.sections[0].ID, 5)
	rate(learnerID, f.sections[1].ID, 4)
	rate(otherID, f.sections[0].ID, 4)

	c := reloadCourse(t, db, f.course.ID)
	assert.Equal(t, 4.3, c.Rating.Average)
	assert.Equal(t, 3, c.Rating.Count)

	rate(otherID, f.sections[0].ID, 1)
	c = reloadCourse(t, db, f.course.ID)
	assert.Equal(t, 3.3, c.Rating.Average)
	assert.Equal(t, 3, c.Rating.Count, "re-rating replaces the previous rating")

	require.NoError(t, svc.Unenroll(ctx, learnerID, f.course.ID))
	c = reloadCourse(t, db, f.course.ID)
	assert.Equal(t, 1.0, c.Rating.Average)
	assert.Equal(t, 1, c.Rating.Count)
	assert.Equal(t, 1, c.EnrollmentCount)

	require.NoError(t, svc.Unenroll(ctx, otherID, f.course.ID))
	rating, err := svc.RecomputeCourseRating(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.CourseRating{}, *rating)

	err = svc.Unenroll(ctx, otherID, f.course.ID)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestRateContent_Validation(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 1)
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)

	for _, v := range []int{0, 6} {
		_, err := svc.RateContent(ctx, RatingInput{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID, Rating: v})
		requireKind(t, err, apperrors.KindValidation)
	}
	_, err = svc.RateContent(ctx, RatingInput{UserID: otherID, CourseID: f.course.ID, SectionID: f.sections[0].ID, Rating: 3})
	requireKind(t, err, apperrors.KindNotFound)

	p, err := svc.RateContent(ctx, RatingInput{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID, Rating: 3, Comment: " fine "})
	require.NoError(t, err)
	require.NotNil(t, p.Rating.Value)
	assert.Equal(t, 3, *p.Rating.Value)
	assert.Equal(t, "fine", p.Rating.Comment)
	assert.NotNil(t, p.Rating.RatedAt)
}

func TestNotesAndBookmarks(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 1)
	r := testutil.SeedResource(t, db, f.sections[0].ID, 1, courseModels.ResourceLink, "https://example.com")
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)
	ref := SectionRef{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID}

	pos := 42
	note, err := svc.AddNote(ctx, ref, " remember this ", &pos)
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "remember this", note.Content)

	_, err = svc.AddNote(ctx, ref, "  ", nil)
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.AddBookmark(ctx, ref, r.ID)
	require.NoError(t, err)
	p, err := svc.AddBookmark(ctx, ref, r.ID)
	require.NoError(t, err)
	assert.Len(t, p.Bookmarks, 1, "bookmarking twice keeps one bookmark")

	_, err = svc.AddBookmark(ctx, ref, 9999)
	requireKind(t, err, apperrors.KindNotFound)

	var stored courseModels.Progress
	require.NoError(t, db.Where("user_id = ? AND section_id = ?", learnerID, ref.SectionID).First(&stored).Error)
	require.Len(t, stored.Notes, 1)
	assert.Equal(t, 42, *stored.Notes[0].Position)

	require.NoError(t, svc.DeleteNote(ctx, ref, note.ID))
	requireKind(t, svc.DeleteNote(ctx, ref, note.ID), apperrors.KindNotFound)
	require.NoError(t, svc.RemoveBookmark(ctx, ref, r.ID))
	requireKind(t, svc.RemoveBookmark(ctx, ref, r.ID), apperrors.KindNotFound)
}

func TestCourseProgressAndEnrollments(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	f := seedCourse(t, db, 2)
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)

	_, err = svc.UpdateProgress(ctx, ProgressUpdate{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[1].ID, Percentage: 50, TimeSpent: 60})
	require.NoError(t, err)
	_, err = svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID})
	require.NoError(t, err)

	summary, err := svc.CourseProgress(ctx, learnerID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSections)
	assert.Equal(t, 1, summary.CompletedSections)
	assert.Equal(t, 75.0, summary.Percentage)
	assert.Equal(t, 60, summary.TimeSpent)
	assert.Equal(t, f.sections[0].ID, summary.Sections[0].SectionID)

	_, err = svc.CourseProgress(ctx, otherID, f.course.ID)
	requireKind(t, err, apperrors.KindNotFound)

	enrollments, err := svc.ListEnrollments(ctx, learnerID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, f.course.ID, enrollments[0].Course.ID)

	none, err := svc.ListEnrollments(ctx, otherID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStats(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	fixed := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	f := seedCourse(t, db, 1)
	_, err := svc.Enroll(ctx, learnerID, f.course.ID)
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, otherID, f.course.ID)
	require.NoError(t, err)
	_, err = svc.MarkCompleted(ctx, CompletionInput{UserID: learnerID, CourseID: f.course.ID, SectionID: f.sections[0].ID})
	require.NoError(t, err)

	owner := models.Principal{UserID: ownerID, Role: models.RoleInstructor}
	stats, err := svc.Stats(ctx, owner, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Enrollments)
	assert.Equal(t, int64(2), stats.ActiveLearners)
	assert.Equal(t, int64(2), stats.EnrolledThisMonth)
	assert.Equal(t, int64(1), stats.Completions)
	assert.Equal(t, int64(1), stats.CompletionsThisMonth)
	assert.Equal(t, 50.0, stats.CompletionRate)

	svc.now = func() time.Time { return fixed.AddDate(0, 1, 0) }
	stats, err = svc.Stats(ctx, owner, f.course.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.EnrolledThisMonth)
	assert.Zero(t, stats.CompletionsThisMonth)

	_, err = svc.Stats(ctx, models.Principal{UserID: learnerID, Role: models.RoleUser}, f.course.ID)
	requireKind(t, err, apperrors.KindForbidden)
}
