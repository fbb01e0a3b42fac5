package catalog

import (
	"context"
	"testing"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"
	"coursehub/services/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestDeleteCourse_HardCascadeToleratesAssetFailure(t *testing.T) {
	store := &fakeStore{fail: map[string]bool{"https://cdn.test/broken.mp4": true}}
	svc, db := newTestService(t, store)
	ctx := context.Background()

	c := testutil.SeedCourse(t, db, owner.UserID, testutil.PublishedCourse)
	s1 := testutil.SeedSection(t, db, c.ID, 1)
	s2 := testutil.SeedSection(t, db, c.ID, 2)
	testutil.SeedResource(t, db, s1.ID, 1, courseModels.ResourceVideo, "https://cdn.test/intro.mp4")
	quiz := testutil.SeedResource(t, db, s1.ID, 2, courseModels.ResourceQuiz, "")
	testutil.SeedResource(t, db, s2.ID, 1, courseModels.ResourceVideo, "https://cdn.test/broken.mp4")
	testutil.SeedResource(t, db, s2.ID, 2, courseModels.ResourceLink, "https://youtube.com/watch?v=1")
	for i := 1; i <= 3; i++ {
		testutil.SeedQuiz(t, db, quiz.ID, i)
	}
	testutil.SeedProgress(t, db, learner.UserID, c.ID, s1.ID)
	testutil.SeedProgress(t, db, learner.UserID, c.ID, s2.ID)

	stats, err := svc.DeleteCourse(ctx, owner, c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, DeletionStats{
		Sections:        2,
		Resources:       4,
		Quizzes:         3,
		AssetsAttempted: 2,
		AssetsDeleted:   1,
		ProgressRecords: 2,
		Failures:        1,
	}, *stats)
	assert.Equal(t, []string{"https://cdn.test/intro.mp4"}, store.deleted)

	assert.Zero(t, count(t, db, &courseModels.Course{}))
	assert.Zero(t, count(t, db, &courseModels.Section{}))
	assert.Zero(t, count(t, db, &courseModels.Resource{}))
	assert.Zero(t, count(t, db, &courseModels.Quiz{}))
	assert.Zero(t, count(t, db, &courseModels.Progress{}))
}

func TestDeleteCourse_HardPurgesSoftDeletedCourse(t *testing.T) {
	svc, db := newTestService(t, &fakeStore{})
	ctx := context.Background()
	c := testutil.SeedCourse(t, db, owner.UserID)
	testutil.SeedSection(t, db, c.ID, 1)

	_, err := svc.DeleteCourse(ctx, owner, c.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, db, &courseModels.Course{}), "soft delete keeps the row")

	stats, err := svc.DeleteCourse(ctx, owner, c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sections)
	assert.Zero(t, count(t, db, &courseModels.Course{}))
}

func TestDeleteSection_HardRenumbersSiblings(t *testing.T) {
	store := &fakeStore{}
	svc, db := newTestService(t, store)
	ctx := context.Background()

	c := testutil.SeedCourse(t, db, owner.UserID)
	s1 := testutil.SeedSection(t, db, c.ID, 1)
	s2 := testutil.SeedSection(t, db, c.ID, 2)
	s3 := testutil.SeedSection(t, db, c.ID, 3)
	testutil.SeedResource(t, db, s2.ID, 1, courseModels.ResourceImage, "https://cdn.test/cover.png")
	testutil.SeedProgress(t, db, learner.UserID, c.ID, s2.ID)
	testutil.SeedProgress(t, db, learner.UserID, c.ID, s1.ID)

	stats, err := svc.DeleteSection(ctx, owner, s2.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sections)
	assert.Equal(t, 1, stats.Resources)
	assert.Equal(t, 1, stats.AssetsDeleted)
	assert.Equal(t, 1, stats.ProgressRecords)
	assert.Zero(t, stats.Failures)

	sections, err := svc.ListSections(ctx, owner, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{s1.ID, s3.ID}, sectionIDs(sections))
	assert.Equal(t, []int{1, 2}, testutil.Orders(t, db, &courseModels.Section{}, "course_id", c.ID, true))
	assert.Equal(t, int64(1), count(t, db, &courseModels.Progress{}), "other sections keep their progress")
}

func TestDeleteResource_HardSkipsForeignAssets(t *testing.T) {
	store := &fakeStore{}
	svc, db := newTestService(t, store)
	ctx := context.Background()

	c := testutil.SeedCourse(t, db, owner.UserID)
	sec := testutil.SeedSection(t, db, c.ID, 1)
	external := testutil.SeedResource(t, db, sec.ID, 1, courseModels.ResourceVideo, "https://vimeo.com/1")
	kept := testutil.SeedResource(t, db, sec.ID, 2, courseModels.ResourceLink, "https://example.com")

	stats, err := svc.DeleteResource(ctx, owner, external.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Resources)
	assert.Zero(t, stats.AssetsAttempted)
	assert.Empty(t, store.deleted)

	got, err := svc.GetResource(ctx, owner, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.OrderIndex)
}

func TestDelete_RequiresOwner(t *testing.T) {
	svc, db := newTestService(t, &fakeStore{})
	ctx := context.Background()
	c := testutil.SeedCourse(t, db, owner.UserID)
	sec := testutil.SeedSection(t, db, c.ID, 1)
	r := testutil.SeedResource(t, db, sec.ID, 1, courseModels.ResourceLink, "https://example.com")

	_, err := svc.DeleteCourse(ctx, stranger, c.ID, true)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = svc.DeleteSection(ctx, stranger, sec.ID, false)
	requireKind(t, err, apperrors.KindForbidden)
	_, err = svc.DeleteResource(ctx, learner, r.ID, true)
	requireKind(t, err, apperrors.KindForbidden)

	assert.Equal(t, int64(1), count(t, db, &courseModels.Resource{}))
}

func TestCascadeDeleteResource_ReturnsRowFailure(t *testing.T) {
	svc, db := newTestService(t, &fakeStore{})
	ctx := context.Background()
	c := testutil.SeedCourse(t, db, owner.UserID)
	sec := testutil.SeedSection(t, db, c.ID, 1)
	r := testutil.SeedResource(t, db, sec.ID, 1, courseModels.ResourceVideo, "https://cdn.test/a.mp4")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	stats, err := svc.CascadeDeleteResource(cancelled, r)
	assert.Error(t, err, "a cancelled request cannot remove the resource row")
	assert.Zero(t, stats.Resources)
}
