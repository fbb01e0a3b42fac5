package catalog

import (
	"context"
	"testing"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"
	"coursehub/services/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPublishedQuiz(t *testing.T, svc *Service) (*courseModels.Resource, []*courseModels.Quiz) {
	t.Helper()
	db := svc.db
	c := testutil.SeedCourse(t, db, owner.UserID, testutil.PublishedCourse)
	sec := testutil.SeedSection(t, db, c.ID, 1, testutil.PublishedSection)
	r := testutil.SeedResource(t, db, sec.ID, 1, courseModels.ResourceQuiz, "Pick one", testutil.PublishedResource)

	ctx := context.Background()
	q1, err := svc.CreateQuiz(ctx, owner, r.ID, QuizInput{Question: "2+2?", Answers: []string{"3", "4"}, Answer: "4"})
	require.NoError(t, err)
	q2, err := svc.CreateQuiz(ctx, owner, r.ID, QuizInput{Question: "1+1?", Answers: []string{" 2 ", "11"}, Answer: "2"})
	require.NoError(t, err)
	return r, []*courseModels.Quiz{q1, q2}
}

func TestCreateQuiz(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	r, quizzes := seedPublishedQuiz(t, svc)

	assert.Equal(t, 1, quizzes[0].OrderIndex)
	assert.Equal(t, 2, quizzes[1].OrderIndex)
	assert.Equal(t, []string{"2", "11"}, []string(quizzes[1].Answers))

	first, err := svc.CreateQuiz(ctx, owner, r.ID, QuizInput{Question: "0+0?", Answers: []string{"0", "1"}, Answer: "0", Order: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, first.OrderIndex)
	assert.Equal(t, []int{1, 2, 3}, testutil.Orders(t, db, &courseModels.Quiz{}, "resource_id", r.ID, false))

	tests := []struct {
		name string
		in   QuizInput
	}{
		{"no question", QuizInput{Answers: []string{"a", "b"}, Answer: "a"}},
		{"one answer", QuizInput{Question: "q", Answers: []string{"a"}, Answer: "a"}},
		{"answer not offered", QuizInput{Question: "q", Answers: []string{"a", "b"}, Answer: "c"}},
		{"duplicate answers", QuizInput{Question: "q", Answers: []string{"a", "a"}, Answer: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(ctx, owner, r.ID, tt.in)
			requireKind(t, err, apperrors.KindValidation)
		})
	}
}

func TestCreateQuiz_RequiresQuizResource(t *testing.T) {
	svc, db := newTestService(t, nil)
	c := testutil.SeedCourse(t, db, owner.UserID)
	sec := testutil.SeedSection(t, db, c.ID, 1)
	link := testutil.SeedResource(t, db, sec.ID, 1, courseModels.ResourceLink, "https://example.com")

	_, err := svc.CreateQuiz(context.Background(), owner, link.ID, QuizInput{Question: "q", Answers: []string{"a", "b"}, Answer: "a"})
	requireKind(t, err, apperrors.KindValidation)
}

func TestListQuizzes_RedactsForLearners(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	r, _ := seedPublishedQuiz(t, svc)

	forLearner, err := svc.ListQuizzes(ctx, learner, r.ID)
	require.NoError(t, err)
	require.Len(t, forLearner, 2)
	for _, q := range forLearner {
		assert.Empty(t, q.Answer)
	}

	forOwner, err := svc.ListQuizzes(ctx, owner, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", forOwner[0].Answer)
}

func TestSubmitQuiz(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	r, quizzes := seedPublishedQuiz(t, svc)

	result, err := svc.SubmitQuiz(ctx, learner, r.ID, map[uint]string{quizzes[0].ID: " 4 "})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.Questions[0].Correct)
	assert.False(t, result.Questions[1].Answered)
}

func TestUpdateAndDeleteQuiz(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	r, quizzes := seedPublishedQuiz(t, svc)

	moved, err := svc.UpdateQuiz(ctx, owner, quizzes[1].ID, QuizChanges{Order: intPtr(1), Answer: strPtr("11")})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.OrderIndex)
	assert.Equal(t, "11", moved.Answer)

	_, err = svc.UpdateQuiz(ctx, owner, quizzes[1].ID, QuizChanges{Answer: strPtr("5")})
	requireKind(t, err, apperrors.KindValidation)

	require.NoError(t, svc.DeleteQuiz(ctx, owner, quizzes[1].ID))
	assert.Equal(t, []int{1}, testutil.Orders(t, db, &courseModels.Quiz{}, "resource_id", r.ID, false))

	err = svc.DeleteQuiz(ctx, stranger, quizzes[0].ID)
	requireKind(t, err, apperrors.KindForbidden)
}
