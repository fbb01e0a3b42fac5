package courseValidator

import (
	"errors"
	"strings"
	"testing"

	"coursehub/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuesOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperrors.KindValidation, appErr.Kind)
	out := make(map[string]string, len(appErr.Issues))
	for _, issue := range appErr.Issues {
		out[issue.Field] = issue.Message
	}
	return out
}

func TestCheck_CourseRequest(t *testing.T) {
	assert.NoError(t, check(&CreateCourseRequest{Title: "Algebra", Category: "other"}))

	issues := issuesOf(t, check(&CreateCourseRequest{
		Title:       "Al",
		Description: strings.Repeat("x", 1001),
		Thumbnail:   "not a url",
		Category:    "4as",
	}))
	assert.Equal(t, "must be at least 3 characters", issues["title"])
	assert.Equal(t, "must be at most 1000 characters", issues["description"])
	assert.Equal(t, "must be a valid URL", issues["thumbnail"])
	assert.Equal(t, "must be one of 1as, 2as, 3as, other", issues["category"])
}

func TestCheck_ResourceType(t *testing.T) {
	issues := issuesOf(t, check(&CreateResourceRequest{Title: "Essay", Type: "assignment"}))
	assert.Equal(t, "must be one of video, document, image, link, quiz", issues["type"])

	assert.NoError(t, check(&CreateResourceRequest{Title: "Check", Type: "quiz"}))
}

func TestCheck_QuizAnswers(t *testing.T) {
	issues := issuesOf(t, check(&CreateQuizRequest{Question: "2+2?", Answers: []string{"4"}, Answer: "4"}))
	assert.Equal(t, "must have at least 2 items", issues["answers"])

	issues = issuesOf(t, check(&CreateQuizRequest{Question: "2+2?", Answers: []string{"4", ""}, Answer: "4"}))
	assert.Equal(t, "is required", issues["answers[1]"])
}

func TestCheck_Rating(t *testing.T) {
	issues := issuesOf(t, check(&RatingRequest{Rating: 6}))
	assert.Equal(t, "must be at most 5", issues["rating"])

	issues = issuesOf(t, check(&RatingRequest{}))
	assert.Equal(t, "is required", issues["rating"])
}

func TestSubmitQuizRequestByQuiz(t *testing.T) {
	req := SubmitQuizRequest{Answers: []QuizAnswer{{QuizID: 1, Answer: "a"}, {QuizID: 2, Answer: "b"}}}
	assert.Equal(t, map[uint]string{1: "a", 2: "b"}, req.ByQuiz())
}
