package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressSetCompletion_RoundTrip(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	p := NewProgress(1, 2, 3, t0)

	assert.Nil(t, p.StartedAt)
	assert.False(t, p.Completed)

	t1 := t0.Add(time.Minute)
	p.SetCompletion(40, t1)
	require.NotNil(t, p.StartedAt)
	assert.Equal(t, t1, *p.StartedAt)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedAt)

	t2 := t1.Add(time.Minute)
	p.SetCompletion(100, t2)
	assert.True(t, p.Completed)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, t2, *p.CompletedAt)
	assert.Equal(t, t1, *p.StartedAt, "start time is kept")

	t3 := t2.Add(time.Minute)
	p.SetCompletion(50, t3)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedAt)
	assert.Equal(t, 50.0, p.CompletionPercentage)
	assert.Equal(t, t3, p.LastAccessedAt)
}

func TestProgressSetCompletion_Clamps(t *testing.T) {
	now := time.Now()
	p := NewProgress(1, 2, 3, now)

	p.SetCompletion(250, now)
	assert.Equal(t, 100.0, p.CompletionPercentage)
	assert.True(t, p.Completed)

	p.SetCompletion(-5, now)
	assert.Equal(t, 0.0, p.CompletionPercentage)
	assert.False(t, p.Completed)
}

func TestProgressSetCompletion_KeepsFirstCompletedAt(t *testing.T) {
	t0 := time.Now()
	p := NewProgress(1, 2, 3, t0)
	p.SetCompletion(100, t0)
	p.SetCompletion(100, t0.Add(time.Hour))

	assert.Equal(t, t0, *p.CompletedAt)
}

func TestCourseSetPublished(t *testing.T) {
	t0 := time.Now()
	c := Course{}

	c.SetPublished(true, t0)
	require.NotNil(t, c.PublishedAt)
	assert.Equal(t, t0, *c.PublishedAt)

	c.SetPublished(true, t0.Add(time.Hour))
	assert.Equal(t, t0, *c.PublishedAt, "republishing keeps the original date")

	c.SetPublished(false, t0)
	assert.False(t, c.IsPublished)
	assert.Nil(t, c.PublishedAt)
}

func TestSectionRequiredPrerequisites(t *testing.T) {
	s := Section{Prerequisites: []Prerequisite{
		{SectionID: 1, CompletionRequired: true},
		{SectionID: 2},
		{SectionID: 3, CompletionRequired: true},
	}}

	assert.Equal(t, []uint{1, 3}, s.RequiredPrerequisites())
}

func TestParseContent(t *testing.T) {
	tests := []struct {
		name    string
		typ     ResourceType
		raw     string
		wantErr bool
		want    Content
	}{
		{"video url", ResourceVideo, " https://cdn.example.com/v.mp4 ", false, MediaContent{Kind: ResourceVideo, URL: "https://cdn.example.com/v.mp4"}},
		{"video relative", ResourceVideo, "/v.mp4", true, nil},
		{"document ftp", ResourceDocument, "ftp://host/file.pdf", true, nil},
		{"link", ResourceLink, "http://example.com", false, LinkContent{URL: "http://example.com"}},
		{"text body", ResourceText, "hello", false, TextContent{Kind: ResourceText, Body: "hello"}},
		{"empty text", ResourceText, "  ", true, nil},
		{"quiz without instructions", ResourceQuiz, "", false, QuizContent{}},
		{"unknown", ResourceType("podcast"), "x", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContent(tt.typ, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourceAssetURL(t *testing.T) {
	video := Resource{Type: ResourceVideo, Content: "https://cdn.example.com/a.mp4"}
	link := Resource{Type: ResourceLink, Content: "https://cdn.example.com/a.mp4"}

	u, ok := video.AssetURL()
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a.mp4", u)

	_, ok = link.AssetURL()
	assert.False(t, ok)
}

func TestResourceTypeSets(t *testing.T) {
	assert.True(t, ResourceAudio.IsValid())
	assert.False(t, ResourceAudio.IsCreatable())
	assert.True(t, ResourceQuiz.IsCreatable())
	assert.False(t, ResourceType("x").IsValid())
}

func TestQuizAnswers(t *testing.T) {
	q := Quiz{Answers: []string{"a", "b"}, Answer: "b"}

	assert.True(t, q.HasAnswer())
	assert.True(t, q.IsCorrect(" b "))
	assert.False(t, q.IsCorrect("a"))
	assert.Empty(t, q.Redacted().Answer)
	assert.Equal(t, "b", q.Answer)
}
