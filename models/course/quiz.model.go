package course

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Quiz is a single multiple-choice question attached to a quiz resource.
type Quiz struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	Question   string                      `json:"question" gorm:"type:text;not null"`
	OrderIndex int                         `json:"order" gorm:"column:order_index;not null;uniqueIndex:idx_quizzes_resource_order"`
	ResourceID uint                        `json:"resource_id" gorm:"not null;index;uniqueIndex:idx_quizzes_resource_order"`
	Answers    datatypes.JSONSlice[string] `json:"answers"`
	Answer     string                      `json:"answer,omitempty" gorm:"not null"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// HasAnswer reports whether Answer is one of Answers.
func (q *Quiz) HasAnswer() bool {
	for _, a := range q.Answers {
		if a == q.Answer {
			return true
		}
	}
	return false
}

// IsCorrect compares a learner choice with the correct answer, ignoring surrounding space.
func (q *Quiz) IsCorrect(choice string) bool {
	return strings.TrimSpace(choice) == q.Answer
}

// Redacted returns a copy safe to show learners.
func (q Quiz) Redacted() Quiz {
	q.Answer = ""
	return q
}
