package catalog

import (
	"context"
	"math"
	"strings"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizInput struct {
	Question string
	Answers  []string
	Answer   string
	Order    *int
}

type QuizChanges struct {
	Question *string
	Answers  *[]string
	Answer   *string
	Order    *int
}

// QuizResult scores one submission of a quiz resource.
type QuizResult struct {
	ResourceID uint             `json:"resource_id"`
	Total      int              `json:"total"`
	Correct    int              `json:"correct"`
	Score      float64          `json:"score"` // percent, one decimal
	Questions  []QuestionResult `json:"questions"`
}

type QuestionResult struct {
	QuizID   uint   `json:"quiz_id"`
	Answered bool   `json:"answered"`
	Correct  bool   `json:"correct"`
	Answer   string `json:"answer"`
}

func (s *Service) CreateQuiz(ctx context.Context, actor models.Principal, resourceID uint, in QuizInput) (*courseModels.Quiz, error) {
	if err := validatePosition(in.Order); err != nil {
		return nil, err
	}
	q := courseModels.Quiz{
		Question: strings.TrimSpace(in.Question),
		Answers:  cleanAnswers(in.Answers),
		Answer:   strings.TrimSpace(in.Answer),
	}
	if err := validateQuiz(&q); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(tx *gorm.DB) error {
		r, err := managedQuizResource(tx, actor, resourceID)
		if err != nil {
			return err
		}

		group := quizSiblings(r.ID)
		next, err := group.nextOrder(tx)
		if err != nil {
			return err
		}
		q.ResourceID = r.ID
		q.OrderIndex = next
		if err := tx.Create(&q).Error; err != nil {
			return err
		}

		if in.Order != nil && *in.Order < next {
			if err := group.moveTo(tx, q.ID, *in.Order); err != nil {
				return err
			}
			return tx.First(&q, q.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Service) UpdateQuiz(ctx context.Context, actor models.Principal, id uint, ch QuizChanges) (*courseModels.Quiz, error) {
	if err := validatePosition(ch.Order); err != nil {
		return nil, err
	}

	var q courseModels.Quiz
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			return notFound(err, "quiz")
		}
		if _, err := managedQuizResource(tx, actor, q.ResourceID); err != nil {
			return err
		}

		if ch.Question != nil {
			q.Question = strings.TrimSpace(*ch.Question)
		}
		if ch.Answers != nil {
			q.Answers = cleanAnswers(*ch.Answers)
		}
		if ch.Answer != nil {
			q.Answer = strings.TrimSpace(*ch.Answer)
		}
		if err := validateQuiz(&q); err != nil {
			return err
		}
		if err := tx.Save(&q).Error; err != nil {
			return err
		}

		if ch.Order != nil && *ch.Order != q.OrderIndex {
			if err := quizSiblings(q.ResourceID).moveTo(tx, q.ID, *ch.Order); err != nil {
				return err
			}
			return tx.First(&q, q.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuiz removes a question and closes the gap it leaves.
func (s *Service) DeleteQuiz(ctx context.Context, actor models.Principal, id uint) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		var q courseModels.Quiz
		if err := tx.First(&q, id).Error; err != nil {
			return notFound(err, "quiz")
		}
		if _, err := managedQuizResource(tx, actor, q.ResourceID); err != nil {
			return err
		}
		if err := tx.Delete(&courseModels.Quiz{}, q.ID).Error; err != nil {
			return err
		}
		return quizSiblings(q.ResourceID).compact(tx)
	})
}

// ListQuizzes returns the questions of a quiz resource. Answers are redacted
// for viewers who do not manage the course.
func (s *Service) ListQuizzes(ctx context.Context, viewer models.Principal, resourceID uint) ([]courseModels.Quiz, error) {
	db := s.db.WithContext(ctx)
	r, err := s.GetResource(ctx, viewer, resourceID)
	if err != nil {
		return nil, err
	}
	if r.Type != courseModels.ResourceQuiz {
		return nil, apperrors.Validation("resource is not a quiz")
	}
	_, manager, err := visibleSection(db, viewer, r.SectionID)
	if err != nil {
		return nil, apperrors.From(err)
	}

	quizzes, err := quizzesOf(db, r.ID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if !manager {
		for i := range quizzes {
			quizzes[i] = quizzes[i].Redacted()
		}
	}
	return quizzes, nil
}

// SubmitQuiz scores answers keyed by quiz id. Unanswered questions count as wrong.
func (s *Service) SubmitQuiz(ctx context.Context, viewer models.Principal, resourceID uint, answers map[uint]string) (*QuizResult, error) {
	r, err := s.GetResource(ctx, viewer, resourceID)
	if err != nil {
		return nil, err
	}
	if r.Type != courseModels.ResourceQuiz {
		return nil, apperrors.Validation("resource is not a quiz")
	}
	quizzes, err := quizzesOf(s.db.WithContext(ctx), r.ID)
	if err != nil {
		return nil, apperrors.From(err)
	}
	if len(quizzes) == 0 {
		return nil, apperrors.Validation("quiz has no questions")
	}

	result := &QuizResult{ResourceID: r.ID, Total: len(quizzes), Questions: make([]QuestionResult, 0, len(quizzes))}
	for i := range quizzes {
		choice, answered := answers[quizzes[i].ID]
		correct := answered && quizzes[i].IsCorrect(choice)
		if correct {
			result.Correct++
		}
		result.Questions = append(result.Questions, QuestionResult{
			QuizID:   quizzes[i].ID,
			Answered: answered,
			Correct:  correct,
			Answer:   quizzes[i].Answer,
		})
	}
	result.Score = math.Round(float64(result.Correct)/float64(result.Total)*1000) / 10
	return result, nil
}

func managedQuizResource(tx *gorm.DB, actor models.Principal, resourceID uint) (*courseModels.Resource, error) {
	r, _, err := managedResource(tx, actor, resourceID)
	if err != nil {
		return nil, err
	}
	if r.Type != courseModels.ResourceQuiz {
		return nil, apperrors.Validation("resource is not a quiz", apperrors.Issue{Field: "resource_id", Message: "questions can only be attached to quiz resources"})
	}
	return r, nil
}

func quizzesOf(tx *gorm.DB, resourceID uint) ([]courseModels.Quiz, error) {
	quizzes := []courseModels.Quiz{}
	err := tx.Where("resource_id = ?", resourceID).Order("order_index asc").Find(&quizzes).Error
	return quizzes, err
}

func cleanAnswers(answers []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(answers))
	for _, a := range answers {
		out = append(out, strings.TrimSpace(a))
	}
	return out
}

func validateQuiz(q *courseModels.Quiz) error {
	var issues []apperrors.Issue
	if q.Question == "" {
		issues = append(issues, apperrors.Issue{Field: "question", Message: "is required"})
	}
	if len(q.Answers) < 2 {
		issues = append(issues, apperrors.Issue{Field: "answers", Message: "at least two answers are required"})
	}
	seen := make(map[string]bool, len(q.Answers))
	for _, a := range q.Answers {
		if a == "" {
			issues = append(issues, apperrors.Issue{Field: "answers", Message: "answers cannot be empty"})
			break
		}
		if seen[a] {
			issues = append(issues, apperrors.Issue{Field: "answers", Message: "answers must be unique"})
			break
		}
		seen[a] = true
	}
	if !q.HasAnswer() {
		issues = append(issues, apperrors.Issue{Field: "answer", Message: "must be one of the answers"})
	}
	if len(issues) > 0 {
		return apperrors.Validation("invalid quiz", issues...)
	}
	return nil
}
