package courseValidator

import (
	"strings"

	"coursehub/apperrors"

	"github.com/gofiber/fiber/v2"
)

type CreateQuizRequest struct {
	Question string   `json:"question" validate:"required,max=1000"`
	Answers  []string `json:"answers" validate:"required,min=2,dive,required"`
	Answer   string   `json:"answer" validate:"required"`
	Order    *int     `json:"order" validate:"omitempty,min=1"`
}

type UpdateQuizRequest struct {
	Question *string   `json:"question" validate:"omitempty,min=1,max=1000"`
	Answers  *[]string `json:"answers" validate:"omitempty,min=2,dive,required"`
	Answer   *string   `json:"answer" validate:"omitempty,min=1"`
	Order    *int      `json:"order" validate:"omitempty,min=1"`
}

type QuizAnswer struct {
	QuizID uint   `json:"quiz_id" validate:"required"`
	Answer string `json:"answer"`
}

type SubmitQuizRequest struct {
	Answers []QuizAnswer `json:"answers" validate:"required,min=1,dive"`
}

// ByQuiz indexes the submitted answers by quiz id.
func (r *SubmitQuizRequest) ByQuiz() map[uint]string {
	out := make(map[uint]string, len(r.Answers))
	for _, a := range r.Answers {
		out[a.QuizID] = a.Answer
	}
	return out
}

func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resourceID, err := paramID(c, "id", "Resource")
		if err != nil {
			return err
		}

		reqData := new(CreateQuizRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}
		reqData.Question = strings.TrimSpace(reqData.Question)
		if err := check(reqData); err != nil {
			return err
		}

		c.Locals(ResourceIDKey, resourceID)
		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		quizID, err := paramID(c, "id", "Quiz")
		if err != nil {
			return err
		}

		reqData := new(UpdateQuizRequest)
		if err := parseBody(c, reqData); err != nil {
			return err
		}

		c.Locals(QuizIDKey, quizID)
		c.Locals("validatedQuizUpdate", reqData)
		return c.Next()
	}
}

func QuizID() fiber.Handler {
	return IDParam("id", "Quiz", QuizIDKey)
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resourceID, err := paramID(c, "id", "Resource")
		if err != nil {
			return err
		}

		reqData := new(SubmitQuizRequest)
		if err := parseBody(c, reqData); err != nil {
			return err
		}
		if len(reqData.ByQuiz()) != len(reqData.Answers) {
			return apperrors.Validation("Validation failed!", apperrors.Issue{Field: "answers", Message: "each quiz can be answered once"})
		}

		c.Locals(ResourceIDKey, resourceID)
		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}
