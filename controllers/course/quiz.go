package controllers

import (
	"coursehub/middleware"
	"coursehub/services/catalog"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedQuiz").(*validators.CreateQuizRequest)

	quiz, err := h.Catalog.CreateQuiz(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.ResourceIDKey), catalog.QuizInput{
		Question: reqData.Question,
		Answers:  reqData.Answers,
		Answer:   reqData.Answer,
		Order:    reqData.Order,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// ListQuizzes hides answers from callers who do not manage the course.
func (h *Handler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.Catalog.ListQuizzes(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.ResourceIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched successfully!", quizzes)
}

func (h *Handler) UpdateQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedQuizUpdate").(*validators.UpdateQuizRequest)

	quiz, err := h.Catalog.UpdateQuiz(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.QuizIDKey), catalog.QuizChanges{
		Question: reqData.Question,
		Answers:  reqData.Answers,
		Answer:   reqData.Answer,
		Order:    reqData.Order,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

func (h *Handler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteQuiz(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.QuizIDKey)); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

func (h *Handler) SubmitQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedQuizSubmission").(*validators.SubmitQuizRequest)

	result, err := h.Catalog.SubmitQuiz(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.ResourceIDKey), reqData.ByQuiz())
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully!", result)
}
