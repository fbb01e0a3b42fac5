package courseValidator

import (
	"strings"

	"coursehub/apperrors"

	"github.com/gofiber/fiber/v2"
)

type ProgressRequest struct {
	Percentage *float64 `json:"percentage" validate:"required"`
	TimeSpent  int      `json:"time_spent" validate:"gte=0"`
	ResourceID *uint    `json:"resource_id" validate:"omitempty,min=1"`
}

type CompleteRequest struct {
	Score *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
}

type RatingRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type NoteRequest struct {
	Content  string `json:"content" validate:"required,max=5000"`
	Position *int   `json:"position" validate:"omitempty,gte=0"`
}

type BookmarkRequest struct {
	ResourceID uint `json:"resource_id" validate:"required"`
}

// SectionProgress validates the :id (course) and :sectionId parameters of
// the per-section progress routes.
func SectionProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := paramID(c, "id", "Course")
		if err != nil {
			return err
		}
		sectionID, err := paramID(c, "sectionId", "Section")
		if err != nil {
			return err
		}
		c.Locals(CourseIDKey, courseID)
		c.Locals(SectionIDKey, sectionID)
		return c.Next()
	}
}

// Body decodes and validates a request body of type T into the locals under key.
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := parseBody(c, reqData); err != nil {
			return err
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

func UpdateProgress() fiber.Handler { return Body[ProgressRequest]("validatedProgress") }

// MarkComplete accepts an empty body.
func MarkComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompleteRequest)
		if len(c.Body()) > 0 {
			if err := parseBody(c, reqData); err != nil {
				return err
			}
		}
		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}

func RateContent() fiber.Handler { return Body[RatingRequest]("validatedRating") }

func AddNote() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(NoteRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}
		reqData.Content = strings.TrimSpace(reqData.Content)
		if err := check(reqData); err != nil {
			return err
		}
		c.Locals("validatedNote", reqData)
		return c.Next()
	}
}

func NoteID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		noteID := strings.TrimSpace(c.Params("noteId"))
		if err := validate.Var(noteID, "required,uuid"); err != nil {
			return apperrors.Validation("Invalid Note ID!")
		}
		c.Locals("noteID", noteID)
		return c.Next()
	}
}

func AddBookmark() fiber.Handler { return Body[BookmarkRequest]("validatedBookmark") }

func BookmarkResource() fiber.Handler {
	return IDParam("resourceId", "Resource", ResourceIDKey)
}
