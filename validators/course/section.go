package courseValidator

import (
	"strings"

	courseModels "coursehub/models/course"
	"coursehub/services/catalog"

	"github.com/gofiber/fiber/v2"
)

type CreateSectionRequest struct {
	Title         string                      `json:"title" validate:"required,min=1,max=200"`
	Description   string                      `json:"description" validate:"max=2000"`
	Order         *int                        `json:"order" validate:"omitempty,min=1"`
	Duration      int                         `json:"duration" validate:"gte=0"`
	IsFree        bool                        `json:"is_free"`
	IsRequired    *bool                       `json:"is_required"`
	IsPublished   bool                        `json:"is_published"`
	Prerequisites []courseModels.Prerequisite `json:"prerequisites"`
}

type UpdateSectionRequest struct {
	Title         *string                      `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string                      `json:"description" validate:"omitempty,max=2000"`
	Order         *int                         `json:"order" validate:"omitempty,min=1"`
	Duration      *int                         `json:"duration" validate:"omitempty,gte=0"`
	IsFree        *bool                        `json:"is_free"`
	IsRequired    *bool                        `json:"is_required"`
	IsPublished   *bool                        `json:"is_published"`
	Prerequisites *[]courseModels.Prerequisite `json:"prerequisites"`
}

// ReorderRequest carries new positions for some or all children of a parent.
type ReorderRequest struct {
	Assignments []catalog.Assignment `json:"assignments"`
}

func CreateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := paramID(c, "id", "Course")
		if err != nil {
			return err
		}

		reqData := new(CreateSectionRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		if err := check(reqData); err != nil {
			return err
		}

		c.Locals(CourseIDKey, courseID)
		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

func UpdateSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sectionID, err := paramID(c, "id", "Section")
		if err != nil {
			return err
		}

		reqData := new(UpdateSectionRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}
		if reqData.Title != nil {
			title := strings.TrimSpace(*reqData.Title)
			reqData.Title = &title
		}
		if err := check(reqData); err != nil {
			return err
		}

		c.Locals(SectionIDKey, sectionID)
		c.Locals("validatedSectionUpdate", reqData)
		return c.Next()
	}
}

func SectionID() fiber.Handler {
	return IDParam("id", "Section", SectionIDKey)
}

// Reorder validates a reorder body for the parent named by the :id parameter.
// Assignment rules are enforced by the ordering engine.
func Reorder(label, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parentID, err := paramID(c, "id", label)
		if err != nil {
			return err
		}

		reqData := new(ReorderRequest)
		if err := parseBody(c, reqData); err != nil {
			return err
		}

		c.Locals(key, parentID)
		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}
