package courseValidator

import (
	"strings"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"github.com/gofiber/fiber/v2"
)

type CreateResourceRequest struct {
	Title       string                    `json:"title" validate:"required,min=1,max=200"`
	Description string                    `json:"description" validate:"max=2000"`
	Type        courseModels.ResourceType `json:"type" validate:"required,creatable_type"`
	Content     string                    `json:"content"`
	Order       *int                      `json:"order" validate:"omitempty,min=1"`
	IsPublished bool                      `json:"is_published"`
	IsFree      bool                      `json:"is_free"`
	IsRequired  *bool                     `json:"is_required"`
}

// UpdateResourceRequest has no type: a resource keeps the type it was created with.
type UpdateResourceRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Content     *string `json:"content" validate:"omitempty,min=1"`
	Order       *int    `json:"order" validate:"omitempty,min=1"`
	IsPublished *bool   `json:"is_published"`
	IsFree      *bool   `json:"is_free"`
	IsRequired  *bool   `json:"is_required"`
}

func CreateResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sectionID, err := paramID(c, "id", "Section")
		if err != nil {
			return err
		}

		reqData := new(CreateResourceRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Type = courseModels.ResourceType(strings.ToLower(strings.TrimSpace(string(reqData.Type))))
		if err := check(reqData); err != nil {
			return err
		}

		c.Locals(SectionIDKey, sectionID)
		c.Locals("validatedResource", reqData)
		return c.Next()
	}
}

func UpdateResource() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resourceID, err := paramID(c, "id", "Resource")
		if err != nil {
			return err
		}

		reqData := new(UpdateResourceRequest)
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

		c.Locals(ResourceIDKey, resourceID)
		c.Locals("validatedResourceUpdate", reqData)
		return c.Next()
	}
}

func ResourceID() fiber.Handler {
	return IDParam("id", "Resource", ResourceIDKey)
}

// Interaction validates the counter named by the :kind parameter.
func Interaction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		resourceID, err := paramID(c, "id", "Resource")
		if err != nil {
			return err
		}
		kind := strings.ToLower(strings.TrimSpace(c.Params("kind")))
		if err := validate.Var(kind, "required,oneof=view like download"); err != nil {
			return apperrors.Validation("Invalid interaction!", apperrors.Issue{Field: "kind", Message: "must be one of view, like, download"})
		}

		c.Locals(ResourceIDKey, resourceID)
		c.Locals("interaction", kind)
		return c.Next()
	}
}
