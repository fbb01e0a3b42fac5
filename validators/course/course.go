package courseValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys for validated route ids
const (
	CourseIDKey   = "courseID"
	SectionIDKey  = "sectionID"
	ResourceIDKey = "resourceID"
	QuizIDKey     = "quizID"
)

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
	Category    string `json:"category" validate:"required,category"`
	Module      string `json:"module" validate:"max=100"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Thumbnail   *string `json:"thumbnail" validate:"omitempty,url"`
	Category    *string `json:"category" validate:"omitempty,category"`
	Module      *string `json:"module" validate:"omitempty,max=100"`
	IsPublished *bool   `json:"is_published"`
}

type CourseListQuery struct {
	Category string `query:"category" validate:"omitempty,category"`
	Module   string `query:"module"`
	Search   string `query:"search" validate:"max=100"`
	Page     int    `query:"page" validate:"gte=0"`
	Limit    int    `query:"limit" validate:"gte=0,lte=100"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}

		// Normalize and sanitize inputs
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Thumbnail = strings.TrimSpace(reqData.Thumbnail)
		reqData.Category = strings.ToLower(strings.TrimSpace(reqData.Category))
		if err := check(reqData); err != nil {
			return err
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := paramID(c, "id", "Course")
		if err != nil {
			return err
		}

		reqData := new(UpdateCourseRequest)
		if err := decodeBody(c, reqData); err != nil {
			return err
		}
		if reqData.Category != nil {
			category := strings.ToLower(strings.TrimSpace(*reqData.Category))
			reqData.Category = &category
		}
		if err := check(reqData); err != nil {
			return err
		}

		c.Locals(CourseIDKey, courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// PublishCourse validates a publish/unpublish toggle.
func PublishCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := paramID(c, "id", "Course")
		if err != nil {
			return err
		}

		reqData := new(struct {
			IsPublished *bool `json:"is_published" validate:"required"`
		})
		if err := parseBody(c, reqData); err != nil {
			return err
		}

		c.Locals(CourseIDKey, courseID)
		c.Locals("publishStatus", *reqData.IsPublished)
		return c.Next()
	}
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListQuery)
		if err := parseQuery(c, reqData); err != nil {
			return err
		}
		reqData.Search = strings.TrimSpace(reqData.Search)

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return IDParam("id", "Course", CourseIDKey)
}
