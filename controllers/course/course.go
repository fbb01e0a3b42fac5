package controllers

import (
	"coursehub/middleware"
	"coursehub/services/catalog"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourse").(*validators.CreateCourseRequest)

	course, err := h.Catalog.CreateCourse(c.UserContext(), middleware.CurrentPrincipal(c), catalog.CourseInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		Thumbnail:   reqData.Thumbnail,
		Category:    reqData.Category,
		Module:      reqData.Module,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func (h *Handler) ListCourses(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourseList").(*validators.CourseListQuery)

	page, err := h.Catalog.ListCourses(c.UserContext(), catalog.CourseFilter{
		Category: reqData.Category,
		Module:   reqData.Module,
		Search:   reqData.Search,
		Page:     reqData.Page,
		Limit:    reqData.Limit,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", page)
}

func (h *Handler) ListMyCourses(c *fiber.Ctx) error {
	courses, err := h.Catalog.ListManagedCourses(c.UserContext(), middleware.CurrentPrincipal(c))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func (h *Handler) GetCourse(c *fiber.Ctx) error {
	course, err := h.Catalog.GetCourse(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

func (h *Handler) GetCourseOutline(c *fiber.Ctx) error {
	outline, err := h.Catalog.CourseOutline(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course outline fetched successfully!", outline)
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourseUpdate").(*validators.UpdateCourseRequest)

	course, err := h.Catalog.UpdateCourse(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey), catalog.CourseChanges{
		Title:       reqData.Title,
		Description: reqData.Description,
		Thumbnail:   reqData.Thumbnail,
		Category:    reqData.Category,
		Module:      reqData.Module,
		IsPublished: reqData.IsPublished,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func (h *Handler) PublishCourse(c *fiber.Ctx) error {
	published := c.Locals("publishStatus").(bool)

	course, err := h.Catalog.PublishCourse(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey), published)
	if err != nil {
		return err
	}
	message := "Course unpublished successfully!"
	if published {
		message = "Course published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	stats, err := h.Catalog.DeleteCourse(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey), validators.Hard(c))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", stats)
}

// ValidateCourse reports whether the course could be published now.
func (h *Handler) ValidateCourse(c *fiber.Ctx) error {
	ctx := c.UserContext()
	course, err := h.Catalog.GetCourse(ctx, middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	check, err := h.Catalog.ValidateForPublishing(ctx, course.ID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course validated successfully!", check)
}

func (h *Handler) CourseStats(c *fiber.Ctx) error {
	stats, err := h.Progress.Stats(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course stats fetched successfully!", stats)
}
