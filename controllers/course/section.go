package controllers

import (
	"coursehub/middleware"
	"coursehub/services/catalog"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateSection(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSection").(*validators.CreateSectionRequest)

	section, err := h.Catalog.CreateSection(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey), catalog.SectionInput{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Order:         reqData.Order,
		Duration:      reqData.Duration,
		IsFree:        reqData.IsFree,
		IsRequired:    reqData.IsRequired,
		IsPublished:   reqData.IsPublished,
		Prerequisites: reqData.Prerequisites,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

func (h *Handler) ListSections(c *fiber.Ctx) error {
	sections, err := h.Catalog.ListSections(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", sections)
}

func (h *Handler) ReorderSections(c *fiber.Ctx) error {
	reqData := c.Locals("validatedReorder").(*validators.ReorderRequest)

	sections, err := h.Catalog.ReorderSections(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.CourseIDKey), reqData.Assignments)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections reordered successfully!", sections)
}

func (h *Handler) GetSection(c *fiber.Ctx) error {
	section, err := h.Catalog.GetSection(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.SectionIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section fetched successfully!", section)
}

func (h *Handler) UpdateSection(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSectionUpdate").(*validators.UpdateSectionRequest)

	section, err := h.Catalog.UpdateSection(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.SectionIDKey), catalog.SectionChanges{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Order:         reqData.Order,
		Duration:      reqData.Duration,
		IsFree:        reqData.IsFree,
		IsRequired:    reqData.IsRequired,
		IsPublished:   reqData.IsPublished,
		Prerequisites: reqData.Prerequisites,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

func (h *Handler) DeleteSection(c *fiber.Ctx) error {
	stats, err := h.Catalog.DeleteSection(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.SectionIDKey), validators.Hard(c))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", stats)
}
