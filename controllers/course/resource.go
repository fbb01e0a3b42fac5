package controllers

import (
	"coursehub/middleware"
	"coursehub/services/catalog"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateResource(c *fiber.Ctx) error {
	reqData := c.Locals("validatedResource").(*validators.CreateResourceRequest)

	resource, err := h.Catalog.CreateResource(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.SectionIDKey), catalog.ResourceInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		Type:        reqData.Type,
		Content:     reqData.Content,
		Order:       reqData.Order,
		IsPublished: reqData.IsPublished,
		IsFree:      reqData.IsFree,
		IsRequired:  reqData.IsRequired,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Resource created successfully!", resource)
}

func (h *Handler) ListResources(c *fiber.Ctx) error {
	resources, err := h.Catalog.ListResources(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.SectionIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resources fetched successfully!", resources)
}

func (h *Handler) ReorderResources(c *fiber.Ctx) error {
	reqData := c.Locals("validatedReorder").(*validators.ReorderRequest)

	resources, err := h.Catalog.ReorderResources(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.SectionIDKey), reqData.Assignments)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resources reordered successfully!", resources)
}

func (h *Handler) GetResource(c *fiber.Ctx) error {
	resource, err := h.Catalog.GetResource(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.ResourceIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource fetched successfully!", resource)
}

func (h *Handler) UpdateResource(c *fiber.Ctx) error {
	reqData := c.Locals("validatedResourceUpdate").(*validators.UpdateResourceRequest)

	resource, err := h.Catalog.UpdateResource(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.ResourceIDKey), catalog.ResourceChanges{
		Title:       reqData.Title,
		Description: reqData.Description,
		Content:     reqData.Content,
		Order:       reqData.Order,
		IsPublished: reqData.IsPublished,
		IsFree:      reqData.IsFree,
		IsRequired:  reqData.IsRequired,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource updated successfully!", resource)
}

func (h *Handler) DeleteResource(c *fiber.Ctx) error {
	stats, err := h.Catalog.DeleteResource(c.UserContext(), middleware.CurrentPrincipal(c), validators.ID(c, validators.ResourceIDKey), validators.Hard(c))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource deleted successfully!", stats)
}

// RecordInteraction bumps a view, like or download counter.
func (h *Handler) RecordInteraction(c *fiber.Ctx) error {
	resource, err := h.Catalog.RecordInteraction(c.UserContext(), middleware.CurrentPrincipal(c),
		validators.ID(c, validators.ResourceIDKey), c.Locals("interaction").(string))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Interaction recorded successfully!", resource.Interactions)
}
