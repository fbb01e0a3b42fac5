package controllers

import (
	"coursehub/middleware"
	"coursehub/services/progress"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) EnrollInCourse(c *fiber.Ctx) error {
	enrollment, err := h.Progress.Enroll(c.UserContext(), middleware.CurrentPrincipal(c).UserID, validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}

func (h *Handler) Unenroll(c *fiber.Ctx) error {
	if err := h.Progress.Unenroll(c.UserContext(), middleware.CurrentPrincipal(c).UserID, validators.ID(c, validators.CourseIDKey)); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unenrolled successfully!", nil)
}

func (h *Handler) GetUserEnrollments(c *fiber.Ctx) error {
	enrollments, err := h.Progress.ListEnrollments(c.UserContext(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

func (h *Handler) GetUserCertificates(c *fiber.Ctx) error {
	certs, err := h.Progress.ListCertificates(c.UserContext(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certs)
}

func (h *Handler) GetUserProgress(c *fiber.Ctx) error {
	summary, err := h.Progress.CourseProgress(c.UserContext(), middleware.CurrentPrincipal(c).UserID, validators.ID(c, validators.CourseIDKey))
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", summary)
}

// RecomputeRating rebuilds the stored course aggregate. Managers only.
func (h *Handler) RecomputeRating(c *fiber.Ctx) error {
	ctx := c.UserContext()
	courseID := validators.ID(c, validators.CourseIDKey)
	if _, err := h.Progress.Stats(ctx, middleware.CurrentPrincipal(c), courseID); err != nil {
		return err
	}
	rating, err := h.Progress.RecomputeCourseRating(ctx, courseID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course rating recomputed successfully!", rating)
}

func sectionRef(c *fiber.Ctx) progress.SectionRef {
	return progress.SectionRef{
		UserID:    middleware.CurrentPrincipal(c).UserID,
		CourseID:  validators.ID(c, validators.CourseIDKey),
		SectionID: validators.ID(c, validators.SectionIDKey),
	}
}

func (h *Handler) UpdateProgress(c *fiber.Ctx) error {
	reqData := c.Locals("validatedProgress").(*validators.ProgressRequest)
	ref := sectionRef(c)

	record, err := h.Progress.UpdateProgress(c.UserContext(), progress.ProgressUpdate{
		UserID:     ref.UserID,
		CourseID:   ref.CourseID,
		SectionID:  ref.SectionID,
		Percentage: *reqData.Percentage,
		TimeSpent:  reqData.TimeSpent,
		ResourceID: reqData.ResourceID,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", record)
}

func (h *Handler) MarkSectionComplete(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCompletion").(*validators.CompleteRequest)
	principal := middleware.CurrentPrincipal(c)
	ref := sectionRef(c)

	result, err := h.Progress.MarkCompleted(c.UserContext(), progress.CompletionInput{
		UserID:    ref.UserID,
		CourseID:  ref.CourseID,
		SectionID: ref.SectionID,
		Score:     reqData.Score,
		UserEmail: principal.Email,
		UserName:  principal.Name,
	})
	if err != nil {
		return err
	}
	message := "Section completed successfully!"
	if result.NewlyIssued {
		message = "Course completed! Certificate issued."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

func (h *Handler) RateContent(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRating").(*validators.RatingRequest)
	ref := sectionRef(c)

	record, err := h.Progress.RateContent(c.UserContext(), progress.RatingInput{
		UserID:    ref.UserID,
		CourseID:  ref.CourseID,
		SectionID: ref.SectionID,
		Rating:    reqData.Rating,
		Comment:   reqData.Comment,
	})
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rating saved successfully!", record)
}

func (h *Handler) AddNote(c *fiber.Ctx) error {
	reqData := c.Locals("validatedNote").(*validators.NoteRequest)

	note, err := h.Progress.AddNote(c.UserContext(), sectionRef(c), reqData.Content, reqData.Position)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Note added successfully!", note)
}

func (h *Handler) DeleteNote(c *fiber.Ctx) error {
	if err := h.Progress.DeleteNote(c.UserContext(), sectionRef(c), c.Locals("noteID").(string)); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Note deleted successfully!", nil)
}

func (h *Handler) AddBookmark(c *fiber.Ctx) error {
	reqData := c.Locals("validatedBookmark").(*validators.BookmarkRequest)

	record, err := h.Progress.AddBookmark(c.UserContext(), sectionRef(c), reqData.ResourceID)
	if err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Bookmark added successfully!", record.Bookmarks)
}

func (h *Handler) RemoveBookmark(c *fiber.Ctx) error {
	if err := h.Progress.RemoveBookmark(c.UserContext(), sectionRef(c), validators.ID(c, validators.ResourceIDKey)); err != nil {
		return err
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Bookmark removed successfully!", nil)
}
