package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes mounts the course platform API under /api. Course
// listing, detail and outline accept anonymous callers; everything else
// requires a bearer token.
func SetupCourseRoutes(app *fiber.App, h *controllers.Handler, jwtSecret string) {
	auth := middleware.NewJWTMiddleware(jwtSecret)
	optional := middleware.OptionalJWT(jwtSecret)

	api := app.Group("/api")

	// Courses
	courses := api.Group("/courses")
	courses.Post("/", auth, validators.CreateCourse(), h.CreateCourse)
	courses.Get("/", optional, validators.CourseList(), h.ListCourses)
	courses.Get("/mine", auth, h.ListMyCourses)
	courses.Get("/:id", optional, validators.CourseID(), h.GetCourse)
	courses.Get("/:id/outline", optional, validators.CourseID(), h.GetCourseOutline)
	courses.Put("/:id", auth, validators.UpdateCourse(), h.UpdateCourse)
	courses.Post("/:id/publish", auth, validators.PublishCourse(), h.PublishCourse)
	courses.Delete("/:id", auth, validators.CourseID(), h.DeleteCourse)
	courses.Get("/:id/validate", auth, validators.CourseID(), h.ValidateCourse)
	courses.Get("/:id/stats", auth, validators.CourseID(), h.CourseStats)
	courses.Post("/:id/rating/recompute", auth, validators.CourseID(), h.RecomputeRating)

	// Sections of a course
	courses.Post("/:id/sections", auth, validators.CreateSection(), h.CreateSection)
	courses.Get("/:id/sections", optional, validators.CourseID(), h.ListSections)
	courses.Put("/:id/sections/reorder", auth, validators.Reorder("Course", validators.CourseIDKey), h.ReorderSections)

	// Enrollment and progress
	courses.Post("/:id/enrollment", auth, validators.CourseID(), h.EnrollInCourse)
	courses.Delete("/:id/enrollment", auth, validators.CourseID(), h.Unenroll)
	courses.Get("/:id/progress", auth, validators.CourseID(), h.GetUserProgress)

	section := validators.SectionProgress()
	courses.Put("/:id/sections/:sectionId/progress", auth, section, validators.UpdateProgress(), h.UpdateProgress)
	courses.Post("/:id/sections/:sectionId/complete", auth, section, validators.MarkComplete(), h.MarkSectionComplete)
	courses.Post("/:id/sections/:sectionId/rating", auth, section, validators.RateContent(), h.RateContent)
	courses.Post("/:id/sections/:sectionId/notes", auth, section, validators.AddNote(), h.AddNote)
	courses.Delete("/:id/sections/:sectionId/notes/:noteId", auth, section, validators.NoteID(), h.DeleteNote)
	courses.Post("/:id/sections/:sectionId/bookmarks", auth, section, validators.AddBookmark(), h.AddBookmark)
	courses.Delete("/:id/sections/:sectionId/bookmarks/:resourceId", auth, section, validators.BookmarkResource(), h.RemoveBookmark)

	api.Get("/enrollments", auth, h.GetUserEnrollments)
	api.Get("/certificates", auth, h.GetUserCertificates)

	// Sections
	sections := api.Group("/sections")
	sections.Get("/:id", optional, validators.SectionID(), h.GetSection)
	sections.Put("/:id", auth, validators.UpdateSection(), h.UpdateSection)
	sections.Delete("/:id", auth, validators.SectionID(), h.DeleteSection)
	sections.Post("/:id/resources", auth, validators.CreateResource(), h.CreateResource)
	sections.Get("/:id/resources", optional, validators.SectionID(), h.ListResources)
	sections.Put("/:id/resources/reorder", auth, validators.Reorder("Section", validators.SectionIDKey), h.ReorderResources)

	// Resources
	resources := api.Group("/resources")
	resources.Get("/:id", optional, validators.ResourceID(), h.GetResource)
	resources.Put("/:id", auth, validators.UpdateResource(), h.UpdateResource)
	resources.Delete("/:id", auth, validators.ResourceID(), h.DeleteResource)
	resources.Post("/:id/interactions/:kind", optional, validators.Interaction(), h.RecordInteraction)
	resources.Post("/:id/quizzes", auth, validators.CreateQuiz(), h.CreateQuiz)
	resources.Get("/:id/quizzes", optional, validators.ResourceID(), h.ListQuizzes)
	resources.Post("/:id/quizzes/submit", auth, validators.SubmitQuiz(), h.SubmitQuiz)

	// Quizzes
	quizzes := api.Group("/quizzes")
	quizzes.Put("/:id", auth, validators.UpdateQuiz(), h.UpdateQuiz)
	quizzes.Delete("/:id", auth, validators.QuizID(), h.DeleteQuiz)
}
