package middleware

import (
	"errors"

	"coursehub/apperrors"
	"coursehub/logger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// ErrorHandler renders every error returned by a handler in the JSON
// envelope. Internal detail is only exposed when exposeInternal is set.
func ErrorHandler(log *logger.Logger, exposeInternal bool) fiber.ErrorHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"status":  false,
				"code":    "HTTP_ERROR",
				"message": fiberErr.Message,
			})
		}

		appErr := apperrors.From(err)
		body := fiber.Map{
			"status":  false,
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.Issues) > 0 {
			body["issues"] = appErr.Issues
		}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		if appErr.Kind == apperrors.KindInternal {
			log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
			if exposeInternal && appErr.Err != nil {
				body["error"] = appErr.Err.Error()
			}
		}
		return c.Status(appErr.Status()).JSON(body)
	}
}
