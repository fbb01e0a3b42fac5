package courseValidator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"coursehub/apperrors"
	courseModels "coursehub/models/course"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names in issues
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return courseModels.IsValidCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("creatable_type", func(fl validator.FieldLevel) bool {
		return courseModels.ResourceType(fl.Field().String()).IsCreatable()
	})
	return v
}

// parseBody decodes the JSON body into dst and runs its struct tags.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := decodeBody(c, dst); err != nil {
		return err
	}
	return check(dst)
}

func decodeBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("Invalid request body!")
	}
	return nil
}

func parseQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return apperrors.Validation("Invalid query parameters!")
	}
	return check(dst)
}

func check(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation("Validation failed!")
	}
	issues := make([]apperrors.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, apperrors.Issue{Field: issueField(fe), Message: issueMessage(fe)})
	}
	return apperrors.Validation("Validation failed!", issues...)
}

// issueField drops the root struct name from the namespace, e.g. "answers[1]".
func issueField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "category":
		return "must be one of " + strings.Join(courseModels.Categories, ", ")
	case "creatable_type":
		names := make([]string, len(courseModels.CreatableResourceTypes))
		for i, t := range courseModels.CreatableResourceTypes {
			names[i] = string(t)
		}
		return "must be one of " + strings.Join(names, ", ")
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		return boundMessage(fe, "at least")
	case "max", "lte":
		return boundMessage(fe, "at most")
	}
	return "is invalid"
}

func boundMessage(fe validator.FieldError, bound string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
	case reflect.Slice, reflect.Map:
		return fmt.Sprintf("must have %s %s items", bound, fe.Param())
	}
	return fmt.Sprintf("must be %s %s", bound, fe.Param())
}

// paramID parses a positive numeric route parameter.
func paramID(c *fiber.Ctx, name, label string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	if raw == "" {
		return 0, apperrors.Validation(label + " ID is required!")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("Invalid " + label + " ID!")
	}
	return uint(id), nil
}

// IDParam validates a numeric route parameter and stores it in the locals under key.
func IDParam(name, label, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, name, label)
		if err != nil {
			return err
		}
		c.Locals(key, id)
		return c.Next()
	}
}

// ID returns a route id stored by a validator.
func ID(c *fiber.Ctx, key string) uint {
	id, _ := c.Locals(key).(uint)
	return id
}

// Hard reports whether the request asks for a hard cascade delete.
func Hard(c *fiber.Ctx) bool {
	return c.QueryBool("hard", false)
}
