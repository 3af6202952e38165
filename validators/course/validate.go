package courseValidator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"coursehub/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// fieldErrors renders validator errors as the field map that
// ValidationErrorResponse returns. Nested fields keep their path,
// e.g. "answers[0].question_id".
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["body"] = "Invalid request body!"
		return out
	}
	for _, fe := range ve {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		out[key] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required!"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("At least %s %s must be provided!", fe.Param(), fe.Field())
		}
		return fmt.Sprintf("%s must be at least %s characters long!", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("No more than %s %s can be provided!", fe.Param(), fe.Field())
		}
		return fmt.Sprintf("%s must not exceed %s characters!", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s!", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s!", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fe.Field() + " is invalid!"
}

// bindBody parses and validates the JSON body into dst. When it returns
// false the response has already been written.
func bindBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if err := validate.Struct(dst); err != nil {
		return false, middleware.ValidationErrorResponse(c, fieldErrors(err))
	}
	return true, nil
}

// bindQuery is bindBody for query strings.
func bindQuery(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.QueryParser(dst); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}
	if err := validate.Struct(dst); err != nil {
		return false, middleware.ValidationErrorResponse(c, fieldErrors(err))
	}
	return true, nil
}

// idParam reads a positive numeric route parameter into Locals under key.
// When it returns false the response has already been written.
func idParam(c *fiber.Ctx, param, key, label string) (bool, error) {
	raw := strings.TrimSpace(c.Params(param))
	if raw == "" {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
	}
	c.Locals(key, uint(id))
	return true, nil
}

// PageQuery is the common page/limit query.
type PageQuery struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}
