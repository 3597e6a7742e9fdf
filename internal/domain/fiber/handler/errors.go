package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/fadilmartias/resume-screener/internal/analyzer"
	"github.com/fadilmartias/resume-screener/internal/usecase"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

// newValidator reports fields by their query/form/json name rather than the Go field name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"query", "form", "json"} {
			if name := strings.Split(f.Tag.Get(key), ",")[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// statusFor maps usecase and extraction errors onto HTTP status codes.
func statusFor(err error) int {
	var stageErr *analyzer.StageError
	switch {
	case errors.Is(err, usecase.ErrJobNotFound), errors.Is(err, usecase.ErrScreeningNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrNoResumes),
		errors.Is(err, usecase.ErrNoValidResumes),
		errors.Is(err, usecase.ErrMissingStructuredJD),
		errors.Is(err, util.ErrUnsupportedFileType),
		errors.Is(err, util.ErrNoTextExtracted):
		return fiber.StatusBadRequest
	case errors.As(err, &stageErr) && stageErr.Stage == analyzer.StageJDDeconstruct:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func failWith(c *fiber.Ctx, message string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    statusFor(err),
		Message: message,
	}, err)
}

// parseID reads a uuid path parameter. On failure it has already written a 400 and
// reports ok=false.
func parseID(c *fiber.Ctx, param string) (id uuid.UUID, ok bool) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid " + param,
		}, err)
		return uuid.Nil, false
	}
	return id, true
}

// bindQuery parses and validates query parameters into out. On failure it has already
// written a 400 and reports false.
func bindQuery(c *fiber.Ctx, out any) bool {
	if err := c.QueryParser(out); err != nil {
		_ = util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid query parameters",
		}, err)
		return false
	}
	if err := validate.Struct(out); err != nil {
		formErr := util.ValidationFormError("invalid query parameters", err)
		_ = util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: formErr.Message,
			Details: formErr.Errors,
		}, err)
		return false
	}
	return true
}
