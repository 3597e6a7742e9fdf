package util

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fadilmartias/resume-screener/internal/config"
	"github.com/fadilmartias/resume-screener/internal/response"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	Message    string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

// ValidationFormError converts validator failures into field -> rule pairs.
func ValidationFormError(message string, err error) *FormError {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			fields[strings.ToLower(fe.Field())] = rule
		}
	} else if err != nil {
		fields["_"] = err.Error()
	}
	return NewFormError(message, fields)
}

// SuccessResponse sends the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	})
}

// ErrorResponse sends the standard error envelope. Outside production the first error
// and a stack trace are attached for debugging.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	resp := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
	}
	if params.Details != nil {
		resp.Details = params.Details
	}
	if config.LoadAppConfig().Env != "production" {
		if len(errs) > 0 && errs[0] != nil {
			resp.DevMessage = errs[0].Error()
			resp.Trace = string(debug.Stack())
		}
		if params.DevMessage != "" {
			resp.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			resp.Trace = params.Trace
		}
	}

	errorCode := params.Code
	if errorCode == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(resp)
}
