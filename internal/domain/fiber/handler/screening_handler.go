package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/fadilmartias/resume-screener/internal/dto"
	"github.com/fadilmartias/resume-screener/internal/middleware"
	"github.com/fadilmartias/resume-screener/internal/usecase"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ScreeningService interface {
	ScreenResumes(ctx context.Context, jobTitle string, jd usecase.Upload, resumes []usecase.Upload) (*usecase.BatchResult, error)
	AddCandidates(ctx context.Context, jobID uuid.UUID, resumes []usecase.Upload) (*usecase.BatchResult, error)
}

type ScreenForm struct {
	JobTitle string `form:"job_title" validate:"max=255"`
}

type ScreeningHandler struct {
	uc             ScreeningService
	maxUploadBytes int64
}

func NewScreeningHandler(uc ScreeningService, maxUploadBytes int64) *ScreeningHandler {
	return &ScreeningHandler{uc: uc, maxUploadBytes: maxUploadBytes}
}

func (h *ScreeningHandler) RegisterRoutes(app fiber.Router) {
	app.Post("/screen", middleware.RateLimiter(5, time.Minute), h.Screen)
	app.Post("/jobs/:id/candidates", middleware.RateLimiter(5, time.Minute), h.AddCandidates)
}

// Screen takes one job description (jd_file) and any number of resumes (resume_files).
func (h *ScreeningHandler) Screen(c *fiber.Ctx) error {
	var form ScreenForm
	if err := c.BodyParser(&form); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid form",
		}, err)
	}
	if err := validate.Struct(&form); err != nil {
		formErr := util.ValidationFormError("invalid form", err)
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: formErr.Message,
			Details: formErr.Errors,
		}, err)
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "multipart form is required",
		}, err)
	}
	jdFiles := mf.File["jd_file"]
	if len(jdFiles) != 1 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "exactly one jd_file is required",
		})
	}
	jd, err := h.readUpload(jdFiles[0])
	if err != nil {
		return h.uploadError(c, "jd_file", err)
	}
	resumes, err := h.readUploads(mf.File["resume_files"])
	if err != nil {
		return h.uploadError(c, "resume_files", err)
	}

	res, err := h.uc.ScreenResumes(c.UserContext(), form.JobTitle, jd, resumes)
	return h.batchResponse(c, res, err, fiber.StatusCreated)
}

func (h *ScreeningHandler) AddCandidates(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	mf, err := c.MultipartForm()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "multipart form is required",
		}, err)
	}
	resumes, err := h.readUploads(mf.File["resume_files"])
	if err != nil {
		return h.uploadError(c, "resume_files", err)
	}

	res, err := h.uc.AddCandidates(c.UserContext(), id, resumes)
	return h.batchResponse(c, res, err, fiber.StatusCreated)
}

// batchResponse reports a zero-success batch as a 400 but still lists why every resume
// was skipped.
func (h *ScreeningHandler) batchResponse(c *fiber.Ctx, res *usecase.BatchResult, err error, okCode int) error {
	if err != nil {
		var details any
		if res != nil && errors.Is(err, usecase.ErrNoValidResumes) {
			details = fiber.Map{"skipped": dto.NewBatchResponse(res).Skipped}
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    statusFor(err),
			Message: "failed to screen resumes",
			Details: details,
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    okCode,
		Message: fmt.Sprintf("Screened %d resume(s), skipped %d", len(res.Screenings), len(res.Skipped)),
		Data:    dto.NewBatchResponse(res),
	})
}

var errFileTooLarge = errors.New("file too large")

func (h *ScreeningHandler) uploadError(c *fiber.Ctx, field string, err error) error {
	code := fiber.StatusBadRequest
	msg := fmt.Sprintf("cannot read %s", field)
	if errors.Is(err, errFileTooLarge) {
		code = fiber.StatusRequestEntityTooLarge
		msg = fmt.Sprintf("%s: %v", field, err)
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: msg}, err)
}

func (h *ScreeningHandler) readUploads(files []*multipart.FileHeader) ([]usecase.Upload, error) {
	out := make([]usecase.Upload, 0, len(files))
	for _, fh := range files {
		u, err := h.readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (h *ScreeningHandler) readUpload(fh *multipart.FileHeader) (usecase.Upload, error) {
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return usecase.Upload{}, fmt.Errorf("%w: %s is %d bytes (max %d)", errFileTooLarge, fh.Filename, fh.Size, h.maxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return usecase.Upload{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return usecase.Upload{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return usecase.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
