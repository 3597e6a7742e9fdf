package handler

import (
	"context"
	"fmt"
	"regexp"

	"github.com/fadilmartias/resume-screener/internal/dto"
	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/fadilmartias/resume-screener/internal/repository"
	"github.com/fadilmartias/resume-screener/internal/response"
	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type JobService interface {
	ListJobs(ctx context.Context, page, pageSize int) ([]repository.JobSummaryRow, *response.Pagination, error)
	GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error)
	ListScreenings(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]model.Screening, *response.Pagination, error)
	ExportScreenings(ctx context.Context, jobID uuid.UUID) (*model.Job, []byte, error)
	SimilarJobs(ctx context.Context, jobID uuid.UUID, limit int) ([]repository.SimilarJobRow, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	DeleteScreening(ctx context.Context, id uuid.UUID) error
}

type JobHandler struct {
	uc JobService
}

func NewJobHandler(uc JobService) *JobHandler {
	return &JobHandler{uc: uc}
}

func (h *JobHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/jobs", h.List)
	app.Get("/jobs/:id", h.Detail)
	app.Get("/jobs/:id/screenings", h.Screenings)
	app.Get("/jobs/:id/screenings/export", h.Export)
	app.Get("/jobs/:id/similar", h.Similar)
	app.Delete("/jobs/:id", h.Delete)
	app.Delete("/screenings/:id", h.DeleteScreening)
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return nil
	}
	rows, page, err := h.uc.ListJobs(c.UserContext(), q.Page, q.PageSize)
	if err != nil {
		return failWith(c, "failed to list jobs", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get jobs",
		Data:       dto.NewJobSummaries(rows),
		Pagination: page,
	})
}

func (h *JobHandler) Detail(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	job, err := h.uc.GetJob(c.UserContext(), id)
	if err != nil {
		return failWith(c, "failed to get job", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get job",
		Data:    dto.NewJobDetail(job),
	})
}

func (h *JobHandler) Screenings(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return nil
	}
	screenings, page, err := h.uc.ListScreenings(c.UserContext(), id, q.Page, q.PageSize)
	if err != nil {
		return failWith(c, "failed to get screenings", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get screenings",
		Data:       dto.NewScreenings(screenings),
		Pagination: page,
	})
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (h *JobHandler) Export(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	job, data, err := h.uc.ExportScreenings(c.UserContext(), id)
	if err != nil {
		return failWith(c, "failed to export screenings", err)
	}
	name := unsafeFilename.ReplaceAllString(job.Title, "_")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s_screenings.xlsx"`, name))
	return c.Send(data)
}

func (h *JobHandler) Similar(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var q dto.SimilarQuery
	if !bindQuery(c, &q) {
		return nil
	}
	rows, err := h.uc.SimilarJobs(c.UserContext(), id, q.Limit)
	if err != nil {
		return failWith(c, "failed to find similar jobs", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get similar jobs",
		Data:    dto.NewSimilarJobs(rows),
	})
}

func (h *JobHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	if err := h.uc.DeleteJob(c.UserContext(), id); err != nil {
		return failWith(c, "failed to delete job", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Job and associated screenings deleted",
		Data:    fiber.Map{"id": id},
	})
}

func (h *JobHandler) DeleteScreening(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	if err := h.uc.DeleteScreening(c.UserContext(), id); err != nil {
		return failWith(c, "failed to delete screening", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Screening deleted",
		Data:    fiber.Map{"id": id},
	})
}
