package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"meetapi/internal/http/middleware"
	"meetapi/internal/model"
	"meetapi/internal/repository"
	"meetapi/internal/service"
)

type meetingRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// meetingPage is the wire shape of one page of meetings.
type meetingPage struct {
	Items      []model.Meeting `json:"items"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
	TotalCount int             `json:"total_count"`
	TotalPages int             `json:"total_pages"`
}

var meetingStatuses = map[string]repository.MeetingStatus{
	"":          repository.StatusAll,
	"all":       repository.StatusAll,
	"upcoming":  repository.StatusUpcoming,
	"past":      repository.StatusPast,
	"cancelled": repository.StatusCancelled,
	"active":    repository.StatusActive,
}

// registerMeetingRoutes attaches the meeting lifecycle endpoints. The router
// is expected to require authentication already.
func registerMeetingRoutes(r fiber.Router, meetingSvc service.MeetingService) {
	r.Get("/meetings", func(c *fiber.Ctx) error {
		f, err := parseMeetingFilter(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", err.Error())
		}

		page, err := meetingSvc.List(c.UserContext(), middleware.UserID(c), *f)
		if err != nil {
			return writeServiceError(c, err)
		}
		items := page.Items
		if items == nil {
			items = []model.Meeting{}
		}
		return c.JSON(meetingPage{
			Items:      items,
			PageNumber: page.PageNumber,
			PageSize:   page.PageSize,
			TotalCount: page.TotalCount,
			TotalPages: page.TotalPages,
		})
	})

	r.Post("/meetings", func(c *fiber.Ctx) error {
		var req meetingRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Title == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "title is required")
		}

		m, err := meetingSvc.Create(c.UserContext(), middleware.UserID(c), service.CreateMeetingInput{
			Title:       req.Title,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	})

	r.Get("/meetings/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		m, err := meetingSvc.GetByID(c.UserContext(), id, middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(m)
	})

	r.Put("/meetings/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req meetingRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Title == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "title is required")
		}

		m, err := meetingSvc.Update(c.UserContext(), id, middleware.UserID(c), service.UpdateMeetingInput{
			Title:       req.Title,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(m)
	})

	r.Post("/meetings/:id/cancel", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := meetingSvc.Cancel(c.UserContext(), id, middleware.UserID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/meetings/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := meetingSvc.Delete(c.UserContext(), id, middleware.UserID(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// parseMeetingFilter builds a MeetingFilter from the list query string.
// Pagination bounds are clamped later by MeetingFilter.Normalize.
func parseMeetingFilter(c *fiber.Ctx) (*repository.MeetingFilter, error) {
	f := &repository.MeetingFilter{
		SearchTerm: c.Query("search"),
		OrderBy:    c.Query("order_by"),
		Descending: c.QueryBool("desc"),
		PageNumber: c.QueryInt("page", 1),
		PageSize:   c.QueryInt("page_size", 10),
	}

	status, ok := meetingStatuses[c.Query("status")]
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unknown status")
	}
	f.Status = status

	for param, dst := range map[string]**time.Time{
		"start_date_from": &f.StartDateFrom,
		"start_date_to":   &f.StartDateTo,
		"end_date_from":   &f.EndDateFrom,
		"end_date_to":     &f.EndDateTo,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
		}
		*dst = &ts
	}

	if raw := c.Query("is_cancelled"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid is_cancelled")
		}
		f.IsCancelled = &b
	}

	return f, nil
}
