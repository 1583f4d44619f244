package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	"github.com/noah-isme/uni-registration-api/internal/service"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
	"github.com/noah-isme/uni-registration-api/pkg/response"
)

type offeredCourseSectionService interface {
	Create(ctx context.Context, req dto.CreateOfferedCourseSectionRequest) (*dto.OfferedCourseSectionResponse, error)
}

type classScheduleService interface {
	Create(ctx context.Context, req dto.CreateClassScheduleRequest) (*models.OfferedCourseClassSchedule, error)
}

type rosterService interface {
	Export(ctx context.Context, sectionID, format string) (*service.RosterFile, error)
}

// OfferedCourseSectionHandler exposes section, schedule and roster endpoints.
type OfferedCourseSectionHandler struct {
	sections  offeredCourseSectionService
	schedules classScheduleService
	roster    rosterService
}

// NewOfferedCourseSectionHandler builds a new handler.
func NewOfferedCourseSectionHandler(sections offeredCourseSectionService, schedules classScheduleService, roster rosterService) *OfferedCourseSectionHandler {
	return &OfferedCourseSectionHandler{sections: sections, schedules: schedules, roster: roster}
}

// Create godoc
// @Summary Create an offered course section with its class schedules
// @Tags OfferedCourseSections
// @Accept json
// @Produce json
// @Param payload body dto.CreateOfferedCourseSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offered-course-sections [post]
func (h *OfferedCourseSectionHandler) Create(c *gin.Context) {
	var req dto.CreateOfferedCourseSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid offered course section payload"))
		return
	}
	section, err := h.sections.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// CreateSchedule godoc
// @Summary Add a class schedule to an existing section
// @Tags OfferedCourseSections
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /offered-course-class-schedules [post]
func (h *OfferedCourseSectionHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateClassScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid class schedule payload"))
		return
	}
	schedule, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Roster godoc
// @Summary Export the students enrolled in a section
// @Tags OfferedCourseSections
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Section ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /offered-course-sections/{id}/roster [get]
func (h *OfferedCourseSectionHandler) Roster(c *gin.Context) {
	file, err := h.roster.Export(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
