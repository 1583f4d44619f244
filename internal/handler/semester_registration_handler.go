package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
	"github.com/noah-isme/uni-registration-api/pkg/response"
)

type semesterRegistrationService interface {
	Create(ctx context.Context, req dto.CreateSemesterRegistrationRequest) (*models.SemesterRegistration, error)
	Get(ctx context.Context, id string) (*models.SemesterRegistration, error)
	List(ctx context.Context, filter models.SemesterRegistrationFilter) ([]models.SemesterRegistration, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateSemesterRegistrationRequest) (*models.SemesterRegistration, error)
	Delete(ctx context.Context, id string) error
}

type rolloverService interface {
	StartNewSemester(ctx context.Context, registrationID string) (*dto.RolloverReport, error)
	ResumeRollover(ctx context.Context, registrationID string) (*dto.RolloverReport, error)
}

// SemesterRegistrationHandler exposes registration window administration.
type SemesterRegistrationHandler struct {
	windows  semesterRegistrationService
	rollover rolloverService
}

// NewSemesterRegistrationHandler builds a new handler.
func NewSemesterRegistrationHandler(windows semesterRegistrationService, rollover rolloverService) *SemesterRegistrationHandler {
	return &SemesterRegistrationHandler{windows: windows, rollover: rollover}
}

// Create godoc
// @Summary Open a semester registration window
// @Tags SemesterRegistrations
// @Accept json
// @Produce json
// @Param payload body dto.CreateSemesterRegistrationRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations [post]
func (h *SemesterRegistrationHandler) Create(c *gin.Context) {
	var req dto.CreateSemesterRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid semester registration payload"))
		return
	}
	reg, err := h.windows.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Semester registration is created successfully", reg)
}

// List godoc
// @Summary List semester registration windows
// @Tags SemesterRegistrations
// @Produce json
// @Param academicSemesterId query string false "Academic semester filter"
// @Param status query string false "UPCOMING, ONGOING or ENDED"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sortBy query string false "startDate, endDate or createdAt"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /semester-registrations [get]
func (h *SemesterRegistrationHandler) List(c *gin.Context) {
	var q dto.SemesterRegistrationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid query parameters"))
		return
	}
	regs, pagination, err := h.windows.List(c.Request.Context(), models.SemesterRegistrationFilter{
		AcademicSemesterID: q.AcademicSemesterID,
		Status:             models.SemesterRegistrationStatus(q.Status),
		Page:               q.Page,
		PageSize:           q.Limit,
		SortBy:             q.SortBy,
		SortOrder:          q.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, pagination)
}

// Get godoc
// @Summary Get a semester registration window
// @Tags SemesterRegistrations
// @Produce json
// @Param id path string true "Semester registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /semester-registrations/{id} [get]
func (h *SemesterRegistrationHandler) Get(c *gin.Context) {
	reg, err := h.windows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Update godoc
// @Summary Update a window or advance its status
// @Tags SemesterRegistrations
// @Accept json
// @Produce json
// @Param id path string true "Semester registration ID"
// @Param payload body dto.UpdateSemesterRegistrationRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/{id} [patch]
func (h *SemesterRegistrationHandler) Update(c *gin.Context) {
	var req dto.UpdateSemesterRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid semester registration payload"))
		return
	}
	reg, err := h.windows.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Semester registration is updated successfully", reg)
}

// Delete godoc
// @Summary Delete a semester registration window
// @Tags SemesterRegistrations
// @Produce json
// @Param id path string true "Semester registration ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /semester-registrations/{id} [delete]
func (h *SemesterRegistrationHandler) Delete(c *gin.Context) {
	if err := h.windows.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Semester registration is deleted successfully", nil)
}

// StartNewSemester godoc
// @Summary Start the academic semester of an ended window
// @Tags SemesterRegistrations
// @Produce json
// @Param id path string true "Semester registration ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/{id}/start-new-semester [post]
func (h *SemesterRegistrationHandler) StartNewSemester(c *gin.Context) {
	report, err := h.rollover.StartNewSemester(c.Request.Context(), c.Param("id"))
	if err != nil {
		rolloverError(c, report, err)
		return
	}
	response.Message(c, http.StatusOK, "Semester started successfully", report)
}

// ResumeRollover godoc
// @Summary Retry materialisation for students a previous rollover missed
// @Tags SemesterRegistrations
// @Produce json
// @Param id path string true "Semester registration ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/{id}/resume-rollover [post]
func (h *SemesterRegistrationHandler) ResumeRollover(c *gin.Context) {
	report, err := h.rollover.ResumeRollover(c.Request.Context(), c.Param("id"))
	if err != nil {
		rolloverError(c, report, err)
		return
	}
	response.Message(c, http.StatusOK, "Semester rollover resumed successfully", report)
}

// rolloverError keeps the partial report when a run was interrupted midway.
func rolloverError(c *gin.Context, report *dto.RolloverReport, err error) {
	if report == nil {
		response.Error(c, err)
		return
	}
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, response.Envelope{
		Success:       false,
		Message:       appErr.Message,
		Error:         appErr,
		ErrorMessages: []response.ErrorMessage{{Message: appErr.Message}},
		Data:          report,
	})
}
