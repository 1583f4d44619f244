package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
	"github.com/noah-isme/uni-registration-api/pkg/response"
)

type registrationService interface {
	StartRegistration(ctx context.Context, studentAuthID string) (*dto.MyRegistrationResponse, error)
	GetMyRegistration(ctx context.Context, studentAuthID string) (*dto.MyRegistrationResponse, error)
	Confirm(ctx context.Context, studentAuthID string) error
}

type enrollmentService interface {
	Enroll(ctx context.Context, studentAuthID string, req dto.EnrollCourseRequest) error
	Withdraw(ctx context.Context, studentAuthID string, req dto.EnrollCourseRequest) error
}

type availableCourseService interface {
	GetAvailableCourses(ctx context.Context, studentAuthID string) ([]dto.AvailableCourse, error)
}

// StudentRegistrationHandler exposes the self-service registration flow for students.
type StudentRegistrationHandler struct {
	registrations registrationService
	enrollments   enrollmentService
	courses       availableCourseService
}

// NewStudentRegistrationHandler builds a new handler.
func NewStudentRegistrationHandler(registrations registrationService, enrollments enrollmentService, courses availableCourseService) *StudentRegistrationHandler {
	return &StudentRegistrationHandler{registrations: registrations, enrollments: enrollments, courses: courses}
}

// StartRegistration godoc
// @Summary Join the ongoing registration window
// @Tags StudentRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/start-registration [post]
func (h *StudentRegistrationHandler) StartRegistration(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.registrations.StartRegistration(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Student semester registration started successfully", result)
}

// GetMyRegistration godoc
// @Summary Show the caller's registration in the active window
// @Tags StudentRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semester-registrations/get-my-registration [get]
func (h *StudentRegistrationHandler) GetMyRegistration(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.registrations.GetMyRegistration(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// EnrollIntoCourse godoc
// @Summary Enroll into a section of an offered course
// @Tags StudentRegistration
// @Accept json
// @Produce json
// @Param payload body dto.EnrollCourseRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/enroll-into-course [post]
func (h *StudentRegistrationHandler) EnrollIntoCourse(c *gin.Context) {
	h.changeEnrollment(c, h.enrollments.Enroll, "Student enrolled into course successfully")
}

// WithdrawFromCourse godoc
// @Summary Withdraw from a section of an offered course
// @Tags StudentRegistration
// @Accept json
// @Produce json
// @Param payload body dto.EnrollCourseRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/withdraw-from-course [post]
func (h *StudentRegistrationHandler) WithdrawFromCourse(c *gin.Context) {
	h.changeEnrollment(c, h.enrollments.Withdraw, "Student withdrew from course successfully")
}

// ConfirmMyRegistration godoc
// @Summary Confirm the caller's course load
// @Tags StudentRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /semester-registrations/confirm-my-registration [post]
func (h *StudentRegistrationHandler) ConfirmMyRegistration(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.registrations.Confirm(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Your registration is confirmed", nil)
}

// GetMySemesterCourses godoc
// @Summary List offered courses the caller can still take
// @Tags StudentRegistration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semester-registrations/get-my-semester-courses [get]
func (h *StudentRegistrationHandler) GetMySemesterCourses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courses, err := h.courses.GetAvailableCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

func (h *StudentRegistrationHandler) changeEnrollment(c *gin.Context, apply func(context.Context, string, dto.EnrollCourseRequest) error, message string) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.EnrollCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid enrollment payload"))
		return
	}
	if err := apply(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, message, nil)
}
