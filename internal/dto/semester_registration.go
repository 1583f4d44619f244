package dto

import (
	"time"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

// CreateSemesterRegistrationRequest opens a new registration window.
type CreateSemesterRegistrationRequest struct {
	AcademicSemesterID string    `json:"academicSemesterId" validate:"required"`
	StartDate          time.Time `json:"startDate" validate:"required"`
	EndDate            time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
	MinCredit          int       `json:"minCredit" validate:"gte=0"`
	MaxCredit          int       `json:"maxCredit" validate:"gte=0"`
}

// UpdateSemesterRegistrationRequest patches a window. A non-empty Status requests a transition.
type UpdateSemesterRegistrationRequest struct {
	AcademicSemesterID *string                            `json:"academicSemesterId,omitempty"`
	Status             *models.SemesterRegistrationStatus `json:"status,omitempty"`
	StartDate          *time.Time                         `json:"startDate,omitempty"`
	EndDate            *time.Time                         `json:"endDate,omitempty"`
	MinCredit          *int                               `json:"minCredit,omitempty" validate:"omitempty,gte=0"`
	MaxCredit          *int                               `json:"maxCredit,omitempty" validate:"omitempty,gte=0"`
}

// SemesterRegistrationQuery binds list query parameters.
type SemesterRegistrationQuery struct {
	AcademicSemesterID string `form:"academicSemesterId"`
	Status             string `form:"status"`
	Page               int    `form:"page"`
	Limit              int    `form:"limit"`
	SortBy             string `form:"sortBy"`
	SortOrder          string `form:"sortOrder"`
}

// EnrollCourseRequest names the offered course and section a student enrolls into or withdraws from.
type EnrollCourseRequest struct {
	OfferedCourseID        string `json:"offeredCourseId" validate:"required"`
	OfferedCourseSectionID string `json:"offeredCourseSectionId" validate:"required"`
}

// MyRegistrationResponse pairs the active window with the caller's registration row.
type MyRegistrationResponse struct {
	SemesterRegistration        *models.SemesterRegistration        `json:"semesterRegistration"`
	StudentSemesterRegistration *models.StudentSemesterRegistration `json:"studentSemesterRegistration"`
}
