package dto

import "github.com/noah-isme/uni-registration-api/internal/models"

// ClassScheduleInput is a proposed weekly meeting.
type ClassScheduleInput struct {
	DayOfWeek models.WeekDay `json:"dayOfWeek" validate:"required"`
	StartTime string         `json:"startTime" validate:"required"`
	EndTime   string         `json:"endTime" validate:"required"`
	RoomID    string         `json:"roomId" validate:"required"`
	FacultyID string         `json:"facultyId" validate:"required"`
}

// CreateOfferedCourseSectionRequest creates a section with its schedules atomically.
type CreateOfferedCourseSectionRequest struct {
	OfferedCourseID string               `json:"offeredCourseId" validate:"required"`
	Title           string               `json:"title" validate:"required,max=64"`
	MaxCapacity     int                  `json:"maxCapacity" validate:"required,gt=0"`
	ClassSchedules  []ClassScheduleInput `json:"classSchedules" validate:"dive"`
}

// CreateClassScheduleRequest attaches one schedule to an existing section.
type CreateClassScheduleRequest struct {
	OfferedCourseSectionID string `json:"offeredCourseSectionId" validate:"required"`
	ClassScheduleInput
}

// OfferedCourseSectionResponse returns a section with the schedules created alongside it.
type OfferedCourseSectionResponse struct {
	*models.OfferedCourseSection
	ClassSchedules []models.OfferedCourseClassSchedule `json:"classSchedules"`
}

// AvailableCourse is one offered course a student may still enroll into.
type AvailableCourse struct {
	ID                     string             `json:"id"`
	SemesterRegistrationID string             `json:"semesterRegistrationId"`
	Course                 AvailableCourseRef `json:"course"`
	Sections               []AvailableSection `json:"offeredCourseSections"`
}

// AvailableCourseRef is the catalog portion of an available course.
type AvailableCourseRef struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Code          string   `json:"code"`
	Credits       int      `json:"credits"`
	Prerequisites []string `json:"preRequisites"`
}

// AvailableSection is a section with its schedules and locations.
type AvailableSection struct {
	models.OfferedCourseSection
	ClassSchedules []models.ClassScheduleDetail `json:"offeredCourseClassSchedules"`
}

// OfferedCourseCatalogRow is the flattened join used to build AvailableCourse values.
type OfferedCourseCatalogRow struct {
	OfferedCourseID string `db:"offered_course_id"`
	CourseID        string `db:"course_id"`
	Title           string `db:"title"`
	Code            string `db:"code"`
	Credits         int    `db:"credits"`
}
