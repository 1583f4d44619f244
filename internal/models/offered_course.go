package models

import "time"

// WeekDay names a teaching day.
type WeekDay string

const (
	Saturday  WeekDay = "SATURDAY"
	Sunday    WeekDay = "SUNDAY"
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
)

// Valid reports whether d is a known day.
func (d WeekDay) Valid() bool {
	switch d {
	case Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	}
	return false
}

// OfferedCourse is a course made available in one registration window for one department.
type OfferedCourse struct {
	ID                     string    `db:"id" json:"id"`
	CourseID               string    `db:"course_id" json:"courseId"`
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semesterRegistrationId"`
	AcademicDepartmentID   string    `db:"academic_department_id" json:"academicDepartmentId"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// OfferedCourseWithCredits joins an offered course with its catalog credit weight.
type OfferedCourseWithCredits struct {
	OfferedCourse
	Credits int `db:"credits" json:"credits"`
}

// OfferedCourseSection is a capacity-limited section of an offered course.
type OfferedCourseSection struct {
	ID                       string    `db:"id" json:"id"`
	Title                    string    `db:"title" json:"title"`
	MaxCapacity              int       `db:"max_capacity" json:"maxCapacity"`
	CurrentlyEnrolledStudent int       `db:"currently_enrolled_student" json:"currentlyEnrolledStudent"`
	OfferedCourseID          string    `db:"offered_course_id" json:"offeredCourseId"`
	SemesterRegistrationID   string    `db:"semester_registration_id" json:"semesterRegistrationId"`
	CreatedAt                time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt                time.Time `db:"updated_at" json:"updatedAt"`
}

// Full reports whether the section has no free seat.
func (s *OfferedCourseSection) Full() bool {
	return s.CurrentlyEnrolledStudent >= s.MaxCapacity
}

// OfferedCourseClassSchedule is one weekly meeting of a section.
type OfferedCourseClassSchedule struct {
	ID                     string    `db:"id" json:"id"`
	DayOfWeek              WeekDay   `db:"day_of_week" json:"dayOfWeek"`
	StartTime              string    `db:"start_time" json:"startTime"`
	EndTime                string    `db:"end_time" json:"endTime"`
	RoomID                 string    `db:"room_id" json:"roomId"`
	FacultyID              string    `db:"faculty_id" json:"facultyId"`
	OfferedCourseSectionID string    `db:"offered_course_section_id" json:"offeredCourseSectionId"`
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semesterRegistrationId"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// ClassScheduleDetail enriches a schedule with room, building and faculty names.
type ClassScheduleDetail struct {
	OfferedCourseClassSchedule
	RoomNumber   string `db:"room_number" json:"roomNumber"`
	Floor        string `db:"floor" json:"floor"`
	BuildingID   string `db:"building_id" json:"buildingId"`
	BuildingName string `db:"building_title" json:"buildingTitle"`
	FacultyName  string `db:"faculty_name" json:"facultyName"`
}
