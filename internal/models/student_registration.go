package models

import "time"

// StudentSemesterRegistration tracks a student's participation in one window.
type StudentSemesterRegistration struct {
	ID                     string    `db:"id" json:"id"`
	StudentID              string    `db:"student_id" json:"studentId"`
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semesterRegistrationId"`
	TotalCreditsTaken      int       `db:"total_credits_taken" json:"totalCreditsTaken"`
	IsConfirmed            bool      `db:"is_confirmed" json:"isConfirmed"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentSemesterRegistrationCourse is one enrollment row keyed by (window, student, offered course).
type StudentSemesterRegistrationCourse struct {
	SemesterRegistrationID string    `db:"semester_registration_id" json:"semesterRegistrationId"`
	StudentID              string    `db:"student_id" json:"studentId"`
	OfferedCourseID        string    `db:"offered_course_id" json:"offeredCourseId"`
	OfferedCourseSectionID string    `db:"offered_course_section_id" json:"offeredCourseSectionId"`
	CreatedAt              time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt              time.Time `db:"updated_at" json:"updatedAt"`
}

// RegistrationCourseDetail carries the catalog course behind an enrollment row.
type RegistrationCourseDetail struct {
	StudentSemesterRegistrationCourse
	CourseID string `db:"course_id" json:"courseId"`
	Credits  int    `db:"credits" json:"credits"`
}

// RosterEntry is one student enrolled in a section.
type RosterEntry struct {
	StudentID    string    `db:"student_id" json:"studentId"`
	UniversityID string    `db:"university_id" json:"universityId"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Email        string    `db:"email" json:"email"`
	EnrolledAt   time.Time `db:"created_at" json:"enrolledAt"`
}
