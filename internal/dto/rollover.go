package dto

import "time"

// RolloverFailure records a student whose materialisation did not commit.
type RolloverFailure struct {
	StudentID string `json:"studentId"`
	Error     string `json:"error"`
}

// RolloverReport summarises a semester start.
type RolloverReport struct {
	SemesterRegistrationID string            `json:"semesterRegistrationId"`
	AcademicSemesterID     string            `json:"academicSemesterId"`
	Students               int               `json:"students"`
	Succeeded              int               `json:"succeeded"`
	PaymentsCreated        int               `json:"paymentsCreated"`
	EnrolledCoursesCreated int               `json:"enrolledCoursesCreated"`
	MarksCreated           int               `json:"marksCreated"`
	Failed                 []RolloverFailure `json:"failed,omitempty"`
	RetryScheduled         bool              `json:"retryScheduled"`
	Duration               time.Duration     `json:"durationNs"`
}

// MaterializeResult counts the rows created for one student.
type MaterializeResult struct {
	PaymentCreated         bool
	EnrolledCoursesCreated int
	MarksCreated           int
}
