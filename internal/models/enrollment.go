package models

import "time"

// EnrolledCourseStatus is the lifecycle of a materialised course enrollment.
type EnrolledCourseStatus string

const (
	EnrolledCourseOngoing   EnrolledCourseStatus = "ONGOING"
	EnrolledCourseCompleted EnrolledCourseStatus = "COMPLETED"
	EnrolledCourseWithdrawn EnrolledCourseStatus = "WITHDRAWN"
)

// ExamType names a mark bucket of an enrolled course.
type ExamType string

const (
	ExamMidterm ExamType = "MIDTERM"
	ExamFinal   ExamType = "FINAL"
)

// DefaultExamTypes are seeded for every enrolled course at semester start.
var DefaultExamTypes = []ExamType{ExamMidterm, ExamFinal}

// StudentEnrolledCourse is a student's course record for an academic semester.
type StudentEnrolledCourse struct {
	ID                 string               `db:"id" json:"id"`
	StudentID          string               `db:"student_id" json:"studentId"`
	CourseID           string               `db:"course_id" json:"courseId"`
	AcademicSemesterID string               `db:"academic_semester_id" json:"academicSemesterId"`
	Status             EnrolledCourseStatus `db:"status" json:"status"`
	Grade              *string              `db:"grade" json:"grade,omitempty"`
	Point              float64              `db:"point" json:"point"`
	TotalMarks         int                  `db:"total_marks" json:"totalMarks"`
	CreatedAt          time.Time            `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time            `db:"updated_at" json:"updatedAt"`
}

// StudentEnrolledCourseMark is a mark slot of an enrolled course.
type StudentEnrolledCourseMark struct {
	ID                      string    `db:"id" json:"id"`
	StudentID               string    `db:"student_id" json:"studentId"`
	StudentEnrolledCourseID string    `db:"student_enrolled_course_id" json:"studentEnrolledCourseId"`
	AcademicSemesterID      string    `db:"academic_semester_id" json:"academicSemesterId"`
	ExamType                ExamType  `db:"exam_type" json:"examType"`
	Grade                   *string   `db:"grade" json:"grade,omitempty"`
	Marks                   int       `db:"marks" json:"marks"`
	CreatedAt               time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt               time.Time `db:"updated_at" json:"updatedAt"`
}

// PaymentStatus tracks settlement of a semester payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL_PAID"
	PaymentFull    PaymentStatus = "FULL_PAID"
)

// StudentSemesterPayment is the fee obligation of a student for an academic semester.
type StudentSemesterPayment struct {
	ID                   string        `db:"id" json:"id"`
	StudentID            string        `db:"student_id" json:"studentId"`
	AcademicSemesterID   string        `db:"academic_semester_id" json:"academicSemesterId"`
	FullPaymentAmount    float64       `db:"full_payment_amount" json:"fullPaymentAmount"`
	PartialPaymentAmount float64       `db:"partial_payment_amount" json:"partialPaymentAmount"`
	TotalDueAmount       float64       `db:"total_due_amount" json:"totalDueAmount"`
	TotalPaidAmount      float64       `db:"total_paid_amount" json:"totalPaidAmount"`
	PaymentStatus        PaymentStatus `db:"payment_status" json:"paymentStatus"`
	CreatedAt            time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updatedAt"`
}
