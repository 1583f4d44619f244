package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

// EnrolledCourseRepository materialises course enrollments, their marks and semester payments.
// Every write is insert-if-absent so reruns are harmless.
type EnrolledCourseRepository struct {
	db *sqlx.DB
}

// NewEnrolledCourseRepository constructs the repository.
func NewEnrolledCourseRepository(db *sqlx.DB) *EnrolledCourseRepository {
	return &EnrolledCourseRepository{db: db}
}

func (r *EnrolledCourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// EnsureEnrolledCourse returns the id of the (student, course, semester) record, creating an
// ONGOING one when absent. created reports whether a row was inserted.
func (r *EnrolledCourseRepository) EnsureEnrolledCourse(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, academicSemesterID string) (id string, created bool, err error) {
	ext := r.exec(exec)
	now := time.Now().UTC()
	const insert = `INSERT INTO student_enrolled_courses (id, student_id, course_id, academic_semester_id, status, point, total_marks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $6)
ON CONFLICT (student_id, course_id, academic_semester_id) DO NOTHING
RETURNING id`
	err = sqlx.GetContext(ctx, ext, &id, insert, uuid.NewString(), studentID, courseID, academicSemesterID, models.EnrolledCourseOngoing, now)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("insert enrolled course: %w", err)
	}

	const lookup = `SELECT id FROM student_enrolled_courses WHERE student_id = $1 AND course_id = $2 AND academic_semester_id = $3`
	if err = sqlx.GetContext(ctx, ext, &id, lookup, studentID, courseID, academicSemesterID); err != nil {
		return "", false, fmt.Errorf("load enrolled course: %w", err)
	}
	return id, false, nil
}

// EnsureMark creates the (enrolled course, exam type) mark slot when absent.
func (r *EnrolledCourseRepository) EnsureMark(ctx context.Context, exec sqlx.ExtContext, mark models.StudentEnrolledCourseMark) (bool, error) {
	now := time.Now().UTC()
	const query = `INSERT INTO student_enrolled_course_marks (id, student_id, student_enrolled_course_id, academic_semester_id, exam_type, marks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
ON CONFLICT (student_enrolled_course_id, exam_type) DO NOTHING`
	ok, err := affectedOne(r.exec(exec).ExecContext(ctx, query, uuid.NewString(), mark.StudentID, mark.StudentEnrolledCourseID, mark.AcademicSemesterID, mark.ExamType, now))
	if err != nil {
		return false, fmt.Errorf("insert course mark: %w", err)
	}
	return ok, nil
}

// EnsurePayment creates the (student, semester) payment when absent.
func (r *EnrolledCourseRepository) EnsurePayment(ctx context.Context, exec sqlx.ExtContext, payment *models.StudentSemesterPayment) (bool, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaymentStatus == "" {
		payment.PaymentStatus = models.PaymentPending
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	const query = `INSERT INTO student_semester_payments (id, student_id, academic_semester_id, full_payment_amount, partial_payment_amount, total_due_amount, total_paid_amount, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (student_id, academic_semester_id) DO NOTHING`
	ok, err := affectedOne(r.exec(exec).ExecContext(ctx, query,
		payment.ID,
		payment.StudentID,
		payment.AcademicSemesterID,
		payment.FullPaymentAmount,
		payment.PartialPaymentAmount,
		payment.TotalDueAmount,
		payment.TotalPaidAmount,
		payment.PaymentStatus,
		now,
	))
	if err != nil {
		return false, fmt.Errorf("insert semester payment: %w", err)
	}
	return ok, nil
}
