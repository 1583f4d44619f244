package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

const studentRegistrationColumns = `id, student_id, semester_registration_id, total_credits_taken, is_confirmed, created_at, updated_at`

// StudentRegistrationRepository persists per-student registration rows and the credit counter.
type StudentRegistrationRepository struct {
	db *sqlx.DB
}

// NewStudentRegistrationRepository constructs the repository.
func NewStudentRegistrationRepository(db *sqlx.DB) *StudentRegistrationRepository {
	return &StudentRegistrationRepository{db: db}
}

func (r *StudentRegistrationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Find loads the row for (student, window).
func (r *StudentRegistrationRepository) Find(ctx context.Context, studentID, semesterRegistrationID string) (*models.StudentSemesterRegistration, error) {
	query := `SELECT ` + studentRegistrationColumns + ` FROM student_semester_registrations WHERE student_id = $1 AND semester_registration_id = $2`
	var ssr models.StudentSemesterRegistration
	if err := r.db.GetContext(ctx, &ssr, query, studentID, semesterRegistrationID); err != nil {
		return nil, err
	}
	return &ssr, nil
}

// GetOrCreate returns the row for (student, window), inserting an empty one if absent.
func (r *StudentRegistrationRepository) GetOrCreate(ctx context.Context, studentID, semesterRegistrationID string) (*models.StudentSemesterRegistration, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO student_semester_registrations (id, student_id, semester_registration_id, total_credits_taken, is_confirmed, created_at, updated_at)
VALUES ($1, $2, $3, 0, FALSE, $4, $4)
ON CONFLICT (student_id, semester_registration_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), studentID, semesterRegistrationID, now); err != nil {
		return nil, fmt.Errorf("create student registration: %w", err)
	}
	return r.Find(ctx, studentID, semesterRegistrationID)
}

// AddCredits upserts the row and adds credits to its running total.
func (r *StudentRegistrationRepository) AddCredits(ctx context.Context, exec sqlx.ExtContext, studentID, semesterRegistrationID string, credits int) error {
	now := time.Now().UTC()
	const query = `INSERT INTO student_semester_registrations (id, student_id, semester_registration_id, total_credits_taken, is_confirmed, created_at, updated_at)
VALUES ($1, $2, $3, $4, FALSE, $5, $5)
ON CONFLICT (student_id, semester_registration_id)
DO UPDATE SET total_credits_taken = student_semester_registrations.total_credits_taken + EXCLUDED.total_credits_taken, updated_at = EXCLUDED.updated_at`
	if _, err := r.exec(exec).ExecContext(ctx, query, uuid.NewString(), studentID, semesterRegistrationID, credits, now); err != nil {
		return fmt.Errorf("add credits: %w", err)
	}
	return nil
}

// SubtractCredits removes credits from the running total. It reports false when the
// row is missing or holds fewer credits than requested.
func (r *StudentRegistrationRepository) SubtractCredits(ctx context.Context, exec sqlx.ExtContext, studentID, semesterRegistrationID string, credits int) (bool, error) {
	const query = `UPDATE student_semester_registrations SET total_credits_taken = total_credits_taken - $3, updated_at = $4
WHERE student_id = $1 AND semester_registration_id = $2 AND total_credits_taken >= $3`
	ok, err := affectedOne(r.exec(exec).ExecContext(ctx, query, studentID, semesterRegistrationID, credits, time.Now().UTC()))
	if err != nil {
		return false, fmt.Errorf("subtract credits: %w", err)
	}
	return ok, nil
}

// Confirm sets is_confirmed on the row.
func (r *StudentRegistrationRepository) Confirm(ctx context.Context, id string) error {
	const query = `UPDATE student_semester_registrations SET is_confirmed = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("confirm registration: %w", err)
	}
	return nil
}

// ListConfirmed returns every confirmed row of a window.
func (r *StudentRegistrationRepository) ListConfirmed(ctx context.Context, semesterRegistrationID string) ([]models.StudentSemesterRegistration, error) {
	query := `SELECT ` + studentRegistrationColumns + ` FROM student_semester_registrations WHERE semester_registration_id = $1 AND is_confirmed = TRUE ORDER BY student_id`
	var rows []models.StudentSemesterRegistration
	if err := r.db.SelectContext(ctx, &rows, query, semesterRegistrationID); err != nil {
		return nil, fmt.Errorf("list confirmed registrations: %w", err)
	}
	return rows, nil
}
