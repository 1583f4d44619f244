package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

// RegistrationCourseRepository persists enrollment rows keyed by (window, student, offered course).
type RegistrationCourseRepository struct {
	db *sqlx.DB
}

// NewRegistrationCourseRepository constructs the repository.
func NewRegistrationCourseRepository(db *sqlx.DB) *RegistrationCourseRepository {
	return &RegistrationCourseRepository{db: db}
}

func (r *RegistrationCourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Find returns the enrollment row for the composite key.
func (r *RegistrationCourseRepository) Find(ctx context.Context, semesterRegistrationID, studentID, offeredCourseID string) (*models.StudentSemesterRegistrationCourse, error) {
	const query = `SELECT semester_registration_id, student_id, offered_course_id, offered_course_section_id, created_at, updated_at
FROM student_semester_registration_courses
WHERE semester_registration_id = $1 AND student_id = $2 AND offered_course_id = $3`
	var row models.StudentSemesterRegistrationCourse
	if err := r.db.GetContext(ctx, &row, query, semesterRegistrationID, studentID, offeredCourseID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Exists reports whether the composite key is taken.
func (r *RegistrationCourseRepository) Exists(ctx context.Context, semesterRegistrationID, studentID, offeredCourseID string) (bool, error) {
	_, err := r.Find(ctx, semesterRegistrationID, studentID, offeredCourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Insert adds an enrollment row. It reports false when the composite key already exists.
func (r *RegistrationCourseRepository) Insert(ctx context.Context, exec sqlx.ExtContext, row *models.StudentSemesterRegistrationCourse) (bool, error) {
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	const query = `INSERT INTO student_semester_registration_courses (semester_registration_id, student_id, offered_course_id, offered_course_section_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (semester_registration_id, student_id, offered_course_id) DO NOTHING`
	ok, err := affectedOne(r.exec(exec).ExecContext(ctx, query, row.SemesterRegistrationID, row.StudentID, row.OfferedCourseID, row.OfferedCourseSectionID, now))
	if err != nil {
		return false, fmt.Errorf("insert enrollment: %w", err)
	}
	return ok, nil
}

// Delete removes the row for the composite key held in the given section.
// It reports false when nothing matched.
func (r *RegistrationCourseRepository) Delete(ctx context.Context, exec sqlx.ExtContext, key models.StudentSemesterRegistrationCourse) (bool, error) {
	const query = `DELETE FROM student_semester_registration_courses
WHERE semester_registration_id = $1 AND student_id = $2 AND offered_course_id = $3 AND offered_course_section_id = $4`
	ok, err := affectedOne(r.exec(exec).ExecContext(ctx, query, key.SemesterRegistrationID, key.StudentID, key.OfferedCourseID, key.OfferedCourseSectionID))
	if err != nil {
		return false, fmt.Errorf("delete enrollment: %w", err)
	}
	return ok, nil
}

// ListByStudent returns the student's enrollments in a window with catalog course data.
func (r *RegistrationCourseRepository) ListByStudent(ctx context.Context, exec sqlx.ExtContext, semesterRegistrationID, studentID string) ([]models.RegistrationCourseDetail, error) {
	const query = `SELECT rc.semester_registration_id, rc.student_id, rc.offered_course_id, rc.offered_course_section_id, rc.created_at, rc.updated_at,
	oc.course_id, c.credits
FROM student_semester_registration_courses rc
JOIN offered_courses oc ON oc.id = rc.offered_course_id
JOIN courses c ON c.id = oc.course_id
WHERE rc.semester_registration_id = $1 AND rc.student_id = $2
ORDER BY rc.created_at`
	var rows []models.RegistrationCourseDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, semesterRegistrationID, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return rows, nil
}

// ListOfferedCourseIDs returns the offered courses the student holds in a window.
func (r *RegistrationCourseRepository) ListOfferedCourseIDs(ctx context.Context, semesterRegistrationID, studentID string) ([]string, error) {
	const query = `SELECT offered_course_id FROM student_semester_registration_courses WHERE semester_registration_id = $1 AND student_id = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, semesterRegistrationID, studentID); err != nil {
		return nil, fmt.Errorf("list taken offered courses: %w", err)
	}
	return ids, nil
}

// ListRoster returns the students enrolled in a section.
func (r *RegistrationCourseRepository) ListRoster(ctx context.Context, sectionID string) ([]models.RosterEntry, error) {
	const query = `SELECT s.id AS student_id, s.student_id AS university_id, s.first_name, s.last_name, s.email, rc.created_at
FROM student_semester_registration_courses rc
JOIN students s ON s.id = rc.student_id
WHERE rc.offered_course_section_id = $1
ORDER BY s.student_id`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section roster: %w", err)
	}
	return entries, nil
}
