package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
)

// OfferedCourseRepository reads offered courses and their catalog context.
type OfferedCourseRepository struct {
	db *sqlx.DB
}

// NewOfferedCourseRepository constructs the repository.
func NewOfferedCourseRepository(db *sqlx.DB) *OfferedCourseRepository {
	return &OfferedCourseRepository{db: db}
}

// FindByID returns the offered course joined with its course credits.
func (r *OfferedCourseRepository) FindByID(ctx context.Context, id string) (*models.OfferedCourseWithCredits, error) {
	const query = `SELECT oc.id, oc.course_id, oc.semester_registration_id, oc.academic_department_id, oc.created_at, oc.updated_at, c.credits
FROM offered_courses oc
JOIN courses c ON c.id = oc.course_id
WHERE oc.id = $1`
	var oc models.OfferedCourseWithCredits
	if err := r.db.GetContext(ctx, &oc, query, id); err != nil {
		return nil, err
	}
	return &oc, nil
}

// ListCatalog returns the offered courses of a department within a window.
func (r *OfferedCourseRepository) ListCatalog(ctx context.Context, semesterRegistrationID, departmentID string) ([]dto.OfferedCourseCatalogRow, error) {
	const query = `SELECT oc.id AS offered_course_id, c.id AS course_id, c.title, c.code, c.credits
FROM offered_courses oc
JOIN courses c ON c.id = oc.course_id
WHERE oc.semester_registration_id = $1 AND oc.academic_department_id = $2
ORDER BY c.code`
	var rows []dto.OfferedCourseCatalogRow
	if err := r.db.SelectContext(ctx, &rows, query, semesterRegistrationID, departmentID); err != nil {
		return nil, fmt.Errorf("list offered course catalog: %w", err)
	}
	return rows, nil
}

// ListPrerequisites returns prerequisite edges for the given courses.
func (r *OfferedCourseRepository) ListPrerequisites(ctx context.Context, courseIDs []string) ([]models.CoursePrerequisite, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT course_id, prerequisite_id FROM course_prerequisites WHERE course_id IN (?)`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build prerequisite query: %w", err)
	}
	var edges []models.CoursePrerequisite
	if err := r.db.SelectContext(ctx, &edges, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list prerequisites: %w", err)
	}
	return edges, nil
}

const sectionColumns = `id, title, max_capacity, currently_enrolled_student, offered_course_id, semester_registration_id, created_at, updated_at`

// OfferedCourseSectionRepository persists sections and owns the enrollment counter.
type OfferedCourseSectionRepository struct {
	db *sqlx.DB
}

// NewOfferedCourseSectionRepository constructs the repository.
func NewOfferedCourseSectionRepository(db *sqlx.DB) *OfferedCourseSectionRepository {
	return &OfferedCourseSectionRepository{db: db}
}

func (r *OfferedCourseSectionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a section.
func (r *OfferedCourseSectionRepository) FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error) {
	query := `SELECT ` + sectionColumns + ` FROM offered_course_sections WHERE id = $1`
	var section models.OfferedCourseSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ExistsByTitle reports whether the offered course already has a section with title.
func (r *OfferedCourseSectionRepository) ExistsByTitle(ctx context.Context, offeredCourseID, title string) (bool, error) {
	const query = `SELECT 1 FROM offered_course_sections WHERE offered_course_id = $1 AND title = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, offeredCourseID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check section title: %w", err)
	}
	return true, nil
}

// ListByOfferedCourses returns sections of the given offered courses.
func (r *OfferedCourseSectionRepository) ListByOfferedCourses(ctx context.Context, offeredCourseIDs []string) ([]models.OfferedCourseSection, error) {
	if len(offeredCourseIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+sectionColumns+` FROM offered_course_sections WHERE offered_course_id IN (?) ORDER BY title`, offeredCourseIDs)
	if err != nil {
		return nil, fmt.Errorf("build section query: %w", err)
	}
	var sections []models.OfferedCourseSection
	if err := r.db.SelectContext(ctx, &sections, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// Create inserts a section.
func (r *OfferedCourseSectionRepository) Create(ctx context.Context, exec sqlx.ExtContext, section *models.OfferedCourseSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	const query = `INSERT INTO offered_course_sections (id, title, max_capacity, currently_enrolled_student, offered_course_id, semester_registration_id, created_at, updated_at)
VALUES (:id, :title, :max_capacity, :currently_enrolled_student, :offered_course_id, :semester_registration_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// IncrementEnrolled takes one seat if the section is below capacity.
// It reports false when the section is full or missing.
func (r *OfferedCourseSectionRepository) IncrementEnrolled(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `UPDATE offered_course_sections SET currently_enrolled_student = currently_enrolled_student + 1, updated_at = $2
WHERE id = $1 AND currently_enrolled_student < max_capacity`
	return affectedOne(r.exec(exec).ExecContext(ctx, query, id, time.Now().UTC()))
}

// DecrementEnrolled releases one seat. It reports false when the counter is already zero.
func (r *OfferedCourseSectionRepository) DecrementEnrolled(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `UPDATE offered_course_sections SET currently_enrolled_student = currently_enrolled_student - 1, updated_at = $2
WHERE id = $1 AND currently_enrolled_student > 0`
	return affectedOne(r.exec(exec).ExecContext(ctx, query, id, time.Now().UTC()))
}

func affectedOne(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
