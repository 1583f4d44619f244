package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

// AcademicSemesterRepository reads academic semesters and flips the current marker.
type AcademicSemesterRepository struct {
	db *sqlx.DB
}

// NewAcademicSemesterRepository constructs the repository.
func NewAcademicSemesterRepository(db *sqlx.DB) *AcademicSemesterRepository {
	return &AcademicSemesterRepository{db: db}
}

// FindByID loads a semester.
func (r *AcademicSemesterRepository) FindByID(ctx context.Context, id string) (*models.AcademicSemester, error) {
	const query = `SELECT id, title, year, code, is_current, created_at, updated_at FROM academic_semesters WHERE id = $1`
	var sem models.AcademicSemester
	if err := r.db.GetContext(ctx, &sem, query, id); err != nil {
		return nil, err
	}
	return &sem, nil
}

// SetCurrent clears is_current everywhere and sets it on id, within exec.
func (r *AcademicSemesterRepository) SetCurrent(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if exec == nil {
		exec = r.db
	}
	now := time.Now().UTC()
	if _, err := exec.ExecContext(ctx, `UPDATE academic_semesters SET is_current = FALSE, updated_at = $1 WHERE is_current = TRUE AND id <> $2`, now, id); err != nil {
		return fmt.Errorf("clear current semester: %w", err)
	}
	res, err := exec.ExecContext(ctx, `UPDATE academic_semesters SET is_current = TRUE, updated_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		return fmt.Errorf("set current semester: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set current semester %s: no row updated", id)
	}
	return nil
}
