package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

const semesterRegistrationColumns = `id, academic_semester_id, status, start_date, end_date, min_credit, max_credit, created_at, updated_at`

// SemesterRegistrationRepository persists registration windows.
type SemesterRegistrationRepository struct {
	db *sqlx.DB
}

// NewSemesterRegistrationRepository constructs the repository.
func NewSemesterRegistrationRepository(db *sqlx.DB) *SemesterRegistrationRepository {
	return &SemesterRegistrationRepository{db: db}
}

func (r *SemesterRegistrationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// FindByID loads a window by identifier.
func (r *SemesterRegistrationRepository) FindByID(ctx context.Context, id string) (*models.SemesterRegistration, error) {
	query := `SELECT ` + semesterRegistrationColumns + ` FROM semester_registrations WHERE id = $1`
	var reg models.SemesterRegistration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByIDForUpdate loads and row-locks a window inside exec.
func (r *SemesterRegistrationRepository) FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SemesterRegistration, error) {
	query := `SELECT ` + semesterRegistrationColumns + ` FROM semester_registrations WHERE id = $1 FOR UPDATE`
	var reg models.SemesterRegistration
	if err := sqlx.GetContext(ctx, r.exec(exec), &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByStatus returns the most recent window in any of the given statuses.
// It returns sql.ErrNoRows when none matches.
func (r *SemesterRegistrationRepository) FindByStatus(ctx context.Context, statuses ...models.SemesterRegistrationStatus) (*models.SemesterRegistration, error) {
	if len(statuses) == 0 {
		return nil, sql.ErrNoRows
	}
	query, args, err := sqlx.In(`SELECT `+semesterRegistrationColumns+` FROM semester_registrations WHERE status IN (?) ORDER BY created_at DESC LIMIT 1`, statuses)
	if err != nil {
		return nil, fmt.Errorf("build status query: %w", err)
	}
	var reg models.SemesterRegistration
	if err := r.db.GetContext(ctx, &reg, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return &reg, nil
}

// ExistsActive reports whether any window is UPCOMING or ONGOING.
func (r *SemesterRegistrationRepository) ExistsActive(ctx context.Context) (bool, error) {
	const query = `SELECT 1 FROM semester_registrations WHERE status IN ('UPCOMING', 'ONGOING') LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check active registration: %w", err)
	}
	return true, nil
}

// List returns windows matching the filter with the total count.
func (r *SemesterRegistrationRepository) List(ctx context.Context, filter models.SemesterRegistrationFilter) ([]models.SemesterRegistration, int, error) {
	base := "FROM semester_registrations WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicSemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_semester_id = $%d", len(args)+1))
		args = append(args, filter.AcademicSemesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"startDate": "start_date",
		"endDate":   "end_date",
		"createdAt": "created_at",
		"status":    "status",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page, size := normalisePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", semesterRegistrationColumns, base, column, order, size, (page-1)*size)

	var regs []models.SemesterRegistration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list semester registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count semester registrations: %w", err)
	}
	return regs, total, nil
}

// Create inserts a window.
func (r *SemesterRegistrationRepository) Create(ctx context.Context, reg *models.SemesterRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	const query = `INSERT INTO semester_registrations (id, academic_semester_id, status, start_date, end_date, min_credit, max_credit, created_at, updated_at)
VALUES (:id, :academic_semester_id, :status, :start_date, :end_date, :min_credit, :max_credit, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create semester registration: %w", err)
	}
	return nil
}

// Update writes every mutable column of reg.
func (r *SemesterRegistrationRepository) Update(ctx context.Context, exec sqlx.ExtContext, reg *models.SemesterRegistration) error {
	reg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE semester_registrations SET academic_semester_id = :academic_semester_id, status = :status, start_date = :start_date, end_date = :end_date,
min_credit = :min_credit, max_credit = :max_credit, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, reg); err != nil {
		return fmt.Errorf("update semester registration: %w", err)
	}
	return nil
}

// Delete removes a window. It reports whether a row was removed.
func (r *SemesterRegistrationRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM semester_registrations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete semester registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete semester registration rows: %w", err)
	}
	return n > 0, nil
}

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
