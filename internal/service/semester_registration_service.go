package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	"github.com/noah-isme/uni-registration-api/pkg/database"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type semesterRegistrationRepository interface {
	FindByID(ctx context.Context, id string) (*models.SemesterRegistration, error)
	FindByIDForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.SemesterRegistration, error)
	ExistsActive(ctx context.Context) (bool, error)
	List(ctx context.Context, filter models.SemesterRegistrationFilter) ([]models.SemesterRegistration, int, error)
	Create(ctx context.Context, reg *models.SemesterRegistration) error
	Update(ctx context.Context, exec sqlx.ExtContext, reg *models.SemesterRegistration) error
	Delete(ctx context.Context, id string) (bool, error)
}

type academicSemesterReader interface {
	FindByID(ctx context.Context, id string) (*models.AcademicSemester, error)
}

// SemesterRegistrationService owns the registration window lifecycle.
type SemesterRegistrationService struct {
	repo      semesterRegistrationRepository
	semesters academicSemesterReader
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterRegistrationService wires the window manager.
func NewSemesterRegistrationService(repo semesterRegistrationRepository, semesters academicSemesterReader, tx txRunner, validate *validator.Validate, logger *zap.Logger) *SemesterRegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterRegistrationService{repo: repo, semesters: semesters, tx: tx, validator: validate, logger: logger}
}

// Create opens a new UPCOMING window. Only one window may be UPCOMING or ONGOING at a time.
func (s *SemesterRegistrationService) Create(ctx context.Context, req dto.CreateSemesterRegistrationRequest) (*models.SemesterRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid semester registration payload")
	}
	if err := validateCreditBounds(req.MinCredit, req.MaxCredit); err != nil {
		return nil, err
	}
	if _, err := s.semesters.FindByID(ctx, req.AcademicSemesterID); err != nil {
		return nil, lookupError(err, "academic semester not found", "failed to load academic semester")
	}

	active, err := s.repo.ExistsActive(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check active registrations")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrActiveWindowExists, "")
	}

	reg := &models.SemesterRegistration{
		AcademicSemesterID: req.AcademicSemesterID,
		Status:             models.SemesterRegistrationUpcoming,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		MinCredit:          req.MinCredit,
		MaxCredit:          req.MaxCredit,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrActiveWindowExists, "")
		}
		if database.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic semester not found")
		}
		return nil, appErrors.Internal(err, "failed to create semester registration")
	}
	s.logger.Info("semester registration created", zap.String("id", reg.ID), zap.String("academic_semester_id", reg.AcademicSemesterID))
	return reg, nil
}

// Get loads a window.
func (s *SemesterRegistrationService) Get(ctx context.Context, id string) (*models.SemesterRegistration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "semester registration not found", "failed to load semester registration")
	}
	return reg, nil
}

// List returns windows with pagination metadata.
func (s *SemesterRegistrationService) List(ctx context.Context, filter models.SemesterRegistrationFilter) ([]models.SemesterRegistration, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.WithPath(appErrors.ErrValidation, "status", "unknown status filter")
	}
	regs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list semester registrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return regs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update patches a window. A status change must be the single successor of the current status.
func (s *SemesterRegistrationService) Update(ctx context.Context, id string, req dto.UpdateSemesterRegistrationRequest) (*models.SemesterRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid semester registration payload")
	}
	if req.AcademicSemesterID != nil {
		if _, err := s.semesters.FindByID(ctx, *req.AcademicSemesterID); err != nil {
			return nil, lookupError(err, "academic semester not found", "failed to load academic semester")
		}
	}

	var (
		updated *models.SemesterRegistration
		from    models.SemesterRegistrationStatus
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		reg, err := s.repo.FindByIDForUpdate(ctx, exec, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "semester registration not found")
			}
			return err
		}
		from = reg.Status
		if req.Status != nil {
			if err := checkTransition(reg.Status, *req.Status); err != nil {
				return err
			}
			reg.Status = *req.Status
		}
		applyRegistrationPatch(reg, req)
		if reg.EndDate.Before(reg.StartDate) {
			return appErrors.WithPath(appErrors.ErrValidation, "endDate", "end date must not precede start date")
		}
		if err := validateCreditBounds(reg.MinCredit, reg.MaxCredit); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, exec, reg); err != nil {
			return err
		}
		updated = reg
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to update semester registration")
	}

	if from != updated.Status {
		s.logger.Info("semester registration status changed",
			zap.String("id", updated.ID),
			zap.String("from", string(from)),
			zap.String("to", string(updated.Status)),
		)
	}
	return updated, nil
}

// Delete removes a window. Rows still referenced by offered courses or enrollments are
// protected by foreign keys and surface as CONFLICT.
func (s *SemesterRegistrationService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "semester registration is still referenced")
		}
		return appErrors.Internal(err, "failed to delete semester registration")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "semester registration not found")
	}
	s.logger.Warn("semester registration deleted", zap.String("id", id))
	return nil
}

func checkTransition(from, to models.SemesterRegistrationStatus) error {
	if !to.Valid() {
		return appErrors.WithPath(appErrors.ErrValidation, "status", fmt.Sprintf("unknown status %q", to))
	}
	next, ok := from.Next()
	if !ok || next != to {
		return appErrors.WithPath(appErrors.ErrInvalidTransition, "status",
			fmt.Sprintf("can only move a %s registration to %s", from, describeNext(from)))
	}
	return nil
}

func describeNext(from models.SemesterRegistrationStatus) string {
	if next, ok := from.Next(); ok {
		return string(next)
	}
	return "nothing"
}

func applyRegistrationPatch(reg *models.SemesterRegistration, req dto.UpdateSemesterRegistrationRequest) {
	if req.AcademicSemesterID != nil {
		reg.AcademicSemesterID = *req.AcademicSemesterID
	}
	if req.StartDate != nil {
		reg.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		reg.EndDate = *req.EndDate
	}
	if req.MinCredit != nil {
		reg.MinCredit = *req.MinCredit
	}
	if req.MaxCredit != nil {
		reg.MaxCredit = *req.MaxCredit
	}
}

func validateCreditBounds(min, max int) error {
	if min > 0 && max > 0 && min > max {
		return appErrors.WithPath(appErrors.ErrValidation, "minCredit", "minimum credit must not exceed maximum credit")
	}
	return nil
}
