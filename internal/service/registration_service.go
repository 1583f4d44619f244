package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type studentRegistrationRepository interface {
	Find(ctx context.Context, studentID, semesterRegistrationID string) (*models.StudentSemesterRegistration, error)
	GetOrCreate(ctx context.Context, studentID, semesterRegistrationID string) (*models.StudentSemesterRegistration, error)
	Confirm(ctx context.Context, id string) error
}

// RegistrationService lets a student join the active window and confirm their course load.
type RegistrationService struct {
	students      studentDirectory
	registrations registrationStatusReader
	studentRegs   studentRegistrationRepository
	logger        *zap.Logger
}

// NewRegistrationService wires the confirmation gate.
func NewRegistrationService(students studentDirectory, registrations registrationStatusReader, studentRegs studentRegistrationRepository, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{students: students, registrations: registrations, studentRegs: studentRegs, logger: logger}
}

// StartRegistration returns the caller's registration row in the ongoing window, creating it on first call.
func (s *RegistrationService) StartRegistration(ctx context.Context, studentAuthID string) (*dto.MyRegistrationResponse, error) {
	student, err := s.students.FindByStudentID(ctx, studentAuthID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	window, err := s.registrations.FindByStatus(ctx, models.SemesterRegistrationOngoing, models.SemesterRegistrationUpcoming)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "no semester registration is open")
		}
		return nil, appErrors.Internal(err, "failed to load semester registration")
	}
	if window.Status == models.SemesterRegistrationUpcoming {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "registration has not started yet")
	}

	ssr, err := s.studentRegs.GetOrCreate(ctx, student.ID, window.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to start registration")
	}
	return &dto.MyRegistrationResponse{SemesterRegistration: window, StudentSemesterRegistration: ssr}, nil
}

// GetMyRegistration returns the caller's registration row in the active window without creating it.
func (s *RegistrationService) GetMyRegistration(ctx context.Context, studentAuthID string) (*dto.MyRegistrationResponse, error) {
	student, err := s.students.FindByStudentID(ctx, studentAuthID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	window, err := s.registrations.FindByStatus(ctx, models.SemesterRegistrationOngoing, models.SemesterRegistrationUpcoming)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "no semester registration is open")
		}
		return nil, appErrors.Internal(err, "failed to load semester registration")
	}
	ssr, err := s.studentRegs.Find(ctx, student.ID, window.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.MyRegistrationResponse{SemesterRegistration: window}, nil
		}
		return nil, appErrors.Internal(err, "failed to load student registration")
	}
	return &dto.MyRegistrationResponse{SemesterRegistration: window, StudentSemesterRegistration: ssr}, nil
}

// Confirm locks in the caller's course load once it fits the window's credit bounds.
func (s *RegistrationService) Confirm(ctx context.Context, studentAuthID string) error {
	student, err := s.students.FindByStudentID(ctx, studentAuthID)
	if err != nil {
		return lookupError(err, "student not found", "failed to load student")
	}
	window, err := s.registrations.FindByStatus(ctx, models.SemesterRegistrationOngoing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidState, "no ongoing semester registration")
		}
		return appErrors.Internal(err, "failed to load semester registration")
	}
	ssr, err := s.studentRegs.Find(ctx, student.ID, window.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidState, "student registration is not recognized")
		}
		return appErrors.Internal(err, "failed to load student registration")
	}
	if ssr.TotalCreditsTaken == 0 {
		return appErrors.Clone(appErrors.ErrInvalidState, "you are not enrolled in any course")
	}
	if window.HasCreditBounds() && (ssr.TotalCreditsTaken < window.MinCredit || ssr.TotalCreditsTaken > window.MaxCredit) {
		return appErrors.Clone(appErrors.ErrInvalidState,
			fmt.Sprintf("you can only take %d to %d credits", window.MinCredit, window.MaxCredit))
	}
	if ssr.IsConfirmed {
		return nil
	}
	if err := s.studentRegs.Confirm(ctx, ssr.ID); err != nil {
		return appErrors.Internal(err, "failed to confirm registration")
	}
	s.logger.Info("registration confirmed",
		zap.String("student_id", student.ID),
		zap.String("semester_registration_id", window.ID),
		zap.Int("credits", ssr.TotalCreditsTaken),
	)
	return nil
}
